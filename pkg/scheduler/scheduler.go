package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jonboulle/clockwork"

	"github.com/umputun/breakmap/pkg/dataset"
)

//go:generate moq -out mocks/reloader.go -pkg mocks -skip-ensure -fmt goimports . Reloader

// Reloader is the dataset refreshed by the scheduler
type Reloader interface {
	Path() string
	Invalidate(ctx context.Context) dataset.Snapshot
}

// Scheduler watches the data file and reloads the dataset when the file changes
type Scheduler struct {
	reloader Reloader
	interval time.Duration
	clock    clockwork.Clock

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu      sync.Mutex
	modTime time.Time
	size    int64
	exists  bool
}

// Params for NewScheduler
type Params struct {
	Reloader Reloader
	Interval time.Duration
	Clock    clockwork.Clock
}

// NewScheduler creates a new scheduler instance
func NewScheduler(p Params) *Scheduler {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	return &Scheduler{reloader: p.Reloader, interval: p.Interval, clock: p.Clock}
}

// Start begins watching, does nothing if interval is not positive
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		lgr.Printf("[INFO] data refresh disabled")
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	// remember the current state, so the first tick reloads only on a real change
	s.changed()

	s.wg.Add(1)
	go s.refreshWorker(ctx)
	lgr.Printf("[INFO] scheduler started, checking %s every %v", s.reloader.Path(), s.interval)
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	lgr.Printf("[INFO] stopping scheduler...")
	s.cancel()
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

func (s *Scheduler) refreshWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.refresh(ctx)
		}
	}
}

// refresh reloads the dataset if the file changed since the last check
func (s *Scheduler) refresh(ctx context.Context) bool {
	if !s.changed() {
		return false
	}
	lgr.Printf("[INFO] %s changed, reloading", s.reloader.Path())
	snap := s.reloader.Invalidate(ctx)
	if snap.Err != nil {
		lgr.Printf("[WARN] reload of %s failed: %v", s.reloader.Path(), snap.Err)
	}
	return true
}

// changed compares file modification time, size and presence with the last seen state
func (s *Scheduler) changed() bool {
	var modTime time.Time
	var size int64
	fi, err := os.Stat(s.reloader.Path())
	exists := err == nil
	if exists {
		modTime, size = fi.ModTime(), fi.Size()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := exists != s.exists || !modTime.Equal(s.modTime) || size != s.size
	s.modTime, s.size, s.exists = modTime, size, exists
	return res
}
