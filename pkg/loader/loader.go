// Package loader reads the data file and keeps its content in a keyed cache.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/metrics"
)

// ErrNotRegular is returned for a data path pointing at a directory or another non-regular file
var ErrNotRegular = errors.New("not a regular file")

// Loader returns file content by path, caching it until invalidated or expired.
// Each path has its own cache entry, so changing the path never returns another file's content.
type Loader struct {
	ttl        time.Duration
	retries    int
	retryDelay time.Duration
	clock      clockwork.Clock
	metrics    *metrics.Metrics

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]entry
}

// Params for New. Zero TTL keeps entries until invalidated.
type Params struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
	Clock      clockwork.Clock
	Metrics    *metrics.Metrics
}

type entry struct {
	content  string
	loadedAt time.Time
}

// New makes a loader
func New(p Params) *Loader {
	if p.Retries < 1 {
		p.Retries = 1
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = 50 * time.Millisecond
	}
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	return &Loader{
		ttl:        p.TTL,
		retries:    p.Retries,
		retryDelay: p.RetryDelay,
		clock:      p.Clock,
		metrics:    p.Metrics,
		cache:      map[string]entry{},
	}
}

// Load returns the full text of the file at path. Errors match domain.ErrDataUnavailable.
func (l *Loader) Load(ctx context.Context, path string) (string, error) {
	if content, ok := l.cached(path); ok {
		l.metrics.CacheHit()
		return content, nil
	}
	l.metrics.CacheMiss()

	res, err, _ := l.group.Do(path, func() (any, error) {
		content, err := l.read(ctx, path)
		l.metrics.LoadDone(err)
		if err != nil {
			return "", err
		}
		l.mu.Lock()
		l.cache[path] = entry{content: content, loadedAt: l.clock.Now()}
		l.mu.Unlock()
		lgr.Printf("[DEBUG] loaded %s, %d bytes", path, len(content))
		return content, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	return res.(string), nil
}

// Invalidate drops cached content for path
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, path)
}

// Reset drops all cached content
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = map[string]entry{}
}

// Cached reports whether path has a live cache entry
func (l *Loader) Cached(path string) bool {
	_, ok := l.cached(path)
	return ok
}

func (l *Loader) cached(path string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.cache[path]
	if !ok {
		return "", false
	}
	if l.ttl > 0 && l.clock.Since(e.loadedAt) >= l.ttl {
		delete(l.cache, path)
		return "", false
	}
	return e.content, true
}

// read retries transient failures, missing files, permission problems and non-regular files fail right away
func (l *Loader) read(ctx context.Context, path string) (string, error) {
	var content string
	retrier := repeater.NewBackoff(l.retries, l.retryDelay, repeater.WithMaxDelay(time.Second))
	err := retrier.Do(ctx, func() error {
		data, err := readFile(path)
		if err != nil {
			return err
		}
		content = data
		return nil
	}, fs.ErrNotExist, fs.ErrPermission, ErrNotRegular)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}

func readFile(path string) (string, error) {
	fh, err := os.Open(path) //nolint:gosec // path comes from config
	if err != nil {
		return "", err
	}
	defer fh.Close() //nolint:errcheck // read-only file

	fi, err := fh.Stat()
	if err != nil {
		return "", err
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%s: %w", path, ErrNotRegular)
	}

	data, err := io.ReadAll(fh)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
