// Package dataset keeps the latest parsed table of the data file.
package dataset

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/jonboulle/clockwork"

	"github.com/umputun/breakmap/pkg/domain"
	"github.com/umputun/breakmap/pkg/feed"
	"github.com/umputun/breakmap/pkg/metrics"
)

//go:generate moq -out mocks/loader.go -pkg mocks -skip-ensure -fmt goimports . Loader

// Loader reads file content, possibly from cache
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
	Invalidate(path string)
}

// Snapshot is the result of one load and parse cycle.
// Err is set when the file can't be read or parsed, Table is nil in this case.
type Snapshot struct {
	Path     string
	Table    *domain.Table
	Meta     domain.FeedMeta
	LoadedAt time.Time
	Err      error
}

// Dataset holds the current snapshot for a single data file
type Dataset struct {
	path    string
	loader  Loader
	clock   clockwork.Clock
	metrics *metrics.Metrics

	mu   sync.RWMutex
	snap Snapshot
}

// Params for New
type Params struct {
	Path    string
	Loader  Loader
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

// New makes a dataset, nothing is loaded until Reload is called
func New(p Params) *Dataset {
	if p.Clock == nil {
		p.Clock = clockwork.NewRealClock()
	}
	return &Dataset{path: p.Path, loader: p.Loader, clock: p.Clock, metrics: p.Metrics,
		snap: Snapshot{Path: p.Path, Err: errors.New("not loaded")}}
}

// Path returns the data file path
func (d *Dataset) Path() string {
	return d.path
}

// Current returns the latest snapshot
func (d *Dataset) Current() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Reload loads and parses the file, the cached content is used if present
func (d *Dataset) Reload(ctx context.Context) Snapshot {
	start := d.clock.Now()
	snap := Snapshot{Path: d.path, LoadedAt: start}

	content, err := d.loader.Load(ctx, d.path)
	if err != nil {
		lgr.Printf("[ERROR] error reading data: %v", err)
		snap.Err = err
		return d.store(snap)
	}

	tbl, err := feed.Parse(content)
	if err != nil {
		lgr.Printf("[ERROR] can't parse %s: %v", d.path, err)
		d.metrics.ParseFailed()
		snap.Err = err
		return d.store(snap)
	}
	snap.Table = tbl

	if meta, err := feed.Meta(content); err == nil {
		snap.Meta = meta
	} else {
		lgr.Printf("[DEBUG] no feed metadata for %s: %v", d.path, err)
	}

	d.metrics.TableLoaded(tbl.Len(), len(tbl.Columns), tbl.Len()-tbl.GeoRows(), d.clock.Since(start).Seconds())
	lgr.Printf("[INFO] loaded %s: %d rows, %d columns, %d with coordinates", d.path, tbl.Len(), len(tbl.Columns), tbl.GeoRows())
	return d.store(snap)
}

// Invalidate drops cached file content and reloads
func (d *Dataset) Invalidate(ctx context.Context) Snapshot {
	d.loader.Invalidate(d.path)
	return d.Reload(ctx)
}

func (d *Dataset) store(snap Snapshot) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = snap
	return snap
}

// Unavailable reports whether err means the file couldn't be read
func Unavailable(err error) bool {
	return errors.Is(err, domain.ErrDataUnavailable)
}

// Malformed reports whether err means the file isn't a well-formed document
func Malformed(err error) bool {
	return errors.Is(err, domain.ErrMalformedDocument)
}
