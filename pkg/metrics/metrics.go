package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "breakmap"

// Metrics holds prometheus collectors for loading and parsing the data file.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	Loads          *prometheus.CounterVec // labels: outcome={success,error}
	Cache          *prometheus.CounterVec // labels: result={hit,miss}
	ParseErrors    prometheus.Counter
	Rows           prometheus.Gauge
	Columns        prometheus.Gauge
	RowsNoGeometry prometheus.Gauge
	ReloadDuration prometheus.Histogram
}

// New creates metrics and registers them with the default prometheus registry
func New() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewForTesting creates metrics without registering them, so tests can create as many as needed
func NewForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_loads_total",
			Help:      "Data file reads by outcome.",
		}, []string{"outcome"}),
		Cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_cache_total",
			Help:      "Data file cache lookups by result.",
		}, []string{"result"}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Feed documents rejected as malformed.",
		}),
		Rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Rows in the current table.",
		}),
		Columns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_columns",
			Help:      "Columns in the current table.",
		}),
		RowsNoGeometry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows_without_coordinates",
			Help:      "Rows excluded from the map because coordinates are missing.",
		}),
		ReloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reload_duration_seconds",
			Help:      "Duration of a load and parse cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Loads, m.Cache, m.ParseErrors, m.Rows, m.Columns, m.RowsNoGeometry, m.ReloadDuration}
}

// CacheHit counts a cache lookup served from memory
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.Cache.WithLabelValues("hit").Inc()
}

// CacheMiss counts a cache lookup that went to the file
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.Cache.WithLabelValues("miss").Inc()
}

// LoadDone counts a file read by outcome
func (m *Metrics) LoadDone(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Loads.WithLabelValues("error").Inc()
		return
	}
	m.Loads.WithLabelValues("success").Inc()
}

// ParseFailed counts a malformed document
func (m *Metrics) ParseFailed() {
	if m == nil {
		return
	}
	m.ParseErrors.Inc()
}

// TableLoaded records table shape and reload duration in seconds
func (m *Metrics) TableLoaded(rows, columns, noGeometry int, seconds float64) {
	if m == nil {
		return
	}
	m.Rows.Set(float64(rows))
	m.Columns.Set(float64(columns))
	m.RowsNoGeometry.Set(float64(noGeometry))
	m.ReloadDuration.Observe(seconds)
}
