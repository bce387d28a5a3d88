package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/reconcile"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "tabdeck").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for effect and request durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		if namespace != "" {
			c.Namespace = namespace
		}
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "tabdeck",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds tabdeck's collectors.
//
// Metrics collected:
//   - tabdeck_signal_writes_total: Counter of signal writes
//   - tabdeck_signal_dependents: Histogram of subscribers notified per write
//   - tabdeck_effect_runs_total: Counter of effect runs
//   - tabdeck_effect_duration_seconds: Histogram of effect run duration
//   - tabdeck_reconcile_passes_total: Counter of reconcile passes by list
//   - tabdeck_reconcile_views_total: Counter of views by list and operation
//   - tabdeck_requests_total: Counter of HTTP requests by route and status
//   - tabdeck_request_duration_seconds: Histogram of HTTP request duration
//   - tabdeck_subscribers: Gauge of live snapshot subscribers
//   - tabdeck_snapshots_dropped_total: Counter of snapshots dropped for slow subscribers
//   - tabdeck_documents_reloaded_total: Counter of documents reloaded from disk
type Metrics struct {
	signalWrites     prometheus.Counter
	signalDependents prometheus.Histogram
	effectRuns       prometheus.Counter
	effectDuration   prometheus.Histogram
	reconcilePasses  *prometheus.CounterVec
	reconcileViews   *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	subscribers      prometheus.Gauge
	droppedSnapshots prometheus.Counter
	reloads          prometheus.Counter
}

var (
	_ reactive.Observer  = (*Metrics)(nil)
	_ reconcile.Observer = (*Metrics)(nil)
)

// NewMetrics creates and registers the collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		signalWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "signal_writes_total",
			Help:        "Total number of signal writes",
			ConstLabels: config.ConstLabels,
		}),

		signalDependents: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "signal_dependents",
			Help:        "Number of effects notified by a signal write",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{0, 1, 2, 4, 8, 16, 32, 64},
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		reconcilePasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reconcile_passes_total",
			Help:        "Total number of keyed reconcile passes",
			ConstLabels: config.ConstLabels,
		}, []string{"list"}),

		reconcileViews: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "reconcile_views_total",
			Help:        "Views handled by reconcile passes, by operation",
			ConstLabels: config.ConstLabels,
		}, []string{"list", "op"}),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total number of HTTP API requests",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_seconds",
			Help:        "HTTP API request duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "subscribers",
			Help:        "Number of live snapshot subscribers",
			ConstLabels: config.ConstLabels,
		}),

		droppedSnapshots: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "snapshots_dropped_total",
			Help:        "Snapshots dropped because a subscriber fell behind",
			ConstLabels: config.ConstLabels,
		}),

		reloads: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "documents_reloaded_total",
			Help:        "Documents reloaded after a change on disk",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// SignalSet implements reactive.Observer.
func (m *Metrics) SignalSet(_ reactive.SignalInfo, dependents int) {
	m.signalWrites.Inc()
	m.signalDependents.Observe(float64(dependents))
}

// EffectRun implements reactive.Observer.
func (m *Metrics) EffectRun(_ reactive.EffectInfo, d time.Duration) {
	m.effectRuns.Inc()
	m.effectDuration.Observe(d.Seconds())
}

// Reconciled implements reconcile.Observer.
func (m *Metrics) Reconciled(name string, created, reused, moved, disposed int) {
	if name == "" {
		name = "unnamed"
	}
	m.reconcilePasses.WithLabelValues(name).Inc()
	m.reconcileViews.WithLabelValues(name, "create").Add(float64(created))
	m.reconcileViews.WithLabelValues(name, "reuse").Add(float64(reused))
	m.reconcileViews.WithLabelValues(name, "move").Add(float64(moved))
	m.reconcileViews.WithLabelValues(name, "dispose").Add(float64(disposed))
}

// RecordRequest records a finished HTTP request.
func (m *Metrics) RecordRequest(route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, status).Inc()
	m.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordSubscribe records a new snapshot subscriber.
func (m *Metrics) RecordSubscribe() {
	m.subscribers.Inc()
}

// RecordUnsubscribe records a subscriber going away.
func (m *Metrics) RecordUnsubscribe() {
	m.subscribers.Dec()
}

// RecordDroppedSnapshot records a snapshot that a slow subscriber missed.
func (m *Metrics) RecordDroppedSnapshot() {
	m.droppedSnapshots.Inc()
}

// RecordReload records a document reloaded from disk.
func (m *Metrics) RecordReload() {
	m.reloads.Inc()
}
