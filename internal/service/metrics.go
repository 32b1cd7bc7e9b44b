package service

import (
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the dispatch pipeline. A nil
// *Metrics records nothing.
type Metrics struct {
	Dispatches          *prometheus.CounterVec
	PointsAwarded       *prometheus.CounterVec
	StoreDegraded       *prometheus.CounterVec
	ClassifierFallbacks prometheus.Counter
	HandlerPanics       *prometheus.CounterVec
	HandlerLatency      *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskquest_dispatches_total",
			Help: "Commands dispatched, by category",
		}, []string{"category"}),

		PointsAwarded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskquest_points_awarded_total",
			Help: "Points awarded, by category",
		}, []string{"category"}),

		StoreDegraded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskquest_store_degraded_total",
			Help: "Record store failures answered with a default value, by operation",
		}, []string{"op"}),

		ClassifierFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "taskquest_classifier_fallbacks_total",
			Help: "Classifications that fell back to general because of an error",
		}),

		HandlerPanics: f.NewCounterVec(prometheus.CounterOpts{
			Name: "taskquest_handler_panics_total",
			Help: "Handler panics recovered by the dispatcher, by category",
		}, []string{"category"}),

		// Handlers wait on the model, so buckets reach two minutes.
		HandlerLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskquest_handler_duration_seconds",
			Help:    "Category handler latency in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"category"}),
	}
}

func (m *Metrics) recordDispatch(category domain.Category, points int64) {
	if m == nil {
		return
	}
	m.Dispatches.WithLabelValues(string(category)).Inc()
	if points > 0 {
		m.PointsAwarded.WithLabelValues(string(category)).Add(float64(points))
	}
}

func (m *Metrics) recordDegraded(op string) {
	if m == nil {
		return
	}
	m.StoreDegraded.WithLabelValues(op).Inc()
}

func (m *Metrics) recordClassifierFallback() {
	if m == nil {
		return
	}
	m.ClassifierFallbacks.Inc()
}

func (m *Metrics) recordHandler(category domain.Category, elapsed time.Duration, panicked bool) {
	if m == nil {
		return
	}
	m.HandlerLatency.WithLabelValues(string(category)).Observe(elapsed.Seconds())
	if panicked {
		m.HandlerPanics.WithLabelValues(string(category)).Inc()
	}
}
