package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	TaskOperations          *prometheus.CounterVec
	NotificationDispatches  *prometheus.CounterVec
	GuardDecisions          *prometheus.CounterVec
	LoadedTasks             prometheus.Gauge
	CollectionLoadLatencyMS prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		TaskOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_operations_total",
			Help:      "Task store operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		NotificationDispatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_dispatches_total",
			Help:      "Notification dispatches by kind.",
		}, []string{"kind"}),
		GuardDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Auth guard decisions by state.",
		}, []string{"decision"}),
		LoadedTasks: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_tasks",
			Help:      "Number of tasks currently held in the local collection.",
		}),
		CollectionLoadLatencyMS: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collection_load_latency_ms",
			Help:      "Latency of full collection loads in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
	}
}

func (m *Metrics) ObserveTaskOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.TaskOperations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ObserveNotification(kind string) {
	if m == nil {
		return
	}
	m.NotificationDispatches.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveGuardDecision(decision string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveCollectionSize(size int) {
	if m == nil {
		return
	}
	m.LoadedTasks.Set(float64(size))
}

func (m *Metrics) ObserveCollectionLoad(size int, d time.Duration) {
	if m == nil {
		return
	}
	m.LoadedTasks.Set(float64(size))
	m.CollectionLoadLatencyMS.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
