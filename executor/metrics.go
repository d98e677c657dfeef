package executor

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains scheduler counters.
type Metrics struct {
	Spawned    int64 // Tasks spawned
	Completed  int64 // Tasks run to terminal state
	Panicked   int64 // Tasks that panicked
	Polls      int64 // Total polls across all tasks
	Wakes      int64 // Effective wake transitions
	QueueDepth int64 // Current runnable queue depth
}

// String returns a string representation of metrics.
func (m Metrics) String() string {
	return fmt.Sprintf(
		"spawned: %d, completed: %d, panicked: %d, polls: %d, wakes: %d, queue: %d",
		m.Spawned, m.Completed, m.Panicked, m.Polls, m.Wakes, m.QueueDepth,
	)
}

// MetricsCollector defines the interface for collecting scheduler
// metrics.
type MetricsCollector interface {
	IncSpawned()
	IncCompleted()
	IncPanicked()
	IncPolls()
	IncWakes()
	SetQueueDepth(n int)
	GetMetrics() Metrics
}

// AtomicMetricsCollector is the default atomic-based implementation.
type AtomicMetricsCollector struct {
	spawned    atomic.Int64
	completed  atomic.Int64
	panicked   atomic.Int64
	polls      atomic.Int64
	wakes      atomic.Int64
	queueDepth atomic.Int64
}

func (m *AtomicMetricsCollector) IncSpawned() { m.spawned.Add(1) }
func (m *AtomicMetricsCollector) IncCompleted() { m.completed.Add(1) }
func (m *AtomicMetricsCollector) IncPanicked() { m.panicked.Add(1) }
func (m *AtomicMetricsCollector) IncPolls() { m.polls.Add(1) }
func (m *AtomicMetricsCollector) IncWakes() { m.wakes.Add(1) }
func (m *AtomicMetricsCollector) SetQueueDepth(n int) { m.queueDepth.Store(int64(n)) }
func (m *AtomicMetricsCollector) GetMetrics() Metrics {
	return Metrics{
		Spawned:    m.spawned.Load(),
		Completed:  m.completed.Load(),
		Panicked:   m.panicked.Load(),
		Polls:      m.polls.Load(),
		Wakes:      m.wakes.Load(),
		QueueDepth: m.queueDepth.Load(),
	}
}

// PrometheusMetricsCollector implements MetricsCollector using
// prometheus metrics.
// (Requires github.com/prometheus/client_golang/prometheus)
type PrometheusMetricsCollector struct {
	Spawned    prometheus.Counter
	Completed  prometheus.Counter
	Panicked   prometheus.Counter
	Polls      prometheus.Counter
	Wakes      prometheus.Counter
	QueueDepth prometheus.Gauge
}

// NewPrometheusMetricsCollector creates the scheduler metrics and
// registers them with reg.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) *PrometheusMetricsCollector {
	m := &PrometheusMetricsCollector{
		Spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_spawned_total",
			Help: "Total tasks spawned.",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_completed_total",
			Help: "Total tasks run to completion.",
		}),
		Panicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_tasks_panicked_total",
			Help: "Total tasks that panicked.",
		}),
		Polls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_polls_total",
			Help: "Total polls across all tasks.",
		}),
		Wakes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "executor_wakes_total",
			Help: "Total effective wake transitions.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "executor_queue_depth",
			Help: "Current runnable queue depth.",
		}),
	}
	reg.MustRegister(m.Spawned, m.Completed, m.Panicked, m.Polls, m.Wakes, m.QueueDepth)
	return m
}

func (m *PrometheusMetricsCollector) IncSpawned() { m.Spawned.Inc() }
func (m *PrometheusMetricsCollector) IncCompleted() { m.Completed.Inc() }
func (m *PrometheusMetricsCollector) IncPanicked() { m.Panicked.Inc() }
func (m *PrometheusMetricsCollector) IncPolls() { m.Polls.Inc() }
func (m *PrometheusMetricsCollector) IncWakes() { m.Wakes.Inc() }
func (m *PrometheusMetricsCollector) SetQueueDepth(n int) { m.QueueDepth.Set(float64(n)) }
func (m *PrometheusMetricsCollector) GetMetrics() Metrics {
	// Prometheus metrics are scraped via the registry. This method
	// returns zeros.
	return Metrics{}
}
