package internal

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters of a single run. Each run owns its registry so
// repeated runs in one process do not collide on registration.
type Metrics struct {
	registry       *prometheus.Registry
	runs           prometheus.Counter
	outputs        *prometheus.CounterVec
	failures       *prometheus.CounterVec
	resizeDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "density_resize_runs_total",
			Help: "Total number of resize runs started.",
		}),
		outputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "density_resize_outputs_total",
			Help: "Total number of output images written, by density label.",
		}, []string{"label"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "density_resize_failures_total",
			Help: "Total number of failed resize runs, by error kind.",
		}, []string{"kind"}),
		resizeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "density_resize_duration_milliseconds",
			Help:    "The duration of resampling and writing a single output in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1ms to ~8s
		}),
	}
	m.registry.MustRegister(m.runs, m.outputs, m.failures, m.resizeDuration)
	return m
}

func (m *Metrics) RunStarted() { m.runs.Inc() }

func (m *Metrics) OutputWritten(label string, took time.Duration) {
	m.outputs.WithLabelValues(label).Inc()
	m.resizeDuration.Observe(float64(took.Microseconds()) / 1000)
}

func (m *Metrics) RunFailed(err error) {
	m.failures.WithLabelValues(ErrorKind(err)).Inc()
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(filename string) error {
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
