// Package metrics collects per-run counters. There is no listener; the
// registry is dumped into a node_exporter textfile once the run ends.
package metrics

import (
	"fmt"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rotator"

type Recorder struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	commands *prometheus.CounterVec
	duration *prometheus.HistogramVec
	peak     prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Input lines by final result.",
		}, []string{"result"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Management tool invocations by operation and classification.",
		}, []string{"op", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Wall clock time of management tool invocations.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"op"}),
		peak: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commands_in_flight_max",
			Help:      "Highest number of management tool invocations running at once.",
		}),
	}
	r.registry.MustRegister(r.rows, r.commands, r.duration, r.peak)
	return r
}

func (r *Recorder) ObserveCommand(op string, kind model.ErrorKind, elapsed time.Duration) {
	r.commands.WithLabelValues(op, kind.String()).Inc()
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRow(o model.RowOutcome) {
	switch {
	case o.IsBadLine():
		r.rows.WithLabelValues("badline").Inc()
	case o.Succeeded:
		r.rows.WithLabelValues("success").Inc()
	default:
		r.rows.WithLabelValues("failure").Inc()
	}
}

func (r *Recorder) SetPeak(n int) {
	r.peak.Set(float64(n))
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes all metrics in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
