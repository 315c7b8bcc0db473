// Package metrics collects per-run counters and writes them in the Prometheus
// text exposition format for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worldsmith"

// Run holds the counters of one worldsmith invocation. Each Run owns its
// registry so repeated runs in one process never collide.
type Run struct {
	registry *prometheus.Registry

	rowsLoaded   *prometheus.CounterVec
	rowsSkipped  *prometheus.CounterVec
	callsEmitted *prometheus.CounterVec
	deleteMissed *prometheus.CounterVec
	deploy       *prometheus.GaugeVec
	exitCode     prometheus.Gauge
	finished     prometheus.Gauge
}

// NewRun creates the counters for a run in the given mode.
func NewRun(mode string) *Run {
	constLabels := prometheus.Labels{"mode": mode}
	r := &Run{
		registry: prometheus.NewRegistry(),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_loaded_total",
			Help:        "Content rows selected for the run.",
			ConstLabels: constLabels,
		}, []string{"category"}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "rows_skipped_total",
			Help:        "Content rows skipped because they failed validation.",
			ConstLabels: constLabels,
		}, []string{"category"}),
		callsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "calls_emitted_total",
			Help:        "System calls appended to the call buffer.",
			ConstLabels: constLabels,
		}, []string{"category"}),
		deleteMissed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "delete_missed_total",
			Help:        "Deletes skipped because the row was not deployed.",
			ConstLabels: constLabels,
		}, []string{"category"}),
		deploy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "deploy_duration_seconds",
			Help:        "Wall time of the deploy subprocess.",
			ConstLabels: constLabels,
		}, []string{"action"}),
		exitCode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "deploy_exit_code",
			Help:        "Exit code of the last deploy subprocess.",
			ConstLabels: constLabels,
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the run finished.",
			ConstLabels: constLabels,
		}),
	}
	r.registry.MustRegister(r.rowsLoaded, r.rowsSkipped, r.callsEmitted,
		r.deleteMissed, r.deploy, r.exitCode, r.finished)
	return r
}

// RowsLoaded adds n selected rows for category.
func (r *Run) RowsLoaded(category string, n int) {
	r.rowsLoaded.WithLabelValues(category).Add(float64(n))
}

// RowsSkipped adds n skipped rows for category.
func (r *Run) RowsSkipped(category string, n int) {
	r.rowsSkipped.WithLabelValues(category).Add(float64(n))
}

// CallsEmitted adds n emitted calls for category.
func (r *Run) CallsEmitted(category string, n int) {
	r.callsEmitted.WithLabelValues(category).Add(float64(n))
}

// DeleteMissed counts one delete that could not be issued.
func (r *Run) DeleteMissed(category string) {
	r.deleteMissed.WithLabelValues(category).Inc()
}

// ObserveDeploy records the duration and exit code of a deploy subprocess.
func (r *Run) ObserveDeploy(action string, d time.Duration, exitCode int) {
	r.deploy.WithLabelValues(action).Set(d.Seconds())
	r.exitCode.Set(float64(exitCode))
}

// Finish stamps the run completion time.
func (r *Run) Finish(at time.Time) {
	r.finished.Set(float64(at.Unix()))
}

// Gatherer exposes the run registry.
func (r *Run) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every counter to path atomically.
func (r *Run) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
