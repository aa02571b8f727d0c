// Package metrics records what a poll run did as Prometheus metrics.
//
// The poller is a one-shot process started by a scheduler, so nothing is
// served over HTTP. Instead the registry is written to a node_exporter
// textfile collector directory at the end of a run when a path is configured.
package metrics

import (
	"github.com/mikey/kopi-bell/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const namespace = "kopi_bell"

// Recorder implements core.RunRecorder on a private Prometheus registry
type Recorder struct {
	registry *prometheus.Registry
	path     string
	logger   *zap.Logger

	messagesScanned *prometheus.CounterVec
	dispatches      *prometheus.CounterVec
	lastRunSuccess  prometheus.Gauge
	lastRunTime     prometheus.Gauge
	lastRunSent     prometheus.Gauge
	lastRunUnseen   prometheus.Gauge
}

// NewRecorder creates a recorder that writes to path on Flush. An empty path
// keeps metrics in memory only.
func NewRecorder(path string, logger *zap.Logger) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		path:     path,
		logger:   logger,
		messagesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_scanned_total",
			Help:      "Unseen messages classified, by resulting event.",
		}, []string{"event"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Notification dispatches, by event and result.",
		}, []string{"event", "result"}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run completed without error, 0 otherwise.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last successful run finished.",
		}),
		lastRunSent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_sent",
			Help:      "Notifications sent by the last successful run.",
		}),
		lastRunUnseen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_unseen",
			Help:      "Unseen messages scanned by the last successful run.",
		}),
	}

	r.registry.MustRegister(
		r.messagesScanned,
		r.dispatches,
		r.lastRunSuccess,
		r.lastRunTime,
		r.lastRunSent,
		r.lastRunUnseen,
	)
	return r
}

// MessageScanned counts one classified message
func (r *Recorder) MessageScanned(event core.Event) {
	r.messagesScanned.WithLabelValues(event.String()).Inc()
}

// DispatchFinished counts one dispatch
func (r *Recorder) DispatchFinished(event core.Event, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	r.dispatches.WithLabelValues(event.String(), result).Inc()
}

// RunFinished records the outcome of a run
func (r *Recorder) RunFinished(summary *core.RunSummary, err error) {
	if err != nil || summary == nil {
		r.lastRunSuccess.Set(0)
		return
	}
	r.lastRunSuccess.Set(1)
	r.lastRunTime.Set(float64(summary.FinishedAt.Unix()))
	r.lastRunSent.Set(float64(summary.Sent))
	r.lastRunUnseen.Set(float64(summary.Unseen))
}

// Flush writes the registry to the textfile, if one is configured
func (r *Recorder) Flush() error {
	if r.path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return err
	}
	r.logger.Debug("Metrics written", zap.String("path", r.path))
	return nil
}
