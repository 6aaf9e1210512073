// Package metrics provides Prometheus metrics for stream supervision,
// playback commands, and telemetry collection.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	streamStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audionode",
		Subsystem: "streams",
		Name:      "start_requests_total",
		Help:      "Stream start requests by stream name and outcome",
	}, []string{"stream", "status"})

	streamRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "audionode",
		Subsystem: "streams",
		Name:      "running",
		Help:      "Last observed liveness per stream (1 running, 0 stopped)",
	}, []string{"stream"})

	playbackCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audionode",
		Subsystem: "player",
		Name:      "commands_total",
		Help:      "Playback commands dispatched by action",
	}, []string{"action"})

	playbackFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audionode",
		Subsystem: "player",
		Name:      "command_failures_total",
		Help:      "Playback commands whose process exited nonzero",
	}, []string{"action"})

	snapshotDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "audionode",
		Subsystem: "telemetry",
		Name:      "snapshot_duration_seconds",
		Help:      "Time spent assembling a telemetry snapshot",
		Buckets:   prometheus.DefBuckets,
	})

	serviceRestarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "audionode",
		Subsystem: "services",
		Name:      "restarts_total",
		Help:      "Managed service restart requests by unit and result",
	}, []string{"service", "result"})
)

// RecordStreamStart counts a start request outcome for a stream.
func RecordStreamStart(stream, status string) {
	streamStarts.WithLabelValues(stream, status).Inc()
}

// SetStreamRunning records the last observed liveness of a stream.
func SetStreamRunning(stream string, running bool) {
	value := 0.0
	if running {
		value = 1.0
	}
	streamRunning.WithLabelValues(stream).Set(value)
}

// RecordPlaybackCommand counts a dispatched playback command and whether
// the underlying process succeeded.
func RecordPlaybackCommand(action string, ok bool) {
	playbackCommands.WithLabelValues(action).Inc()
	if !ok {
		playbackFailures.WithLabelValues(action).Inc()
	}
}

// ObserveSnapshotDuration records the time spent on a telemetry snapshot.
func ObserveSnapshotDuration(seconds float64) {
	snapshotDuration.Observe(seconds)
}

// RecordServiceRestart counts a systemd restart request outcome.
func RecordServiceRestart(service, result string) {
	serviceRestarts.WithLabelValues(service, result).Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}
