// Package models contains the request and response body types for the
// audionode HTTP API.
package models

import (
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/streams"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/telemetry"
)

// PlaybackData is the fixed acknowledgement for a playback command. The
// status word describes the requested action, not the process outcome;
// playback commands are fire-and-forget.
type PlaybackData struct {
	Status string `json:"status" example:"playing" doc:"Requested playback action acknowledgement"`
}

// PlaybackResponse wraps PlaybackData for Huma.
type PlaybackResponse struct {
	Body PlaybackData
}

// TracksData is the current playlist as reported by the player daemon.
type TracksData struct {
	Tracks []string `json:"tracks" doc:"Queued tracks in playback order; empty when the daemon is unreachable"`
}

// TracksResponse wraps TracksData for Huma.
type TracksResponse struct {
	Body TracksData
}

// StreamStartData is the outcome of a stream start request.
type StreamStartData struct {
	Status  string `json:"status" enum:"started,already_running,error" doc:"Start outcome"`
	Message string `json:"message" example:"Vinyl stream started" doc:"Human-readable outcome detail"`
	PID     int    `json:"pid,omitempty" example:"2041" doc:"Process group leader of the launched pipeline, set only for fresh starts"`
}

// StreamStartResponse wraps StreamStartData for Huma.
type StreamStartResponse struct {
	Body StreamStartData
}

// StreamListData is the informational liveness snapshot of all streams.
type StreamListData struct {
	Streams []streams.StreamStatus `json:"streams" doc:"Per-stream liveness, re-derived on every request"`
	Count   int                    `json:"count" example:"2" doc:"Number of known streams"`
}

// StreamListResponse wraps StreamListData for Huma.
type StreamListResponse struct {
	Body StreamListData
}

// TemperatureResponse wraps the reduced telemetry snapshot for Huma.
type TemperatureResponse struct {
	Body telemetry.TemperatureSnapshot
}

// SystemResponse wraps the full telemetry snapshot for Huma.
type SystemResponse struct {
	Body telemetry.Snapshot
}

// HealthData reports service liveness. Always healthy when the server is
// answering; the capability flag tells clients how much of /system to expect.
type HealthData struct {
	Status           string `json:"status" example:"healthy" doc:"Service liveness"`
	Timestamp        string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Current server time, RFC 3339"`
	MetricsAvailable bool   `json:"metrics_available" doc:"Whether the host-metrics facility responded at startup"`
}

// HealthResponse wraps HealthData for Huma.
type HealthResponse struct {
	Body HealthData
}

// VersionData contains version and build metadata.
type VersionData struct {
	Version   string `json:"version" example:"1.0.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc123" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2025-01-27T10:30:00Z" doc:"Build timestamp"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go version used to build"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target platform"`
}

// VersionResponse wraps VersionData for Huma.
type VersionResponse struct {
	Body VersionData
}

// LogsData is a page of recent log entries from the in-memory ring buffer.
type LogsData struct {
	Entries []logging.LogEntry `json:"entries" doc:"Recent log entries, oldest first"`
	Count   int                `json:"count" doc:"Number of entries returned"`
}

// LogsResponse wraps LogsData for Huma.
type LogsResponse struct {
	Body LogsData
}

// ServiceStatusData reports the systemd state of a managed companion service.
type ServiceStatusData struct {
	Service string `json:"service" example:"mediamtx" doc:"Service name"`
	Status  string `json:"status" example:"active" doc:"systemd ActiveState of the unit"`
}

// ServiceStatusResponse wraps ServiceStatusData for Huma.
type ServiceStatusResponse struct {
	Body ServiceStatusData
}

// ServiceActionData acknowledges a lifecycle action on a managed service.
type ServiceActionData struct {
	Service string `json:"service" example:"mpd" doc:"Service name"`
	Action  string `json:"action" example:"restart" doc:"Requested action"`
	Success bool   `json:"success" doc:"Whether systemd accepted the request"`
}

// ServiceActionResponse wraps ServiceActionData for Huma.
type ServiceActionResponse struct {
	Body ServiceActionData
}
