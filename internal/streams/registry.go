// Package streams supervises the detached capture pipelines. The registry
// tracks pipelines it launched in memory but never trusts that memory alone:
// every start request re-derives liveness, first from the recorded handle,
// then from the host process table, so pipelines that outlived a previous
// server instance are still detected.
package streams

import (
	"fmt"
	"sync"
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/metrics"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/pipeline"
)

// Start outcome statuses.
const (
	StatusStarted        = "started"
	StatusAlreadyRunning = "already_running"
	StatusError          = "error"
)

// StartResult is the outcome of a start request. PID is set only for fresh
// starts; error outcomes carry the launch failure in Message.
type StartResult struct {
	Status  string
	Message string
	PID     int
}

// StreamStatus is one row of the informational status snapshot.
type StreamStatus struct {
	Name    string `json:"name" example:"vinyl" doc:"Stream name"`
	Running bool   `json:"running" example:"true" doc:"Whether a pipeline for this stream is live"`
	PID     int    `json:"pid,omitempty" example:"2041" doc:"Process group leader, when launched by this instance"`
}

// handle is the liveness view the registry needs from a launched pipeline.
type handle interface {
	PID() int
	Alive() bool
}

// launcher launches pipeline stages detached from the server.
type launcher interface {
	Launch(stages [][]string) (handle, error)
}

type executorLauncher struct {
	exec command.Executor
}

func (l executorLauncher) Launch(stages [][]string) (handle, error) {
	h, err := l.exec.SpawnDetached(stages)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// streamState serializes start attempts for one stream name.
type streamState struct {
	mu     sync.Mutex
	build  func(pipeline.Config) pipeline.Pipeline
	handle handle
}

// Registry supervises the known capture pipelines. Launched pipelines run
// in their own process groups and deliberately survive server restarts;
// the registry never stops them.
type Registry struct {
	streams map[string]*streamState
	order   []string

	launcher launcher
	scanner  scanner
	bus      *events.Bus
	logger   logging.Logger

	cfgMu sync.RWMutex
	cfg   pipeline.Config
}

// Options configures a Registry.
type Options struct {
	Executor command.Executor
	Bus      *events.Bus
	Config   pipeline.Config
}

// NewRegistry creates a registry supervising the vinyl and CD pipelines.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		streams: map[string]*streamState{
			"vinyl": {build: pipeline.Vinyl},
			"cd":    {build: pipeline.CD},
		},
		order:    []string{"vinyl", "cd"},
		launcher: executorLauncher{exec: opts.Executor},
		scanner:  tableScanner{},
		bus:      opts.Bus,
		logger:   logging.GetLogger("streams"),
		cfg:      opts.Config,
	}
}

// Start launches the named pipeline unless one is already live. Calls for
// different names proceed concurrently; calls for the same name serialize.
func (r *Registry) Start(name string) StartResult {
	st, ok := r.streams[name]
	if !ok {
		return StartResult{Status: StatusError, Message: fmt.Sprintf("unknown stream %q", name)}
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	p := st.build(r.pipelineConfig())

	if st.handle != nil && st.handle.Alive() {
		metrics.RecordStreamStart(name, StatusAlreadyRunning)
		metrics.SetStreamRunning(name, true)
		return StartResult{
			Status:  StatusAlreadyRunning,
			Message: fmt.Sprintf("%s stream is already running", p.Display),
		}
	}

	if r.scanner.FindPipeline(p.Transcoder, p.Marker) {
		// A pipeline from a previous server instance is still publishing.
		// Leave it untracked; it keeps running on its own.
		r.logger.Info("Found untracked pipeline process", "stream", name, "marker", p.Marker)
		metrics.RecordStreamStart(name, StatusAlreadyRunning)
		metrics.SetStreamRunning(name, true)
		return StartResult{
			Status:  StatusAlreadyRunning,
			Message: fmt.Sprintf("%s stream is already running", p.Display),
		}
	}

	h, err := r.launcher.Launch(p.Stages)
	if err != nil {
		r.logger.Error("Failed to start stream", "stream", name, "error", err)
		metrics.RecordStreamStart(name, StatusError)
		return StartResult{Status: StatusError, Message: err.Error()}
	}

	st.handle = h
	pid := h.PID()
	r.logger.Info("Stream started", "stream", name, "pid", pid)
	metrics.RecordStreamStart(name, StatusStarted)
	metrics.SetStreamRunning(name, true)

	if r.bus != nil {
		r.bus.Publish(events.StreamStartedEvent{
			Stream:    name,
			PID:       pid,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	return StartResult{
		Status:  StatusStarted,
		Message: fmt.Sprintf("%s stream started", p.Display),
		PID:     pid,
	}
}

// Status reports per-stream liveness, re-derived on every call. Read-only:
// dead handles are reported as stopped but stay recorded until the next
// start attempt for that name replaces them.
func (r *Registry) Status() []StreamStatus {
	statuses := make([]StreamStatus, 0, len(r.order))
	for _, name := range r.order {
		st := r.streams[name]
		p := st.build(r.pipelineConfig())

		st.mu.Lock()
		running := false
		pid := 0
		if st.handle != nil && st.handle.Alive() {
			running = true
			pid = st.handle.PID()
		}
		st.mu.Unlock()

		// An untracked pipeline counts as running even though we hold no
		// handle for it.
		if !running && r.scanner.FindPipeline(p.Transcoder, p.Marker) {
			running = true
		}

		metrics.SetStreamRunning(name, running)
		statuses = append(statuses, StreamStatus{Name: name, Running: running, PID: pid})
	}
	return statuses
}

// UpdateConfig replaces the pipeline settings used for subsequent starts.
// Pipelines already running keep the settings they were launched with.
func (r *Registry) UpdateConfig(cfg pipeline.Config) {
	r.cfgMu.Lock()
	r.cfg = cfg
	r.cfgMu.Unlock()
	r.logger.Info("Pipeline settings updated", "rtsp_base", cfg.RTSPBase, "bitrate", cfg.Bitrate)
}

func (r *Registry) pipelineConfig() pipeline.Config {
	r.cfgMu.RLock()
	defer r.cfgMu.RUnlock()
	return r.cfg
}
