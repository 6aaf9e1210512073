// Package api exposes the appliance control surface over HTTP using
// Huma v2 on the standard library mux. The API is unauthenticated by
// design: the appliance lives on a trusted home network and the frontend
// talks to it directly.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/streams"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/telemetry"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/version"
)

// StreamSupervisor is the slice of the stream registry the API needs.
type StreamSupervisor interface {
	Start(name string) streams.StartResult
	Status() []streams.StreamStatus
}

// Playback is the slice of the player the API needs.
type Playback interface {
	Eject() bool
	Next() bool
	Previous() bool
	Play() bool
	Stop() bool
	Toggle() bool
	Playlist() []string
}

// TelemetryCollector is the slice of the telemetry collector the API needs.
type TelemetryCollector interface {
	Collect(ctx context.Context) telemetry.Snapshot
	TemperatureOnly(ctx context.Context) telemetry.TemperatureSnapshot
}

// ServiceManager controls the appliance's companion systemd units.
type ServiceManager interface {
	ServiceStatus(ctx context.Context, unit string) (string, error)
	RestartService(ctx context.Context, unit string) error
}

// Options wires the API server's collaborators.
type Options struct {
	Supervisor StreamSupervisor
	Player     Playback
	Collector  TelemetryCollector
	EventBus   *events.Bus

	// ServiceManager may be nil on hosts without D-Bus; the /services
	// routes are then not registered.
	ServiceManager ServiceManager

	// Capabilities feeds the /health capability flag.
	Capabilities telemetry.Capabilities

	// PrometheusHandler, when set, is mounted at GET /metrics directly on
	// the mux, outside the Huma API.
	PrometheusHandler http.Handler
}

// Server is the audionode HTTP API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	logger     *slog.Logger
}

// NewServer creates the API server and registers all routes.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("Audionode API", version.String())
	config.Info.Description = "Playback control, stream supervision and host telemetry for the vinyl/CD streaming appliance"
	// Empty servers list makes OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()

	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start runs the HTTP server on the specified address. Blocks until the
// server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting audionode API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	return s.httpServer.ListenAndServe()
}

// Stop shuts down the server. Open SSE connections are closed rather than
// drained; the supervised pipelines are untouched and keep running.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	if s.httpServer != nil {
		return s.httpServer.Close()
	}

	return nil
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	// Liveness probe. Always answers 200 regardless of the state of any
	// other subsystem; the capability flag was fixed at startup.
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health",
		Description: "Check service health and host-metrics capability",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:           "healthy",
				Timestamp:        time.Now().Format(time.RFC3339),
				MetricsAvailable: s.options.Capabilities.HostMetrics,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerPlaybackRoutes()
	s.registerStreamRoutes()
	s.registerTelemetryRoutes()
	s.registerLogRoutes()
	s.registerSSERoutes()

	if s.options.ServiceManager != nil {
		s.registerServiceRoutes()
	}
}
