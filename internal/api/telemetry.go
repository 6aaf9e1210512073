package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/metrics"
)

// registerTelemetryRoutes wires the host telemetry endpoints. Both are
// best-effort: sources that cannot be read are absent from the response
// and never produce an error status.
func (s *Server) registerTelemetryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-temperature",
		Method:      http.MethodGet,
		Path:        "/temperature",
		Summary:     "Temperatures",
		Description: "CPU and GPU temperature only; cheap enough for frequent polling",
		Tags:        []string{"telemetry"},
	}, func(ctx context.Context, input *struct{}) (*models.TemperatureResponse, error) {
		return &models.TemperatureResponse{
			Body: s.options.Collector.TemperatureOnly(ctx),
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-system",
		Method:      http.MethodGet,
		Path:        "/system",
		Summary:     "System snapshot",
		Description: "Full host telemetry snapshot; every field is optional and absent when its source cannot be read",
		Tags:        []string{"telemetry"},
	}, func(ctx context.Context, input *struct{}) (*models.SystemResponse, error) {
		start := time.Now()
		snap := s.options.Collector.Collect(ctx)
		metrics.ObserveSnapshotDuration(time.Since(start).Seconds())
		return &models.SystemResponse{Body: snap}, nil
	})
}
