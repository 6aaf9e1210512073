package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/metrics"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/systemd"
)

// registerServiceRoutes wires lifecycle control for the appliance's
// companion services, the RTSP relay and the player daemon. Only
// allowlisted services are reachable; these routes are registered only
// when a D-Bus connection was established at startup.
func (s *Server) registerServiceRoutes() {
	type serviceInput struct {
		Service string `path:"service" example:"mediamtx" doc:"Managed service name"`
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "service-status",
		Method:      http.MethodGet,
		Path:        "/services/{service}/status",
		Summary:     "Service status",
		Description: "systemd ActiveState of a managed companion service",
		Tags:        []string{"services"},
		Errors:      []int{404, 500},
	}, func(ctx context.Context, input *serviceInput) (*models.ServiceStatusResponse, error) {
		unit, ok := systemd.UnitFor(input.Service)
		if !ok {
			return nil, huma.Error404NotFound("unknown service: " + input.Service)
		}

		status, err := s.options.ServiceManager.ServiceStatus(ctx, unit)
		if err != nil {
			s.logger.Error("Failed to query service status", "service", input.Service, "error", err)
			return nil, huma.Error500InternalServerError("failed to query service status", err)
		}

		return &models.ServiceStatusResponse{
			Body: models.ServiceStatusData{
				Service: input.Service,
				Status:  status,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "service-restart",
		Method:      http.MethodPost,
		Path:        "/services/{service}/restart",
		Summary:     "Restart service",
		Description: "Restart a managed companion service",
		Tags:        []string{"services"},
		Errors:      []int{404},
	}, func(ctx context.Context, input *serviceInput) (*models.ServiceActionResponse, error) {
		unit, ok := systemd.UnitFor(input.Service)
		if !ok {
			return nil, huma.Error404NotFound("unknown service: " + input.Service)
		}

		err := s.options.ServiceManager.RestartService(ctx, unit)
		if err != nil {
			s.logger.Error("Failed to restart service", "service", input.Service, "error", err)
			metrics.RecordServiceRestart(input.Service, "error")
		} else {
			s.logger.Info("Service restart requested", "service", input.Service)
			metrics.RecordServiceRestart(input.Service, "ok")
		}

		return &models.ServiceActionResponse{
			Body: models.ServiceActionData{
				Service: input.Service,
				Action:  "restart",
				Success: err == nil,
			},
		}, nil
	})
}
