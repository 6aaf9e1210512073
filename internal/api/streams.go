package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
)

// registerStreamRoutes wires the stream supervision endpoints. Start
// endpoints always answer HTTP 200; the outcome is in the status field,
// including launch failures. already_running is a normal outcome, not an
// error.
func (s *Server) registerStreamRoutes() {
	starts := []struct {
		operationID string
		path        string
		summary     string
		stream      string
	}{
		{"start-vinyl", "/start_vinyl", "Start vinyl stream", "vinyl"},
		{"start-cd", "/start_cd", "Start CD stream", "cd"},
	}

	for _, st := range starts {
		huma.Register(s.api, huma.Operation{
			OperationID: st.operationID,
			Method:      http.MethodPost,
			Path:        st.path,
			Summary:     st.summary,
			Description: "Launch the capture pipeline unless one is already live, in this server's bookkeeping or in the host process table",
			Tags:        []string{"streams"},
		}, func(ctx context.Context, input *struct{}) (*models.StreamStartResponse, error) {
			result := s.options.Supervisor.Start(st.stream)
			return &models.StreamStartResponse{
				Body: models.StreamStartData{
					Status:  result.Status,
					Message: result.Message,
					PID:     result.PID,
				},
			}, nil
		})
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list-streams",
		Method:      http.MethodGet,
		Path:        "/streams",
		Summary:     "Stream status",
		Description: "Liveness of all known streams, re-derived from process state on every request",
		Tags:        []string{"streams"},
	}, func(ctx context.Context, input *struct{}) (*models.StreamListResponse, error) {
		statuses := s.options.Supervisor.Status()
		return &models.StreamListResponse{
			Body: models.StreamListData{
				Streams: statuses,
				Count:   len(statuses),
			},
		}, nil
	})
}
