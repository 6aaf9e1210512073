package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
)

// registerLogRoutes wires the recent-logs endpoint backed by the in-memory
// ring buffer.
func (s *Server) registerLogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/logs",
		Summary:     "Recent logs",
		Description: "Recent log entries from the in-memory ring buffer, oldest first",
		Tags:        []string{"logs"},
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"100" minimum:"1" maximum:"500" doc:"Maximum number of entries to return"`
	}) (*models.LogsResponse, error) {
		var entries []logging.LogEntry
		if buffer := logging.GetBuffer(); buffer != nil {
			entries = buffer.ReadLast(input.Limit)
		}
		if entries == nil {
			entries = []logging.LogEntry{}
		}
		return &models.LogsResponse{
			Body: models.LogsData{
				Entries: entries,
				Count:   len(entries),
			},
		}, nil
	})
}
