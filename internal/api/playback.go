package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/api/models"
)

// registerPlaybackRoutes wires the playback pass-through endpoints. Every
// endpoint acknowledges with a fixed status word and HTTP 200 whether or
// not the underlying command succeeded; command failures are visible only
// in logs and metrics. The frontend treats these as best-effort buttons.
func (s *Server) registerPlaybackRoutes() {
	type action struct {
		operationID string
		path        string
		summary     string
		status      string
		run         func() bool
	}

	actions := []action{
		{"eject-disc", "/eject", "Eject", "ejected", s.options.Player.Eject},
		{"next-track", "/next", "Next track", "skipped", s.options.Player.Next},
		{"previous-track", "/prev", "Previous track", "previous", s.options.Player.Previous},
		{"play", "/play", "Play", "playing", s.options.Player.Play},
		{"stop", "/stop", "Stop", "stopped", s.options.Player.Stop},
		{"pause", "/pause", "Toggle pause", "toggled", s.options.Player.Toggle},
	}

	for _, a := range actions {
		huma.Register(s.api, huma.Operation{
			OperationID: a.operationID,
			Method:      http.MethodPost,
			Path:        a.path,
			Summary:     a.summary,
			Description: "Fire-and-forget playback control; always acknowledges with a fixed status word",
			Tags:        []string{"playback"},
		}, func(ctx context.Context, input *struct{}) (*models.PlaybackResponse, error) {
			a.run()
			return &models.PlaybackResponse{
				Body: models.PlaybackData{Status: a.status},
			}, nil
		})
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "list-tracks",
		Method:      http.MethodGet,
		Path:        "/tracks",
		Summary:     "Playlist",
		Description: "Current playlist as reported by the player daemon",
		Tags:        []string{"playback"},
	}, func(ctx context.Context, input *struct{}) (*models.TracksResponse, error) {
		tracks := s.options.Player.Playlist()
		if tracks == nil {
			tracks = []string{}
		}
		return &models.TracksResponse{
			Body: models.TracksData{Tracks: tracks},
		}, nil
	})
}
