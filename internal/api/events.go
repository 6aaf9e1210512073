package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
)

// registerSSERoutes wires the server-sent events stream. The frontend
// listens here to refresh its view when a pipeline starts or a playback
// command is dispatched, instead of polling.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Event stream",
		Description: "Real-time stream lifecycle and playback events via Server-Sent Events",
		Tags:        []string{"events"},
	}, map[string]any{
		"stream-started": events.StreamStartedEvent{},
		"playback":       events.PlaybackEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.StreamStartedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.PlaybackEvent](s.options.EventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
