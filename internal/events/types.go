package events

// Event type constants for kelindar/event.
const (
	TypeStreamStarted uint32 = iota + 1
	TypePlayback
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// StreamStartedEvent is published when a capture pipeline launch succeeds.
type StreamStartedEvent struct {
	Stream    string `json:"stream" example:"vinyl" doc:"Stream name"`
	PID       int    `json:"pid" example:"2041" doc:"Process group leader of the launched pipeline"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for StreamStartedEvent.
func (e StreamStartedEvent) Type() uint32 { return TypeStreamStarted }

// PlaybackEvent is published when a playback command is dispatched to the
// player daemon.
type PlaybackEvent struct {
	Action    string `json:"action" example:"play" doc:"Playback action: eject, next, previous, play, stop, toggle"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for PlaybackEvent.
func (e PlaybackEvent) Type() uint32 { return TypePlayback }
