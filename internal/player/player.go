// Package player drives the playback daemon and the disc tray through
// their command-line clients. Commands are fire-and-forget: the HTTP layer
// reports a fixed status word per action regardless of process outcome, so
// failures surface only in logs and metrics.
package player

import (
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/logging"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/metrics"
)

// Player wraps the mpc and eject binaries.
type Player struct {
	exec   command.Executor
	bus    *events.Bus
	logger logging.Logger
}

// New creates a player dispatching through the given executor.
func New(exec command.Executor, bus *events.Bus) *Player {
	return &Player{
		exec:   exec,
		bus:    bus,
		logger: logging.GetLogger("player"),
	}
}

// Eject opens the disc tray.
func (p *Player) Eject() bool {
	return p.dispatch("eject", []string{"eject"})
}

// Next skips to the next track.
func (p *Player) Next() bool {
	return p.dispatch("next", []string{"mpc", "next"})
}

// Previous returns to the previous track.
func (p *Player) Previous() bool {
	return p.dispatch("previous", []string{"mpc", "prev"})
}

// Play starts playback of the current queue.
func (p *Player) Play() bool {
	return p.dispatch("play", []string{"mpc", "play"})
}

// Stop halts playback.
func (p *Player) Stop() bool {
	return p.dispatch("stop", []string{"mpc", "stop"})
}

// Toggle flips between playing and paused.
func (p *Player) Toggle() bool {
	return p.dispatch("toggle", []string{"mpc", "toggle"})
}

// Playlist returns the queued tracks as reported by the player daemon, one
// entry per track. Empty when the daemon is unreachable.
func (p *Player) Playlist() []string {
	return p.exec.RunCaptured([]string{"mpc", "playlist"})
}

func (p *Player) dispatch(action string, argv []string) bool {
	ok := p.exec.Run(argv)
	metrics.RecordPlaybackCommand(action, ok)
	if !ok {
		p.logger.Warn("Playback command failed", "action", action)
	}

	if p.bus != nil {
		p.bus.Publish(events.PlaybackEvent{
			Action:    action,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return ok
}
