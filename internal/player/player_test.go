package player

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/command"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
)

// fakeExecutor records dispatched commands and serves canned output.
type fakeExecutor struct {
	runs     []string
	runOK    bool
	captured map[string][]string
}

func (f *fakeExecutor) Run(argv []string) bool {
	f.runs = append(f.runs, strings.Join(argv, " "))
	return f.runOK
}

func (f *fakeExecutor) RunCaptured(argv []string) []string {
	if out, ok := f.captured[strings.Join(argv, " ")]; ok {
		return out
	}
	return []string{}
}

func (f *fakeExecutor) RunWithTimeout(ctx context.Context, argv []string, timeout time.Duration) (string, error) {
	return "", errors.New("not supported")
}

func (f *fakeExecutor) SpawnDetached(stages [][]string) (*command.Handle, error) {
	return nil, errors.New("not supported")
}

func TestActionsDispatchExpectedCommands(t *testing.T) {
	tests := []struct {
		name    string
		action  func(*Player) bool
		wantCmd string
	}{
		{"eject", (*Player).Eject, "eject"},
		{"next", (*Player).Next, "mpc next"},
		{"previous", (*Player).Previous, "mpc prev"},
		{"play", (*Player).Play, "mpc play"},
		{"stop", (*Player).Stop, "mpc stop"},
		{"toggle", (*Player).Toggle, "mpc toggle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{runOK: true}
			p := New(exec, nil)

			if !tt.action(p) {
				t.Errorf("Expected %s to report success", tt.name)
			}
			if len(exec.runs) != 1 || exec.runs[0] != tt.wantCmd {
				t.Errorf("Expected command %q, got %v", tt.wantCmd, exec.runs)
			}
		})
	}
}

func TestActionReportsCommandFailure(t *testing.T) {
	exec := &fakeExecutor{runOK: false}
	p := New(exec, nil)

	if p.Play() {
		t.Error("Expected play to report failure when the command fails")
	}
	// The command is still dispatched exactly once.
	if len(exec.runs) != 1 {
		t.Errorf("Expected one dispatch, got %d", len(exec.runs))
	}
}

func TestPlaylist(t *testing.T) {
	exec := &fakeExecutor{
		runOK: true,
		captured: map[string][]string{
			"mpc playlist": {"Blue Train", "Giant Steps", "Naima"},
		},
	}
	p := New(exec, nil)

	tracks := p.Playlist()
	if len(tracks) != 3 {
		t.Fatalf("Expected 3 tracks, got %d", len(tracks))
	}
	if tracks[0] != "Blue Train" {
		t.Errorf("Expected first track Blue Train, got %s", tracks[0])
	}
}

func TestPlaylistEmptyWhenDaemonUnreachable(t *testing.T) {
	p := New(&fakeExecutor{}, nil)

	tracks := p.Playlist()
	if tracks == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(tracks) != 0 {
		t.Errorf("Expected no tracks, got %v", tracks)
	}
}

func TestActionPublishesPlaybackEvent(t *testing.T) {
	bus := events.New()
	received := make(chan events.PlaybackEvent, 1)
	unsub := bus.Subscribe(func(e events.PlaybackEvent) { received <- e })
	defer unsub()

	p := New(&fakeExecutor{runOK: true}, bus)
	p.Eject()

	select {
	case e := <-received:
		if e.Action != "eject" {
			t.Errorf("Expected action eject, got %s", e.Action)
		}
		if e.Timestamp == "" {
			t.Error("Expected a timestamp on the event")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a playback event")
	}
}

func TestFailedActionStillPublishesEvent(t *testing.T) {
	bus := events.New()
	received := make(chan events.PlaybackEvent, 1)
	unsub := bus.Subscribe(func(e events.PlaybackEvent) { received <- e })
	defer unsub()

	p := New(&fakeExecutor{runOK: false}, bus)
	p.Stop()

	select {
	case e := <-received:
		if e.Action != "stop" {
			t.Errorf("Expected action stop, got %s", e.Action)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a playback event even for a failed command")
	}
}
