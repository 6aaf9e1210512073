package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan StreamStartedEvent, 1)

	unsub := bus.Subscribe(func(e StreamStartedEvent) {
		received <- e
	})
	defer unsub()

	event := StreamStartedEvent{
		Stream:    "vinyl",
		PID:       2041,
		Timestamp: "2025-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.Stream != event.Stream {
		t.Errorf("Expected stream %s, got %s", event.Stream, got.Stream)
	}
	if got.PID != event.PID {
		t.Errorf("Expected pid %d, got %d", event.PID, got.PID)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan PlaybackEvent, 1)
	received2 := make(chan PlaybackEvent, 1)

	unsub1 := bus.Subscribe(func(e PlaybackEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e PlaybackEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(PlaybackEvent{Action: "play"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan PlaybackEvent, 1)

	unsub := bus.Subscribe(func(e PlaybackEvent) {
		received <- e
	})

	bus.Publish(PlaybackEvent{Action: "eject"})
	<-received

	unsub()

	bus.Publish(PlaybackEvent{Action: "next"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	streamReceived := make(chan bool, 1)
	playbackReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ StreamStartedEvent) {
		streamReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ PlaybackEvent) {
		playbackReceived <- true
	})
	defer unsub2()

	bus.Publish(StreamStartedEvent{Stream: "cd", PID: 1001})
	<-streamReceived

	select {
	case <-playbackReceived:
		t.Fatal("Playback subscriber should NOT have received StreamStartedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	bus.Publish(PlaybackEvent{Action: "stop"})
	<-playbackReceived

	select {
	case <-streamReceived:
		t.Fatal("Stream subscriber should NOT have received PlaybackEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ PlaybackEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(PlaybackEvent{
					Action:    "toggle",
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	// Read all expected events
	for range expected {
		<-receivedCh
	}
}

func TestBus_UnknownHandlerIsNoop(t *testing.T) {
	bus := New()

	unsub := bus.Subscribe(func(s string) {})
	if unsub == nil {
		t.Fatal("Expected a no-op unsubscribe function")
	}
	unsub()
}

func TestEventJSONSerialization(t *testing.T) {
	tests := []struct {
		name     string
		event    any
		wantKeys []string
	}{
		{
			"StreamStartedEvent",
			StreamStartedEvent{
				Stream:    "vinyl",
				PID:       2041,
				Timestamp: "2025-01-27T10:30:00Z",
			},
			[]string{"stream", "pid", "timestamp"},
		},
		{
			"PlaybackEvent",
			PlaybackEvent{
				Action:    "eject",
				Timestamp: "2025-01-27T10:30:00Z",
			},
			[]string{"action", "timestamp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}

			var result map[string]any
			if unmarshalErr := json.Unmarshal(data, &result); unmarshalErr != nil {
				t.Fatalf("Failed to unmarshal: %v", unmarshalErr)
			}

			for _, key := range tt.wantKeys {
				if _, ok := result[key]; !ok {
					t.Errorf("Expected key %q in %s", key, data)
				}
			}
		})
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 10)

	unsub := SubscribeToChannel[StreamStartedEvent](bus, ch)
	defer unsub()

	event := StreamStartedEvent{
		Stream: "vinyl",
		PID:    2041,
	}
	bus.Publish(event)

	received := <-ch
	started, ok := received.(StreamStartedEvent)
	if !ok {
		t.Fatalf("Expected StreamStartedEvent, got %T", received)
	}
	if started.Stream != event.Stream {
		t.Errorf("Expected stream %s, got %s", event.Stream, started.Stream)
	}
}

func TestSubscribeToChannel_NonBlocking(_ *testing.T) {
	bus := New()
	ch := make(chan any) // No buffer

	unsub := SubscribeToChannel[PlaybackEvent](bus, ch)
	defer unsub()

	done := make(chan bool, 1)
	go func() {
		bus.Publish(PlaybackEvent{Action: "play"})
		done <- true
	}()

	<-done // Should complete without blocking
}
