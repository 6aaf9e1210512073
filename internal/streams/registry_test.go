package streams

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/events"
	"github.com/JaniniRami/WebRTC-Vinyl-Client/internal/pipeline"
)

type fakeHandle struct {
	pid   int
	alive bool
}

func (h *fakeHandle) PID() int    { return h.pid }
func (h *fakeHandle) Alive() bool { return h.alive }

type fakeLauncher struct {
	mu         sync.Mutex
	spawns     int
	nextPID    int
	err        error
	lastStages [][]string
}

func (l *fakeLauncher) Launch(stages [][]string) (handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.spawns++
	l.nextPID++
	l.lastStages = stages
	return &fakeHandle{pid: 4000 + l.nextPID, alive: true}, nil
}

func (l *fakeLauncher) spawnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.spawns
}

type fakeScanner struct {
	mu      sync.Mutex
	matches map[string]bool
}

func (s *fakeScanner) FindPipeline(transcoder, marker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches[marker]
}

func newTestRegistry(l launcher, s scanner, bus *events.Bus) *Registry {
	r := NewRegistry(Options{Bus: bus, Config: pipeline.DefaultConfig()})
	r.launcher = l
	r.scanner = s
	return r
}

func TestStartThenStartAgain(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	first := r.Start("vinyl")
	if first.Status != StatusStarted {
		t.Fatalf("Expected started, got %s (%s)", first.Status, first.Message)
	}
	if first.PID == 0 {
		t.Error("Expected a pid for a fresh start")
	}
	if first.Message != "Vinyl stream started" {
		t.Errorf("Expected start message, got %q", first.Message)
	}

	second := r.Start("vinyl")
	if second.Status != StatusAlreadyRunning {
		t.Fatalf("Expected already_running, got %s", second.Status)
	}
	if second.Message != "Vinyl stream is already running" {
		t.Errorf("Expected already running message, got %q", second.Message)
	}
	if second.PID != 0 {
		t.Errorf("Expected no pid on repeat start, got %d", second.PID)
	}
	if strings.Contains(second.Message, strconv.Itoa(first.PID)) {
		t.Errorf("Repeat start message should not carry a pid: %q", second.Message)
	}
	if l.spawnCount() != 1 {
		t.Errorf("Expected exactly one spawn, got %d", l.spawnCount())
	}
}

func TestConcurrentStartsSpawnOnce(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	results := make(chan StartResult, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Start("cd")
		}()
	}
	wg.Wait()
	close(results)

	counts := map[string]int{}
	for res := range results {
		counts[res.Status]++
	}
	if counts[StatusStarted] != 1 || counts[StatusAlreadyRunning] != 1 {
		t.Errorf("Expected one started and one already_running, got %v", counts)
	}
	if l.spawnCount() != 1 {
		t.Errorf("Expected exactly one spawn, got %d", l.spawnCount())
	}
}

func TestStartDetectsUntrackedPipeline(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScanner{matches: map[string]bool{"/vinyl": true}}
	r := newTestRegistry(l, s, nil)

	res := r.Start("vinyl")
	if res.Status != StatusAlreadyRunning {
		t.Fatalf("Expected already_running, got %s", res.Status)
	}
	if l.spawnCount() != 0 {
		t.Errorf("Expected no spawn, got %d", l.spawnCount())
	}
	if r.streams["vinyl"].handle != nil {
		t.Error("Expected no handle recorded for untracked pipeline")
	}
}

func TestStartSpawnFailure(t *testing.T) {
	l := &fakeLauncher{err: errors.New(`exec: "ffmpeg": executable file not found in $PATH`)}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	res := r.Start("vinyl")
	if res.Status != StatusError {
		t.Fatalf("Expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "ffmpeg") {
		t.Errorf("Expected launch failure message, got %q", res.Message)
	}
	if r.streams["vinyl"].handle != nil {
		t.Error("Expected no handle retained after spawn failure")
	}

	// A later start must not be blocked by the failed attempt.
	l.mu.Lock()
	l.err = nil
	l.mu.Unlock()
	if res := r.Start("vinyl"); res.Status != StatusStarted {
		t.Errorf("Expected started after failure cleared, got %s", res.Status)
	}
}

func TestStartUnknownStream(t *testing.T) {
	r := newTestRegistry(&fakeLauncher{}, &fakeScanner{}, nil)

	res := r.Start("tape")
	if res.Status != StatusError {
		t.Fatalf("Expected error status, got %s", res.Status)
	}
	if !strings.Contains(res.Message, "unknown stream") {
		t.Errorf("Expected unknown stream message, got %q", res.Message)
	}
}

func TestStartAfterPipelineExit(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	first := r.Start("cd")
	if first.Status != StatusStarted {
		t.Fatalf("Expected started, got %s", first.Status)
	}

	// Pipeline exits between requests; liveness is re-derived, not cached.
	r.streams["cd"].handle.(*fakeHandle).alive = false

	second := r.Start("cd")
	if second.Status != StatusStarted {
		t.Fatalf("Expected restart after exit, got %s", second.Status)
	}
	if second.PID == first.PID {
		t.Errorf("Expected a fresh pid, got %d twice", second.PID)
	}
	if l.spawnCount() != 2 {
		t.Errorf("Expected two spawns, got %d", l.spawnCount())
	}
}

// gatedLauncher blocks vinyl launches until the gate closes so the test can
// hold one stream's critical section open.
type gatedLauncher struct {
	fakeLauncher
	gate    chan struct{}
	entered chan string
}

func (l *gatedLauncher) Launch(stages [][]string) (handle, error) {
	target := stages[len(stages)-1]
	if strings.HasSuffix(target[len(target)-1], "/vinyl") {
		l.entered <- "vinyl"
		<-l.gate
	}
	return l.fakeLauncher.Launch(stages)
}

func TestDifferentStreamsStartConcurrently(t *testing.T) {
	l := &gatedLauncher{gate: make(chan struct{}), entered: make(chan string, 1)}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	vinylDone := make(chan StartResult, 1)
	go func() { vinylDone <- r.Start("vinyl") }()

	// Wait until the vinyl start is inside its launch, holding the vinyl lock.
	<-l.entered

	cdDone := make(chan StartResult, 1)
	go func() { cdDone <- r.Start("cd") }()

	select {
	case res := <-cdDone:
		if res.Status != StatusStarted {
			t.Errorf("Expected cd started, got %s", res.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cd start blocked behind vinyl start")
	}

	close(l.gate)
	if res := <-vinylDone; res.Status != StatusStarted {
		t.Errorf("Expected vinyl started, got %s", res.Status)
	}
}

func TestStartPublishesEvent(t *testing.T) {
	bus := events.New()
	received := make(chan events.StreamStartedEvent, 1)
	unsub := bus.Subscribe(func(e events.StreamStartedEvent) { received <- e })
	defer unsub()

	r := newTestRegistry(&fakeLauncher{}, &fakeScanner{}, bus)
	res := r.Start("vinyl")
	if res.Status != StatusStarted {
		t.Fatalf("Expected started, got %s", res.Status)
	}

	select {
	case e := <-received:
		if e.Stream != "vinyl" {
			t.Errorf("Expected stream vinyl, got %s", e.Stream)
		}
		if e.PID != res.PID {
			t.Errorf("Expected pid %d, got %d", res.PID, e.PID)
		}
		if e.Timestamp == "" {
			t.Error("Expected a timestamp on the event")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected a stream started event")
	}
}

func TestStatusReflectsLiveness(t *testing.T) {
	l := &fakeLauncher{}
	s := &fakeScanner{matches: map[string]bool{}}
	r := newTestRegistry(l, s, nil)

	statuses := r.Status()
	if len(statuses) != 2 {
		t.Fatalf("Expected 2 streams, got %d", len(statuses))
	}
	if statuses[0].Name != "vinyl" || statuses[1].Name != "cd" {
		t.Errorf("Unexpected stream order: %+v", statuses)
	}
	for _, st := range statuses {
		if st.Running {
			t.Errorf("Expected %s stopped, got running", st.Name)
		}
	}

	res := r.Start("vinyl")
	statuses = r.Status()
	if !statuses[0].Running || statuses[0].PID != res.PID {
		t.Errorf("Expected vinyl running with pid %d, got %+v", res.PID, statuses[0])
	}

	// Pipeline exits; status must re-derive, not cache.
	r.streams["vinyl"].handle.(*fakeHandle).alive = false
	statuses = r.Status()
	if statuses[0].Running {
		t.Error("Expected vinyl stopped after exit")
	}

	// An untracked cd pipeline shows as running without a pid.
	s.mu.Lock()
	s.matches["/cd"] = true
	s.mu.Unlock()
	statuses = r.Status()
	if !statuses[1].Running {
		t.Error("Expected cd running from table scan")
	}
	if statuses[1].PID != 0 {
		t.Errorf("Expected no pid for untracked cd, got %d", statuses[1].PID)
	}
}

func TestUpdateConfigAppliesToNextStart(t *testing.T) {
	l := &fakeLauncher{}
	r := newTestRegistry(l, &fakeScanner{}, nil)

	cfg := pipeline.DefaultConfig()
	cfg.RTSPBase = "rtsp://relay:9554"
	r.UpdateConfig(cfg)

	if res := r.Start("vinyl"); res.Status != StatusStarted {
		t.Fatalf("Expected started, got %s", res.Status)
	}

	l.mu.Lock()
	stages := l.lastStages
	l.mu.Unlock()
	last := stages[0][len(stages[0])-1]
	if last != "rtsp://relay:9554/vinyl" {
		t.Errorf("Expected updated relay URL, got %s", last)
	}
}
