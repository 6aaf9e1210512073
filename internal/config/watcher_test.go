package config

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type relaySettings struct {
	RTSPBase string `toml:"rtsp_base"`
	Bitrate  int    `toml:"bitrate"`
}

func loadRelaySettings(path string) (relaySettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return relaySettings{}, err
	}
	var cfg relaySettings
	err = toml.Unmarshal(data, &cfg)
	return cfg, err
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestConfigWatcher_BasicReload(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("rtsp_base = \"rtsp://localhost:8554\"\nbitrate = 64\n")
	tmpFile.Close()

	received := make(chan relaySettings, 1)
	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg relaySettings) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(tmpFile.Name(), []byte("rtsp_base = \"rtsp://relay:8554\"\nbitrate = 96\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case cfg := <-received:
		if cfg.RTSPBase != "rtsp://relay:8554" || cfg.Bitrate != 96 {
			t.Errorf("got %+v, want rtsp_base=rtsp://relay:8554, bitrate=96", cfg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for config reload")
	}
}

func TestConfigWatcher_FreshConfigEachChange(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 64\n")
	tmpFile.Close()

	var loadCount atomic.Int32
	loader := func(path string) (relaySettings, error) {
		loadCount.Add(1)
		return loadRelaySettings(path)
	}

	received := make(chan relaySettings, 10)
	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loader,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
	)

	watcher.OnReload(func(cfg relaySettings) {
		received <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 96\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	<-received

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 128\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	cfg := <-received

	if cfg.Bitrate != 128 {
		t.Errorf("expected bitrate=128, got %d", cfg.Bitrate)
	}
	if got := loadCount.Load(); got < 2 {
		t.Errorf("expected at least 2 loads, got %d", got)
	}
}

func TestConfigWatcher_MultipleHandlers(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 64\n")
	tmpFile.Close()

	var count atomic.Int32
	var configs []relaySettings
	var mu sync.Mutex

	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
	)

	for range 3 {
		watcher.OnReload(func(cfg relaySettings) {
			count.Add(1)
			mu.Lock()
			configs = append(configs, cfg)
			mu.Unlock()
		})
	}

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 96\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 3 {
		t.Errorf("expected 3 handlers called, got %d", got)
	}

	// All handlers see the same snapshot
	mu.Lock()
	defer mu.Unlock()
	for i, cfg := range configs {
		if cfg.Bitrate != 96 {
			t.Errorf("handler %d got wrong config: %+v", i, cfg)
		}
	}
}

func TestConfigWatcher_Unsubscribe(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 64\n")
	tmpFile.Close()

	var count1, count2 atomic.Int32
	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ relaySettings) {
		count1.Add(1)
	})
	unsub2 := watcher.OnReload(func(_ relaySettings) {
		count2.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 96\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	unsub2()

	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 128\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count1.Load(); got != 2 {
		t.Errorf("handler1: expected 2 calls, got %d", got)
	}
	if got := count2.Load(); got != 1 {
		t.Errorf("handler2: expected 1 call, got %d", got)
	}
}

func TestConfigWatcher_ErrorHandler(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 64\n")
	tmpFile.Close()

	errorReceived := make(chan error, 1)
	configReceived := make(chan relaySettings, 1)

	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
		WithErrorHandler[relaySettings](func(err error) {
			errorReceived <- err
		}),
	)

	watcher.OnReload(func(cfg relaySettings) {
		configReceived <- cfg
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	if writeErr := os.WriteFile(tmpFile.Name(), []byte("invalid toml [[["), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	select {
	case <-errorReceived:
		// Expected
	case <-configReceived:
		t.Fatal("config handler should not be called on error")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error handler")
	}
}

func TestConfigWatcher_Debounce(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 0\n")
	tmpFile.Close()

	var count atomic.Int32
	var lastValue atomic.Int32

	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](200*time.Millisecond),
	)

	watcher.OnReload(func(cfg relaySettings) {
		count.Add(1)
		lastValue.Store(int32(cfg.Bitrate))
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			t.Errorf("watcher.Stop failed: %v", stopErr)
		}
	}()

	// Rapid changes within the debounce window collapse to one reload
	time.Sleep(100 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		if writeErr := os.WriteFile(tmpFile.Name(), fmt.Appendf(nil, "bitrate = %d\n", i), 0o644); writeErr != nil {
			t.Fatal(writeErr)
		}
		time.Sleep(50 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("expected 1 debounced call, got %d", got)
	}
	if got := lastValue.Load(); got != 5 {
		t.Errorf("expected final value 5, got %d", got)
	}
}

func TestConfigWatcher_Stop(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "watcher_*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("bitrate = 64\n")
	tmpFile.Close()

	var count atomic.Int32
	watcher := NewConfigWatcher(
		tmpFile.Name(),
		loadRelaySettings,
		newTestLogger(),
		WithDebounce[relaySettings](50*time.Millisecond),
	)

	watcher.OnReload(func(_ relaySettings) {
		count.Add(1)
	})

	if startErr := watcher.Start(); startErr != nil {
		t.Fatal(startErr)
	}

	time.Sleep(100 * time.Millisecond)

	if stopErr := watcher.Stop(); stopErr != nil {
		t.Fatal(stopErr)
	}

	// Changes after stop should not trigger handler
	if writeErr := os.WriteFile(tmpFile.Name(), []byte("bitrate = 999\n"), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}
	time.Sleep(200 * time.Millisecond)

	if got := count.Load(); got != 0 {
		t.Errorf("expected 0 calls after stop, got %d", got)
	}
}
