package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memSignals is an in-memory signal channel for tests.
type memSignals struct {
	mu  sync.Mutex
	set map[string]bool
}

func newMemSignals() *memSignals {
	return &memSignals{set: make(map[string]bool)}
}

func (m *memSignals) raise(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set[name] = true
}

func (m *memSignals) clear(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.set, name)
}

func (m *memSignals) IsSet(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set[name]
}

func (m *memSignals) Consume(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.set[name] {
		delete(m.set, name)
		return true
	}
	return false
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (f *fakePlayer) Play(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, path)
	return f.err
}

func (f *fakePlayer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

func newTestGate(t *testing.T, cfg *Config) Interface {
	t.Helper()

	if cfg.CheckInterval == 0 {
		cfg.CheckInterval = 5 * time.Millisecond
	}
	if cfg.DebounceWait == 0 {
		cfg.DebounceWait = 10 * time.Millisecond
	}

	gate, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return gate
}

func waitResult(t *testing.T, gate Interface, ctx context.Context) bool {
	t.Helper()

	resultC := make(chan bool, 1)
	go func() {
		triggered, err := gate.Wait(ctx)
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
		resultC <- triggered
	}()

	select {
	case triggered := <-resultC:
		return triggered
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return")
		return false
	}
}

func TestWait_StartListeningSignal(t *testing.T) {
	signals := newMemSignals()
	player := &fakePlayer{}

	gate := newTestGate(t, &Config{
		Signals:     signals,
		Player:      player,
		ListenSound: "snd/start_listening.wav",
	})

	signals.raise("startListening")

	if !waitResult(t, gate, context.Background()) {
		t.Fatal("expected trigger")
	}

	if signals.IsSet("startListening") {
		t.Error("expected the signal to be consumed")
	}

	if player.count() != 1 {
		t.Errorf("expected one cue playback, got %d", player.count())
	}
}

func TestWait_ProgrammaticTrigger(t *testing.T) {
	signals := newMemSignals()

	gate := newTestGate(t, &Config{Signals: signals})

	go func() {
		time.Sleep(20 * time.Millisecond)
		gate.TriggerListen()
	}()

	if !waitResult(t, gate, context.Background()) {
		t.Fatal("expected trigger")
	}
}

func TestWait_CancelledWithoutCue(t *testing.T) {
	signals := newMemSignals()
	player := &fakePlayer{}

	gate := newTestGate(t, &Config{
		Signals:     signals,
		Player:      player,
		ListenSound: "snd/start_listening.wav",
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if waitResult(t, gate, ctx) {
		t.Fatal("expected stop, not trigger")
	}

	if player.count() != 0 {
		t.Error("stop must not play the cue sound")
	}
}

func TestWait_StopSignal(t *testing.T) {
	signals := newMemSignals()

	gate := newTestGate(t, &Config{Signals: signals})

	signals.raise("stop")

	if waitResult(t, gate, context.Background()) {
		t.Fatal("expected stop, not trigger")
	}
}

func TestWait_ButtonPressPersistingTriggers(t *testing.T) {
	signals := newMemSignals()

	gate := newTestGate(t, &Config{Signals: signals})

	// the press is left in place through the debounce window
	signals.raise("buttonPress")

	if !waitResult(t, gate, context.Background()) {
		t.Fatal("expected persisting button press to trigger")
	}

	if signals.IsSet("buttonPress") {
		t.Error("expected the press to be consumed")
	}
}

func TestWait_ButtonPressConsumedElsewhereDoesNotTrigger(t *testing.T) {
	signals := newMemSignals()

	gate := newTestGate(t, &Config{
		Signals:      signals,
		DebounceWait: 50 * time.Millisecond,
	})

	signals.raise("buttonPress")

	// another process consumes the press during the debounce window,
	// meaning it was a "stop" for someone else
	go func() {
		time.Sleep(10 * time.Millisecond)
		signals.clear("buttonPress")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if waitResult(t, gate, ctx) {
		t.Fatal("expected no trigger from a consumed button press")
	}
}

func TestWait_AmbientAdjustmentServicedInline(t *testing.T) {
	signals := newMemSignals()

	var mu sync.Mutex
	calibrations := 0

	gate := newTestGate(t, &Config{
		Signals: signals,
		Calibrate: func(ctx context.Context) {
			mu.Lock()
			calibrations++
			mu.Unlock()
		},
	})

	signals.raise("adjustAmbientNoise")

	go func() {
		time.Sleep(50 * time.Millisecond)
		gate.TriggerListen()
	}()

	if !waitResult(t, gate, context.Background()) {
		t.Fatal("expected trigger")
	}

	mu.Lock()
	defer mu.Unlock()
	if calibrations != 1 {
		t.Errorf("expected one inline calibration, got %d", calibrations)
	}
}

func TestWait_CuePlaybackFailureIsNotFatal(t *testing.T) {
	signals := newMemSignals()
	player := &fakePlayer{err: errors.New("playback failed")}

	gate := newTestGate(t, &Config{
		Signals:     signals,
		Player:      player,
		ListenSound: "snd/start_listening.wav",
	})

	signals.raise("startListening")

	if !waitResult(t, gate, context.Background()) {
		t.Fatal("expected trigger despite cue failure")
	}
}
