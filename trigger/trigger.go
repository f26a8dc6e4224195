package trigger

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"ptt-terminal/cue_playback"
	"ptt-terminal/ipc_signals"
)

// buttonDebounceWait disambiguates a button press meant as "begin" from
// one meant as "stop": the press is re-checked after this window and only
// a persisting signal begins recording.
const buttonDebounceWait = 250 * time.Millisecond

type gateImpl struct {
	signals       ipc_signals.Interface
	player        cue_playback.Interface
	listenSound   string
	checkInterval time.Duration
	debounceWait  time.Duration
	calibrate     func(ctx context.Context)

	listenTriggered atomic.Bool
	shouldAdjust    atomic.Bool
}

type Config struct {
	Signals ipc_signals.Interface

	// Player and ListenSound configure the audible cue; both optional.
	Player      cue_playback.Interface
	ListenSound string

	CheckInterval time.Duration

	// Calibrate is invoked inline when an ambient-noise adjustment is
	// requested while waiting.
	Calibrate func(ctx context.Context)

	// DebounceWait overrides the button debounce window in tests.
	DebounceWait time.Duration
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Signals == nil {
		return nil, fmt.Errorf("signals is nil")
	}

	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("checkInterval must be positive")
	}

	debounceWait := cfg.DebounceWait
	if debounceWait == 0 {
		debounceWait = buttonDebounceWait
	}

	return &gateImpl{
		signals:       cfg.Signals,
		player:        cfg.Player,
		listenSound:   cfg.ListenSound,
		checkInterval: cfg.CheckInterval,
		debounceWait:  debounceWait,
		calibrate:     cfg.Calibrate,
	}, nil
}

func (g *gateImpl) Wait(ctx context.Context) (bool, error) {
	for {
		if ctx.Err() != nil || g.signals.Consume(ipc_signals.SignalStop) {
			return false, nil
		}

		if g.listenSignaled() {
			break
		}

		if g.signals.Consume(ipc_signals.SignalAdjustAmbientNoise) || g.shouldAdjust.Load() {
			g.shouldAdjust.Store(false)
			if g.calibrate != nil {
				g.calibrate(ctx)
			}
		}

		select {
		case <-ctx.Done():
			return false, nil
		case <-time.After(g.checkInterval):
		}
	}

	g.listenTriggered.Store(false)
	g.playCue()

	return true, nil
}

func (g *gateImpl) TriggerListen() {
	log.Printf("listen triggered from external source")
	g.listenTriggered.Store(true)
}

func (g *gateImpl) TriggerAmbientNoiseAdjustment() {
	log.Printf("ambient noise adjustment requested from external source")
	g.shouldAdjust.Store(true)
}

func (g *gateImpl) listenSignaled() bool {
	if g.signals.Consume(ipc_signals.SignalStartListening) || g.listenTriggered.Load() {
		return true
	}

	// The button signal doubles as "stop". On a first sighting, give
	// other processes time to consume it; if it persists it was meant to
	// begin recording.
	if g.signals.IsSet(ipc_signals.SignalButtonPress) {
		time.Sleep(g.debounceWait)

		if g.signals.Consume(ipc_signals.SignalButtonPress) {
			log.Printf("button pressed, listen signal not needed")

			return true
		}
	}

	return false
}

// playCue audibly confirms the trigger. Playback problems are logged and
// never delay recording more than the cue itself.
func (g *gateImpl) playCue() {
	if g.player == nil || g.listenSound == "" {
		return
	}

	if err := g.player.Play(g.listenSound); err != nil {
		log.Printf("warning: could not play listen sound: %v", err)
	}
}
