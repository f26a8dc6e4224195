package endpointing

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"ptt-terminal/ipc_signals"
)

const (
	// Accumulated evidence of ongoing speech is clamped to this range.
	maxNoise = 25.0
	minNoise = 0.0

	noiseRaisePerSec = 200.0
	noiseDropPerSec  = 100.0

	// thresholdDamping controls how quickly the energy threshold tracks
	// quiet chunks; the effective damping is thresholdDamping^secPerBuffer.
	thresholdDamping = 0.15

	defaultEnergyThreshold = 300.0
)

type endpointerImpl struct {
	energyRatio                 float64
	multiplier                  float64
	minLoudSec                  float64
	minSilenceAtEnd             float64
	recordingTimeout            float64
	recordingTimeoutWithSilence float64

	signals ipc_signals.Interface

	// energyThreshold is the ambient-noise memory; it persists across
	// phrases within a session.
	energyThreshold float64

	stopRequested atomic.Bool
}

type Config struct {
	EnergyRatio                 float64
	Multiplier                  float64
	MinLoudSec                  float64
	MinSilenceAtEnd             float64
	RecordingTimeout            float64
	RecordingTimeoutWithSilence float64

	// InitialEnergyThreshold seeds the ambient-noise memory; zero selects
	// the default.
	InitialEnergyThreshold float64

	// Signals, when set, lets a button press end the phrase immediately.
	Signals ipc_signals.Interface
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.EnergyRatio <= 0 {
		return nil, fmt.Errorf("energyRatio must be positive")
	}

	if cfg.Multiplier <= 0 {
		return nil, fmt.Errorf("multiplier must be positive")
	}

	if cfg.RecordingTimeout <= 0 || cfg.RecordingTimeoutWithSilence <= 0 {
		return nil, fmt.Errorf("recording timeouts must be positive")
	}

	threshold := cfg.InitialEnergyThreshold
	if threshold == 0 {
		threshold = defaultEnergyThreshold
	}

	return &endpointerImpl{
		energyRatio:                 cfg.EnergyRatio,
		multiplier:                  cfg.Multiplier,
		minLoudSec:                  cfg.MinLoudSec,
		minSilenceAtEnd:             cfg.MinSilenceAtEnd,
		recordingTimeout:            cfg.RecordingTimeout,
		recordingTimeoutWithSilence: cfg.RecordingTimeoutWithSilence,
		signals:                     cfg.Signals,
		energyThreshold:             threshold,
	}, nil
}

// Record waits for a period of silence following speech and then returns
// the audio. If silence is never detected the phrase is returned after the
// recording timeout.
func (e *endpointerImpl) Record(ctx context.Context, source ChunkSource, preRoll PreRoll, sink StreamSink) (*Phrase, error) {
	secPerBuffer := float64(source.ChunkSize()) / float64(source.SampleRate())
	chunkBytes := source.ChunkSize() * source.SampleWidth()

	// chunk limits are derived once per phrase
	minLoudChunks := int(e.minLoudSec / secPerBuffer)
	maxChunks := int(e.recordingTimeout / secPerBuffer)
	maxSilenceChunks := int(e.recordingTimeoutWithSilence / secPerBuffer)

	var queued [][]byte
	if preRoll != nil {
		queued = preRoll.Drain()
	}

	// leading silent chunk, so downstream consumers always see a
	// non-empty buffer aligned to the chunk size
	byteData := make([]byte, chunkBytes, chunkBytes*(maxChunks+1))

	noise := 0.0
	numLoudChunks := 0
	numChunks := 0
	silenceDuration := 0.0

	e.stopRequested.Store(false)

	if sink != nil {
		sink.StreamStart()
	}

	phraseComplete := false
	for numChunks < maxChunks && !phraseComplete {
		var chunk []byte
		if len(queued) > 0 {
			chunk = queued[0]
			queued = queued[1:]
		} else {
			var err error
			chunk, err = source.ReadChunk()
			if err != nil {
				return nil, fmt.Errorf("reading chunk: %w", err)
			}
		}

		byteData = append(byteData, chunk...)
		numChunks++

		if sink != nil {
			sink.StreamChunk(chunk)
		}

		energy := RMS(chunk, source.SampleWidth())
		testThreshold := e.energyThreshold * e.multiplier

		if energy > testThreshold {
			noise = math.Min(noise+noiseRaisePerSec*secPerBuffer, maxNoise)
			numLoudChunks++
		} else {
			noise = math.Max(noise-noiseDropPerSec*secPerBuffer, minNoise)
			e.adjustThreshold(energy, secPerBuffer)
		}

		wasLoudEnough := numLoudChunks > minLoudChunks

		quietEnough := noise <= minNoise
		if quietEnough {
			silenceDuration += secPerBuffer
			if silenceDuration < e.minSilenceAtEnd {
				quietEnough = false
			}
		} else {
			silenceDuration = 0
		}

		recordedTooMuchSilence := numChunks > maxSilenceChunks
		if quietEnough && (wasLoudEnough || recordedTooMuchSilence) {
			phraseComplete = true
		}

		// pressing the button ends recording immediately
		if e.signals != nil && e.signals.Consume(ipc_signals.SignalButtonPress) {
			phraseComplete = true
		}

		if e.stopRequested.Load() || ctx.Err() != nil {
			phraseComplete = true
		}
	}

	return &Phrase{
		Data:        byteData,
		SampleRate:  source.SampleRate(),
		SampleWidth: source.SampleWidth(),
		TimedOut:    !phraseComplete,
	}, nil
}

// Calibrate samples the source for the given number of seconds and drifts
// the energy threshold toward the observed ambient energy.
func (e *endpointerImpl) Calibrate(ctx context.Context, source ChunkSource, seconds float64) error {
	secPerBuffer := float64(source.ChunkSize()) / float64(source.SampleRate())

	log.Printf("adjusting for ambient noise, be silent")

	for elapsed := 0.0; elapsed < seconds; elapsed += secPerBuffer {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		chunk, err := source.ReadChunk()
		if err != nil {
			return fmt.Errorf("reading chunk: %w", err)
		}

		e.adjustThreshold(RMS(chunk, source.SampleWidth()), secPerBuffer)
	}

	log.Printf("ambient noise profile has been created")

	return nil
}

// TriggerStop finishes the in-flight phrase after the current chunk.
func (e *endpointerImpl) TriggerStop() {
	e.stopRequested.Store(true)
}

func (e *endpointerImpl) EnergyThreshold() float64 {
	return e.energyThreshold
}

// adjustThreshold moves the threshold toward energy*energyRatio by
// exponential smoothing, scaled to the chunk duration. Quiet chunks only.
// Zero-energy chunks, such as silence from a muted stream, pull the
// threshold toward zero; Calibrate and the seeded default recover it.
func (e *endpointerImpl) adjustThreshold(energy, secPerBuffer float64) {
	damping := math.Pow(thresholdDamping, secPerBuffer)
	target := energy * e.energyRatio
	e.energyThreshold = e.energyThreshold*damping + target*(1-damping)
}
