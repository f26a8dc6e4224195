package recorder

import (
	"context"
	"fmt"
	"log"

	"ptt-terminal/audio_stream"
	"ptt-terminal/endpointing"
	"ptt-terminal/trigger"
)

// SinkFactory builds a streaming sink for one phrase. The returned sink is
// closed by the recorder once the phrase completes.
type SinkFactory func() (StreamSinkCloser, error)

// StreamSinkCloser is a per-phrase chunk sink with teardown.
type StreamSinkCloser interface {
	endpointing.StreamSink
	Close() (string, error)
}

type recorderImpl struct {
	mic        audio_stream.Interface
	gate       trigger.Interface
	endpointer endpointing.Interface
	events     EventSink
	preRoll    endpointing.PreRoll
	newSink    SinkFactory

	autoAmbientAdjust bool
	ambientAdjustTime float64
}

type Config struct {
	Mic        audio_stream.Interface
	Gate       trigger.Interface
	Endpointer endpointing.Interface

	// Events is optional; nil disables lifecycle notifications.
	Events EventSink

	// PreRoll is optional; chunks queued there are consumed before fresh
	// reads.
	PreRoll endpointing.PreRoll

	// NewSink is optional; when set, every phrase is streamed into a
	// fresh sink while it is recorded.
	NewSink SinkFactory

	AutoAmbientNoiseAdjustment bool
	AmbientNoiseAdjustmentTime float64
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Mic == nil {
		return nil, fmt.Errorf("mic is nil")
	}

	if cfg.Gate == nil {
		return nil, fmt.Errorf("gate is nil")
	}

	if cfg.Endpointer == nil {
		return nil, fmt.Errorf("endpointer is nil")
	}

	if cfg.AutoAmbientNoiseAdjustment && cfg.AmbientNoiseAdjustmentTime <= 0 {
		return nil, fmt.Errorf("ambientNoiseAdjustmentTime must be positive")
	}

	return &recorderImpl{
		mic:               cfg.Mic,
		gate:              cfg.Gate,
		endpointer:        cfg.Endpointer,
		events:            cfg.Events,
		preRoll:           cfg.PreRoll,
		newSink:           cfg.NewSink,
		autoAmbientAdjust: cfg.AutoAmbientNoiseAdjustment,
		ambientAdjustTime: cfg.AmbientNoiseAdjustmentTime,
	}, nil
}

func (r *recorderImpl) Listen(ctx context.Context) (*endpointing.Phrase, error) {
	// keep the device quiet until a trigger arrives
	r.mic.Mute()

	triggered, err := r.gate.Wait(ctx)
	if err != nil {
		return nil, err
	}

	if !triggered {
		return nil, nil
	}

	r.mic.Unmute()
	r.emit(EventRecordBegin)

	sink, closeSink := r.openSink()

	phrase, err := r.endpointer.Record(ctx, r.mic, r.preRoll, sink)
	closeSink()

	if err != nil {
		return nil, err
	}

	r.emit(EventRecordEnd)

	if r.autoAmbientAdjust {
		if err := r.endpointer.Calibrate(ctx, r.mic, r.ambientAdjustTime); err != nil {
			log.Printf("warning: ambient noise adjustment failed: %v", err)
		}
	}

	return phrase, nil
}

func (r *recorderImpl) emit(event string) {
	if r.events != nil {
		r.events.Emit(event)
	}
}

// openSink builds the per-phrase sink; a factory failure only disables
// archiving for this phrase.
func (r *recorderImpl) openSink() (endpointing.StreamSink, func()) {
	if r.newSink == nil {
		return nil, func() {}
	}

	sink, err := r.newSink()
	if err != nil {
		log.Printf("warning: could not create utterance sink: %v", err)

		return nil, func() {}
	}

	return sink, func() {
		path, err := sink.Close()
		if err != nil {
			log.Printf("warning: closing utterance sink: %v", err)

			return
		}

		if path != "" {
			log.Printf("utterance archived to %s", path)
		}
	}
}
