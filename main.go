package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/spf13/afero"

	"ptt-terminal/audio_stream"
	"ptt-terminal/config"
	"ptt-terminal/cue_playback"
	"ptt-terminal/endpointing"
	"ptt-terminal/ipc_signals"
	"ptt-terminal/recorder"
	"ptt-terminal/speech_to_text"
	"ptt-terminal/trigger"
	"ptt-terminal/wave_sink"
)

type logEvents struct{}

func (logEvents) Emit(event string) {
	log.Printf("event: %s", event)
}

func main() {
	configFlag := flag.String("c", "", "config file, defaults apply when empty")
	modelFlag := flag.String("m", "", "model file for whisper, transcription is skipped when empty")

	flag.Parse()

	cfg := config.Default()

	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatalf("error loading config: %v", err)
		}

		cfg = loaded
	}

	var sttEngine speech_to_text.Interface

	if *modelFlag != "" {
		model, err := whisper.New(*modelFlag)
		if err != nil {
			log.Fatalf("error loading model: %v", err)
		}

		defer model.Close()

		sttEngine, err = speech_to_text.New(&speech_to_text.Config{
			Model: model,
		})
		if err != nil {
			log.Fatalf("error with speech_to_text.New: %v", err)
		}
	}

	fileSys := afero.NewOsFs()
	listenerCfg := &cfg.Listener

	signals, err := ipc_signals.New(&ipc_signals.Config{
		FileSys: fileSys,
		Folder:  listenerCfg.SignalFolder,
	})
	if err != nil {
		log.Fatalf("error with ipc_signals.New: %v", err)
	}

	player, err := cue_playback.New(&cue_playback.Config{
		FileSys: fileSys,
	})
	if err != nil {
		log.Fatalf("error with cue_playback.New: %v", err)
	}

	mic, err := audio_stream.New(&audio_stream.Config{
		Channels:          listenerCfg.Channels,
		SampleRate:        listenerCfg.SampleRate,
		ChunkSize:         listenerCfg.ChunkSize,
		Muted:             true,
		OverflowException: listenerCfg.OverflowException,
	})
	if err != nil {
		log.Fatalf("error with audio_stream.New: %v", err)
	}

	if err := mic.Open(); err != nil {
		log.Fatalf("error opening microphone: %v", err)
	}

	defer mic.Close()

	endpointer, err := endpointing.New(&endpointing.Config{
		EnergyRatio:                 listenerCfg.EnergyRatio,
		Multiplier:                  listenerCfg.Multiplier,
		MinLoudSec:                  listenerCfg.MinLoudSec,
		MinSilenceAtEnd:             listenerCfg.MinSilenceAtEnd,
		RecordingTimeout:            listenerCfg.RecordingTimeout,
		RecordingTimeoutWithSilence: listenerCfg.RecordingTimeoutWithSilence,
		Signals:                     signals,
	})
	if err != nil {
		log.Fatalf("error with endpointing.New: %v", err)
	}

	gate, err := trigger.New(&trigger.Config{
		Signals:       signals,
		Player:        player,
		ListenSound:   listenerCfg.ListenSound,
		CheckInterval: listenerCfg.SignalCheckInterval(),
		Calibrate: func(ctx context.Context) {
			mic.Unmute()

			defer mic.Mute()

			if err := endpointer.Calibrate(ctx, mic, listenerCfg.AmbientNoiseAdjustmentTime); err != nil {
				log.Printf("warning: ambient noise adjustment failed: %v", err)
			}
		},
	})
	if err != nil {
		log.Fatalf("error with trigger.New: %v", err)
	}

	var newSink recorder.SinkFactory

	if listenerCfg.RecordUtterances {
		newSink = func() (recorder.StreamSinkCloser, error) {
			sink, err := wave_sink.New(&wave_sink.Config{
				FileSys:     fileSys,
				Dir:         cfg.DataDir,
				Channels:    listenerCfg.Channels,
				SampleRate:  listenerCfg.SampleRate,
				SampleWidth: mic.SampleWidth(),
			})
			if err != nil {
				return nil, err
			}

			return sink, nil
		}
	}

	phraseRecorder, err := recorder.New(&recorder.Config{
		Mic:                        mic,
		Gate:                       gate,
		Endpointer:                 endpointer,
		Events:                     logEvents{},
		NewSink:                    newSink,
		AutoAmbientNoiseAdjustment: listenerCfg.AutoAmbientNoiseAdjustment,
		AmbientNoiseAdjustmentTime: listenerCfg.AmbientNoiseAdjustmentTime,
	})
	if err != nil {
		log.Fatalf("error with recorder.New: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("listening for triggers in %s", listenerCfg.SignalFolder)

	for {
		phrase, err := phraseRecorder.Listen(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Printf("shutting down")

				return
			}

			log.Fatalf("error recording phrase: %v", err)
		}

		if phrase == nil {
			log.Printf("stop requested, shutting down")

			return
		}

		if phrase.TimedOut {
			log.Printf("recording timed out after %.1fs", phrase.Duration().Seconds())
		} else {
			log.Printf("recorded %.1fs phrase", phrase.Duration().Seconds())
		}

		if sttEngine == nil {
			continue
		}

		segments, err := sttEngine.Transcribe(phrase)
		if err != nil {
			log.Printf("error transcribing phrase: %v", err)

			continue
		}

		for _, segment := range segments {
			log.Printf("[%6s -> %6s] %s", segment.Start, segment.End, segment.Text)
		}
	}
}
