package speech_to_text

import (
	"fmt"
	"io"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"ptt-terminal/endpointing"
)

type sttImpl struct {
	model    whisper.Model
	language string
}

type Config struct {
	Model whisper.Model

	// Language is optional; empty lets the model pick.
	Language string
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	return &sttImpl{
		model:    cfg.Model,
		language: cfg.Language,
	}, nil
}

func (stt *sttImpl) Transcribe(phrase *endpointing.Phrase) ([]whisper.Segment, error) {
	if phrase == nil {
		return nil, fmt.Errorf("phrase is nil")
	}

	context, err := stt.model.NewContext()
	if err != nil {
		return nil, err
	}

	if stt.language != "" {
		if err := context.SetLanguage(stt.language); err != nil {
			return nil, err
		}
	}

	samples := phrase.IntBuffer().AsFloat32Buffer().Data

	var cb whisper.SegmentCallback

	if err := context.Process(samples, cb); err != nil {
		return nil, err
	}

	return collectSegments(context)
}

// collectSegments drains the context, dropping non-speech annotations and
// repeated text.
func collectSegments(context whisper.Context) ([]whisper.Segment, error) {
	seenText := make(map[string]bool)

	segments := make([]whisper.Segment, 0)

	for {
		segment, err := context.NextSegment()
		if err == io.EOF {
			return segments, nil
		} else if err != nil {
			return nil, err
		}

		text := strings.TrimSpace(segment.Text)
		if text == "" || isAnnotation(text) {
			continue
		}

		if seenText[text] {
			continue
		}

		seenText[text] = true

		segments = append(segments, segment)
	}
}

// isAnnotation reports whether the model emitted a sound description such as
// "(music)" or "[BLANK_AUDIO]" instead of speech.
func isAnnotation(text string) bool {
	return text[0] == '(' || text[0] == '[' ||
		text[len(text)-1] == ')' || text[len(text)-1] == ']'
}
