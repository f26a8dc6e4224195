package speech_to_text

import (
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"ptt-terminal/endpointing"
)

// Interface turns one captured phrase into text segments.
type Interface interface {
	Transcribe(phrase *endpointing.Phrase) ([]whisper.Segment, error)
}
