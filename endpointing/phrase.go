package endpointing

import (
	"encoding/binary"
	"time"

	"github.com/go-audio/audio"
)

// Phrase is one complete recorded utterance, including the trailing
// silence that ended it.
type Phrase struct {
	Data        []byte
	SampleRate  int
	SampleWidth int

	// TimedOut marks a phrase returned because the recording timeout was
	// reached rather than because silence was detected.
	TimedOut bool
}

// Duration is the audio length of the phrase.
func (p *Phrase) Duration() time.Duration {
	frames := len(p.Data) / p.SampleWidth

	return time.Duration(float64(frames) / float64(p.SampleRate) * float64(time.Second))
}

// IntBuffer converts the phrase for the recognition collaborator.
func (p *Phrase) IntBuffer() *audio.IntBuffer {
	n := len(p.Data) / p.SampleWidth
	data := make([]int, n)
	for i := 0; i < n; i++ {
		data[i] = int(int16(binary.LittleEndian.Uint16(p.Data[i*p.SampleWidth:])))
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  p.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 8 * p.SampleWidth,
	}
}
