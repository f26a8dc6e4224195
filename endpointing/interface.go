package endpointing

import "context"

// ChunkSource produces fixed-size PCM chunks.
type ChunkSource interface {
	ReadChunk() ([]byte, error)
	SampleRate() int
	SampleWidth() int
	ChunkSize() int
}

// StreamSink receives every recorded chunk, in order, while the phrase is
// still being captured.
type StreamSink interface {
	StreamStart()
	StreamChunk(chunk []byte)
}

// PreRoll hands over chunks captured before recording started; they are
// consumed ahead of fresh reads.
type PreRoll interface {
	Drain() [][]byte
}

// Interface records single phrases from a chunk source, deciding per chunk
// whether the speaker has finished.
type Interface interface {
	// Record captures exactly one phrase. A nil sink and a nil preRoll
	// are both allowed. TriggerStop may be called from another goroutine
	// to finish the phrase after the current chunk.
	Record(ctx context.Context, source ChunkSource, preRoll PreRoll, sink StreamSink) (*Phrase, error)

	// Calibrate re-derives the baseline energy threshold from a short
	// sample of ambient noise.
	Calibrate(ctx context.Context, source ChunkSource, seconds float64) error

	TriggerStop()

	EnergyThreshold() float64
}
