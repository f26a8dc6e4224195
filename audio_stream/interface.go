package audio_stream

import "time"

// SampleWidth is the byte width of one sample; the device API delivers
// fixed-point 16-bit PCM.
const SampleWidth = 2

// InputStream is the raw device stream guarded by MutableStream. Exactly
// one MutableStream owns an InputStream at a time.
type InputStream interface {
	Start() error
	Stop() error
	Close() error
	// AvailableFrames reports how many frames can be read without
	// blocking.
	AvailableFrames() (int, error)
	// ReadFrames fills dst completely. It may return ErrInputOverflowed
	// alongside valid data when the device buffer overflowed.
	ReadFrames(dst []int16) error
	InputLatency() time.Duration
}

// StreamOpener allocates and starts a device stream.
type StreamOpener func(channels, sampleRate, chunkSize int) (InputStream, error)

// Interface is the microphone source driven by the recorder. Mute, Unmute
// and IsMuted may be called from any goroutine; everything else belongs to
// the capture goroutine.
type Interface interface {
	Open() error
	Close()
	Restart() error

	Mute()
	Unmute()
	IsMuted() bool

	// ReadChunk reads one chunk of audio, or a silent chunk while the
	// microphone is muted.
	ReadChunk() ([]byte, error)

	SampleRate() int
	SampleWidth() int
	ChunkSize() int
}
