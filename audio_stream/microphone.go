package audio_stream

import (
	"fmt"
	"log"
	"sync"
)

// micImpl owns the device lifecycle and exactly one MutableStream while
// open. The muted flag survives close/open cycles so a restart cannot
// silently unmute the microphone.
type micImpl struct {
	mu     sync.Mutex
	stream *MutableStream
	muted  bool

	channels    int
	sampleRate  int
	chunkSize   int
	overflowExc bool
	opener      StreamOpener
}

type Config struct {
	Channels   int
	SampleRate int
	ChunkSize  int

	// Muted opens the microphone muted until Unmute is called.
	Muted             bool
	OverflowException bool

	// Opener defaults to OpenPortAudioStream.
	Opener StreamOpener
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("channels must be positive")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sampleRate must be positive")
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunkSize must be positive")
	}

	opener := cfg.Opener
	if opener == nil {
		opener = OpenPortAudioStream
	}

	return &micImpl{
		muted:       cfg.Muted,
		channels:    cfg.Channels,
		sampleRate:  cfg.SampleRate,
		chunkSize:   cfg.ChunkSize,
		overflowExc: cfg.OverflowException,
		opener:      opener,
	}, nil
}

// Open allocates the device and wraps it in a MutableStream, applying the
// remembered mute state.
func (m *micImpl) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return fmt.Errorf("microphone is already open")
	}

	in, err := m.opener(m.channels, m.sampleRate, m.chunkSize)
	if err != nil {
		return fmt.Errorf("opening input device: %w", err)
	}

	m.stream = NewMutableStream(in, m.muted, m.overflowExc)

	return nil
}

// Close stops and releases the stream. Failures are logged, never
// propagated, so teardown always completes and a later Restart can
// recover the device.
func (m *micImpl) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return
	}

	if err := m.stream.Close(); err != nil {
		log.Printf("warning: failed to close mic input stream: %v", err)
	}

	m.stream = nil
}

// Restart shuts the input device down and reopens it.
func (m *micImpl) Restart() error {
	m.Close()

	return m.Open()
}

func (m *micImpl) Mute() {
	m.mu.Lock()
	stream := m.stream
	m.muted = true
	m.mu.Unlock()

	if stream != nil {
		stream.Mute()
	}
}

func (m *micImpl) Unmute() {
	m.mu.Lock()
	stream := m.stream
	m.muted = false
	m.mu.Unlock()

	if stream != nil {
		stream.Unmute()
	}
}

func (m *micImpl) IsMuted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.muted
}

func (m *micImpl) ReadChunk() ([]byte, error) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()

	if stream == nil {
		return nil, fmt.Errorf("microphone is not open")
	}

	return stream.Read(m.chunkSize)
}

func (m *micImpl) SampleRate() int {
	return m.sampleRate
}

func (m *micImpl) SampleWidth() int {
	return SampleWidth
}

func (m *micImpl) ChunkSize() int {
	return m.chunkSize
}
