package audio_stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// StreamState is the lifecycle state of a MutableStream.
type StreamState int

const (
	StateOpen StreamState = iota
	StateMuted
	StateClosed
)

const (
	// readPollInterval is slept while the device reports no data.
	readPollInterval = 10 * time.Millisecond
	// highLatencyLimit marks the point where endpointing timing becomes
	// unreliable.
	highLatencyLimit = 200 * time.Millisecond
)

var (
	// ErrStreamClosed is returned when a closed stream is reused; this is
	// caller misuse, not a device fault.
	ErrStreamClosed = errors.New("stream is closed")
	// ErrInputOverflowed is reported by InputStream implementations when
	// the device ring buffer overflowed during a read.
	ErrInputOverflowed = errors.New("input overflowed")
)

// MutableStream wraps one device stream and makes it mutable mid-session:
// it can be muted and unmuted from other goroutines while the capture
// goroutine is blocked in Read. While muted, reads yield silence instead of
// touching the stopped device.
type MutableStream struct {
	// mu makes the mute/unmute/read/close critical sections mutually
	// exclusive. Read releases it around its polling sleeps, so a muter
	// never waits for a full read to finish.
	mu    sync.Mutex
	in    InputStream
	state StreamState

	overflowExc bool
}

// NewMutableStream wraps an already-started device stream. If muted, the
// device is stopped immediately.
func NewMutableStream(in InputStream, muted, overflowExc bool) *MutableStream {
	s := &MutableStream{
		in:          in,
		state:       StateOpen,
		overflowExc: overflowExc,
	}

	if muted {
		s.Mute()
	}

	return s
}

// Mute stops the device stream. Idempotent.
func (s *MutableStream) Mute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen {
		return
	}

	s.state = StateMuted

	if err := s.in.Stop(); err != nil {
		log.Printf("warning: stopping device stream: %v", err)
	}
}

// Unmute restarts the device stream. Idempotent.
func (s *MutableStream) Unmute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateMuted {
		return
	}

	s.state = StateOpen

	if err := s.in.Start(); err != nil {
		log.Printf("warning: starting device stream: %v", err)
	}
}

// Read returns exactly frames frames of audio as little-endian 16-bit PCM.
// The moment a mute is observed, an all-zero buffer of the full requested
// size is returned instead; callers never see partial real samples from a
// muted device.
func (s *MutableStream) Read(frames int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil, ErrStreamClosed
	}

	samples := make([]int16, 0, frames)

	for len(samples) < frames {
		if s.state == StateMuted {
			return make([]byte, frames*SampleWidth), nil
		}

		avail, err := s.in.AvailableFrames()
		if err != nil {
			return nil, fmt.Errorf("querying device: %w", err)
		}

		if avail <= 0 {
			// let muters and closers in while we wait for the device
			s.mu.Unlock()
			time.Sleep(readPollInterval)
			s.mu.Lock()

			if s.state == StateClosed {
				return nil, ErrStreamClosed
			}

			continue
		}

		toRead := avail
		if remaining := frames - len(samples); toRead > remaining {
			toRead = remaining
		}

		dst := make([]int16, toRead)
		if err := s.in.ReadFrames(dst); err != nil {
			if errors.Is(err, ErrInputOverflowed) {
				if s.overflowExc {
					return nil, err
				}
				// tolerated: the frames read are still valid
			} else {
				return nil, fmt.Errorf("reading device: %w", err)
			}
		}

		samples = append(samples, dst...)
	}

	if latency := s.in.InputLatency(); latency > highLatencyLimit {
		log.Printf("warning: high input latency: %v", latency)
	}

	return samplesToBytes(samples), nil
}

// Close releases the device stream; the stream is unusable afterwards.
func (s *MutableStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}

	if s.state == StateOpen {
		if err := s.in.Stop(); err != nil {
			log.Printf("warning: stopping device stream: %v", err)
		}
	}

	s.state = StateClosed

	return s.in.Close()
}

// State reports the current stream state.
func (s *MutableStream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*SampleWidth)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*SampleWidth:], uint16(s))
	}

	return out
}
