package audio_stream

import (
	"errors"
	"time"

	"github.com/gordonklaus/portaudio"
)

// paStream adapts a portaudio input stream to InputStream. The bound
// buffer is resliced before each read so partial chunks can be drained as
// they become available.
type paStream struct {
	stream *portaudio.Stream
	buf    []int16
}

// OpenPortAudioStream is the default StreamOpener. It initializes the
// portaudio library, opens the default mono input device and starts the
// stream.
func OpenPortAudioStream(channels, sampleRate, chunkSize int) (InputStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	ps := &paStream{
		buf: make([]int16, chunkSize),
	}

	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(sampleRate), chunkSize, &ps.buf)
	if err != nil {
		if termErr := portaudio.Terminate(); termErr != nil {
			err = errors.Join(err, termErr)
		}

		return nil, err
	}

	ps.stream = stream

	if err := stream.Start(); err != nil {
		closeErr := stream.Close()
		termErr := portaudio.Terminate()

		return nil, errors.Join(err, closeErr, termErr)
	}

	return ps, nil
}

func (p *paStream) Start() error {
	return p.stream.Start()
}

func (p *paStream) Stop() error {
	return p.stream.Stop()
}

func (p *paStream) Close() error {
	err := p.stream.Close()

	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}

	return err
}

func (p *paStream) AvailableFrames() (int, error) {
	return p.stream.AvailableToRead()
}

func (p *paStream) ReadFrames(dst []int16) error {
	read := 0
	for read < len(dst) {
		n := len(dst) - read
		if n > cap(p.buf) {
			n = cap(p.buf)
		}

		p.buf = p.buf[:n]
		if err := p.stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				copy(dst[read:], p.buf)
				read += n

				return ErrInputOverflowed
			}

			return err
		}

		copy(dst[read:], p.buf)
		read += n
	}

	return nil
}

func (p *paStream) InputLatency() time.Duration {
	return p.stream.Info().InputLatency
}
