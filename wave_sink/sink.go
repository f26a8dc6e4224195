package wave_sink

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

// Sink archives one utterance to a WAV file while it is still being
// recorded, one chunk at a time. Write problems are logged, never
// propagated; a broken archive must not break the recording.
type Sink struct {
	fileSys afero.Fs
	dir     string

	channels    int
	sampleRate  int
	sampleWidth int

	file   afero.File
	writer *wave.Writer
	broken bool
}

type Config struct {
	FileSys afero.Fs
	Dir     string

	Channels    int
	SampleRate  int
	SampleWidth int
}

func New(cfg *Config) (*Sink, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Dir == "" {
		return nil, fmt.Errorf("dir is empty")
	}

	if cfg.Channels <= 0 || cfg.SampleRate <= 0 || cfg.SampleWidth <= 0 {
		return nil, fmt.Errorf("invalid audio format")
	}

	return &Sink{
		fileSys:     cfg.FileSys,
		dir:         cfg.Dir,
		channels:    cfg.Channels,
		sampleRate:  cfg.SampleRate,
		sampleWidth: cfg.SampleWidth,
	}, nil
}

func (s *Sink) StreamStart() {
	if err := s.open(); err != nil {
		log.Printf("warning: could not open utterance archive: %v", err)
		s.broken = true
	}
}

func (s *Sink) StreamChunk(chunk []byte) {
	if s.broken || s.writer == nil {
		return
	}

	if _, err := s.writer.Write(chunk); err != nil {
		log.Printf("warning: could not archive utterance chunk: %v", err)
		s.broken = true
	}
}

// Close finalizes the WAV header and returns the archived file path.
func (s *Sink) Close() (string, error) {
	if s.writer == nil {
		return "", nil
	}

	name := s.file.Name()
	err := s.writer.Close()
	s.writer = nil
	s.file = nil

	if err != nil {
		return "", fmt.Errorf("closing utterance archive: %w", err)
	}

	return name, nil
}

func (s *Sink) open() error {
	if err := s.fileSys.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	name := filepath.Join(s.dir, "utterance-"+strconv.FormatInt(time.Now().UnixNano(), 10)+".wav")

	file, err := s.fileSys.Create(name)
	if err != nil {
		return err
	}

	writer, err := wave.NewWriter(wave.WriterParam{
		Out:           file,
		Channel:       s.channels,
		SampleRate:    s.sampleRate,
		BitsPerSample: 8 * s.sampleWidth,
	})
	if err != nil {
		file.Close()

		return err
	}

	s.file = file
	s.writer = writer

	return nil
}
