package cue_playback

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/spf13/afero"
)

type decodeFunc func(io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error)

// wav.Decode and flac.Decode take a plain io.Reader, so they are wrapped
// to fit alongside the codecs that take ownership of closing.
var decoders = map[string]decodeFunc{
	".wav": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(rc)
	},
	".mp3": mp3.Decode,
	".ogg": vorbis.Decode,
	".flac": func(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(rc)
	},
}

// fallbackOrder is tried for files with an unrecognized extension.
var fallbackOrder = []string{".wav", ".mp3", ".ogg", ".flac"}

type playerImpl struct {
	fileSys afero.Fs
}

type Config struct {
	FileSys afero.Fs
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	return &playerImpl{
		fileSys: cfg.FileSys,
	}, nil
}

func (p *playerImpl) Play(path string) error {
	file, err := p.fileSys.Open(path)
	if err != nil {
		return fmt.Errorf("opening cue sound: %w", err)
	}

	streamer, format, err := decode(path, file)
	if err != nil {
		file.Close()

		return err
	}

	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}

	done := make(chan bool)
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		done <- true
	})))
	<-done

	return nil
}

func decode(path string, file afero.File) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if decoder, ok := decoders[ext]; ok {
		return decoder(file)
	}

	// unknown extension: probe each codec until one accepts the header
	for _, probe := range fallbackOrder {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, beep.Format{}, fmt.Errorf("rewinding cue sound: %w", err)
		}

		streamer, format, err := decoders[probe](file)
		if err == nil {
			return streamer, format, nil
		}
	}

	return nil, beep.Format{}, fmt.Errorf("no codec could decode %s", path)
}
