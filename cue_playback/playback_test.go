package cue_playback

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
)

// makeWavData builds a minimal 16-bit mono PCM WAV payload.
func makeWavData(t *testing.T, sampleRate int, samples []int16) []byte {
	t.Helper()

	var data bytes.Buffer
	for _, s := range samples {
		if err := binary.Write(&data, binary.LittleEndian, s); err != nil {
			t.Fatalf("writing sample: %v", err)
		}
	}

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+data.Len()))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&out, binary.LittleEndian, uint16(2))
	binary.Write(&out, binary.LittleEndian, uint16(16))
	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	out.Write(data.Bytes())

	return out.Bytes()
}

func TestDecodeKnownExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	wavData := makeWavData(t, 16000, []int16{0, 100, -100, 0})

	if err := afero.WriteFile(fs, "/snd/cue.wav", wavData, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	file, err := fs.Open("/snd/cue.wav")
	if err != nil {
		t.Fatalf("opening file: %v", err)
	}

	streamer, format, err := decode("/snd/cue.wav", file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	defer streamer.Close()

	if int(format.SampleRate) != 16000 {
		t.Errorf("expected sample rate 16000, got %d", format.SampleRate)
	}
}

func TestDecodeFallbackProbesCodecs(t *testing.T) {
	fs := afero.NewMemMapFs()
	wavData := makeWavData(t, 16000, []int16{0, 100, -100, 0})

	// unknown extension, valid wav payload; the probe must find the codec
	if err := afero.WriteFile(fs, "/snd/cue.sound", wavData, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	file, err := fs.Open("/snd/cue.sound")
	if err != nil {
		t.Fatalf("opening file: %v", err)
	}

	streamer, format, err := decode("/snd/cue.sound", file)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	defer streamer.Close()

	if int(format.SampleRate) != 16000 {
		t.Errorf("expected sample rate 16000, got %d", format.SampleRate)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}

	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for nil fileSys")
	}
}

func TestPlayMissingFile(t *testing.T) {
	player, err := New(&Config{FileSys: afero.NewMemMapFs()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := player.Play("/snd/start_listening.wav"); err == nil {
		t.Error("expected error for missing cue sound")
	}
}

func TestPlayUndecodableFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := afero.WriteFile(fs, "/snd/cue.bin", []byte("not audio"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	player, err := New(&Config{FileSys: fs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// an unknown extension falls back to probing every codec, all of
	// which must reject this payload
	if err := player.Play("/snd/cue.bin"); err == nil {
		t.Error("expected error for undecodable cue sound")
	}
}

func TestPlayCorruptKnownExtension(t *testing.T) {
	fs := afero.NewMemMapFs()

	if err := afero.WriteFile(fs, "/snd/cue.wav", []byte("RIFFgarbage"), 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	player, err := New(&Config{FileSys: fs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := player.Play("/snd/cue.wav"); err == nil {
		t.Error("expected error for corrupt wav cue")
	}
}
