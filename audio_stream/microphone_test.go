package audio_stream

import (
	"errors"
	"testing"
)

func newTestMic(t *testing.T, muted bool, opener StreamOpener) Interface {
	t.Helper()

	mic, err := New(&Config{
		Channels:   1,
		SampleRate: 16000,
		ChunkSize:  1024,
		Muted:      muted,
		Opener:     opener,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return mic
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}

	if _, err := New(&Config{SampleRate: 16000, ChunkSize: 1024}); err == nil {
		t.Error("expected error for zero channels")
	}

	if _, err := New(&Config{Channels: 1, ChunkSize: 1024}); err == nil {
		t.Error("expected error for zero sample rate")
	}

	if _, err := New(&Config{Channels: 1, SampleRate: 16000}); err == nil {
		t.Error("expected error for zero chunk size")
	}
}

func TestOpenAppliesRememberedMute(t *testing.T) {
	var opened *fakeStream
	opener := func(channels, sampleRate, chunkSize int) (InputStream, error) {
		opened = &fakeStream{availQueue: []int{4096}, sample: 5}
		return opened, nil
	}

	mic := newTestMic(t, false, opener)

	// mute before any stream exists: the flag must be remembered
	mic.Mute()

	if !mic.IsMuted() {
		t.Fatal("expected mute flag to be remembered while closed")
	}

	if err := mic.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mic.Close()

	_, stops := opened.counts()
	if stops != 1 {
		t.Errorf("expected opened stream to be stopped by the mute, got %d stops", stops)
	}

	chunk, err := mic.ReadChunk()
	if err != nil {
		t.Fatalf("ReadChunk: %v", err)
	}

	for _, b := range chunk {
		if b != 0 {
			t.Fatal("expected silence from muted microphone")
		}
	}
}

func TestRestartPreservesMute(t *testing.T) {
	var streams []*fakeStream
	opener := func(channels, sampleRate, chunkSize int) (InputStream, error) {
		fake := &fakeStream{availQueue: []int{4096}}
		streams = append(streams, fake)
		return fake, nil
	}

	mic := newTestMic(t, true, opener)

	if err := mic.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := mic.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	defer mic.Close()

	if len(streams) != 2 {
		t.Fatalf("expected two streams opened, got %d", len(streams))
	}

	if streams[0].closeCalls != 1 {
		t.Errorf("expected first stream closed, got %d closes", streams[0].closeCalls)
	}

	if !mic.IsMuted() {
		t.Error("expected mute to survive restart")
	}

	_, stops := streams[1].counts()
	if stops != 1 {
		t.Error("expected restarted stream to come up muted")
	}
}

func TestOpenTwiceFails(t *testing.T) {
	opener := func(channels, sampleRate, chunkSize int) (InputStream, error) {
		return &fakeStream{}, nil
	}

	mic := newTestMic(t, false, opener)

	if err := mic.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mic.Close()

	if err := mic.Open(); err == nil {
		t.Error("expected error opening an already-open microphone")
	}
}

func TestOpenFailurePropagates(t *testing.T) {
	opener := func(channels, sampleRate, chunkSize int) (InputStream, error) {
		return nil, errors.New("no such device")
	}

	mic := newTestMic(t, false, opener)

	if err := mic.Open(); err == nil {
		t.Error("expected device open failure to propagate")
	}
}

func TestReadChunkWhileClosedFails(t *testing.T) {
	mic := newTestMic(t, false, func(int, int, int) (InputStream, error) {
		return &fakeStream{}, nil
	})

	if _, err := mic.ReadChunk(); err == nil {
		t.Error("expected error reading from a closed microphone")
	}
}

func TestUnmuteStartsOpenStream(t *testing.T) {
	var opened *fakeStream
	opener := func(channels, sampleRate, chunkSize int) (InputStream, error) {
		opened = &fakeStream{}
		return opened, nil
	}

	mic := newTestMic(t, true, opener)

	if err := mic.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer mic.Close()

	mic.Unmute()

	starts, _ := opened.counts()
	if starts != 1 {
		t.Errorf("expected one device start after unmute, got %d", starts)
	}

	if mic.IsMuted() {
		t.Error("expected microphone unmuted")
	}
}
