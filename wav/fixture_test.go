package wav

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	goaudiowav "github.com/go-audio/wav"
)

// TestOpenRoundTripsGoAudioFixture writes a small stereo 16-bit WAV file
// using github.com/go-audio/wav's encoder (the same library
// cmd/wav2flac used on the decode side) and reads it back through this
// package's own reader, keeping the two implementations independent so
// this is a genuine round trip rather than a self-check.
func TestOpenRoundTripsGoAudioFixture(t *testing.T) {
	const (
		sampleRate = 8000
		bitDepth   = 16
		numChans   = 2
	)
	samples := []int{100, -100, 200, -200, 300, -300}

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("os.Create: %v", err)
	}
	enc := goaudiowav.NewEncoder(f, sampleRate, bitDepth, numChans, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer info.Close()

	if info.Format.NumChannels != numChans {
		t.Errorf("NumChannels = %d; want %d", info.Format.NumChannels, numChans)
	}
	if info.Format.SampleRate != sampleRate {
		t.Errorf("SampleRate = %d; want %d", info.Format.SampleRate, sampleRate)
	}
	if info.Format.BitsPerSample != bitDepth {
		t.Errorf("BitsPerSample = %d; want %d", info.Format.BitsPerSample, bitDepth)
	}

	next := info.Frames()
	var got []int32
	for {
		frame, ok, err := next()
		if err != nil {
			t.Fatalf("Frames: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, frame...)
	}
	if len(got) != len(samples) {
		t.Fatalf("got %d samples; want %d", len(got), len(samples))
	}
	for i, s := range samples {
		if got[i] != int32(s) {
			t.Errorf("sample %d = %d; want %d", i, got[i], s)
		}
	}
}
