package wav

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func readFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return data
}

func TestWavHeaderAndSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	wav, err := New(path, 2, 44100)
	if err != nil {
		t.Fatal(err)
	}

	samples := []float32{0, 0, 0.5, 0.5, -0.25, -0.25}

	if err := wav.Write(samples[:4]); err != nil {
		t.Fatal(err)
	}

	if err := wav.Write(samples[4:]); err != nil {
		t.Fatal(err)
	}

	if err := wav.Close(); err != nil {
		t.Fatal(err)
	}

	data := readFile(t, path)
	le := binary.LittleEndian

	if len(data) != dataOffset+len(samples)*4 {
		t.Fatalf("file is %d bytes, expected %d", len(data), dataOffset+len(samples)*4)
	}

	for offset, tag := range map[int]string{0: "RIFF", 8: "WAVE", 12: "fmt ", 38: "fact", 50: "data"} {
		if string(data[offset:offset+4]) != tag {
			t.Errorf("offset %d: got %q, expected %q", offset, data[offset:offset+4], tag)
		}
	}

	checks := []struct {
		name     string
		got      uint32
		expected uint32
	}{
		{"riff size", le.Uint32(data[4:]), uint32(len(data) - 8)},
		{"format", uint32(le.Uint16(data[20:])), 3},
		{"channels", uint32(le.Uint16(data[22:])), 2},
		{"sample rate", le.Uint32(data[24:]), 44100},
		{"byte rate", le.Uint32(data[28:]), 44100 * 8},
		{"block align", uint32(le.Uint16(data[32:])), 8},
		{"bits", uint32(le.Uint16(data[34:])), 32},
		{"fact frames", le.Uint32(data[46:]), 3},
		{"data size", le.Uint32(data[54:]), uint32(len(samples) * 4)},
	}

	for _, check := range checks {
		if check.got != check.expected {
			t.Errorf("%s: got %d, expected %d", check.name, check.got, check.expected)
		}
	}

	for i, expected := range samples {
		got := math.Float32frombits(le.Uint32(data[dataOffset+i*4:]))
		if got != expected {
			t.Errorf("sample %d: got %v, expected %v", i, got, expected)
		}
	}
}

func TestWavNormalize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "norm.wav")

	wav, err := New(path, 1, 48000)
	if err != nil {
		t.Fatal(err)
	}

	// more samples than one 8192 byte normalize block
	samples := make([]float32, 5000)
	for i := range samples {
		samples[i] = 0.25 * float32(i%3-1)
	}

	if err := wav.Write(samples); err != nil {
		t.Fatal(err)
	}

	if err := wav.Normalize(0.25); err != nil {
		t.Fatal(err)
	}

	if err := wav.Close(); err != nil {
		t.Fatal(err)
	}

	data := readFile(t, path)

	for i, samp := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[dataOffset+i*4:]))
		if got != samp*4 {
			t.Fatalf("sample %d: got %v, expected %v", i, got, samp*4)
		}
	}

	if binary.LittleEndian.Uint32(data[54:]) != uint32(len(samples)*4) {
		t.Error("data size changed by normalize")
	}
}
