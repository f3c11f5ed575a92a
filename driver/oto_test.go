//go:build !headless

package driver

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// newTestOto returns an Oto driver wired to cb without an audio context
func newTestOto(p Params, cb Callback) *Oto {
	return &Oto{
		cb:     cb,
		params: p,
		buf:    make([]float32, p.FramesPerBuffer*p.Channels),
		signal: newDoneSignal(),
	}
}

func TestOtoReadPeriods(t *testing.T) {
	var chunks []int
	next := float32(0)

	o := newTestOto(Params{SampleRate: 48000, FramesPerBuffer: 4, Channels: 2}, func(in, out []float32, frames int) int {
		chunks = append(chunks, frames)

		for i := range out {
			out[i] = next
			next++
		}

		return Continue
	})

	// 10 frames of 8 bytes, pulled as periods of 4, 4 and 2 frames
	p := make([]byte, 10*8)

	n, err := o.Read(p)
	if err != nil {
		t.Fatal(err)
	}

	if n != len(p) {
		t.Fatalf("read %d bytes, expected %d", n, len(p))
	}

	if len(chunks) != 3 || chunks[0] != 4 || chunks[1] != 4 || chunks[2] != 2 {
		t.Errorf("unexpected periods %v", chunks)
	}

	for i := 0; i < 20; i++ {
		samp := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if samp != float32(i) {
			t.Fatalf("sample %d: got %v", i, samp)
		}
	}
}

func TestOtoReadAfterComplete(t *testing.T) {
	o := newTestOto(Params{SampleRate: 48000, FramesPerBuffer: 2, Channels: 2}, func(in, out []float32, frames int) int {
		for i := range out {
			out[i] = 1
		}

		return Complete
	})

	p := make([]byte, 4*8)

	if _, err := o.Read(p); err != nil {
		t.Fatal(err)
	}

	select {
	case <-o.Done():
	default:
		t.Fatal("done not closed after Complete")
	}

	// first period is the callback output, the second is silence
	for i := 0; i < 8; i++ {
		samp := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))

		expected := float32(1)
		if i >= 4 {
			expected = 0
		}

		if samp != expected {
			t.Errorf("sample %d: got %v, expected %v", i, samp, expected)
		}
	}
}

func TestOtoReadWholeFrames(t *testing.T) {
	calls := 0

	o := newTestOto(Params{SampleRate: 48000, FramesPerBuffer: 4, Channels: 2}, func(in, out []float32, frames int) int {
		calls++

		for i := range out {
			out[i] = 1
		}

		return Continue
	})

	// one frame plus two trailing bytes
	p := make([]byte, 10)
	p[8], p[9] = 0xaa, 0xbb

	n, err := o.Read(p)
	if err != nil {
		t.Fatal(err)
	}

	if n != 8 {
		t.Errorf("read %d bytes, expected 8", n)
	}

	if p[8] != 0xaa || p[9] != 0xbb {
		t.Error("bytes past the last whole frame were overwritten")
	}

	n, err = o.Read(make([]byte, 7))
	if n != 0 || !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("got %d, %v for a buffer smaller than a frame, expected io.ErrShortBuffer", n, err)
	}

	if calls != 1 {
		t.Errorf("callback called %d times, expected 1", calls)
	}
}
