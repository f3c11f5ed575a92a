package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/almerlucke/wavetable"
	"github.com/almerlucke/wavetable/driver"
	"github.com/almerlucke/wavetable/writer"
)

type period struct {
	samples []float32
	end     bool
}

// recorder is a Sink keeping a copy of every period
type recorder struct {
	periods []period
	err     error
}

func (r *recorder) Write(input any, endOfInput bool) error {
	if r.err != nil {
		return r.err
	}

	samples := append([]float32(nil), input.([]float32)...)
	r.periods = append(r.periods, period{samples: samples, end: endOfInput})

	return nil
}

func (r *recorder) frames() int {
	n := 0
	for _, p := range r.periods {
		n += len(p.samples) / 2
	}
	return n
}

func TestRenderFrameAccounting(t *testing.T) {
	var requested []int

	cb := func(in, out []float32, frames int) int {
		requested = append(requested, frames)
		return driver.Continue
	}

	rec := &recorder{}

	n, err := Render(cb, rec, 2, 256, 1000)
	if err != nil {
		t.Fatal(err)
	}

	if n != 1000 || rec.frames() != 1000 {
		t.Errorf("rendered %d frames, sink got %d, expected 1000", n, rec.frames())
	}

	expected := []int{256, 256, 256, 232}
	if len(requested) != len(expected) {
		t.Fatalf("requested periods %v, expected %v", requested, expected)
	}

	for i := range expected {
		if requested[i] != expected[i] {
			t.Errorf("period %d: %d frames, expected %d", i, requested[i], expected[i])
		}

		if rec.periods[i].end != (i == len(expected)-1) {
			t.Errorf("period %d: end of input %v", i, rec.periods[i].end)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	for _, test := range []struct {
		status   int
		expected error
	}{
		{driver.Complete, nil},
		{driver.Abort, ErrAborted},
	} {
		calls := 0
		cb := func(in, out []float32, frames int) int {
			calls++
			if calls == 3 {
				return test.status
			}
			return driver.Continue
		}

		rec := &recorder{}

		n, err := Render(cb, rec, 2, 100, 10000)
		if !errors.Is(err, test.expected) {
			t.Errorf("status %d: expected %v, got %v", test.status, test.expected, err)
		}

		if n != 300 || len(rec.periods) != 3 || !rec.periods[2].end {
			t.Errorf("status %d: rendered %d frames in %d periods", test.status, n, len(rec.periods))
		}
	}
}

func TestRenderSinkError(t *testing.T) {
	sinkErr := errors.New("disk full")
	rec := &recorder{err: sinkErr}

	cb := func(in, out []float32, frames int) int { return driver.Continue }

	if _, err := Render(cb, rec, 2, 64, 1000); !errors.Is(err, sinkErr) {
		t.Errorf("expected sink error, got %v", err)
	}

	if _, err := Render(cb, rec, 2, 0, 1000); err == nil {
		t.Error("expected error for zero frames per buffer")
	}
}

func TestRenderRejectsEmptyRender(t *testing.T) {
	calls := 0
	cb := func(in, out []float32, frames int) int {
		calls++
		return driver.Continue
	}

	for _, total := range []int{0, -1} {
		rec := &recorder{}

		if _, err := Render(cb, rec, 2, 64, total); err == nil {
			t.Errorf("%d frames: expected error", total)
		}

		if len(rec.periods) != 0 {
			t.Errorf("%d frames: sink got %d periods", total, len(rec.periods))
		}
	}

	if calls != 0 {
		t.Errorf("callback called %d times", calls)
	}
}

func TestRenderOscillator(t *testing.T) {
	table, err := wavetable.NewTableFromSamples([]float64{0, 1, 0, -1}, false)
	if err != nil {
		t.Fatal(err)
	}

	osc, err := wavetable.NewOscillator(wavetable.Params{
		Frequency:  1,
		Amplitude:  0.5,
		SampleRate: 4,
		Table:      table,
		Policy:     wavetable.Truncate,
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}

	// periods of 3 frames straddle the table boundary
	if _, err := Render(osc.Process, rec, 2, 3, 12); err != nil {
		t.Fatal(err)
	}

	var left []float32
	for _, p := range rec.periods {
		for i := 0; i < len(p.samples); i += 2 {
			left = append(left, p.samples[i])
		}
	}

	expected := []float32{0, 0.5, 0, -0.5}
	for i, samp := range left {
		if samp != expected[i%4] {
			t.Errorf("frame %d: got %v, expected %v", i, samp, expected[i%4])
		}
	}
}

func TestRenderToWriter(t *testing.T) {
	table, err := wavetable.NewGuardedTable(1024)
	if err != nil {
		t.Fatal(err)
	}

	osc, err := wavetable.NewOscillator(wavetable.Params{
		Frequency:  440,
		Amplitude:  0.5,
		SampleRate: 44100,
		Table:      table,
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "tone.wav")

	wr, err := writer.New(path, writer.WAV, 2, 44100, writer.NewNoConverter(256))
	if err != nil {
		t.Fatal(err)
	}

	n, err := Render(osc.Process, wr, 2, 256, 4410)
	if err != nil {
		t.Fatal(err)
	}

	if err := wr.Close(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	// 58 byte float WAV header
	if expected := int64(58 + n*2*4); info.Size() != expected {
		t.Errorf("file is %d bytes, expected %d", info.Size(), expected)
	}

	if wr.Peak() > 0.5 || wr.Peak() < 0.49 {
		t.Errorf("peak %v, expected close to 0.5", wr.Peak())
	}
}
