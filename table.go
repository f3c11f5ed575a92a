package wavetable

import (
	"fmt"
	"math"
)

// Table holds one cycle of a waveform sampled at uniform phase intervals.
// A guarded table carries one extra sample equal to the first, so that
// interpolation never has to wrap the successor index.
type Table struct {
	samples []float64 // Len() or Len()+1 when guarded
	length  int
	guarded bool
}

// Fill writes one full sine cycle into table. When the slice is one longer
// than the cycle length the final element is treated as the guard sample.
func Fill(table []float64, length int) {
	twoPiOverLength := 2.0 * math.Pi / float64(length)

	for i := 0; i < length; i++ {
		table[i] = math.Sin(float64(i) * twoPiOverLength)
	}

	if len(table) > length {
		table[length] = table[0]
	}
}

func NewTable(length int) (*Table, error) {
	return newTable(length, false)
}

// NewGuardedTable creates a sine table of length+1 samples, the last sample
// being equal to the first
func NewGuardedTable(length int) (*Table, error) {
	return newTable(length, true)
}

func newTable(length int, guarded bool) (*Table, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrTableLength, length)
	}

	size := length
	if guarded {
		size++
	}

	samples := make([]float64, size)
	Fill(samples, length)

	return &Table{
		samples: samples,
		length:  length,
		guarded: guarded,
	}, nil
}

// NewTableFromSamples wraps precomputed cycle samples. It is meant for
// fixed test tables; when guarded the guard sample is appended.
func NewTableFromSamples(samples []float64, guarded bool) (*Table, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrTableLength, 0)
	}

	length := len(samples)
	size := length
	if guarded {
		size++
	}

	buf := make([]float64, size)
	copy(buf, samples)

	if guarded {
		buf[length] = buf[0]
	}

	return &Table{
		samples: buf,
		length:  length,
		guarded: guarded,
	}, nil
}

func (t *Table) Len() int {
	return t.length
}

func (t *Table) Guarded() bool {
	return t.guarded
}

// Samples returns the backing samples including the guard sample if present.
// The returned slice must not be modified.
func (t *Table) Samples() []float64 {
	return t.samples
}

func (t *Table) At(i int) float64 {
	return t.samples[i]
}
