package wavetable

import (
	"fmt"
	"math"
)

// Policy selects how the table is read at a fractional position
type Policy int

const (
	// Linear interpolates between adjacent samples, needs a guarded table
	Linear Policy = iota
	// Truncate reads the sample at the integer part of the position
	Truncate
)

func (p Policy) String() string {
	switch p {
	case Linear:
		return "linear"
	case Truncate:
		return "truncate"
	}

	return fmt.Sprintf("Policy(%d)", int(p))
}

func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "truncate":
		return Truncate, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrPolicy, s)
}

// WrapMode selects the boundary test used to bring the read position back
// into the table
type WrapMode int

const (
	// WrapInclusive wraps while pos >= L, the position always stays below L
	WrapInclusive WrapMode = iota
	// WrapLegacy wraps while pos > L, so the position may rest at exactly L
	// and the guard sample is read. Kept for output compatibility with older
	// renders.
	WrapLegacy
)

func (w WrapMode) String() string {
	switch w {
	case WrapInclusive:
		return "inclusive"
	case WrapLegacy:
		return "legacy"
	}

	return fmt.Sprintf("WrapMode(%d)", int(w))
}

func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "inclusive":
		return WrapInclusive, nil
	case "legacy":
		return WrapLegacy, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrWrapMode, s)
}

// Params holds the setup values of an oscillator. Phase is given in cycles,
// the table is shared read-only.
type Params struct {
	Frequency  float64
	Amplitude  float64
	Phase      float64
	SampleRate float64
	Table      *Table
	Policy     Policy
	Wrap       WrapMode
}

// Oscillator is a single voice reading cyclically through a table. Only the
// read position changes once the oscillator is constructed.
type Oscillator struct {
	frequency  float64
	amplitude  float64
	phase      float64
	sampleRate float64
	table      *Table
	policy     Policy
	wrap       WrapMode
	length     float64
	pos        float64
	inc        float64
}

// NewOscillator validates the params and returns an oscillator positioned at
// the initial phase
func NewOscillator(p Params) (*Oscillator, error) {
	if p.Table == nil {
		return nil, ErrNilTable
	}

	if !(p.SampleRate > 0) || math.IsInf(p.SampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrSampleRate, p.SampleRate)
	}

	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return nil, fmt.Errorf("%w: %v", ErrFrequency, p.Frequency)
	}

	if math.IsNaN(p.Phase) || math.IsInf(p.Phase, 0) {
		return nil, fmt.Errorf("%w: %v", ErrPhase, p.Phase)
	}

	switch p.Policy {
	case Linear:
		if !p.Table.Guarded() {
			return nil, ErrLinearUnguarded
		}
	case Truncate:
	default:
		return nil, fmt.Errorf("%w: %v", ErrPolicy, p.Policy)
	}

	switch p.Wrap {
	case WrapInclusive:
	case WrapLegacy:
		if !p.Table.Guarded() {
			return nil, ErrLegacyWrapUnguarded
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrWrapMode, p.Wrap)
	}

	length := float64(p.Table.Len())

	inc := p.Frequency * length / p.SampleRate
	if math.IsInf(inc, 0) {
		return nil, fmt.Errorf("%w: %v Hz overflows the read increment", ErrFrequency, p.Frequency)
	}

	osc := &Oscillator{
		frequency:  p.Frequency,
		amplitude:  p.Amplitude,
		phase:      p.Phase,
		sampleRate: p.SampleRate,
		table:      p.Table,
		policy:     p.Policy,
		wrap:       p.Wrap,
		length:     length,
		inc:        inc,
	}

	osc.Reset()

	return osc, nil
}

// Reset moves the read position back to the initial phase
func (osc *Oscillator) Reset() {
	osc.pos = math.Mod(osc.phase, 1) * osc.length
	osc.wrapPosition()
}

func (osc *Oscillator) Frequency() float64 {
	return osc.frequency
}

func (osc *Oscillator) Amplitude() float64 {
	return osc.amplitude
}

func (osc *Oscillator) SampleRate() float64 {
	return osc.sampleRate
}

func (osc *Oscillator) Table() *Table {
	return osc.table
}

func (osc *Oscillator) Policy() Policy {
	return osc.policy
}

func (osc *Oscillator) Wrap() WrapMode {
	return osc.wrap
}

func (osc *Oscillator) Position() float64 {
	return osc.pos
}

// Increment is frequency * L / sampleRate
func (osc *Oscillator) Increment() float64 {
	return osc.inc
}

// wrapPosition brings pos back into the table. A position more than one
// cycle away, only reachable with an increment of L or more, is reduced with
// a single modulo.
func (osc *Oscillator) wrapPosition() {
	if osc.pos < -osc.length || osc.pos >= 2*osc.length {
		positive := osc.pos > 0
		osc.pos = math.Mod(osc.pos, osc.length)

		// legacy wrap rests on L where repeated subtraction would
		if osc.wrap == WrapLegacy && positive && osc.pos == 0 {
			osc.pos = osc.length
		}
	}

	for osc.pos < 0 {
		osc.pos += osc.length
	}

	if osc.wrap == WrapLegacy {
		for osc.pos > osc.length {
			osc.pos -= osc.length
		}
	} else {
		for osc.pos >= osc.length {
			osc.pos -= osc.length
		}
	}
}
