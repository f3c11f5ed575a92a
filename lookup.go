package wavetable

// LookupParam splits a fractional read position into the index of the sample
// at or below the position, its successor and the fraction between them
type LookupParam struct {
	Index1   int
	Index2   int
	Fraction float64
}

// NewLookupParam expects pos >= 0. The successor index is not wrapped, the
// caller provides a guard sample for it.
func NewLookupParam(pos float64) LookupParam {
	i1 := int(pos)

	return LookupParam{
		Index1:   i1,
		Index2:   i1 + 1,
		Fraction: pos - float64(i1),
	}
}

// Truncate returns the sample at the integer part of the position
func (lp LookupParam) Truncate(b []float64) float64 {
	return b[lp.Index1]
}

// Linear interpolates between the sample at the integer part of the position
// and its successor. A zero fraction reads only the first sample.
func (lp LookupParam) Linear(b []float64) float64 {
	s1 := b[lp.Index1]

	if lp.Fraction == 0 {
		return s1
	}

	return (1.0-lp.Fraction)*s1 + lp.Fraction*b[lp.Index2]
}
