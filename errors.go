package wavetable

import "errors"

var (
	ErrTableLength         = errors.New("table length should be positive")
	ErrNilTable            = errors.New("table should not be nil")
	ErrSampleRate          = errors.New("sample rate should be positive")
	ErrFrequency           = errors.New("frequency should be positive and finite")
	ErrPhase               = errors.New("phase should be finite")
	ErrPolicy              = errors.New("unknown interpolation policy")
	ErrWrapMode            = errors.New("unknown wrap mode")
	ErrLinearUnguarded     = errors.New("linear interpolation needs a guarded table")
	ErrLegacyWrapUnguarded = errors.New("legacy wrap needs a guarded table")
)
