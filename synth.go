package wavetable

// StatusContinue is returned by Process to keep the stream running
const StatusContinue = 0

// Synthesize fills out with interleaved stereo frames, the same sample on the
// left and right channel, and returns the number of frames written. At most
// frames frames are written and never more than fit in out.
//
// Synthesize does not allocate and never blocks, it is safe to call from a
// real-time audio thread. Calls on the same oscillator must not overlap.
func (osc *Oscillator) Synthesize(out []float32, frames int) int {
	if n := len(out) / 2; frames > n {
		frames = n
	}

	if frames < 0 {
		frames = 0
	}

	samples := osc.table.samples
	amp := osc.amplitude

	for i := 0; i < frames; i++ {
		lp := NewLookupParam(osc.pos)

		var y float64
		if osc.policy == Linear {
			y = amp * lp.Linear(samples)
		} else {
			y = amp * lp.Truncate(samples)
		}

		osc.pos += osc.inc
		osc.wrapPosition()

		out[2*i] = float32(y)   // left
		out[2*i+1] = float32(y) // right
	}

	return frames
}

// Process is the per period stream callback. The input buffer is ignored.
func (osc *Oscillator) Process(_, out []float32, frames int) int {
	osc.Synthesize(out, frames)

	return StatusContinue
}
