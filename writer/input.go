package writer

// InputConverter convert any buffer input type to a float32 buffer output
type InputConverter interface {
	Convert(any) []float32
	FrameSize() int
}

// NoConverter just passes the input to the output as []float32, the input
// is already interleaved
type NoConverter struct {
	frameSize int
}

func NewNoConverter(frameSize int) *NoConverter {
	return &NoConverter{
		frameSize: frameSize,
	}
}

func (c *NoConverter) Convert(input any) []float32 {
	return input.([]float32)
}

func (c *NoConverter) FrameSize() int {
	return c.frameSize
}
