package render

import (
	"errors"
	"fmt"

	"github.com/almerlucke/wavetable/driver"
)

// Sink receives interleaved periods, *writer.Writer is a Sink
type Sink interface {
	Write(input any, endOfInput bool) error
}

var ErrAborted = errors.New("callback aborted the stream")

// Render pulls totalFrames frames from cb, framesPerBuffer frames at a time,
// and writes them to sink. The last period may be shorter and is written
// with endOfInput set. Rendering stops early when the callback returns
// anything but driver.Continue, the period it produced is still written.
//
// The number of rendered frames is returned. driver.Complete ends rendering
// without error, any other status is reported as ErrAborted.
func Render(cb driver.Callback, sink Sink, channels, framesPerBuffer, totalFrames int) (int, error) {
	if channels <= 0 || framesPerBuffer <= 0 {
		return 0, fmt.Errorf("channels and frames per buffer should be positive, got %d and %d", channels, framesPerBuffer)
	}

	if totalFrames <= 0 {
		return 0, fmt.Errorf("total frames should be positive, got %d", totalFrames)
	}

	buf := make([]float32, framesPerBuffer*channels)
	rendered := 0

	for rendered < totalFrames {
		frames := min(framesPerBuffer, totalFrames-rendered)
		out := buf[:frames*channels]

		status := cb(nil, out, frames)
		rendered += frames

		end := rendered == totalFrames || status != driver.Continue

		err := sink.Write(out, end)
		if err != nil {
			return rendered, fmt.Errorf("write period at frame %d: %w", rendered-frames, err)
		}

		switch status {
		case driver.Continue:
		case driver.Complete:
			return rendered, nil
		default:
			return rendered, fmt.Errorf("%w at frame %d with status %d", ErrAborted, rendered, status)
		}
	}

	return rendered, nil
}
