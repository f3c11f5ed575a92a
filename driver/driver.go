package driver

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Stream callback results, the values match the PortAudio callback results
const (
	Continue = 0
	Complete = 1
	Abort    = 2
)

// Callback fills out with frames interleaved frames. It is invoked on the
// driver's audio thread, calls never overlap. Any result other than Continue
// ends the stream.
type Callback func(in, out []float32, frames int) int

type Params struct {
	SampleRate      float64
	FramesPerBuffer int
	Channels        int
}

// Driver owns the stream lifecycle and calls the callback once per period
// between Start and Stop
type Driver interface {
	Open(Params, Callback) error
	Start() error
	Stop() error
	Close() error
	// Done is closed when the callback ends the stream
	Done() <-chan struct{}
}

var (
	ErrUnknownDriver = errors.New("unknown driver")
	ErrUnavailable   = errors.New("driver not available in this build")
	ErrNotOpen       = errors.New("stream is not open")
	ErrAlreadyOpen   = errors.New("stream is already open")
)

// Names lists the drivers accepted by New
var Names = []string{"portaudio", "oto", "loopback"}

// New returns the driver registered under name
func New(name string) (Driver, error) {
	switch name {
	case "portaudio":
		return NewPortAudio(), nil
	case "oto":
		return NewOto(), nil
	case "loopback":
		return NewLoopback(nil), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, name)
}

func (p Params) validate() error {
	if !(p.SampleRate > 0) {
		return fmt.Errorf("sample rate should be positive, got %v", p.SampleRate)
	}

	if p.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer should be positive, got %d", p.FramesPerBuffer)
	}

	if p.Channels <= 0 {
		return fmt.Errorf("channels should be positive, got %d", p.Channels)
	}

	return nil
}

// doneSignal is closed at most once, from the audio thread
type doneSignal struct {
	ch    chan struct{}
	once  sync.Once
	fired atomic.Bool
}

func newDoneSignal() *doneSignal {
	return &doneSignal{
		ch: make(chan struct{}),
	}
}

func (d *doneSignal) fire() {
	d.once.Do(func() {
		d.fired.Store(true)
		close(d.ch)
	})
}

func (d *doneSignal) isFired() bool {
	return d.fired.Load()
}

// run calls cb unless the stream already ended, in which case out is
// silenced
func (d *doneSignal) run(cb Callback, out []float32, frames int) {
	if d.isFired() {
		clear(out)
		return
	}

	if cb(nil, out, frames) != Continue {
		d.fire()
	}
}
