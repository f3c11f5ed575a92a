package driver

import (
	"sync"
	"time"
)

// Loopback drives the callback from a goroutine instead of an audio device.
// Every produced buffer is handed to Sink, which must not retain it.
type Loopback struct {
	// Realtime paces the callback at the period rate, otherwise periods are
	// produced as fast as possible
	Realtime bool
	Sink     func(out []float32)

	params  Params
	cb      Callback
	buf     []float32
	signal  *doneSignal
	stop    chan struct{}
	wg      sync.WaitGroup
	started bool
	mutex   sync.Mutex
}

func NewLoopback(sink func(out []float32)) *Loopback {
	return &Loopback{
		Sink: sink,
	}
}

func (d *Loopback) Open(p Params, cb Callback) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.cb != nil {
		return ErrAlreadyOpen
	}

	if err := p.validate(); err != nil {
		return err
	}

	d.params = p
	d.cb = cb
	d.buf = make([]float32, p.FramesPerBuffer*p.Channels)
	d.signal = newDoneSignal()

	return nil
}

func (d *Loopback) Start() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.cb == nil {
		return ErrNotOpen
	}

	if d.started {
		return nil
	}

	d.stop = make(chan struct{})
	d.started = true
	d.wg.Add(1)

	go d.loop(d.stop)

	return nil
}

func (d *Loopback) loop(stop chan struct{}) {
	defer d.wg.Done()

	frames := d.params.FramesPerBuffer

	update := func() {
		d.signal.run(d.cb, d.buf, frames)

		if d.Sink != nil {
			d.Sink(d.buf)
		}
	}

	if !d.Realtime {
		for {
			select {
			case <-stop:
				return
			case <-d.signal.ch:
				return
			default:
				update()
			}
		}
	}

	period := time.Duration(float64(time.Second) * float64(frames) / d.params.SampleRate)
	if period <= 0 {
		period = time.Nanosecond
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-d.signal.ch:
			return
		case <-ticker.C:
			update()
		}
	}
}

// Stop waits for the running period to finish
func (d *Loopback) Stop() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.started {
		return nil
	}

	close(d.stop)
	d.wg.Wait()
	d.started = false

	return nil
}

func (d *Loopback) Close() error {
	err := d.Stop()

	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.cb = nil
	d.buf = nil

	return err
}

func (d *Loopback) Done() <-chan struct{} {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.signal == nil {
		return nil
	}

	return d.signal.ch
}
