//go:build !headless

package driver

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudio plays the stream on the default output device
type PortAudio struct {
	stream   *portaudio.Stream
	cb       Callback
	channels int
	signal   *doneSignal
	started  bool
	mutex    sync.Mutex
}

func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

func (pa *PortAudio) Open(p Params, cb Callback) error {
	pa.mutex.Lock()
	defer pa.mutex.Unlock()

	if pa.stream != nil {
		return ErrAlreadyOpen
	}

	if err := p.validate(); err != nil {
		return err
	}

	// Initialize library before making any other calls
	err := portaudio.Initialize()
	if err != nil {
		return fmt.Errorf("portaudio: initialize: %w", err)
	}

	device, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return errors.Join(fmt.Errorf("portaudio: default output device: %w", err), portaudio.Terminate())
	}

	params := portaudio.LowLatencyParameters(nil, device)
	params.Output.Channels = p.Channels
	params.SampleRate = p.SampleRate
	params.FramesPerBuffer = p.FramesPerBuffer
	params.Flags = portaudio.ClipOff

	pa.cb = cb
	pa.channels = p.Channels
	pa.signal = newDoneSignal()

	stream, err := portaudio.OpenStream(params, pa.process)
	if err != nil {
		return errors.Join(fmt.Errorf("portaudio: open stream on %s: %w", device.Name, err), portaudio.Terminate())
	}

	pa.stream = stream

	return nil
}

func (pa *PortAudio) process(_, out []float32) {
	pa.signal.run(pa.cb, out, len(out)/pa.channels)
}

func (pa *PortAudio) Start() error {
	pa.mutex.Lock()
	defer pa.mutex.Unlock()

	if pa.stream == nil {
		return ErrNotOpen
	}

	if pa.started {
		return nil
	}

	if err := pa.stream.Start(); err != nil {
		return fmt.Errorf("portaudio: start stream: %w", err)
	}

	pa.started = true

	return nil
}

func (pa *PortAudio) Stop() error {
	pa.mutex.Lock()
	defer pa.mutex.Unlock()

	if !pa.started {
		return nil
	}

	if err := pa.stream.Stop(); err != nil {
		return fmt.Errorf("portaudio: stop stream: %w", err)
	}

	pa.started = false

	return nil
}

func (pa *PortAudio) Close() error {
	var errs []error

	err := pa.Stop()
	if err != nil {
		errs = append(errs, err)
	}

	pa.mutex.Lock()
	defer pa.mutex.Unlock()

	if pa.stream != nil {
		err = pa.stream.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("portaudio: close stream: %w", err))
		}

		err = portaudio.Terminate()
		if err != nil {
			errs = append(errs, fmt.Errorf("portaudio: terminate: %w", err))
		}

		pa.stream = nil
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (pa *PortAudio) Done() <-chan struct{} {
	pa.mutex.Lock()
	defer pa.mutex.Unlock()

	if pa.signal == nil {
		return nil
	}

	return pa.signal.ch
}
