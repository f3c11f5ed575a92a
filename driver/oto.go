//go:build !headless

package driver

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, it is shared by every Oto driver
var (
	otoContext    *oto.Context
	otoParams     Params
	otoContextMtx sync.Mutex
)

func sharedOtoContext(p Params) (*oto.Context, error) {
	otoContextMtx.Lock()
	defer otoContextMtx.Unlock()

	if otoContext != nil {
		if otoParams.SampleRate != p.SampleRate || otoParams.Channels != p.Channels {
			return nil, fmt.Errorf("oto: context already created for %v Hz %d channels", otoParams.SampleRate, otoParams.Channels)
		}

		return otoContext, nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   int(p.SampleRate),
		ChannelCount: p.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(float64(time.Second) * float64(p.FramesPerBuffer) / p.SampleRate),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto: new context: %w", err)
	}
	<-ready

	otoContext = ctx
	otoParams = p

	return ctx, nil
}

// Oto plays the stream through an oto player. The player pulls bytes, the
// callback is invoked once per period of pulled frames.
type Oto struct {
	player  *oto.Player
	cb      Callback
	params  Params
	buf     []float32 // Pre-allocated period buffer
	signal  *doneSignal
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

func NewOto() *Oto {
	return &Oto{}
}

func (o *Oto) Open(p Params, cb Callback) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player != nil {
		return ErrAlreadyOpen
	}

	if err := p.validate(); err != nil {
		return err
	}

	ctx, err := sharedOtoContext(p)
	if err != nil {
		return err
	}

	o.cb = cb
	o.params = p
	o.buf = make([]float32, p.FramesPerBuffer*p.Channels)
	o.signal = newDoneSignal()
	o.player = ctx.NewPlayer(o)

	return nil
}

// Read implements io.Reader for the oto player. Only whole frames are
// produced, len(p) is rounded down to a multiple of the frame size and the
// remaining bytes are left untouched. A buffer smaller than one frame returns
// io.ErrShortBuffer.
func (o *Oto) Read(p []byte) (int, error) {
	bytesPerFrame := 4 * o.params.Channels
	frames := len(p) / bytesPerFrame
	n := 0

	if frames == 0 && len(p) > 0 {
		return 0, io.ErrShortBuffer
	}

	for frames > 0 {
		chunk := min(frames, o.params.FramesPerBuffer)
		buf := o.buf[:chunk*o.params.Channels]

		o.signal.run(o.cb, buf, chunk)

		for _, samp := range buf {
			binary.LittleEndian.PutUint32(p[n:], math.Float32bits(samp))
			n += 4
		}

		frames -= chunk
	}

	return n, nil
}

func (o *Oto) Start() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player == nil {
		return ErrNotOpen
	}

	if !o.started {
		o.player.Play()
		o.started = true
	}

	return nil
}

func (o *Oto) Stop() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.started {
		o.player.Pause()
		o.started = false
	}

	return nil
}

func (o *Oto) Close() error {
	var errs []error

	err := o.Stop()
	if err != nil {
		errs = append(errs, err)
	}

	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.player != nil {
		err = o.player.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("oto: close player: %w", err))
		}

		o.player = nil
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (o *Oto) Done() <-chan struct{} {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.signal == nil {
		return nil
	}

	return o.signal.ch
}
