//go:build headless

package driver

// PortAudio is unavailable in headless builds
type PortAudio struct {
	unavailable
}

func NewPortAudio() *PortAudio {
	return &PortAudio{}
}

// Oto is unavailable in headless builds
type Oto struct {
	unavailable
}

func NewOto() *Oto {
	return &Oto{}
}

type unavailable struct{}

func (unavailable) Open(Params, Callback) error {
	return ErrUnavailable
}

func (unavailable) Start() error {
	return ErrNotOpen
}

func (unavailable) Stop() error {
	return nil
}

func (unavailable) Close() error {
	return nil
}

func (unavailable) Done() <-chan struct{} {
	return nil
}
