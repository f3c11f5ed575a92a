package writer

import (
	"errors"
	"fmt"
	"math"

	"github.com/almerlucke/wavetable/writer/backend"
	"github.com/almerlucke/wavetable/writer/backend/aifc"
	"github.com/almerlucke/wavetable/writer/backend/sndfile"
	"github.com/almerlucke/wavetable/writer/backend/wav"
	"github.com/dh1tw/gosamplerate"
)

type FileFormat int

const (
	AIFC FileFormat = iota
	WAV
	FLAC
)

const (
	DefaultFrameSize = 8192
)

var ErrUnknownFormat = errors.New("unknown file format")

func (f FileFormat) String() string {
	switch f {
	case AIFC:
		return "aifc"
	case WAV:
		return "wav"
	case FLAC:
		return "flac"
	}

	return fmt.Sprintf("FileFormat(%d)", int(f))
}

// ParseFileFormat converts "wav", "aifc" or "flac" to a FileFormat
func ParseFileFormat(s string) (FileFormat, error) {
	switch s {
	case "aifc", "aiff":
		return AIFC, nil
	case "wav":
		return WAV, nil
	case "flac":
		return FLAC, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

type Options struct {
	InputConverter    InputConverter
	ConvertSampleRate bool
	SrConvQuality     int
	InputSampleRate   float64
	Normalize         bool
}

type Writer struct {
	opt         Options
	srConv      gosamplerate.Src
	backend     backend.Backend
	numChannels int
	srRatio     float64
	max         float32
}

func New(filePath string, fileFormat FileFormat, numChannels int, sampleRate float64, inputConv InputConverter) (*Writer, error) {
	return NewWithOptions(filePath, fileFormat, numChannels, sampleRate, Options{
		InputConverter: inputConv,
	})
}

func NewWithOptions(filePath string, fileFormat FileFormat, numChannels int, sampleRate float64, opt Options) (*Writer, error) {
	var be backend.Backend
	var err error

	if opt.InputConverter == nil {
		return nil, errors.New("input converter option should not be nil")
	}

	switch fileFormat {
	case AIFC:
		be, err = aifc.New(filePath, numChannels, sampleRate)
	case WAV:
		be, err = wav.New(filePath, numChannels, sampleRate)
	case FLAC:
		if opt.Normalize {
			return nil, fmt.Errorf("%v: %w", fileFormat, backend.ErrNormalizeUnsupported)
		}

		be, err = sndfile.New(filePath, numChannels, sampleRate, sndfile.FLAC)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, fileFormat)
	}

	if err != nil {
		return nil, err
	}

	w, err := NewWithBackend(be, numChannels, sampleRate, opt)
	if err != nil {
		return nil, errors.Join(err, be.Close())
	}

	return w, nil
}

func NewWithBackend(be backend.Backend, numChannels int, sampleRate float64, opt Options) (*Writer, error) {
	w := &Writer{
		opt:         opt,
		numChannels: numChannels,
		backend:     be,
	}

	if opt.InputConverter == nil {
		return nil, errors.New("input converter option should not be nil")
	}

	if opt.ConvertSampleRate {
		if !(opt.InputSampleRate > 0) {
			return nil, fmt.Errorf("input sample rate should be positive, got %v", opt.InputSampleRate)
		}

		frameSize := DefaultFrameSize

		if opt.InputConverter.FrameSize() != 0 {
			frameSize = opt.InputConverter.FrameSize()
		}

		w.srRatio = sampleRate / opt.InputSampleRate

		// Output buffer must hold a converted input block
		bufferLen := int(math.Ceil(float64(frameSize*numChannels)*math.Max(w.srRatio, 1))) + numChannels

		srConv, err := gosamplerate.New(opt.SrConvQuality, numChannels, bufferLen)
		if err != nil {
			return nil, err
		}

		w.srConv = srConv

		err = w.srConv.SetRatio(w.srRatio)
		if err != nil {
			return nil, errors.Join(err, gosamplerate.Delete(w.srConv))
		}
	}

	return w, nil
}

// Peak returns the largest absolute sample written so far
func (wr *Writer) Peak() float32 {
	return wr.max
}

func (wr *Writer) Write(input any, endOfInput bool) error {
	var err error

	if wr.opt.InputConverter == nil {
		return errors.New("frame converter option should not be nil")
	}

	output := wr.opt.InputConverter.Convert(input)

	for _, samp := range output {
		if samp < 0 {
			samp = -samp
		}

		if samp > wr.max {
			wr.max = samp
		}
	}

	if wr.opt.ConvertSampleRate {
		output, err = wr.srConv.Process(output, wr.srRatio, endOfInput)
		if err != nil {
			return err
		}
	}

	if len(output) > 0 {
		err = wr.backend.Write(output)
		if err != nil {
			return err
		}
	}

	return nil
}

func (wr *Writer) Close() error {
	var errs []error
	var err error

	if wr.opt.Normalize {
		err = wr.backend.Normalize(wr.max)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if wr.opt.ConvertSampleRate {
		err = gosamplerate.Delete(wr.srConv)
		if err != nil {
			errs = append(errs, err)
		}
	}

	err = wr.backend.Close()
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}
