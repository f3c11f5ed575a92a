package sndfile

import (
	"fmt"

	"github.com/almerlucke/wavetable/writer/backend"
	"github.com/mkb218/gosndfile/sndfile"
)

// FLAC is 24-bit FLAC, a format the plain float32 backends cannot produce
const FLAC = sndfile.SF_FORMAT_FLAC | sndfile.SF_FORMAT_PCM_24

// Sndfile writes any libsndfile supported format, samples are clipped to
// [-1, 1] by libsndfile for integer formats
type Sndfile struct {
	file *sndfile.File
}

func New(filePath string, numChannels int, sampleRate float64, format sndfile.Format) (*Sndfile, error) {
	info := sndfile.Info{
		Samplerate: int32(sampleRate),
		Channels:   int32(numChannels),
		Format:     format,
	}

	file, err := sndfile.Open(filePath, sndfile.Write, &info)
	if err != nil {
		return nil, fmt.Errorf("sndfile: open %s: %w", filePath, err)
	}

	return &Sndfile{
		file: file,
	}, nil
}

func (sf *Sndfile) Close() error {
	return sf.file.Close()
}

// Normalize is not supported, libsndfile files are not rewritten in place
func (sf *Sndfile) Normalize(float32) error {
	return backend.ErrNormalizeUnsupported
}

func (sf *Sndfile) Write(items []float32) error {
	written, err := sf.file.WriteItems(items)
	if err != nil {
		return err
	}

	if written != int64(len(items)) {
		return fmt.Errorf("sndfile: wrote %d of %d samples", written, len(items))
	}

	return nil
}
