package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/almerlucke/wavetable/writer/backend"
)

const (
	// Offset of the first sample, size of the header written by writeHeader
	dataOffset = 58
)

// Wav writes 32-bit float RIFF WAVE files
type Wav struct {
	numChannels  int16
	totalSamples uint32
	sampleRate   int32
	file         *os.File
}

func New(filePath string, numChannels int, sampleRate float64) (*Wav, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}

	wav := &Wav{
		numChannels: int16(numChannels),
		sampleRate:  int32(sampleRate),
		file:        file,
	}

	err = wav.writeHeader()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return wav, nil
}

func (wav *Wav) Close() error {
	var errs []error
	var err error

	err = wav.updateSizes()
	if err != nil {
		errs = append(errs, err)
	}

	err = wav.file.Close()
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (wav *Wav) writeHeader() error {
	var hdr bytes.Buffer

	le := binary.LittleEndian
	blockAlign := int16(4 * wav.numChannels)

	hdr.WriteString("RIFF")                                      // 0
	_ = binary.Write(&hdr, le, uint32(0))                        // 4, total size, overwritten on close
	hdr.WriteString("WAVE")                                      // 8
	hdr.WriteString("fmt ")                                      // 12
	_ = binary.Write(&hdr, le, uint32(18))                       // 16, size of fmt chunk
	_ = binary.Write(&hdr, le, int16(3))                         // 20, IEEE float format
	_ = binary.Write(&hdr, le, wav.numChannels)                  // 22
	_ = binary.Write(&hdr, le, wav.sampleRate)                   // 24
	_ = binary.Write(&hdr, le, wav.sampleRate*int32(blockAlign)) // 28, bytes per second
	_ = binary.Write(&hdr, le, blockAlign)                       // 32
	_ = binary.Write(&hdr, le, int16(32))                        // 34, bits per sample
	_ = binary.Write(&hdr, le, int16(0))                         // 36, size of extension
	hdr.WriteString("fact")                                      // 38
	_ = binary.Write(&hdr, le, uint32(4))                        // 42
	_ = binary.Write(&hdr, le, uint32(0))                        // 46, sample frames, overwritten on close
	hdr.WriteString("data")                                      // 50
	_ = binary.Write(&hdr, le, uint32(0))                        // 54, data size, overwritten on close

	_, err := wav.file.Write(hdr.Bytes())

	return err
}

func (wav *Wav) updateSizes() error {
	var size uint32

	// Seek total size
	_, err := wav.file.Seek(4, io.SeekStart)
	if err != nil {
		return err
	}

	// Update total size
	size = dataOffset - 8 + wav.totalSamples*4
	err = binary.Write(wav.file, binary.LittleEndian, size)
	if err != nil {
		return err
	}

	// Seek fact section size
	_, err = wav.file.Seek(46, io.SeekStart)
	if err != nil {
		return err
	}

	// Update fact section size
	size = wav.totalSamples / uint32(wav.numChannels)
	err = binary.Write(wav.file, binary.LittleEndian, size)
	if err != nil {
		return err
	}

	// Seek data section size
	_, err = wav.file.Seek(54, io.SeekStart)
	if err != nil {
		return err
	}

	// Update data section size
	size = wav.totalSamples * 4
	err = binary.Write(wav.file, binary.LittleEndian, size)
	if err != nil {
		return err
	}

	return nil
}

// Normalize scales every written sample by 1/max
func (wav *Wav) Normalize(max float32) error {
	if max <= 0.0 {
		return nil
	}

	return backend.ScaleSamples(wav.file, dataOffset, binary.LittleEndian, 1.0/max)
}

func (wav *Wav) Write(items []float32) error {
	var buf bytes.Buffer

	_ = binary.Write(&buf, binary.LittleEndian, items)

	wav.totalSamples += uint32(len(items))

	_, err := wav.file.Write(buf.Bytes())

	return err
}
