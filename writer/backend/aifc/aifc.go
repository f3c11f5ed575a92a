package aifc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/almerlucke/wavetable/writer/backend"
)

const (
	aifcVersion1        = uint32(0xA2805140)
	aifcCompressionName = "32-bit floating point"
	aifcCompressionType = "fl32"
)

// Header layout, see writeHeader
const (
	formSizeOffset   = 4
	numFramesOffset  = 34
	soundSizeOffset  = 80
	dataOffset       = 92
	commonChunkSize  = 44
	versionChunkSize = 4
)

func toPascalBytes(str string) []byte {
	strlen := len(str)
	size := strlen + 1
	ps := make([]byte, size+size%2) // pad 1 byte if uneven
	ps[0] = byte(strlen)
	copy(ps[1:], str)
	return ps
}

// AIFC writes 32-bit float AIFF-C files
type AIFC struct {
	numChannels     int16
	numSampleFrames uint32
	sampleRate      float64
	file            *os.File
}

func New(filePath string, numChannels int, sampleRate float64) (*AIFC, error) {
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}

	aifc := &AIFC{
		numChannels: int16(numChannels),
		sampleRate:  sampleRate,
		file:        file,
	}

	err = aifc.writeHeader()
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	return aifc, nil
}

func (aifc *AIFC) Close() error {
	updateErr := aifc.updateSizes()
	closeErr := aifc.file.Close()

	if updateErr != nil || closeErr != nil {
		return errors.Join(updateErr, closeErr)
	}

	return nil
}

// soundChunkSize includes the offset and block size fields
func (aifc *AIFC) soundChunkSize() uint32 {
	return 8 + aifc.numSampleFrames*uint32(aifc.numChannels)*4
}

// formChunkSize counts everything after the FORM size field
func (aifc *AIFC) formChunkSize() uint32 {
	return 4 + (8 + versionChunkSize) + (8 + commonChunkSize) + (8 + aifc.soundChunkSize())
}

func (aifc *AIFC) writeHeader() error {
	var hdr bytes.Buffer

	be := binary.BigEndian
	compressionName := toPascalBytes(aifcCompressionName)
	sampleRate := extendedBytes(aifc.sampleRate)

	// FORM container, size filled in on close
	hdr.WriteString("FORM")
	_ = binary.Write(&hdr, be, uint32(0))
	hdr.WriteString("AIFC")

	// Version chunk
	hdr.WriteString("FVER")
	_ = binary.Write(&hdr, be, uint32(versionChunkSize))
	_ = binary.Write(&hdr, be, aifcVersion1)

	// Common chunk, number of frames filled in on close
	hdr.WriteString("COMM")
	_ = binary.Write(&hdr, be, uint32(len(compressionName)+22))
	_ = binary.Write(&hdr, be, aifc.numChannels)
	_ = binary.Write(&hdr, be, uint32(0))
	_ = binary.Write(&hdr, be, int16(32))
	hdr.Write(sampleRate[:])
	hdr.WriteString(aifcCompressionType)
	hdr.Write(compressionName)

	// Sound data chunk header, size filled in on close
	hdr.WriteString("SSND")
	_ = binary.Write(&hdr, be, uint32(0))
	_ = binary.Write(&hdr, be, uint32(0)) // offset
	_ = binary.Write(&hdr, be, uint32(0)) // block size

	if hdr.Len() != dataOffset {
		return fmt.Errorf("aifc: header is %d bytes, expected %d", hdr.Len(), dataOffset)
	}

	_, err := aifc.file.Write(hdr.Bytes())

	return err
}

func (aifc *AIFC) updateSizes() error {
	fields := []struct {
		offset int64
		value  uint32
	}{
		{formSizeOffset, aifc.formChunkSize()},
		{numFramesOffset, aifc.numSampleFrames},
		{soundSizeOffset, aifc.soundChunkSize()},
	}

	for _, field := range fields {
		_, err := aifc.file.Seek(field.offset, io.SeekStart)
		if err != nil {
			return err
		}

		err = binary.Write(aifc.file, binary.BigEndian, field.value)
		if err != nil {
			return err
		}
	}

	return nil
}

// Normalize scales every written sample by 1/max
func (aifc *AIFC) Normalize(max float32) error {
	if max <= 0.0 {
		return nil
	}

	return backend.ScaleSamples(aifc.file, dataOffset, binary.BigEndian, 1.0/max)
}

func (aifc *AIFC) Write(items []float32) error {
	var buf bytes.Buffer

	numFrames := len(items) / int(aifc.numChannels)

	_ = binary.Write(&buf, binary.BigEndian, items)

	aifc.numSampleFrames += uint32(numFrames)

	_, err := aifc.file.Write(buf.Bytes())

	return err
}
