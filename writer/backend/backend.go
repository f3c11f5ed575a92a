package backend

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

var ErrNormalizeUnsupported = errors.New("normalize is not supported by this backend")

type Backend interface {
	Close() error
	Normalize(float32) error
	Write([]float32) error
}

// ScaleSamples multiplies all float32 samples from offset to the end of the
// file by scale, in place
func ScaleSamples(file io.ReadWriteSeeker, offset int64, order binary.ByteOrder, scale float32) error {
	// Read and write buffers
	readerBuffer := make([]byte, 8192)
	writerBuffer := make([]byte, 0, 8192)

	// Seek to start of sound data
	_, err := file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}

	// Loop through all samples
	for {
		pos, err := file.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}

		// Read 8192 bytes if possible
		n, err := io.ReadFull(file, readerBuffer)
		if err != nil && err != io.ErrUnexpectedEOF {
			if err != io.EOF {
				return err
			}
			// Break if EOF
			break
		}

		// Create reader and writer objects for conversion
		byteReader := bytes.NewReader(readerBuffer[:n])
		writer := bytes.NewBuffer(writerBuffer[:0])

		// Normalize read bytes and convert back
		for {
			var f float32

			err = binary.Read(byteReader, order, &f)
			if err != nil {
				if err != io.EOF {
					return err
				}
				break
			}

			_ = binary.Write(writer, order, f*scale)
		}

		// Seek last pos
		_, err = file.Seek(pos, io.SeekStart)
		if err != nil {
			return err
		}

		// Overwrite with normalized samples
		_, err = file.Write(writer.Bytes())
		if err != nil {
			return err
		}
	}

	return nil
}
