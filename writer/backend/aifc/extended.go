package aifc

import (
	"encoding/binary"
	"math"
)

// extendedBytes encodes f as a big endian 80-bit IEEE 754 extended precision
// number, the format of the AIFF sample rate field. Only zero and normal
// numbers are encoded, which covers every sample rate.
func extendedBytes(f float64) [10]byte {
	var b [10]byte

	if f == 0 {
		return b
	}

	var sign uint16
	if f < 0 {
		sign = 0x8000
		f = -f
	}

	bits := math.Float64bits(f)
	exp := int((bits>>52)&0x7ff) - 1023 + 16383
	mantissa := (bits&(1<<52-1))<<11 | 1<<63

	binary.BigEndian.PutUint16(b[0:], sign|uint16(exp))
	binary.BigEndian.PutUint64(b[2:], mantissa)

	return b
}
