package stream

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ChristopherRabotin/orrery"
)

// headerSize is the tick counter prefix of each frame.
const headerSize = 8

// EncodeFrame appends to dst the frame of the provided buffer: the tick as a
// little endian uint64 followed by every float32 of buf, little endian.
func EncodeFrame(dst []byte, tick uint64, buf []float32) []byte {
	n := headerSize + 4*len(buf)
	if cap(dst)-len(dst) < n {
		grown := make([]byte, len(dst), len(dst)+n)
		copy(grown, dst)
		dst = grown
	}
	off := len(dst)
	dst = dst[:off+n]
	binary.LittleEndian.PutUint64(dst[off:], tick)
	off += headerSize
	for _, f := range buf {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f))
		off += 4
	}
	return dst
}

// DecodeFrame returns the tick and buffer of a frame.
func DecodeFrame(frame []byte) (uint64, []float32, error) {
	if len(frame) < headerSize {
		return 0, nil, fmt.Errorf("frame of %d bytes is shorter than its header", len(frame))
	}
	body := frame[headerSize:]
	if len(body)%(4*orrery.RecordSize) != 0 {
		return 0, nil, fmt.Errorf("frame body of %d bytes is not made of whole records", len(body))
	}
	buf := make([]float32, len(body)/4)
	for i := range buf {
		buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(body[4*i:]))
	}
	return binary.LittleEndian.Uint64(frame), buf, nil
}
