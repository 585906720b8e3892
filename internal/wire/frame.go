// Package wire implements the C1 framing and envelope codec: a 4-byte
// big-endian length prefix around an opaque payload, and the
// self-describing JSON envelope carried inside each frame.
package wire

import (
	"encoding/binary"
	"fmt"
)

const lengthPrefixSize = 4

// MaxFrameSize bounds a single decoded frame to guard against a malformed
// or hostile peer claiming an enormous length prefix.
const MaxFrameSize = 4 << 20 // 4 MiB

// Frame prepends a 4-byte big-endian length prefix to payload.
func Frame(payload []byte) []byte {
	out := make([]byte, lengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[lengthPrefixSize:], payload)
	return out
}

// Deframer accumulates bytes from a stream and yields complete frames as
// they become available, retaining any trailing partial frame across calls.
type Deframer struct {
	buf []byte
}

// NewDeframer returns an empty Deframer.
func NewDeframer() *Deframer {
	return &Deframer{}
}

// Push appends newly read bytes to the internal buffer.
func (d *Deframer) Push(b []byte) {
	d.buf = append(d.buf, b...)
}

// Next extracts as many complete frames as are currently buffered, in
// order, leaving any partial trailing frame in the buffer for the next
// call. A malformed length prefix (exceeding MaxFrameSize) returns an error
// and leaves the buffer as it is; the byte stream cannot resync after it, and
// the transport closes the connection on this error.
func (d *Deframer) Next() ([][]byte, error) {
	var frames [][]byte
	for {
		if len(d.buf) < lengthPrefixSize {
			return frames, nil
		}
		n := binary.BigEndian.Uint32(d.buf)
		if n > MaxFrameSize {
			return frames, fmt.Errorf("wire: frame length %d exceeds max %d", n, MaxFrameSize)
		}
		total := lengthPrefixSize + int(n)
		if len(d.buf) < total {
			return frames, nil
		}
		frame := make([]byte, n)
		copy(frame, d.buf[lengthPrefixSize:total])
		frames = append(frames, frame)
		d.buf = d.buf[total:]
	}
}

// Deframe is a one-shot convenience wrapper for tests and simple callers:
// it consumes as many complete frames as are present in buf and returns
// them along with the bytes a real Deframer would retain.
func Deframe(buf []byte) (frames [][]byte, remainder []byte, err error) {
	d := &Deframer{buf: buf}
	frames, err = d.Next()
	return frames, d.buf, err
}
