// Package wire provides the fixed-width big-endian primitives the
// SlimProto codec is built on: a read cursor over a byte slice and a
// write buffer, plus ASCII opcode comparison helpers.
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned by any Reader method that would need to read
// past the end of the underlying buffer.
var ErrTruncated = errors.New("wire: truncated input")

// Reader is a read cursor over a byte slice; reads advance it and Seek
// can reposition it anywhere. All multi-byte
// integers are read big-endian.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

// Seek moves the cursor to an absolute offset. It does not validate the
// offset against the buffer length; a subsequent read past the end
// still returns ErrTruncated.
func (r *Reader) Seek(pos int) {
	r.pos = pos
}

func (r *Reader) require(n int) error {
	if r.Len() < n {
		return ErrTruncated
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (byte, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// U64 reads a big-endian uint64.
func (r *Reader) U64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Bytes reads n raw bytes. The returned slice aliases the underlying
// buffer; callers must copy if they retain it beyond the decode.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Rest returns every remaining unread byte and advances the cursor to
// the end of the buffer.
func (r *Reader) Rest() []byte {
	b := r.buf[r.pos:]
	r.pos = len(r.buf)
	return b
}

// Opcode reads the next 4 bytes without interpreting them, for use as
// an ASCII opcode comparison key.
func (r *Reader) Opcode() ([4]byte, error) {
	var op [4]byte
	b, err := r.Bytes(4)
	if err != nil {
		return op, err
	}
	copy(op[:], b)
	return op, nil
}

// Writer accumulates a payload for one outbound message. All multi-byte
// integers are written big-endian.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer with capacity hint n.
func NewWriter(n int) *Writer {
	return &Writer{buf: make([]byte, 0, n)}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports how many bytes have been written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// U8 appends one byte.
func (w *Writer) U8(v byte) {
	w.buf = append(w.buf, v)
}

// U16 appends a big-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// U32 appends a big-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

// U64 appends a big-endian uint64.
func (w *Writer) U64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// OpcodeEqual reports whether the 4-byte opcode op matches the ASCII
// string s (case-sensitive, exactly as the wire compares opcodes).
func OpcodeEqual(op [4]byte, s string) bool {
	if len(s) != 4 {
		return false
	}
	return op[0] == s[0] && op[1] == s[1] && op[2] == s[2] && op[3] == s[3]
}
