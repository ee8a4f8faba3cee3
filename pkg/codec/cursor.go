package codec

import (
	"encoding/binary"
	"fmt"
)

// Tag is a 4-byte ASCII type code identifying a record, group, or field
// kind. Tags are compared byte-wise and never interpreted.
type Tag [4]byte

// MakeTag builds a Tag from a 4-character string. It panics on any other
// length; tags are compile-time constants in practice.
func MakeTag(s string) Tag {
	if len(s) != 4 {
		panic(fmt.Sprintf("codec: tag must be 4 bytes, got %q", s))
	}
	var t Tag
	copy(t[:], s)
	return t
}

func (t Tag) String() string {
	return string(t[:])
}

// Reader is a positional little-endian reader over an in-memory buffer.
// Every read is bounds-checked and advances the position; reads past the
// end fail with ErrUnexpectedEOF carrying the offset.
type Reader struct {
	data []byte
	pos  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current byte offset from the start of the buffer.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Bytes consumes and returns the next n bytes. The returned slice aliases
// the underlying buffer; callers that mutate it must copy first.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w at offset %d (want %d bytes, have %d)",
			ErrUnexpectedEOF, r.pos, n, r.Remaining())
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Peek returns the next n bytes without advancing.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, fmt.Errorf("%w at offset %d (want %d bytes, have %d)",
			ErrUnexpectedEOF, r.pos, n, r.Remaining())
	}
	return r.data[r.pos : r.pos+n], nil
}

// Tag consumes a 4-byte type tag.
func (r *Reader) Tag() (Tag, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return Tag{}, err
	}
	var t Tag
	copy(t[:], b)
	return t, nil
}

// U8 consumes one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 consumes a little-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 consumes a little-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// I32 consumes a little-endian int32.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// Writer appends little-endian values to a growing buffer. Writes cannot
// fail; the buffer grows as needed.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the accumulated buffer. It aliases the Writer's storage.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Tag appends a 4-byte type tag.
func (w *Writer) Tag(t Tag) {
	w.buf = append(w.buf, t[:]...)
}

// U8 appends one byte.
func (w *Writer) U8(v uint8) {
	w.buf = append(w.buf, v)
}

// U16 appends a little-endian uint16.
func (w *Writer) U16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// U32 appends a little-endian uint32.
func (w *Writer) U32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// I32 appends a little-endian int32.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// PatchU32 overwrites a previously written uint32 at offset off. Used to
// back-fill declared sizes once a child region's length is known.
func (w *Writer) PatchU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[off:], v)
}
