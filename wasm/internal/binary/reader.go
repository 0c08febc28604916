package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrOverflow is returned when a LEB128 value does not fit its target width.
var ErrOverflow = errors.New("leb128: overflow")

// Reader decodes wasm binary encodings from a byte slice.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the offset of the next unread byte.
func (r *Reader) Position() int { return r.off }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.data) - r.off }

// ReadByte returns the next byte, or io.EOF at the end of the data.
func (r *Reader) ReadByte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, io.EOF
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:])
	r.off += n
	return out, nil
}

// ReadU32 reads an unsigned LEB128 uint32.
func (r *Reader) ReadU32() (uint32, error) {
	v, err := r.uleb(32)
	return uint32(v), err
}

// ReadU64 reads an unsigned LEB128 uint64.
func (r *Reader) ReadU64() (uint64, error) {
	return r.uleb(64)
}

// uleb reads an unsigned LEB128 value of at most bits significant bits.
func (r *Reader) uleb(bits uint) (uint64, error) {
	var v uint64
	for shift := uint(0); ; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if shift+7 > bits && uint64(b&0x7f)>>(bits-shift) != 0 {
			return 0, r.overflow()
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		if shift+7 >= bits {
			return 0, r.overflow()
		}
	}
}

// ReadS64 reads a signed LEB128 int64. Heap types (s33) are read with it.
func (r *Reader) ReadS64() (int64, error) {
	var v int64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				v |= -1 << shift
			}
			return v, nil
		}
		if shift >= 70 {
			return 0, r.overflow()
		}
	}
}

// ReadName reads a length-prefixed UTF-8 name.
func (r *Reader) ReadName() (string, error) {
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	if int(n) > r.Len() {
		return "", io.ErrUnexpectedEOF
	}
	raw := r.data[r.off : r.off+int(n)]
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("at position %d: invalid UTF-8 in name", r.off)
	}
	r.off += int(n)
	return string(raw), nil
}

// ReadU32LE reads a fixed 4-byte little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	if r.Len() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) overflow() error {
	return fmt.Errorf("at position %d: %w", r.off, ErrOverflow)
}

// ParseError is a decoding failure with the section and offset it occurred
// at.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("wasm: at position %d: %v", e.Position, e.Err)
	}
	return fmt.Sprintf("wasm: %s at position %d: %v", e.Section, e.Position, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WrapError attaches the current offset and section name to err.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{Err: err, Section: section, Position: r.off}
}
