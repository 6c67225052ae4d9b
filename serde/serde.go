// Package serde implements the canonical byte encoding every Id and every
// top-level export is built from: a fixed field-by-field layout, a
// length-delimited outer framing, and a URL-safe padding-free base64
// alias. Because the Id-stability invariant (re-serializing a value must
// reproduce the same bytes, and thus the same Id) is a hard requirement
// of the specification rather than a generic marshalling convenience, the
// layout is hand-written directly on top of encoding/binary instead of a
// general-purpose marshaller — see DESIGN.md for the rationale.
package serde

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
)

// FormatTag is the only byte-framing version this toolkit emits or
// accepts.
const FormatTag byte = 1

// Writer builds a canonical field-by-field message body.
type Writer struct{ buf []byte }

// NewWriter returns an empty canonical-encoding writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated message body.
func (w *Writer) Bytes() []byte { return w.buf }

// PutByte appends a single raw byte, uninterpreted by any other Put method.
func (w *Writer) PutByte(b byte) { w.buf = append(w.buf, b) }

// PutUint64 appends a fixed 8-byte little-endian integer.
func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutBytes appends a length-prefixed byte string.
func (w *Writer) PutBytes(b []byte) {
	w.PutUint64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// PutString appends a length-prefixed UTF-8 string.
func (w *Writer) PutString(s string) { w.PutBytes([]byte(s)) }

// PutScalar appends a scalar's 32-byte canonical encoding.
func (w *Writer) PutScalar(s group.Scalar) { w.buf = s.Encode(w.buf) }

// PutPoint appends a point's 32-byte canonical encoding.
func (w *Writer) PutPoint(p group.Element) { w.buf = p.Encode(w.buf) }

// Reader parses a canonical field-by-field message body produced by
// Writer, in the same declaration order.
type Reader struct{ buf []byte }

// NewReader wraps a message body for field-by-field decoding.
func NewReader(b []byte) *Reader { return &Reader{b} }

// Done reports whether every field has been consumed.
func (r *Reader) Done() bool { return len(r.buf) == 0 }

func (r *Reader) need(n int) error {
	if len(r.buf) < n {
		return fmt.Errorf("%w: serde: need %d bytes, have %d", pbmxerr.ErrDecoding, n, len(r.buf))
	}
	return nil
}

// GetUint64 reads a fixed 8-byte little-endian integer.
func (r *Reader) GetUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.buf[:8])
	r.buf = r.buf[8:]
	return v, nil
}

// GetBytes reads a length-prefixed byte string.
func (r *Reader) GetBytes() ([]byte, error) {
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := r.buf[:n]
	r.buf = r.buf[n:]
	return out, nil
}

// GetString reads a length-prefixed UTF-8 string.
func (r *Reader) GetString() (string, error) {
	b, err := r.GetBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// GetScalar reads a canonical 32-byte scalar, rejecting non-canonical
// encodings.
func (r *Reader) GetScalar() (group.Scalar, error) {
	if err := r.need(group.EncodedLen); err != nil {
		return group.Scalar{}, err
	}
	b := r.buf[:group.EncodedLen]
	r.buf = r.buf[group.EncodedLen:]
	return group.DecodeScalar(b)
}

// GetPoint reads a canonical 32-byte point, rejecting non-canonical
// encodings.
func (r *Reader) GetPoint() (group.Element, error) {
	if err := r.need(group.EncodedLen); err != nil {
		return group.Element{}, err
	}
	b := r.buf[:group.EncodedLen]
	r.buf = r.buf[group.EncodedLen:]
	return group.DecodeElement(b)
}

// Frame wraps a message body in the length-delimited outer framing:
// format_tag(=1) || varint-length || message_bytes.
func Frame(messageBytes []byte) []byte {
	out := make([]byte, 0, 1+binary.MaxVarintLen64+len(messageBytes))
	out = append(out, FormatTag)
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(messageBytes)))
	out = append(out, lenBuf[:n]...)
	out = append(out, messageBytes...)
	return out
}

// Unframe strips the outer framing, rejecting a mismatched format tag or a
// length that does not fit the remaining bytes.
func Unframe(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return nil, fmt.Errorf("%w: serde: empty frame", pbmxerr.ErrDecoding)
	}
	if b[0] != FormatTag {
		return nil, fmt.Errorf("%w: serde: unknown format tag %d", pbmxerr.ErrDecoding, b[0])
	}
	length, n := binary.Uvarint(b[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: serde: malformed length varint", pbmxerr.ErrDecoding)
	}
	rest := b[1+n:]
	if uint64(len(rest)) < length {
		return nil, fmt.Errorf("%w: serde: truncated message, want %d have %d", pbmxerr.ErrDecoding, length, len(rest))
	}
	return rest[:length], nil
}

// ToBase64 frames messageBytes and aliases it as URL-safe, padding-free
// base64, the exported form of every top-level value.
func ToBase64(messageBytes []byte) string {
	return base64.RawURLEncoding.EncodeToString(Frame(messageBytes))
}

// FromBase64 reverses ToBase64.
func FromBase64(s string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: serde: base64: %v", pbmxerr.ErrDecoding, err)
	}
	return Unframe(raw)
}
