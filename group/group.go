// Package group wraps the Ristretto255 prime-order group (scalars and
// group elements) with the canonical-encoding and constant-generator
// guarantees the rest of the toolkit is built on. No other package reaches
// into github.com/gtank/ristretto255 directly.
package group

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/gtank/ristretto255"
	"github.com/rawblock/pbmx/pbmxerr"
)

// EncodedLen is the canonical byte length of a Scalar or an Element.
const EncodedLen = 32

// Scalar is an element of the Ristretto255 scalar field.
type Scalar struct{ s *ristretto255.Scalar }

// Element is a point on the Ristretto255 group.
type Element struct{ e *ristretto255.Element }

// Zero is the additive identity of the scalar field.
func Zero() Scalar { return Scalar{ristretto255.NewScalar().Zero()} }

// One is the multiplicative identity of the scalar field.
func One() Scalar { return Scalar{ristretto255.NewScalar().One()} }

// Identity is the group identity element.
func Identity() Element { return Element{ristretto255.NewElement().Zero()} }

// ScalarBaseMult computes s*G for the fixed generator G.
func ScalarBaseMult(s Scalar) Element {
	return Element{ristretto255.NewElement().ScalarBaseMult(s.s)}
}

// G is the process-wide generator constant.
var G = ScalarBaseMult(One())

// RandomScalar draws a uniform nonzero scalar from rng (crypto/rand when
// rng is nil), rejection-sampling away zero.
func RandomScalar(rng io.Reader) (Scalar, error) {
	if rng == nil {
		rng = rand.Reader
	}
	for {
		var wide [64]byte
		if _, err := io.ReadFull(rng, wide[:]); err != nil {
			return Scalar{}, fmt.Errorf("group: drawing random scalar: %w", err)
		}
		s := Scalar{ristretto255.NewScalar().FromUniformBytes(wide[:])}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// RandomElement draws a uniform group element from rng.
func RandomElement(rng io.Reader) (Element, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var wide [64]byte
	if _, err := io.ReadFull(rng, wide[:]); err != nil {
		return Element{}, fmt.Errorf("group: drawing random element: %w", err)
	}
	return Element{ristretto255.NewElement().FromUniformBytes(wide[:])}, nil
}

// Scalar arithmetic. All operations return freshly-allocated values; none
// mutate their receiver or argument.

func (s Scalar) Add(t Scalar) Scalar { return Scalar{ristretto255.NewScalar().Add(s.s, t.s)} }
func (s Scalar) Sub(t Scalar) Scalar { return Scalar{ristretto255.NewScalar().Subtract(s.s, t.s)} }
func (s Scalar) Neg() Scalar         { return Scalar{ristretto255.NewScalar().Negate(s.s)} }
func (s Scalar) Mul(t Scalar) Scalar { return Scalar{ristretto255.NewScalar().Multiply(s.s, t.s)} }
func (s Scalar) Invert() Scalar      { return Scalar{ristretto255.NewScalar().Invert(s.s)} }
func (s Scalar) Equal(t Scalar) bool { return s.s.Equal(t.s) == 1 }
func (s Scalar) IsZero() bool        { return s.Equal(Zero()) }

// Encode appends the scalar's 32-byte canonical little-endian encoding to b.
func (s Scalar) Encode(b []byte) []byte { return s.s.Encode(b) }

// Bytes returns the scalar's canonical 32-byte encoding.
func (s Scalar) Bytes() [EncodedLen]byte {
	var out [EncodedLen]byte
	copy(out[:], s.Encode(nil))
	return out
}

// DecodeScalar parses a canonical 32-byte scalar encoding, rejecting any
// byte string that is not the unique canonical representative.
func DecodeScalar(b []byte) (Scalar, error) {
	s := ristretto255.NewScalar()
	if err := s.Decode(b); err != nil {
		return Scalar{}, fmt.Errorf("%w: scalar: %v", pbmxerr.ErrDecoding, err)
	}
	return Scalar{s}, nil
}

// ScalarFromUint64 maps a small non-negative integer to a scalar; used by
// the entanglement mixing constant and RNG-spec arithmetic.
func ScalarFromUint64(v uint64) Scalar {
	var wide [64]byte
	for i := 0; i < 8; i++ {
		wide[i] = byte(v >> (8 * i))
	}
	return Scalar{ristretto255.NewScalar().FromUniformBytes(wide[:])}
}

// ScalarFromUniformBytes reduces a wide (>=64 byte) buffer modulo the
// scalar field order, used to turn transcript challenge bytes into an
// unbiased scalar.
func ScalarFromUniformBytes(b []byte) Scalar {
	return Scalar{ristretto255.NewScalar().FromUniformBytes(b)}
}

// ElementFromUniformBytes maps a wide (>=64 byte) buffer onto the group via
// the Ristretto Elligator construction, used to turn transcript challenge
// bytes into an unbiased group element.
func ElementFromUniformBytes(b []byte) Element {
	return Element{ristretto255.NewElement().FromUniformBytes(b)}
}

// Element arithmetic.

func (e Element) Add(f Element) Element { return Element{ristretto255.NewElement().Add(e.e, f.e)} }
func (e Element) Sub(f Element) Element {
	return Element{ristretto255.NewElement().Subtract(e.e, f.e)}
}
func (e Element) Neg() Element { return Element{ristretto255.NewElement().Negate(e.e)} }
func (e Element) ScalarMult(s Scalar) Element {
	return Element{ristretto255.NewElement().ScalarMult(s.s, e.e)}
}
func (e Element) Equal(f Element) bool { return e.e.Equal(f.e) == 1 }
func (e Element) IsIdentity() bool     { return e.Equal(Identity()) }

// Encode appends the element's 32-byte canonical Ristretto encoding to b.
func (e Element) Encode(b []byte) []byte { return e.e.Encode(b) }

// Bytes returns the element's canonical 32-byte encoding.
func (e Element) Bytes() [EncodedLen]byte {
	var out [EncodedLen]byte
	copy(out[:], e.Encode(nil))
	return out
}

// DecodeElement parses a canonical 32-byte Ristretto encoding, rejecting
// any encoding not produced by the canonical encoder.
func DecodeElement(b []byte) (Element, error) {
	e := ristretto255.NewElement()
	if err := e.Decode(b); err != nil {
		return Element{}, fmt.Errorf("%w: point: %v", pbmxerr.ErrDecoding, err)
	}
	return Element{e}, nil
}

// SumElements folds Add over a slice, starting from the identity.
func SumElements(es []Element) Element {
	acc := Identity()
	for _, e := range es {
		acc = acc.Add(e)
	}
	return acc
}

// SumScalars folds Add over a slice, starting from zero.
func SumScalars(ss []Scalar) Scalar {
	acc := Zero()
	for _, s := range ss {
		acc = acc.Add(s)
	}
	return acc
}
