// Package mask implements the ElGamal-style ciphertext pair (a "Mask")
// that the VTMF engine encrypts playing tokens into, and the stack type
// that groups masks for shuffle/shift/rename operations.
package mask

import "github.com/rawblock/pbmx/group"

// Mask is a masked (encrypted) group element: (c0, c1) = (r*G, r*h + p).
type Mask struct {
	C0, C1 group.Element
}

// Open builds the "open" mask form of a plaintext point: (identity, p).
func Open(p group.Element) Mask {
	return Mask{C0: group.Identity(), C1: p}
}

// IsOpen reports whether m's first component is the group identity.
func (m Mask) IsOpen() bool { return m.C0.IsIdentity() }

// Add is componentwise mask addition.
func (m Mask) Add(n Mask) Mask {
	return Mask{C0: m.C0.Add(n.C0), C1: m.C1.Add(n.C1)}
}

// Sub is componentwise mask subtraction.
func (m Mask) Sub(n Mask) Mask {
	return Mask{C0: m.C0.Sub(n.C0), C1: m.C1.Sub(n.C1)}
}

// Neg negates both components.
func (m Mask) Neg() Mask {
	return Mask{C0: m.C0.Neg(), C1: m.C1.Neg()}
}

// MulScalar scales both components by s, making Mask a module over Scalar.
func (m Mask) MulScalar(s group.Scalar) Mask {
	return Mask{C0: m.C0.ScalarMult(s), C1: m.C1.ScalarMult(s)}
}

// Equal compares both components.
func (m Mask) Equal(n Mask) bool { return m.C0.Equal(n.C0) && m.C1.Equal(n.C1) }

// Sum folds Add over a slice of masks, starting from the zero mask
// (identity, identity).
func Sum(ms []Mask) Mask {
	acc := Mask{C0: group.Identity(), C1: group.Identity()}
	for _, m := range ms {
		acc = acc.Add(m)
	}
	return acc
}

// Stack is an ordered sequence of masks treated as a unit for
// shuffle/shift/rename.
type Stack []Mask

// Clone returns an independent copy of the stack.
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)
	return out
}
