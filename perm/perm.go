// Package perm implements permutations of a fixed size and the two
// distributions over them (uniform shuffles, uniform cyclic shifts) used
// by the mask-shuffle and mask-shift operations.
package perm

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/rawblock/pbmx/pbmxerr"
)

// Permutation maps index i to p[i]: under ApplyTo's gather convention the
// element originally at index p[i] ends up at index i.
type Permutation struct {
	p []int
}

// Identity returns the identity permutation of size n.
func Identity(n int) *Permutation {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &Permutation{p}
}

// Shift returns the permutation that rotates a sequence of length n right
// by k positions: p[i] = (i+n-k)%n, so ApplyTo gathers element (i+n-k)%n
// into position i and element i ends up at (i+k)%n.
func Shift(n, k int) *Permutation {
	p := make([]int, n)
	for i := range p {
		p[i] = (i + n - k%n + n) % n
	}
	return &Permutation{p}
}

// New validates and wraps a raw index permutation.
func New(p []int) (*Permutation, error) {
	seen := make([]bool, len(p))
	for _, v := range p {
		if v < 0 || v >= len(p) || seen[v] {
			return nil, fmt.Errorf("%w: perm: not a permutation", pbmxerr.ErrInvalidInput)
		}
		seen[v] = true
	}
	cp := append([]int(nil), p...)
	return &Permutation{cp}, nil
}

// Len returns the permutation's size.
func (pi *Permutation) Len() int { return len(pi.p) }

// At returns p[i].
func (pi *Permutation) At(i int) int { return pi.p[i] }

// Slice returns the permutation's underlying index slice (read-only by
// convention; callers must not mutate it).
func (pi *Permutation) Slice() []int { return pi.p }

// Inverse returns the permutation pi^-1 such that pi.Inverse().At(pi.At(i)) == i.
func (pi *Permutation) Inverse() *Permutation {
	inv := make([]int, len(pi.p))
	for i, v := range pi.p {
		inv[v] = i
	}
	return &Permutation{inv}
}

// After composes pi then other: (pi.After(other)).At(i) == other.At(pi.At(i)).
func (pi *Permutation) After(other *Permutation) *Permutation {
	out := make([]int, len(pi.p))
	for i, v := range pi.p {
		out[i] = other.p[v]
	}
	return &Permutation{out}
}

// ApplyTo permutes s in place: the element originally at index pi.At(i)
// moves to index i.
func ApplyTo[T any](pi *Permutation, s []T) {
	out := make([]T, len(s))
	for i := range s {
		out[i] = s[pi.p[i]]
	}
	copy(s, out)
}

// Shuffles is crypto/rand-backed uniform distribution over permutations
// of size n (a Fisher-Yates shuffle of the identity).
type Shuffles struct{ N int }

// Sample draws a uniformly random permutation.
func (d Shuffles) Sample(rng io.Reader) (*Permutation, error) {
	if rng == nil {
		rng = rand.Reader
	}
	p := Identity(d.N).p
	for i := d.N - 1; i > 0; i-- {
		j, err := randIntn(rng, i+1)
		if err != nil {
			return nil, err
		}
		p[i], p[j] = p[j], p[i]
	}
	return &Permutation{p}, nil
}

// Shifts is a uniform distribution over cyclic shifts of size n.
type Shifts struct{ N int }

// Sample draws a uniformly random shift.
func (d Shifts) Sample(rng io.Reader) (*Permutation, error) {
	if rng == nil {
		rng = rand.Reader
	}
	k, err := randIntn(rng, d.N)
	if err != nil {
		return nil, err
	}
	return Shift(d.N, k), nil
}

func randIntn(rng io.Reader, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	v, err := rand.Int(rng, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("perm: sampling: %w", err)
	}
	return int(v.Int64()), nil
}
