// Package pedersen implements the vector Pedersen commitment scheme used
// by the secret_shuffle and secret_rotation arguments to bind a witness to
// a single group element before reducing to their "known content"
// counterparts.
package pedersen

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
)

// Scheme is a commitment scheme Commit(v_0..v_{n-1}, r) = r*H + Σ v_i*G_i.
type Scheme struct {
	H group.Element
	G []group.Element
}

// Random builds an n-ary scheme from fresh random generators; used in
// proof test fixtures where no transcript derivation is required.
func Random(n int, rng io.Reader) (*Scheme, error) {
	if rng == nil {
		rng = rand.Reader
	}
	h, err := group.RandomElement(rng)
	if err != nil {
		return nil, err
	}
	g := make([]group.Element, n)
	for i := range g {
		g[i], err = group.RandomElement(rng)
		if err != nil {
			return nil, err
		}
	}
	return &Scheme{H: h, G: g}, nil
}

// CommitBy computes the commitment for explicit values and blinding.
func (s *Scheme) CommitBy(values []group.Scalar, blinding group.Scalar) (group.Element, error) {
	if len(values) > len(s.G) {
		return group.Element{}, fmt.Errorf("%w: pedersen: %d values exceed %d generators", pbmxerr.ErrInvalidInput, len(values), len(s.G))
	}
	acc := s.H.ScalarMult(blinding)
	for i, v := range values {
		acc = acc.Add(s.G[i].ScalarMult(v))
	}
	return acc, nil
}

// CommitTo samples fresh blinding and returns the commitment together with
// the sampled blinding (so the caller can retain it as a proof witness).
func (s *Scheme) CommitTo(values []group.Scalar, rng io.Reader) (group.Element, group.Scalar, error) {
	r, err := group.RandomScalar(rng)
	if err != nil {
		return group.Element{}, group.Scalar{}, err
	}
	c, err := s.CommitBy(values, r)
	return c, r, err
}

// Open verifies that commit == CommitBy(values, blinding).
func (s *Scheme) Open(commit group.Element, values []group.Scalar, blinding group.Scalar) error {
	want, err := s.CommitBy(values, blinding)
	if err != nil {
		return err
	}
	if !want.Equal(commit) {
		return pbmxerr.ErrBadProof
	}
	return nil
}
