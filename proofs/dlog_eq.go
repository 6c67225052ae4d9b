// Package proofs implements the Fiat-Shamir NIZK suite every VTMF
// operation emits a proof from: equality of discrete logarithms, its
// 1-of-2 OR composition, shuffle and rotation of known content (Groth;
// de Hoogh et al.), their secret-content reductions, and entanglement.
package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/transcript"
)

// DlogEqProof is a Chaum-Pedersen proof of equality of discrete logs.
type DlogEqProof struct{ C, R group.Scalar }

// DlogEqPublics is (a, b, g, h) with the claim a = x*g and b = x*h.
type DlogEqPublics struct{ A, B, G, H group.Element }

// DlogEqSecrets holds the shared discrete log x.
type DlogEqSecrets struct{ X group.Scalar }

// CreateDlogEq proves a = x*g and b = x*h for the given witness x.
func CreateDlogEq(t *transcript.T, pub DlogEqPublics, sec DlogEqSecrets) (DlogEqProof, error) {
	t.DomainSep("dlog_eq")
	t.CommitPoint("a", pub.A)
	t.CommitPoint("b", pub.B)
	t.CommitPoint("g", pub.G)
	t.CommitPoint("h", pub.H)

	rng, err := t.BuildRng().CommitScalar("x", sec.X).Finalize(nil)
	if err != nil {
		return DlogEqProof{}, err
	}
	w, err := group.RandomScalar(rng)
	if err != nil {
		return DlogEqProof{}, err
	}
	t1 := pub.G.ScalarMult(w)
	t2 := pub.H.ScalarMult(w)
	t.CommitPoint("t1", t1)
	t.CommitPoint("t2", t2)

	c := t.ChallengeScalar("c")
	r := w.Sub(c.Mul(sec.X))
	return DlogEqProof{C: c, R: r}, nil
}

// VerifyDlogEq checks a dlog_eq proof.
func VerifyDlogEq(t *transcript.T, pub DlogEqPublics, proof DlogEqProof) error {
	t.DomainSep("dlog_eq")
	t.CommitPoint("a", pub.A)
	t.CommitPoint("b", pub.B)
	t.CommitPoint("g", pub.G)
	t.CommitPoint("h", pub.H)

	t1 := pub.A.ScalarMult(proof.C).Add(pub.G.ScalarMult(proof.R))
	t2 := pub.B.ScalarMult(proof.C).Add(pub.H.ScalarMult(proof.R))
	t.CommitPoint("t1", t1)
	t.CommitPoint("t2", t2)

	c := t.ChallengeScalar("c")
	if !c.Equal(proof.C) {
		return pbmxerr.ErrBadProof
	}
	return nil
}
