package proofs

import (
	"fmt"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/transcript"
)

// DlogEq1of2Proof is a Cramer-Damgard-Schoenmakers OR-composition of two
// dlog_eq statements sharing one pair of bases (g, h).
type DlogEq1of2Proof struct {
	C, R [2]group.Scalar
}

// DlogEq1of2Publics holds the shared bases and the two candidate
// (a, b) pairs, exactly one of which the prover knows the discrete log
// for.
type DlogEq1of2Publics struct {
	G, H group.Element
	A, B [2]group.Element
}

// DlogEq1of2Secrets names which branch is true and its witness.
type DlogEq1of2Secrets struct {
	Index int
	X     group.Scalar
}

// CreateDlogEq1of2 proves that a[index] = x*g and b[index] = x*h for
// exactly one of the two indices, without revealing which.
func CreateDlogEq1of2(t *transcript.T, pub DlogEq1of2Publics, sec DlogEq1of2Secrets) (DlogEq1of2Proof, error) {
	t.DomainSep("dlog_eq_1of2")
	t.CommitPoint("g", pub.G)
	t.CommitPoint("h", pub.H)
	for i := 0; i < 2; i++ {
		t.CommitPoint(fmt.Sprintf("a%d", i), pub.A[i])
		t.CommitPoint(fmt.Sprintf("b%d", i), pub.B[i])
	}

	other := 1 - sec.Index
	rng, err := t.BuildRng().
		CommitScalar("x", sec.X).
		CommitUint("idx", uint64(sec.Index)).
		Finalize(nil)
	if err != nil {
		return DlogEq1of2Proof{}, err
	}
	cOther, err := group.RandomScalar(rng)
	if err != nil {
		return DlogEq1of2Proof{}, err
	}
	rOther, err := group.RandomScalar(rng)
	if err != nil {
		return DlogEq1of2Proof{}, err
	}
	w, err := group.RandomScalar(rng)
	if err != nil {
		return DlogEq1of2Proof{}, err
	}

	var t1, t2 [2]group.Element
	t1[other] = pub.A[other].ScalarMult(cOther).Add(pub.G.ScalarMult(rOther))
	t2[other] = pub.B[other].ScalarMult(cOther).Add(pub.H.ScalarMult(rOther))
	t1[sec.Index] = pub.G.ScalarMult(w)
	t2[sec.Index] = pub.H.ScalarMult(w)

	for i := 0; i < 2; i++ {
		t.CommitPoint(fmt.Sprintf("t1-%d", i), t1[i])
		t.CommitPoint(fmt.Sprintf("t2-%d", i), t2[i])
	}

	c := t.ChallengeScalar("c")
	cReal := c.Sub(cOther)
	rReal := w.Sub(cReal.Mul(sec.X))

	var proof DlogEq1of2Proof
	proof.C[other], proof.R[other] = cOther, rOther
	proof.C[sec.Index], proof.R[sec.Index] = cReal, rReal
	return proof, nil
}

// VerifyDlogEq1of2 checks a dlog_eq_1of2 proof.
func VerifyDlogEq1of2(t *transcript.T, pub DlogEq1of2Publics, proof DlogEq1of2Proof) error {
	t.DomainSep("dlog_eq_1of2")
	t.CommitPoint("g", pub.G)
	t.CommitPoint("h", pub.H)
	for i := 0; i < 2; i++ {
		t.CommitPoint(fmt.Sprintf("a%d", i), pub.A[i])
		t.CommitPoint(fmt.Sprintf("b%d", i), pub.B[i])
	}

	for i := 0; i < 2; i++ {
		t1 := pub.A[i].ScalarMult(proof.C[i]).Add(pub.G.ScalarMult(proof.R[i]))
		t2 := pub.B[i].ScalarMult(proof.C[i]).Add(pub.H.ScalarMult(proof.R[i]))
		t.CommitPoint(fmt.Sprintf("t1-%d", i), t1)
		t.CommitPoint(fmt.Sprintf("t2-%d", i), t2)
	}

	c := t.ChallengeScalar("c")
	if !c.Equal(proof.C[0].Add(proof.C[1])) {
		return pbmxerr.ErrBadProof
	}
	return nil
}
