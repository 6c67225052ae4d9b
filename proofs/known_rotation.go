package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/pedersen"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// KnownRotationProof is de Hoogh, Schoenmakers, Skoric and Villegas's
// argument that commits c[] open to a cyclic rotation of known scalars m[].
type KnownRotationProof struct {
	F []group.Element
	L []group.Scalar
	Tv []group.Scalar
}

// KnownRotationPublics is the commitment scheme, the known source values,
// and the claimed commitments to their rotation.
type KnownRotationPublics struct {
	Com *pedersen.Scheme
	M   []group.Scalar
	C   []group.Element
}

// KnownRotationSecrets holds the rotation amount and the blindings used to
// build C.
type KnownRotationSecrets struct {
	K int
	R []group.Scalar
}

// CreateKnownRotation proves C commits to M cyclically shifted by K.
func CreateKnownRotation(t *transcript.T, pub KnownRotationPublics, sec KnownRotationSecrets) (KnownRotationProof, error) {
	t.DomainSep("known_rotation")
	t.CommitPedersen("com", pub.Com)
	t.CommitScalars("m", pub.M)
	t.CommitPoints("c", pub.C)

	n := len(pub.M)
	rng, err := t.BuildRng().
		CommitUint("k", uint64(sec.K)).
		CommitScalars("r", sec.R).
		Finalize(nil)
	if err != nil {
		return KnownRotationProof{}, err
	}

	u, err := group.RandomScalar(rng)
	if err != nil {
		return KnownRotationProof{}, err
	}
	l := make([]group.Scalar, n)
	for i := range l {
		if l[i], err = group.RandomScalar(rng); err != nil {
			return KnownRotationProof{}, err
		}
	}
	l[sec.K] = group.Zero()
	tv := make([]group.Scalar, n)
	for i := range tv {
		if tv[i], err = group.RandomScalar(rng); err != nil {
			return KnownRotationProof{}, err
		}
	}
	tv[sec.K] = group.Zero()

	bChal := t.ChallengeScalars("b", n)
	y := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		acc := group.Zero()
		for j := 0; j < n; j++ {
			acc = acc.Add(pub.M[(n+j-i)%n].Mul(bChal[j]))
		}
		y[i] = acc
	}
	g := group.Identity()
	for i := 0; i < n; i++ {
		g = g.Add(pub.C[i].ScalarMult(bChal[i]))
	}

	comU, err := pub.Com.CommitBy([]group.Scalar{group.Zero()}, u)
	if err != nil {
		return KnownRotationProof{}, err
	}

	f := make([]group.Element, n)
	for i := 0; i < n; i++ {
		comI, err := pub.Com.CommitBy([]group.Scalar{l[i].Mul(y[i])}, tv[i])
		if err != nil {
			return KnownRotationProof{}, err
		}
		comI = comI.Add(g.ScalarMult(l[i].Neg()))
		if i == sec.K {
			f[i] = comU
		} else {
			f[i] = comI
		}
	}
	t.CommitPoints("f", f)

	lambda := t.ChallengeScalar("lambda")
	sumL := group.Zero()
	for i, v := range l {
		if i != sec.K {
			sumL = sumL.Add(v)
		}
	}
	l[sec.K] = lambda.Sub(sumL)

	br := group.Zero()
	for i := 0; i < n; i++ {
		br = br.Add(bChal[i].Mul(sec.R[i]))
	}
	tv[sec.K] = u.Add(l[sec.K].Mul(br))

	return KnownRotationProof{F: f, L: l, Tv: tv}, nil
}

// VerifyKnownRotation checks a known_rotation proof.
func VerifyKnownRotation(t *transcript.T, pub KnownRotationPublics, proof KnownRotationProof) error {
	t.DomainSep("known_rotation")
	t.CommitPedersen("com", pub.Com)
	t.CommitScalars("m", pub.M)
	t.CommitPoints("c", pub.C)

	n := len(pub.M)
	bChal := t.ChallengeScalars("b", n)
	y := make([]group.Scalar, n)
	for k := 0; k < n; k++ {
		acc := group.Zero()
		for j := 0; j < n; j++ {
			acc = acc.Add(pub.M[(n+j-k)%n].Mul(bChal[j]))
		}
		y[k] = acc
	}
	g := group.Identity()
	for i := 0; i < n; i++ {
		g = g.Add(pub.C[i].ScalarMult(bChal[i]))
	}

	t.CommitPoints("f", proof.F)

	lambda := t.ChallengeScalar("lambda")

	fgl := make([]group.Element, n)
	for i := 0; i < n; i++ {
		gy, err := pub.Com.CommitBy([]group.Scalar{y[i]}, group.Zero())
		if err != nil {
			return err
		}
		fgl[i] = proof.F[i].Add(g.Sub(gy).ScalarMult(proof.L[i]))
	}

	ht := make([]group.Element, n)
	for i := 0; i < n; i++ {
		hi, err := pub.Com.CommitBy([]group.Scalar{group.Zero()}, proof.Tv[i])
		if err != nil {
			return err
		}
		ht[i] = hi
	}

	lSum := group.Zero()
	for _, v := range proof.L {
		lSum = lSum.Add(v)
	}
	if !lambda.Equal(lSum) {
		return pbmxerr.ErrBadProof
	}
	for i := 0; i < n; i++ {
		if !ht[i].Equal(fgl[i]) {
			return pbmxerr.ErrBadProof
		}
	}
	return nil
}
