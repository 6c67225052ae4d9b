package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/pedersen"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// KnownShuffleProof is Groth's 2005 argument that a commitment opens to a
// permutation of publicly known scalars.
type KnownShuffleProof struct {
	Cd, Cdd, Cda group.Element
	F            []group.Scalar
	Z            group.Scalar
	Fd           []group.Scalar
	Zd           group.Scalar
}

// KnownShuffleSecrets holds the permutation and the blinding of c.
type KnownShuffleSecrets struct {
	Pi *perm.Permutation
	R  group.Scalar
}

// KnownShufflePublics is the commitment scheme, the claimed commitment to
// a shuffle, and the public domain it permutes.
type KnownShufflePublics struct {
	Com *pedersen.Scheme
	C   group.Element
	M   []group.Scalar
}

// CreateKnownShuffle proves C commits to Pi applied to M, under blinding R.
func CreateKnownShuffle(t *transcript.T, pub KnownShufflePublics, sec KnownShuffleSecrets) (KnownShuffleProof, error) {
	t.DomainSep("known_shuffle")
	t.CommitPedersen("com", pub.Com)
	t.CommitPoint("c", pub.C)
	t.CommitScalars("m", pub.M)

	n := len(pub.M)
	pi := sec.Pi.Slice()

	rekey := func() *transcript.RngBuilder {
		return t.BuildRng().CommitPermutation("pi", sec.Pi).CommitScalar("r", sec.R)
	}

	rng, err := rekey().Finalize(nil)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	d := make([]group.Scalar, n)
	for i := range d {
		if d[i], err = group.RandomScalar(rng); err != nil {
			return KnownShuffleProof{}, err
		}
	}

	delta := make([]group.Scalar, n)
	delta[0] = d[0]
	for i := 1; i < n-1; i++ {
		if delta[i], err = group.RandomScalar(rng); err != nil {
			return KnownShuffleProof{}, err
		}
	}
	if n > 0 {
		delta[n-1] = group.Zero()
	}

	x := t.ChallengeScalar("x")

	a := make([]group.Scalar, n)
	prod := group.One()
	for i := 0; i < n; i++ {
		prod = prod.Mul(pub.M[pi[i]].Sub(x))
		a[i] = prod
	}

	rng, err = rekey().Finalize(nil)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	cd, rd, err := pub.Com.CommitTo(d, rng)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	t.CommitPoint("cd", cd)

	rng, err = rekey().Finalize(nil)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	dd := make([]group.Scalar, n)
	for i := 1; i < n; i++ {
		dd[i-1] = delta[i-1].Neg().Mul(d[i])
	}
	if n > 0 {
		dd[n-1] = group.Zero()
	}
	cdd, rdd, err := pub.Com.CommitTo(dd, rng)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	t.CommitPoint("cdd", cdd)

	rng, err = rekey().Finalize(nil)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	da := make([]group.Scalar, n)
	for i := 1; i < n; i++ {
		da[i-1] = delta[i].Sub(pub.M[pi[i]].Sub(x).Mul(delta[i-1])).Sub(a[i-1].Mul(d[i]))
	}
	if n > 0 {
		da[n-1] = group.Zero()
	}
	cda, rda, err := pub.Com.CommitTo(da, rng)
	if err != nil {
		return KnownShuffleProof{}, err
	}
	t.CommitPoint("cda", cda)

	e := t.ChallengeScalar("e")
	f := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		f[i] = e.Mul(pub.M[pi[i]]).Add(d[i])
	}
	z := e.Mul(sec.R).Add(rd)

	fd := make([]group.Scalar, n)
	for i := 1; i < n; i++ {
		fd[i-1] = e.Mul(da[i-1]).Sub(delta[i-1].Mul(d[i]))
	}
	if n > 0 {
		fd[n-1] = group.Zero()
	}
	zd := e.Mul(rda).Add(rdd)

	return KnownShuffleProof{Cd: cd, Cdd: cdd, Cda: cda, F: f, Z: z, Fd: fd, Zd: zd}, nil
}

// VerifyKnownShuffle checks a known_shuffle proof.
func VerifyKnownShuffle(t *transcript.T, pub KnownShufflePublics, proof KnownShuffleProof) error {
	t.DomainSep("known_shuffle")
	t.CommitPedersen("com", pub.Com)
	t.CommitPoint("c", pub.C)
	t.CommitScalars("m", pub.M)

	x := t.ChallengeScalar("x")

	t.CommitPoint("cd", proof.Cd)
	t.CommitPoint("cdd", proof.Cdd)
	t.CommitPoint("cda", proof.Cda)

	e := t.ChallengeScalar("e")
	n := len(pub.M)

	cecd := pub.C.ScalarMult(e).Add(proof.Cd)
	if err := pub.Com.Open(cecd, proof.F, proof.Z); err != nil {
		return err
	}
	ceca := proof.Cda.ScalarMult(e).Add(proof.Cdd)
	if err := pub.Com.Open(ceca, proof.Fd, proof.Zd); err != nil {
		return err
	}

	if n == 0 {
		return nil
	}
	ex := e.Mul(x)
	ff := proof.F[0].Sub(ex)
	eInv := e.Invert()
	for i := 1; i < n; i++ {
		ff = ff.Mul(proof.F[i].Sub(ex)).Add(proof.Fd[i-1]).Mul(eInv)
	}
	prod := group.One()
	for _, m := range pub.M {
		prod = prod.Mul(m.Sub(x))
	}
	if !ff.Equal(e.Mul(prod)) {
		return pbmxerr.ErrBadProof
	}
	return nil
}
