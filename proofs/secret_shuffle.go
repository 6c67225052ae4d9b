package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// SecretShuffleProof proves a claimed shuffle of secret (masked) content by
// reducing to a KnownShuffleProof over a challenged Pedersen scheme.
type SecretShuffleProof struct {
	Skc    KnownShuffleProof
	C, Cd  group.Element
	Ed     mask.Mask
	F      []group.Scalar
	Z      group.Scalar
}

// SecretShufflePublics is the joint key and the pre/post-shuffle stacks.
type SecretShufflePublics struct {
	H      group.Element
	E0, E1 []mask.Mask
}

// SecretShuffleSecrets holds the permutation and the per-element re-mask
// blinding factors used to produce E1 from E0.
type SecretShuffleSecrets struct {
	Pi *perm.Permutation
	R  []group.Scalar
}

// CreateSecretShuffle proves E1 is E0 re-masked and permuted by Pi.
func CreateSecretShuffle(t *transcript.T, pub SecretShufflePublics, sec SecretShuffleSecrets) (SecretShuffleProof, error) {
	t.DomainSep("secret_shuffle")
	t.CommitPoint("h", pub.H)
	t.CommitMasks("e0", pub.E0)
	t.CommitMasks("e1", pub.E1)

	n := len(pub.E0)
	com := t.ChallengePedersen("com", pub.H, n)
	gh := mask.Mask{C0: group.G, C1: pub.H}
	pi := sec.Pi.Slice()

	rekey := func() *transcript.RngBuilder {
		return t.BuildRng().CommitPermutation("pi", sec.Pi).CommitScalars("r", sec.R)
	}

	rng, err := rekey().Finalize(nil)
	if err != nil {
		return SecretShuffleProof{}, err
	}
	p2 := make([]group.Scalar, n)
	for i, p := range pi {
		p2[i] = group.ScalarFromUint64(uint64(p + 1))
	}
	c, r, err := com.CommitTo(p2, rng)
	if err != nil {
		return SecretShuffleProof{}, err
	}
	t.CommitPoint("c", c)

	rng, err = rekey().Finalize(nil)
	if err != nil {
		return SecretShuffleProof{}, err
	}
	d := make([]group.Scalar, n)
	for i := range d {
		s, err := group.RandomScalar(rng)
		if err != nil {
			return SecretShuffleProof{}, err
		}
		d[i] = s.Neg()
	}
	cd, rd, err := com.CommitTo(d, rng)
	if err != nil {
		return SecretShuffleProof{}, err
	}
	t.CommitPoint("cd", cd)

	ed := gh.MulScalar(rd)
	for i := 0; i < n; i++ {
		ed = ed.Add(pub.E1[i].MulScalar(d[i]))
	}
	t.CommitMask("ed", ed)

	tChal := t.ChallengeScalars("t", n)

	f := make([]group.Scalar, n)
	for i, p := range pi {
		f[i] = tChal[p].Sub(d[i])
	}
	t.CommitScalars("f", f)

	z := group.Zero()
	for i, p := range pi {
		z = z.Add(tChal[p].Mul(sec.R[i]))
	}
	z = z.Add(rd)
	t.CommitScalar("z", z)

	l := t.ChallengeScalar("l")

	m := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		m[i] = l.Mul(group.ScalarFromUint64(uint64(i + 1))).Add(tChal[i])
	}
	fOpen, err := com.CommitBy(f, group.Zero())
	if err != nil {
		return SecretShuffleProof{}, err
	}
	commit := c.ScalarMult(l).Add(cd).Add(fOpen)
	rho := l.Mul(r).Add(rd)

	skc, err := CreateKnownShuffle(t, KnownShufflePublics{Com: com, C: commit, M: m}, KnownShuffleSecrets{Pi: sec.Pi, R: rho})
	if err != nil {
		return SecretShuffleProof{}, err
	}

	return SecretShuffleProof{Skc: skc, C: c, Cd: cd, Ed: ed, F: f, Z: z}, nil
}

// VerifySecretShuffle checks a secret_shuffle proof.
func VerifySecretShuffle(t *transcript.T, pub SecretShufflePublics, proof SecretShuffleProof) error {
	t.DomainSep("secret_shuffle")
	t.CommitPoint("h", pub.H)
	t.CommitMasks("e0", pub.E0)
	t.CommitMasks("e1", pub.E1)

	n := len(pub.E0)
	com := t.ChallengePedersen("com", pub.H, n)
	gh := mask.Mask{C0: group.G, C1: pub.H}

	t.CommitPoint("c", proof.C)
	t.CommitPoint("cd", proof.Cd)
	t.CommitMask("ed", proof.Ed)

	tChal := t.ChallengeScalars("t", n)

	t.CommitScalars("f", proof.F)
	t.CommitScalar("z", proof.Z)

	l := t.ChallengeScalar("l")

	m := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		m[i] = l.Mul(group.ScalarFromUint64(uint64(i + 1))).Add(tChal[i])
	}
	fOpen, err := com.CommitBy(proof.F, group.Zero())
	if err != nil {
		return err
	}
	commit := proof.C.ScalarMult(l).Add(proof.Cd).Add(fOpen)

	if err := VerifyKnownShuffle(t, KnownShufflePublics{Com: com, C: commit, M: m}, proof.Skc); err != nil {
		return err
	}

	efed := proof.Ed
	for i := 0; i < n; i++ {
		efed = efed.Add(pub.E1[i].MulScalar(proof.F[i]))
	}
	etfd := efed
	for i := 0; i < n; i++ {
		etfd = etfd.Add(pub.E0[i].MulScalar(tChal[i].Neg()))
	}
	ez := gh.MulScalar(proof.Z)
	if !etfd.Equal(ez) {
		return pbmxerr.ErrBadProof
	}
	return nil
}
