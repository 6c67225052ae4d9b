package proofs

import (
	"io"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// SecretRotationProof proves a claimed cyclic shift of secret (masked)
// content by reducing to a KnownRotationProof over a size-1 challenged
// Pedersen scheme.
type SecretRotationProof struct {
	Rkc           KnownRotationProof
	H             []group.Element
	Z             []mask.Mask
	V             group.Scalar
	F             []group.Element
	Ff            []mask.Mask
	Tau, Rho, Mu  []group.Scalar
}

// SecretRotationPublics is the joint key and the pre/post-shift stacks.
type SecretRotationPublics struct {
	H      group.Element
	E0, E1 []mask.Mask
}

// SecretRotationSecrets holds the shift amount and the per-element
// re-mask blinding factors used to produce E1 from E0.
type SecretRotationSecrets struct {
	K int
	R []group.Scalar
}

func randomScalars(n int, rng io.Reader) ([]group.Scalar, error) {
	out := make([]group.Scalar, n)
	for i := range out {
		s, err := group.RandomScalar(rng)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// CreateSecretRotation proves E1 is E0 re-masked and cyclically shifted by K.
func CreateSecretRotation(t *transcript.T, pub SecretRotationPublics, sec SecretRotationSecrets) (SecretRotationProof, error) {
	t.DomainSep("secret_rotation")
	t.CommitPoint("h", pub.H)
	t.CommitMasks("e0", pub.E0)
	t.CommitMasks("e1", pub.E1)

	n := len(pub.E0)
	com := t.ChallengePedersen("com", pub.H, 1)
	gh := mask.Mask{C0: group.G, C1: pub.H}

	a := t.ChallengeScalars("a", n)

	rekey := func() *transcript.RngBuilder {
		return t.BuildRng().CommitUint("k", uint64(sec.K)).CommitScalars("r", sec.R)
	}

	rng, err := rekey().Finalize(nil)
	if err != nil {
		return SecretRotationProof{}, err
	}
	u, err := randomScalars(n, rng)
	if err != nil {
		return SecretRotationProof{}, err
	}
	tt, err := randomScalars(n, rng)
	if err != nil {
		return SecretRotationProof{}, err
	}

	shift := perm.Shift(n, sec.K)
	sa := append([]group.Scalar(nil), a...)
	perm.ApplyTo(shift, sa)

	hv := make([]group.Element, n)
	for i := 0; i < n; i++ {
		if hv[i], err = com.CommitBy([]group.Scalar{sa[i]}, u[i]); err != nil {
			return SecretRotationProof{}, err
		}
	}
	t.CommitPoints("h", hv)

	z := make([]mask.Mask, n)
	for i := 0; i < n; i++ {
		z[i] = pub.E1[i].MulScalar(sa[i]).Add(gh.MulScalar(tt[i]))
	}
	t.CommitMasks("z", z)

	v := group.Zero()
	for i := 0; i < n; i++ {
		v = v.Add(sa[i].Mul(sec.R[i])).Add(tt[i])
	}
	t.CommitScalar("v", v)

	rng, err = rekey().Finalize(nil)
	if err != nil {
		return SecretRotationProof{}, err
	}
	o, err := randomScalars(n, rng)
	if err != nil {
		return SecretRotationProof{}, err
	}
	p, err := randomScalars(n, rng)
	if err != nil {
		return SecretRotationProof{}, err
	}
	mm, err := randomScalars(n, rng)
	if err != nil {
		return SecretRotationProof{}, err
	}

	f := make([]group.Element, n)
	for i := 0; i < n; i++ {
		if f[i], err = com.CommitBy([]group.Scalar{o[i]}, p[i]); err != nil {
			return SecretRotationProof{}, err
		}
	}
	t.CommitPoints("f", f)

	ff := make([]mask.Mask, n)
	for i := 0; i < n; i++ {
		ff[i] = pub.E1[i].MulScalar(o[i]).Add(gh.MulScalar(mm[i]))
	}
	t.CommitMasks("ff", ff)

	l := t.ChallengeScalar("l")

	tau := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		tau[i] = o[i].Add(l.Mul(sa[i]))
	}
	t.CommitScalars("tau", tau)

	rho := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		rho[i] = p[i].Add(l.Mul(u[i]))
	}
	t.CommitScalars("rho", rho)

	mu := make([]group.Scalar, n)
	for i := 0; i < n; i++ {
		mu[i] = mm[i].Add(l.Mul(tt[i]))
	}
	t.CommitScalars("mu", mu)

	rkc, err := CreateKnownRotation(t, KnownRotationPublics{Com: com, M: a, C: hv}, KnownRotationSecrets{K: sec.K, R: u})
	if err != nil {
		return SecretRotationProof{}, err
	}

	return SecretRotationProof{Rkc: rkc, H: hv, Z: z, V: v, F: f, Ff: ff, Tau: tau, Rho: rho, Mu: mu}, nil
}

// VerifySecretRotation checks a secret_rotation proof.
func VerifySecretRotation(t *transcript.T, pub SecretRotationPublics, proof SecretRotationProof) error {
	t.DomainSep("secret_rotation")
	t.CommitPoint("h", pub.H)
	t.CommitMasks("e0", pub.E0)
	t.CommitMasks("e1", pub.E1)

	n := len(pub.E0)
	com := t.ChallengePedersen("com", pub.H, 1)
	gh := mask.Mask{C0: group.G, C1: pub.H}

	a := t.ChallengeScalars("a", n)

	t.CommitPoints("h", proof.H)
	t.CommitMasks("z", proof.Z)
	t.CommitScalar("v", proof.V)

	t.CommitPoints("f", proof.F)
	t.CommitMasks("ff", proof.Ff)

	l := t.ChallengeScalar("l")

	t.CommitScalars("tau", proof.Tau)
	t.CommitScalars("rho", proof.Rho)
	t.CommitScalars("mu", proof.Mu)

	if err := VerifyKnownRotation(t, KnownRotationPublics{Com: com, M: a, C: proof.H}, proof.Rkc); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		tr, err := com.CommitBy([]group.Scalar{proof.Tau[i]}, proof.Rho[i])
		if err != nil {
			return err
		}
		fhl := proof.F[i].Add(proof.H[i].ScalarMult(l))
		if !tr.Equal(fhl) {
			return pbmxerr.ErrBadProof
		}
	}

	for i := 0; i < n; i++ {
		dtm := pub.E1[i].MulScalar(proof.Tau[i]).Add(gh.MulScalar(proof.Mu[i]))
		fzl := proof.Ff[i].Add(proof.Z[i].MulScalar(l))
		if !dtm.Equal(fzl) {
			return pbmxerr.ErrBadProof
		}
	}

	pzea := mask.Mask{C0: group.Identity(), C1: group.Identity()}
	for i := 0; i < n; i++ {
		pzea = pzea.Add(proof.Z[i]).Add(pub.E0[i].MulScalar(a[i].Neg()))
	}
	ghv := gh.MulScalar(proof.V)
	if !pzea.Equal(ghv) {
		return pbmxerr.ErrBadProof
	}

	return nil
}
