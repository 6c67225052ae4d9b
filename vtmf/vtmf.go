// Package vtmf implements the verifiable k-out-of-k threshold masking
// function: the per-party key state, and the masking, re-masking,
// unmasking, shuffling, shifting, and entanglement operations every block
// payload's proof is checked against.
package vtmf

import (
	"fmt"
	"io"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/idhash"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/proofs"
	"github.com/rawblock/pbmx/transcript"
)

// MaskProof is the dlog_eq proof attached to a masking or re-masking
// operation.
type MaskProof = proofs.DlogEqProof

// ShuffleProof is the secret_shuffle proof attached to a mask-shuffle.
type ShuffleProof = proofs.SecretShuffleProof

// ShiftProof is the secret_rotation proof attached to a mask-shift.
type ShiftProof = proofs.SecretRotationProof

// InsertProof is the secret_insert proof attached to inserting a masked
// token into a stack at a hidden position.
type InsertProof = proofs.InsertionProof

// EntanglementProof is the proof that one permutation reordered several
// stacks together.
type EntanglementProof = proofs.EntanglementProof

// SecretShareProof is the dlog_eq proof that a SecretShare was honestly
// computed from the mask it shares.
type SecretShareProof = proofs.DlogEqProof

// SecretShare is one party's contribution towards undoing a masking.
type SecretShare struct {
	D group.Element
}

// Vtmf is one party's view of a verifiable k-out-of-k threshold masking
// function: its own key material, the joint key the group has combined
// into, and the public-key directory needed to check other parties'
// unmask shares.
type Vtmf struct {
	sk  keys.PrivateKey
	pk  keys.PublicKey
	pki map[keys.Fingerprint]keys.PublicKey
}

// New creates a single-party Vtmf around sk; other parties are folded in
// with AddKey as they're discovered.
func New(sk keys.PrivateKey) *Vtmf {
	pk := sk.PublicKey()
	return &Vtmf{
		sk:  sk,
		pk:  pk,
		pki: map[keys.Fingerprint]keys.PublicKey{pk.Fingerprint(): pk},
	}
}

// PrivateKey returns this party's private key.
func (v *Vtmf) PrivateKey() keys.PrivateKey { return v.sk }

// PublicKey returns this party's own public key.
func (v *Vtmf) PublicKey() keys.PublicKey { return v.sk.PublicKey() }

// SharedKey returns the joint public key combining every added party.
func (v *Vtmf) SharedKey() keys.PublicKey { return v.pk }

// AddKey folds another party's public key into the joint key. A
// fingerprint already known is a no-op.
func (v *Vtmf) AddKey(pk keys.PublicKey) {
	fp := pk.Fingerprint()
	if _, ok := v.pki[fp]; ok {
		return
	}
	v.pk = v.pk.Combine(pk)
	v.pki[fp] = pk
}

// Clone returns an independent copy of v, so that a caller can stage
// AddKey calls and discard them without mutating the original.
func (v *Vtmf) Clone() *Vtmf {
	pki := make(map[keys.Fingerprint]keys.PublicKey, len(v.pki))
	for fp, pk := range v.pki {
		pki[fp] = pk
	}
	return &Vtmf{sk: v.sk, pk: v.pk, pki: pki}
}

// Parties returns the number of keys combined into the joint key so far.
func (v *Vtmf) Parties() int { return len(v.pki) }

// Fingerprints lists the fingerprints of every combined party.
func (v *Vtmf) Fingerprints() []keys.Fingerprint {
	out := make([]keys.Fingerprint, 0, len(v.pki))
	for fp := range v.pki {
		out = append(out, fp)
	}
	return out
}

// PublicKeys lists the public keys of every combined party.
func (v *Vtmf) PublicKeys() []keys.PublicKey {
	out := make([]keys.PublicKey, 0, len(v.pki))
	for _, pk := range v.pki {
		out = append(out, pk)
	}
	return out
}

// Mask applies the verifiable masking protocol to the plaintext point p,
// returning the mask, the blinding it used, and a proof that c1-p and c0
// share a discrete log under the joint key.
func (v *Vtmf) Mask(p group.Element) (mask.Mask, group.Scalar, MaskProof, error) {
	h := v.pk.Point()
	r, err := group.RandomScalar(nil)
	if err != nil {
		return mask.Mask{}, group.Scalar{}, MaskProof{}, err
	}
	c0 := group.G.ScalarMult(r)
	hr := h.ScalarMult(r)
	c1 := hr.Add(p)

	proof, err := proofs.CreateDlogEq(transcript.New("mask"),
		proofs.DlogEqPublics{A: c0, B: hr, G: group.G, H: h},
		proofs.DlogEqSecrets{X: r})
	if err != nil {
		return mask.Mask{}, group.Scalar{}, MaskProof{}, err
	}
	return mask.Mask{C0: c0, C1: c1}, r, proof, nil
}

// VerifyMask checks that c masks the plaintext point p under the joint key.
func (v *Vtmf) VerifyMask(p group.Element, c mask.Mask, proof MaskProof) error {
	h := v.pk.Point()
	return proofs.VerifyDlogEq(transcript.New("mask"),
		proofs.DlogEqPublics{A: c.C0, B: c.C1.Sub(p), G: group.G, H: h}, proof)
}

// Remask re-randomizes c under the joint key, returning the new mask, the
// blinding it used, and a proof it still opens to the same plaintext.
func (v *Vtmf) Remask(c mask.Mask) (mask.Mask, group.Scalar, MaskProof, error) {
	h := v.pk.Point()
	r, err := group.RandomScalar(nil)
	if err != nil {
		return mask.Mask{}, group.Scalar{}, MaskProof{}, err
	}
	gr := group.G.ScalarMult(r)
	hr := h.ScalarMult(r)

	proof, err := proofs.CreateDlogEq(transcript.New("remask"),
		proofs.DlogEqPublics{A: gr, B: hr, G: group.G, H: h},
		proofs.DlogEqSecrets{X: r})
	if err != nil {
		return mask.Mask{}, group.Scalar{}, MaskProof{}, err
	}
	return mask.Mask{C0: gr.Add(c.C0), C1: hr.Add(c.C1)}, r, proof, nil
}

// VerifyRemask checks that c re-masks m under the joint key.
func (v *Vtmf) VerifyRemask(m, c mask.Mask, proof MaskProof) error {
	h := v.pk.Point()
	gr := c.C0.Sub(m.C0)
	hr := c.C1.Sub(m.C1)
	return proofs.VerifyDlogEq(transcript.New("remask"),
		proofs.DlogEqPublics{A: gr, B: hr, G: group.G, H: h}, proof)
}

// UnmaskShare computes this party's contribution towards undoing c's
// masking, with a proof it was honestly derived from this party's key.
func (v *Vtmf) UnmaskShare(c mask.Mask) (SecretShare, SecretShareProof, error) {
	x := v.sk.Scalar()
	d := c.C0.ScalarMult(x)

	proof, err := proofs.CreateDlogEq(transcript.New("mask_share"),
		proofs.DlogEqPublics{A: d, B: group.G.ScalarMult(x), G: c.C0, H: group.G},
		proofs.DlogEqSecrets{X: x})
	if err != nil {
		return SecretShare{}, SecretShareProof{}, err
	}
	return SecretShare{D: d}, proof, nil
}

// VerifyUnmask checks a secret share against the named party's public key.
func (v *Vtmf) VerifyUnmask(c mask.Mask, pkFp keys.Fingerprint, d SecretShare, proof SecretShareProof) error {
	pk, ok := v.pki[pkFp]
	if !ok {
		return pbmxerr.ErrBadProof
	}
	return proofs.VerifyDlogEq(transcript.New("mask_share"),
		proofs.DlogEqPublics{A: d.D, B: pk.Point(), G: c.C0, H: group.G}, proof)
}

// Unmask removes one party's share from a mask.
func (v *Vtmf) Unmask(c mask.Mask, d SecretShare) mask.Mask {
	return mask.Mask{C0: c.C0, C1: c.C1.Sub(d.D)}
}

// UnmaskPrivate removes this party's own share from a mask in one step.
func (v *Vtmf) UnmaskPrivate(c mask.Mask) (mask.Mask, error) {
	d, _, err := v.UnmaskShare(c)
	if err != nil {
		return mask.Mask{}, err
	}
	return v.Unmask(c, d), nil
}

// UnmaskOpen reads the plaintext out of a fully-unmasked (open) mask.
func (v *Vtmf) UnmaskOpen(m mask.Mask) group.Element { return m.C1 }

func (v *Vtmf) remaskElement(c mask.Mask) (mask.Mask, group.Scalar, error) {
	h := v.pk.Point()
	r, err := group.RandomScalar(nil)
	if err != nil {
		return mask.Mask{}, group.Scalar{}, err
	}
	c0 := group.G.ScalarMult(r).Add(c.C0)
	c1 := h.ScalarMult(r).Add(c.C1)
	return mask.Mask{C0: c0, C1: c1}, r, nil
}

// MaskShuffle re-masks and permutes every mask in m according to pi,
// returning the new stack, the blindings used, and a proof of the shuffle.
func (v *Vtmf) MaskShuffle(m mask.Stack, pi *perm.Permutation) (mask.Stack, []group.Scalar, ShuffleProof, error) {
	h := v.pk.Point()
	n := len(m)
	rm := make(mask.Stack, n)
	r := make([]group.Scalar, n)
	for i := range m {
		rc, ri, err := v.remaskElement(m[i])
		if err != nil {
			return nil, nil, ShuffleProof{}, err
		}
		rm[i], r[i] = rc, ri
	}
	perm.ApplyTo(pi, rm)
	perm.ApplyTo(pi, r)

	proof, err := proofs.CreateSecretShuffle(transcript.New("mask_shuffle"),
		proofs.SecretShufflePublics{H: h, E0: m, E1: rm},
		proofs.SecretShuffleSecrets{Pi: pi, R: r})
	if err != nil {
		return nil, nil, ShuffleProof{}, err
	}
	return rm, r, proof, nil
}

// VerifyMaskShuffle checks that c is m re-masked and permuted per proof.
func (v *Vtmf) VerifyMaskShuffle(m, c mask.Stack, proof ShuffleProof) error {
	return proofs.VerifySecretShuffle(transcript.New("mask_shuffle"),
		proofs.SecretShufflePublics{H: v.pk.Point(), E0: m, E1: c}, proof)
}

// MaskShift re-masks every mask in m and cyclically shifts it by k,
// returning the new stack, the blindings used, and a proof of the shift.
func (v *Vtmf) MaskShift(m mask.Stack, k int) (mask.Stack, []group.Scalar, ShiftProof, error) {
	h := v.pk.Point()
	n := len(m)
	rm := make(mask.Stack, n)
	r := make([]group.Scalar, n)
	for i := range m {
		rc, ri, err := v.remaskElement(m[i])
		if err != nil {
			return nil, nil, ShiftProof{}, err
		}
		rm[i], r[i] = rc, ri
	}
	pi := perm.Shift(n, k)
	perm.ApplyTo(pi, rm)
	perm.ApplyTo(pi, r)

	proof, err := proofs.CreateSecretRotation(transcript.New("mask_shift"),
		proofs.SecretRotationPublics{H: h, E0: m, E1: rm},
		proofs.SecretRotationSecrets{K: k, R: r})
	if err != nil {
		return nil, nil, ShiftProof{}, err
	}
	return rm, r, proof, nil
}

// VerifyMaskShift checks that c is m re-masked and shifted by proof.
func (v *Vtmf) VerifyMaskShift(m, c mask.Stack, proof ShiftProof) error {
	return proofs.VerifySecretRotation(transcript.New("mask_shift"),
		proofs.SecretRotationPublics{H: v.pk.Point(), E0: m, E1: c}, proof)
}

// rotateRemask shifts s cyclically by k and re-masks every element by gh*r,
// the math shared by both ends of a secret-insertion: rotate the hidden
// insertion point to an edge, then rotate it back.
func rotateRemask(gh mask.Mask, s mask.Stack, k int, r []group.Scalar) mask.Stack {
	n := len(s)
	shift := perm.Shift(n, k%n)
	out := append(mask.Stack(nil), s...)
	perm.ApplyTo(shift, out)
	for i := range out {
		out[i] = out[i].Add(gh.MulScalar(r[i]))
	}
	return out
}

// MaskInsert re-masks needle and inserts it into haystack, returning the
// resulting stack together with a proof that hides which position the
// insertion actually landed on. k (0 <= k <= len(haystack)) is the hidden
// rotation amount: the needle ends up at index len(haystack)-k of the
// result, so k = 0 appends it and k = len(haystack) puts it at index 0.
func (v *Vtmf) MaskInsert(haystack mask.Stack, needle mask.Mask, k int) (mask.Stack, InsertProof, error) {
	h := v.pk.Point()
	n := len(haystack)
	if n == 0 {
		return nil, InsertProof{}, fmt.Errorf("%w: vtmf: cannot insert into an empty stack", pbmxerr.ErrInvalidInput)
	}
	if k < 0 || k > n {
		return nil, InsertProof{}, fmt.Errorf("%w: vtmf: insertion position %d out of range", pbmxerr.ErrInvalidInput, k)
	}
	gh := mask.Mask{C0: group.G, C1: h}

	r1 := make([]group.Scalar, n)
	for i := range r1 {
		r, err := group.RandomScalar(nil)
		if err != nil {
			return nil, InsertProof{}, err
		}
		r1[i] = r
	}
	n2 := n + 1
	r2 := make([]group.Scalar, n2)
	for i := range r2 {
		r, err := group.RandomScalar(nil)
		if err != nil {
			return nil, InsertProof{}, err
		}
		r2[i] = r
	}

	s1 := rotateRemask(gh, haystack, k, r1)
	s1c := append(append(mask.Stack(nil), s1...), needle)
	result := rotateRemask(gh, s1c, (n2-k%n2)%n2, r2)

	proof, err := proofs.CreateInsertion(transcript.New("mask_insert"),
		proofs.InsertionPublics{H: h, Needle: needle, Haystack: haystack, Result: result},
		proofs.InsertionSecrets{K: k, R1: r1, R2: r2})
	if err != nil {
		return nil, InsertProof{}, err
	}
	return result, proof, nil
}

// VerifyMaskInsert checks that result is haystack with needle inserted at
// some position proof attests to without revealing it.
func (v *Vtmf) VerifyMaskInsert(haystack, result mask.Stack, needle mask.Mask, proof InsertProof) error {
	return proofs.VerifyInsertion(transcript.New("mask_insert"),
		proofs.InsertionPublics{H: v.pk.Point(), Needle: needle, Haystack: haystack, Result: result}, proof)
}

// MaskRandom draws a uniformly random plaintext point and masks it,
// discarding the proof and blinding — used to seed collaborative
// randomness where only the combined result matters.
func (v *Vtmf) MaskRandom(rng io.Reader) (mask.Mask, error) {
	p, err := group.RandomElement(rng)
	if err != nil {
		return mask.Mask{}, err
	}
	m, _, _, err := v.Mask(p)
	return m, err
}

// UnmaskRandom turns a fully-opened random mask into an extendable stream
// of uniform bytes, so every party that unmasked the same combined mask
// derives the same stream. Only c1 is fed to the XOF: once every share
// has been subtracted, c1 alone carries the agreed-upon plaintext point.
func (v *Vtmf) UnmaskRandom(m mask.Mask) io.Reader {
	return idhash.XOF("pbmx-random", m.C1.Encode(nil))
}

// ProveEntanglement proves that the single permutation pi reordered every
// stack in m into the matching stack in c, given each stack's re-mask
// blindings in r.
func (v *Vtmf) ProveEntanglement(m, c []mask.Stack, pi *perm.Permutation, r [][]group.Scalar) (EntanglementProof, error) {
	h := v.pk.Point()
	e0 := make([][]mask.Mask, len(m))
	for i, s := range m {
		e0[i] = s
	}
	e1 := make([][]mask.Mask, len(c))
	for i, s := range c {
		e1[i] = s
	}
	return proofs.CreateEntanglement(transcript.New("entanglement"),
		proofs.EntanglementPublics{H: h, E0: e0, E1: e1},
		proofs.EntanglementSecrets{Pi: pi, R: r})
}

// VerifyEntanglement checks an entanglement proof across m and c.
func (v *Vtmf) VerifyEntanglement(m, c []mask.Stack, proof EntanglementProof) error {
	h := v.pk.Point()
	e0 := make([][]mask.Mask, len(m))
	for i, s := range m {
		e0[i] = s
	}
	e1 := make([][]mask.Mask, len(c))
	for i, s := range c {
		e1[i] = s
	}
	return proofs.VerifyEntanglement(transcript.New("entanglement"),
		proofs.EntanglementPublics{H: h, E0: e0, E1: e1}, proof)
}
