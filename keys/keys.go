// Package keys implements per-party group keys, their stable fingerprints,
// and the Schnorr-style signature scheme blocks are signed with.
package keys

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/idhash"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/transcript"
)

const fingerprintTag = "pbmx-key-fp"

// Fingerprint is a stable 32-byte identity derived from a public key's
// canonical encoding.
type Fingerprint idhash.Id

// String renders the fingerprint as lowercase hex, for logs and names.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// PrivateKey is a single uniformly-random nonzero scalar.
type PrivateKey struct{ x group.Scalar }

// Random draws a fresh private key from rng (crypto/rand when nil).
func Random(rng io.Reader) (PrivateKey, error) {
	x, err := group.RandomScalar(rng)
	if err != nil {
		return PrivateKey{}, fmt.Errorf("keys: generating private key: %w", err)
	}
	return PrivateKey{x}, nil
}

// PublicKey derives h = x*G.
func (sk PrivateKey) PublicKey() PublicKey {
	return PublicKey{h: group.ScalarBaseMult(sk.x)}
}

// Scalar exposes the underlying secret scalar to the VTMF engine, which
// needs it for unmask shares; never serialized directly.
func (sk PrivateKey) Scalar() group.Scalar { return sk.x }

// Sign produces a Schnorr signature binding the current transcript state
// (the caller is responsible for having committed the message — block
// acks, payload ids, and signer fingerprint — before calling Sign).
// Randomness is drawn from a per-signature RNG that mixes the transcript,
// the secret scalar, and fresh system entropy, matching the toolkit-wide
// rule that no proof or signature may use deterministic-only nonces.
func (sk PrivateKey) Sign(t *transcript.T) (Signature, error) {
	rng, err := t.BuildRng().CommitScalar("sk", sk.x).Finalize(nil)
	if err != nil {
		return Signature{}, err
	}
	w, err := group.RandomScalar(rng)
	if err != nil {
		return Signature{}, err
	}
	commit := group.ScalarBaseMult(w)
	t.CommitPoint("sig-t", commit)
	c := t.ChallengeScalar("sig-c")
	r := w.Sub(c.Mul(sk.x))
	return Signature{C: c, R: r}, nil
}

// PublicKey is a single group element h = x*G.
type PublicKey struct{ h group.Element }

// FromElement wraps a decoded point as a public key.
func FromElement(h group.Element) PublicKey { return PublicKey{h} }

// Point exposes the underlying group element.
func (pk PublicKey) Point() group.Element { return pk.h }

// Combine adds other's point into pk, forming the joint-key accumulation
// rule: adding the same key twice is idempotent at the call-site level
// (callers check pki membership before calling Combine).
func (pk PublicKey) Combine(other PublicKey) PublicKey {
	return PublicKey{h: pk.h.Add(other.h)}
}

// Fingerprint derives the stable 32-byte identity of pk.
func (pk PublicKey) Fingerprint() Fingerprint {
	return Fingerprint(idhash.Sum(fingerprintTag, pk.h.Encode(nil)))
}

// Verify checks a Schnorr signature against the current transcript state;
// the caller must have committed the same message the signer committed.
func (pk PublicKey) Verify(t *transcript.T, sig Signature) error {
	commit := group.ScalarBaseMult(sig.R).Add(pk.h.ScalarMult(sig.C))
	t.CommitPoint("sig-t", commit)
	c := t.ChallengeScalar("sig-c")
	if !c.Equal(sig.C) {
		return pbmxerr.ErrBadProof
	}
	return nil
}

// Signature is a Schnorr-style (challenge, response) pair.
type Signature struct {
	C, R group.Scalar
}
