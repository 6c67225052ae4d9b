// Package transcript provides the Fiat-Shamir transcript discipline every
// NIZK proof in this toolkit is built on: domain separation, labelled
// commits, challenge derivation, and the creator-only per-proof RNG
// builder that mixes transcript state, secret witnesses, and system
// entropy. It wraps github.com/gtank/merlin, the Go port of the Merlin
// transcript library the original implementation used directly.
package transcript

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gtank/merlin"
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/pedersen"
	"github.com/rawblock/pbmx/perm"
	"golang.org/x/crypto/hkdf"
)

// T is a running Fiat-Shamir transcript shared between a proof's creator
// and its verifier.
type T struct {
	m *merlin.Transcript
}

// New starts a transcript under the given application label. Callers
// share one T across an entire chain signature or an entire entanglement
// proof (which runs several sub-proofs on one transcript).
func New(appLabel string) *T {
	return &T{merlin.NewTranscript(appLabel)}
}

// DomainSep must be the first call made against a transcript by both the
// creator and the verifier of a given proof type.
func (t *T) DomainSep(tag string) {
	t.m.AppendMessage([]byte("dom-sep"), []byte(tag))
}

func (t *T) appendLen(label string, n int) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(n))
	t.m.AppendMessage([]byte(label+"-len"), buf[:])
}

// CommitBytes absorbs an arbitrary fixed byte string under label, used for
// non-algebraic witnesses such as block acks and payload ids.
func (t *T) CommitBytes(label string, b []byte) {
	t.m.AppendMessage([]byte(label), b)
}

// CommitPoint absorbs a group element's canonical encoding under label.
func (t *T) CommitPoint(label string, p group.Element) {
	t.m.AppendMessage([]byte(label), p.Encode(nil))
}

// CommitScalar absorbs a scalar's canonical encoding under label.
func (t *T) CommitScalar(label string, s group.Scalar) {
	t.m.AppendMessage([]byte(label), s.Encode(nil))
}

// CommitMask absorbs both components of a mask under label.
func (t *T) CommitMask(label string, m mask.Mask) {
	t.m.AppendMessage([]byte(label), append(m.C0.Encode(nil), m.C1.Encode(nil)...))
}

// CommitPoints absorbs the length and every element of ps under label.
func (t *T) CommitPoints(label string, ps []group.Element) {
	t.appendLen(label, len(ps))
	for i, p := range ps {
		t.CommitPoint(fmt.Sprintf("%s-%d", label, i), p)
	}
}

// CommitScalars absorbs the length and every scalar of ss under label.
func (t *T) CommitScalars(label string, ss []group.Scalar) {
	t.appendLen(label, len(ss))
	for i, s := range ss {
		t.CommitScalar(fmt.Sprintf("%s-%d", label, i), s)
	}
}

// CommitMasks absorbs the length and every mask of ms under label.
func (t *T) CommitMasks(label string, ms []mask.Mask) {
	t.appendLen(label, len(ms))
	for i, m := range ms {
		t.CommitMask(fmt.Sprintf("%s-%d", label, i), m)
	}
}

// CommitPedersen absorbs a Pedersen commitment scheme's generators.
func (t *T) CommitPedersen(label string, s *pedersen.Scheme) {
	t.CommitPoint(label+"-h", s.H)
	t.CommitPoints(label+"-g", s.G)
}

// ChallengeScalar derives an unbiased scalar from the transcript state.
func (t *T) ChallengeScalar(label string) group.Scalar {
	wide := t.m.ExtractBytes([]byte(label), 64)
	return group.ScalarFromUniformBytes(wide)
}

// ChallengeScalars derives n unbiased scalars.
func (t *T) ChallengeScalars(label string, n int) []group.Scalar {
	out := make([]group.Scalar, n)
	for i := range out {
		out[i] = t.ChallengeScalar(fmt.Sprintf("%s-%d", label, i))
	}
	return out
}

// ChallengePoint derives an unbiased group element from the transcript
// state.
func (t *T) ChallengePoint(label string) group.Element {
	wide := t.m.ExtractBytes([]byte(label), 64)
	return group.ElementFromUniformBytes(wide)
}

// ChallengePedersen derives an n-ary Pedersen scheme from the transcript
// state after committing h, so that both a creator and a verifier who
// have committed the same public data independently derive the same
// scheme without interaction.
func (t *T) ChallengePedersen(label string, h group.Element, n int) *pedersen.Scheme {
	t.CommitPoint(label+"-h", h)
	g := make([]group.Element, n)
	for i := range g {
		g[i] = t.ChallengePoint(fmt.Sprintf("%s-g-%d", label, i))
	}
	hGen := t.ChallengePoint(label + "-hgen")
	return &pedersen.Scheme{H: hGen, G: g}
}

// RngBuilder accumulates witness material to seed a per-proof RNG. Only a
// proof's creator may use it; verifiers never call BuildRng.
type RngBuilder struct {
	state   []byte
	witness []byte
}

// BuildRng snapshots the current transcript state as the base of a fresh
// per-proof RNG seed.
func (t *T) BuildRng() *RngBuilder {
	return &RngBuilder{state: t.m.ExtractBytes([]byte("rng-state"), 32)}
}

func (b *RngBuilder) absorb(label string, data []byte) *RngBuilder {
	b.witness = append(b.witness, []byte(label)...)
	b.witness = append(b.witness, data...)
	return b
}

// CommitScalar mixes a secret scalar witness into the RNG seed.
func (b *RngBuilder) CommitScalar(label string, s group.Scalar) *RngBuilder {
	return b.absorb(label, s.Encode(nil))
}

// CommitScalars mixes a secret scalar vector witness into the RNG seed.
func (b *RngBuilder) CommitScalars(label string, ss []group.Scalar) *RngBuilder {
	for i, s := range ss {
		b.absorb(fmt.Sprintf("%s-%d", label, i), s.Encode(nil))
	}
	return b
}

// CommitPermutation mixes a secret permutation witness into the RNG seed.
func (b *RngBuilder) CommitPermutation(label string, pi *perm.Permutation) *RngBuilder {
	buf := make([]byte, pi.Len()*8)
	for i, v := range pi.Slice() {
		binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
	}
	return b.absorb(label, buf)
}

// CommitUint mixes a secret integer witness (e.g. a shift amount) into the
// RNG seed.
func (b *RngBuilder) CommitUint(label string, v uint64) *RngBuilder {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return b.absorb(label, buf[:])
}

// Finalize combines the transcript snapshot, the accumulated witness
// material, and fresh system entropy (crypto/rand when systemRNG is nil)
// through HKDF-SHA256 into a deterministic-looking but secret-mixed
// io.Reader. The resulting reader must be used for exactly one proof and
// never retained afterwards.
func (b *RngBuilder) Finalize(systemRNG io.Reader) (io.Reader, error) {
	if systemRNG == nil {
		systemRNG = rand.Reader
	}
	var sys [32]byte
	if _, err := io.ReadFull(systemRNG, sys[:]); err != nil {
		return nil, fmt.Errorf("transcript: drawing system entropy: %w", err)
	}
	secret := append(append([]byte(nil), b.state...), b.witness...)
	return hkdf.New(sha256.New, secret, sys[:], []byte("pbmx-transcript-rng")), nil
}
