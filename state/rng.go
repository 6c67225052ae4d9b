package state

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/rngspec"
	"github.com/rawblock/pbmx/vtmf"
)

// Rng is a random number generator whose entropy and revealing secret
// are distributed across every party: its result cannot be known until
// every party has contributed entropy and every party has revealed their
// share of the combining secret.
type Rng struct {
	parties  int
	spec     *rngspec.Spec
	rawSpec  string
	entropy  mask.Mask
	secret   vtmf.SecretShare
	entropyFp map[keys.Fingerprint]bool
	secretFp  map[keys.Fingerprint]bool
}

// NewRng starts a generator distributed over the given number of
// parties, with the given dice-notation result shape.
func NewRng(parties int, spec string) (*Rng, error) {
	s, err := rngspec.Parse(spec)
	if err != nil {
		return nil, err
	}
	return &Rng{
		parties:   parties,
		spec:      s,
		rawSpec:   spec,
		entropy:   mask.Open(group.Identity()),
		secret:    vtmf.SecretShare{D: group.Identity()},
		entropyFp: make(map[keys.Fingerprint]bool),
		secretFp:  make(map[keys.Fingerprint]bool),
	}, nil
}

// Spec returns the generator's dice-notation shape, as originally given.
func (r *Rng) Spec() string { return r.rawSpec }

// Mask returns the combined entropy mask the result is derived from.
func (r *Rng) Mask() mask.Mask { return r.entropy }

// AddEntropy folds party's masked entropy contribution into the
// generator, ignoring a repeated contribution from the same party.
func (r *Rng) AddEntropy(party keys.Fingerprint, share mask.Mask) {
	if r.entropyFp[party] {
		return
	}
	r.entropy = r.entropy.Add(share)
	r.entropyFp[party] = true
}

// AddSecret folds party's unmask share of the combining secret into the
// generator, ignoring a repeated contribution from the same party.
func (r *Rng) AddSecret(party keys.Fingerprint, share vtmf.SecretShare) {
	if r.secretFp[party] {
		return
	}
	r.secret = vtmf.SecretShare{D: r.secret.D.Add(share.D)}
	r.secretFp[party] = true
}

// EntropyParties reports which parties have contributed entropy.
func (r *Rng) EntropyParties() map[keys.Fingerprint]bool { return r.entropyFp }

// SecretParties reports which parties have revealed their combining
// secret share.
func (r *Rng) SecretParties() map[keys.Fingerprint]bool { return r.secretFp }

// IsGenerated reports whether every party has contributed entropy.
func (r *Rng) IsGenerated() bool { return len(r.entropyFp) == r.parties }

// IsRevealed reports whether every party has revealed their combining
// secret share.
func (r *Rng) IsRevealed() bool { return len(r.secretFp) == r.parties }

// Gen unmasks the combined entropy and draws the generator's result from
// it through the dice-notation sampler.
func (r *Rng) Gen(v *vtmf.Vtmf) (uint64, error) {
	opened := v.Unmask(r.entropy, r.secret)
	reader := v.UnmaskRandom(opened)
	return r.spec.Gen(reader)
}
