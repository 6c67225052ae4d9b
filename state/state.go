package state

import (
	"github.com/rawblock/pbmx/chain"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/vtmf"
)

// State is the shared, deterministically-reproducible end result of
// replaying a chain: the combined masking key, every stack and name
// agreed on, and every distributed random generator in flight.
type State struct {
	Vtmf  *vtmf.Vtmf
	Chain *chain.Chain
	Names map[keys.Fingerprint]string
	Stacks *StackMap
	Rngs  map[string]*Rng
}

// New starts a blank state seeded with sk, this party's own key.
func New(sk keys.PrivateKey) *State {
	return &State{
		Vtmf:   vtmf.New(sk),
		Chain:  chain.New(),
		Names:  make(map[keys.Fingerprint]string),
		Stacks: NewStackMap(),
		Rngs:   make(map[string]*Rng),
	}
}

// AddBlock folds every payload of b into the state, in the order they
// were added to the block. A block is all-or-nothing: if any payload
// fails to validate against the state accumulated so far, none of the
// block's effects are applied and the block is not added to the chain.
func (s *State) AddBlock(b *chain.Block) bool {
	if _, dup := s.Chain.Block(b.Id()); dup {
		return false
	}
	staged := s.clone()
	for _, p := range b.Payloads() {
		if !staged.apply(b, p) {
			return false
		}
	}
	*s = *staged
	if err := s.Chain.AddBlock(b); err != nil {
		return false
	}
	return true
}

// clone makes a shallow-enough copy of s that a rejected block's partial
// effects never reach the real state: failed validation inside apply
// only ever mutates staged, discarded by the caller.
func (s *State) clone() *State {
	names := make(map[keys.Fingerprint]string, len(s.Names))
	for k, v := range s.Names {
		names[k] = v
	}
	rngs := make(map[string]*Rng, len(s.Rngs))
	for k, v := range s.Rngs {
		cp := *v
		cp.entropyFp = make(map[keys.Fingerprint]bool, len(v.entropyFp))
		for fp := range v.entropyFp {
			cp.entropyFp[fp] = true
		}
		cp.secretFp = make(map[keys.Fingerprint]bool, len(v.secretFp))
		for fp := range v.secretFp {
			cp.secretFp[fp] = true
		}
		rngs[k] = &cp
	}
	return &State{
		Vtmf:   s.Vtmf.Clone(),
		Chain:  s.Chain,
		Names:  names,
		Stacks: s.Stacks.clone(),
		Rngs:   rngs,
	}
}

func (s *State) apply(b *chain.Block, p chain.Payload) bool {
	switch v := p.(type) {
	case chain.PublishKeyPayload:
		return s.applyPublishKey(b, v)
	case chain.OpenStackPayload:
		return s.applyOpenStack(v)
	case chain.MaskStackPayload:
		return s.applyMaskStack(v)
	case chain.ShuffleStackPayload:
		return s.applyShuffleStack(v)
	case chain.ShiftStackPayload:
		return s.applyShiftStack(v)
	case chain.InsertStackPayload:
		return s.applyInsertStack(v)
	case chain.TakeStackPayload:
		return s.applyTakeStack(v)
	case chain.PileStacksPayload:
		return s.applyPileStacks(v)
	case chain.NameStackPayload:
		return s.applyNameStack(v)
	case chain.PublishSharesPayload:
		return s.applyPublishShares(b, v)
	case chain.RandomSpecPayload:
		return s.applyRandomSpec(v)
	case chain.RandomEntropyPayload:
		return s.applyRandomEntropy(b, v)
	case chain.RandomRevealPayload:
		return s.applyRandomReveal(b, v)
	case chain.BytesPayload:
		return true
	default:
		return false
	}
}

func (s *State) applyPublishKey(b *chain.Block, p chain.PublishKeyPayload) bool {
	if b.Signer() != p.Key.Fingerprint() {
		return false
	}
	s.Vtmf.AddKey(p.Key)
	s.Names[p.Key.Fingerprint()] = p.Name
	return true
}

func (s *State) applyOpenStack(p chain.OpenStackPayload) bool {
	for _, m := range p.Stack {
		if !m.IsOpen() {
			return false
		}
	}
	s.Stacks.Insert(p.Stack)
	return true
}

func (s *State) applyMaskStack(p chain.MaskStackPayload) bool {
	src, ok := s.Stacks.ByID(p.Source)
	if !ok || len(src) != len(p.Stack) || len(src) != len(p.Proofs) {
		return false
	}
	for i := range src {
		if err := s.Vtmf.VerifyRemask(src[i], p.Stack[i], p.Proofs[i]); err != nil {
			return false
		}
	}
	s.Stacks.Insert(p.Stack)
	return true
}

func (s *State) applyShuffleStack(p chain.ShuffleStackPayload) bool {
	src, ok := s.Stacks.ByID(p.Source)
	if !ok {
		return false
	}
	if err := s.Vtmf.VerifyMaskShuffle(src, p.Stack, p.Proof); err != nil {
		return false
	}
	s.Stacks.Insert(p.Stack)
	return true
}

func (s *State) applyShiftStack(p chain.ShiftStackPayload) bool {
	src, ok := s.Stacks.ByID(p.Source)
	if !ok {
		return false
	}
	if err := s.Vtmf.VerifyMaskShift(src, p.Stack, p.Proof); err != nil {
		return false
	}
	s.Stacks.Insert(p.Stack)
	return true
}

// applyInsertStack verifies that the result stack is the haystack with
// the needle's single token inserted at a position the proof keeps
// hidden — it never checks a literal prefix match against the haystack,
// since doing so would pin the insertion to a known position and defeat
// the point of the operation.
func (s *State) applyInsertStack(p chain.InsertStackPayload) bool {
	needle, ok := s.Stacks.ByID(p.Needle)
	if !ok || len(needle) != 1 {
		return false
	}
	haystack, ok := s.Stacks.ByID(p.Haystack)
	if !ok || len(p.Stack) != len(haystack)+1 {
		return false
	}
	if err := s.Vtmf.VerifyMaskInsert(haystack, p.Stack, needle[0], p.Proof); err != nil {
		return false
	}
	if chain.StackId(p.Stack) != p.Result {
		return false
	}
	s.Stacks.Insert(p.Stack)
	return true
}

func (s *State) applyTakeStack(p chain.TakeStackPayload) bool {
	src, ok := s.Stacks.ByID(p.Source)
	if !ok {
		return false
	}
	out := make(mask.Stack, len(p.Indices))
	for i, idx := range p.Indices {
		if idx < 0 || idx >= len(src) {
			return false
		}
		out[i] = src[idx]
	}
	if chain.StackId(out) != p.Result {
		return false
	}
	s.Stacks.Insert(out)
	return true
}

func (s *State) applyPileStacks(p chain.PileStacksPayload) bool {
	var out mask.Stack
	for _, id := range p.Sources {
		src, ok := s.Stacks.ByID(id)
		if !ok {
			return false
		}
		out = append(out, src...)
	}
	if chain.StackId(out) != p.Result {
		return false
	}
	s.Stacks.Insert(out)
	return true
}

func (s *State) applyNameStack(p chain.NameStackPayload) bool {
	if !s.Stacks.Contains(p.Stack) {
		return false
	}
	s.Stacks.SetName(p.Stack, p.Name)
	return true
}

func (s *State) applyPublishShares(b *chain.Block, p chain.PublishSharesPayload) bool {
	src, ok := s.Stacks.ByID(p.Stack)
	if !ok || len(src) != len(p.Shares) || len(src) != len(p.Proofs) {
		return false
	}
	for i := range src {
		if err := s.Vtmf.VerifyUnmask(src[i], b.Signer(), p.Shares[i], p.Proofs[i]); err != nil {
			return false
		}
	}
	s.Stacks.AddSecretShare(p.Stack, b.Signer(), p.Shares)
	return true
}

func (s *State) applyRandomSpec(p chain.RandomSpecPayload) bool {
	if existing, ok := s.Rngs[p.Name]; ok {
		return existing.Spec() == p.Spec
	}
	r, err := NewRng(s.Vtmf.Parties(), p.Spec)
	if err != nil {
		return false
	}
	s.Rngs[p.Name] = r
	return true
}

func (s *State) applyRandomEntropy(b *chain.Block, p chain.RandomEntropyPayload) bool {
	r, ok := s.Rngs[p.Name]
	if !ok || r.IsGenerated() || r.EntropyParties()[b.Signer()] {
		return false
	}
	r.AddEntropy(b.Signer(), p.Entropy)
	return true
}

func (s *State) applyRandomReveal(b *chain.Block, p chain.RandomRevealPayload) bool {
	r, ok := s.Rngs[p.Name]
	if !ok || r.IsRevealed() || r.SecretParties()[b.Signer()] {
		return false
	}
	if err := s.Vtmf.VerifyUnmask(r.Mask(), b.Signer(), p.Share, p.Proof); err != nil {
		return false
	}
	r.AddSecret(b.Signer(), p.Share)
	return true
}
