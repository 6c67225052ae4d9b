package chain

import (
	"fmt"

	"github.com/rawblock/pbmx/idhash"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/serde"
	"github.com/rawblock/pbmx/transcript"
)

const blockIdTag = "pbmx-block-id"

// Validity is the tri-state result of checking a block's signature: a
// block signed by a key this party has never seen is neither accepted nor
// rejected outright.
type Validity int

const (
	// Indeterminate means the signer's public key is not known locally.
	Indeterminate Validity = iota
	Valid
	Invalid
)

// Block is a signed, ordered bundle of payloads acknowledging zero or
// more parent blocks. Payloads are kept as a plain ordered list rather
// than keyed by Id, since two payloads can legitimately carry identical
// content (and thus the same Id) and both must survive.
type Block struct {
	acks     []Id
	payloads []Payload
	signer   keys.Fingerprint
	sig      keys.Signature
}

// Acks returns the ids of the blocks this block acknowledges as its
// parents.
func (b *Block) Acks() []Id { return append([]Id(nil), b.acks...) }

// Signer returns the fingerprint of the key that signed this block.
func (b *Block) Signer() keys.Fingerprint { return b.signer }

// Payloads returns this block's payloads in the order they were added,
// including any repeated with identical content.
func (b *Block) Payloads() []Payload { return append([]Payload(nil), b.payloads...) }

// Payload looks up one of this block's payloads by id. If more than one
// payload shares that id, the first one added is returned; since payloads
// sharing an Id are content-identical by construction, this is never
// ambiguous in substance.
func (b *Block) Payload(id Id) (Payload, bool) {
	for _, p := range b.payloads {
		if p.Id() == id {
			return p, true
		}
	}
	return nil, false
}

func (b *Block) signingTranscript() *transcript.T {
	t := transcript.New("pbmx-block")
	t.DomainSep("block")
	for _, ack := range b.acks {
		t.CommitBytes("ack", ack[:])
	}
	for _, p := range b.payloads {
		id := p.Id()
		t.CommitBytes("payload", id[:])
	}
	t.CommitBytes("signer", b.signer[:])
	return t
}

// encode lays out every field of the block in declaration order: acks,
// the ordered payload-id list, the signer fingerprint, and the signature.
// Re-encoding a block always reproduces the same bytes, and thus the same
// Id, since every field it reads is immutable after Build. Because each
// payload's own Id now covers all of its content (including proofs), a
// block built from the same payload instances always yields the same
// sequence of ids here, and two blocks differing only in payload count or
// order (even with otherwise-identical content) yield different ones.
func (b *Block) encode() []byte {
	w := serde.NewWriter()
	w.PutUint64(uint64(len(b.acks)))
	for _, ack := range b.acks {
		w.PutBytes(ack[:])
	}
	w.PutUint64(uint64(len(b.payloads)))
	for _, p := range b.payloads {
		id := p.Id()
		w.PutBytes(id[:])
	}
	w.PutBytes(b.signer[:])
	w.PutScalar(b.sig.C)
	w.PutScalar(b.sig.R)
	return w.Bytes()
}

// Id derives the block's content-addressed identifier from its canonical
// encoding, so that re-serializing a block always yields the same Id.
func (b *Block) Id() Id {
	return Id(idhash.Sum(blockIdTag, b.encode()))
}

// IsValid checks the block's signature against pki, the set of public
// keys known locally. It returns Indeterminate rather than Invalid when
// the signer's key has never been seen, since an unknown signer cannot be
// distinguished from a forged signature without that key.
func (b *Block) IsValid(pki map[keys.Fingerprint]keys.PublicKey) Validity {
	pk, ok := pki[b.signer]
	if !ok {
		return Indeterminate
	}
	if err := pk.Verify(b.signingTranscript(), b.sig); err != nil {
		return Invalid
	}
	return Valid
}

// Builder accumulates acknowledgements and payloads for a block that has
// not yet been signed.
type Builder struct {
	acks     []Id
	payloads []Payload
}

// NewBuilder starts an empty block builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Acknowledge records ack as one of the parents of the block under
// construction.
func (bu *Builder) Acknowledge(ack Id) *Builder {
	bu.acks = append(bu.acks, ack)
	return bu
}

// AddPayload appends p to the block under construction, preserving
// insertion order. Payloads are never deduplicated by Id: two additions
// with identical content are distinct entries and both are kept, so the
// built block always yields back exactly the sequence that was added.
func (bu *Builder) AddPayload(p Payload) *Builder {
	bu.payloads = append(bu.payloads, p)
	return bu
}

// Build signs the accumulated acks and payloads with sk, producing a
// finished block.
func (bu *Builder) Build(sk keys.PrivateKey) (*Block, error) {
	b := &Block{
		acks:     append([]Id(nil), bu.acks...),
		payloads: append([]Payload(nil), bu.payloads...),
		signer:   sk.PublicKey().Fingerprint(),
	}
	sig, err := sk.Sign(b.signingTranscript())
	if err != nil {
		return nil, fmt.Errorf("chain: signing block: %w", err)
	}
	b.sig = sig
	return b, nil
}
