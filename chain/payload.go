// Package chain implements the closed payload taxonomy, the signed
// append-only block, and the DAG of blocks every party's replay engine
// walks to reconstruct shared state.
package chain

import (
	"github.com/rawblock/pbmx/idhash"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/serde"
	"github.com/rawblock/pbmx/vtmf"
)

// Id names a block or a payload by the domain-separated hash of its
// canonical encoding; it is the same 32-byte shape as a key fingerprint.
type Id = keys.Fingerprint

const payloadIdTag = "pbmx-payload-id"

// Payload is the closed set of operations a block may carry. Every
// concrete type computes its own Id from its canonical encoding, so two
// payloads with identical content always share an Id regardless of which
// block carries them.
type Payload interface {
	Id() Id
	kind() byte
}

func payloadId(p Payload, encode func(w *serde.Writer)) Id {
	w := serde.NewWriter()
	encode(w)
	buf := append([]byte{p.kind()}, w.Bytes()...)
	return Id(idhash.Sum(payloadIdTag, buf))
}

const (
	kindPublishKey byte = iota
	kindOpenStack
	kindMaskStack
	kindShuffleStack
	kindShiftStack
	kindNameStack
	kindTakeStack
	kindPileStacks
	kindInsertStack
	kindPublishShares
	kindRandomSpec
	kindRandomEntropy
	kindRandomReveal
	kindBytes
)

// PublishKeyPayload introduces a named public key into the chain.
type PublishKeyPayload struct {
	Name string
	Key  keys.PublicKey
}

func (p PublishKeyPayload) kind() byte { return kindPublishKey }
func (p PublishKeyPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		w.PutString(p.Name)
		w.PutPoint(p.Key.Point())
	})
}

// OpenStackPayload introduces a stack of already-open (unmasked) tokens.
type OpenStackPayload struct {
	Stack mask.Stack
}

func (p OpenStackPayload) kind() byte { return kindOpenStack }
func (p OpenStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) { putStack(w, p.Stack) })
}

// MaskStackPayload re-masks a known stack's tokens in place, one
// independently-verifiable proof per token.
type MaskStackPayload struct {
	Source Id
	Stack  mask.Stack
	Proofs []vtmf.MaskProof
}

func (p MaskStackPayload) kind() byte { return kindMaskStack }
func (p MaskStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Source)
		putStack(w, p.Stack)
		w.PutUint64(uint64(len(p.Proofs)))
		for _, pr := range p.Proofs {
			w.PutBytes(pr.Encode())
		}
	})
}

// ShuffleStackPayload re-masks and permutes a stack's tokens under one
// shuffle proof.
type ShuffleStackPayload struct {
	Source Id
	Stack  mask.Stack
	Proof  vtmf.ShuffleProof
}

func (p ShuffleStackPayload) kind() byte { return kindShuffleStack }
func (p ShuffleStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Source)
		putStack(w, p.Stack)
		w.PutBytes(p.Proof.Encode())
	})
}

// ShiftStackPayload re-masks and cyclically shifts a stack's tokens under
// one shift proof.
type ShiftStackPayload struct {
	Source Id
	Stack  mask.Stack
	Proof  vtmf.ShiftProof
}

func (p ShiftStackPayload) kind() byte { return kindShiftStack }
func (p ShiftStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Source)
		putStack(w, p.Stack)
		w.PutBytes(p.Proof.Encode())
	})
}

// NameStackPayload binds (or rebinds) a human-readable name to a stack Id.
type NameStackPayload struct {
	Stack Id
	Name  string
}

func (p NameStackPayload) kind() byte { return kindNameStack }
func (p NameStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Stack)
		w.PutString(p.Name)
	})
}

// TakeStackPayload carves a substack (by index) out of an existing stack.
type TakeStackPayload struct {
	Source  Id
	Indices []int
	Result  Id
}

func (p TakeStackPayload) kind() byte { return kindTakeStack }
func (p TakeStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Source)
		w.PutUint64(uint64(len(p.Indices)))
		for _, i := range p.Indices {
			w.PutUint64(uint64(i))
		}
		putId(w, p.Result)
	})
}

// PileStacksPayload concatenates several stacks into one.
type PileStacksPayload struct {
	Sources []Id
	Result  Id
}

func (p PileStacksPayload) kind() byte { return kindPileStacks }
func (p PileStacksPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		w.PutUint64(uint64(len(p.Sources)))
		for _, id := range p.Sources {
			putId(w, id)
		}
		putId(w, p.Result)
	})
}

// InsertStackPayload inserts a freshly-masked token (the "needle", itself
// a single-element stack) into an existing stack (the "haystack") at a
// position the proof keeps hidden from every other party.
type InsertStackPayload struct {
	Needle   Id
	Haystack Id
	Result   Id
	Stack    mask.Stack
	Proof    vtmf.InsertProof
}

func (p InsertStackPayload) kind() byte { return kindInsertStack }
func (p InsertStackPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Needle)
		putId(w, p.Haystack)
		putId(w, p.Result)
		putStack(w, p.Stack)
		w.PutBytes(p.Proof.Encode())
	})
}

// PublishSharesPayload publishes this party's unmask shares for a stack,
// one share and proof per token.
type PublishSharesPayload struct {
	Stack  Id
	Shares []vtmf.SecretShare
	Proofs []vtmf.SecretShareProof
}

func (p PublishSharesPayload) kind() byte { return kindPublishShares }
func (p PublishSharesPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		putId(w, p.Stack)
		w.PutUint64(uint64(len(p.Shares)))
		for _, s := range p.Shares {
			w.PutPoint(s.D)
		}
		w.PutUint64(uint64(len(p.Proofs)))
		for _, pr := range p.Proofs {
			w.PutBytes(pr.Encode())
		}
	})
}

// RandomSpecPayload opens a new named dice-notation random generator.
type RandomSpecPayload struct {
	Name string
	Spec string
}

func (p RandomSpecPayload) kind() byte { return kindRandomSpec }
func (p RandomSpecPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		w.PutString(p.Name)
		w.PutString(p.Spec)
	})
}

// RandomEntropyPayload contributes this party's masked entropy towards a
// named random generator.
type RandomEntropyPayload struct {
	Name    string
	Entropy mask.Mask
}

func (p RandomEntropyPayload) kind() byte { return kindRandomEntropy }
func (p RandomEntropyPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		w.PutString(p.Name)
		putMask(w, p.Entropy)
	})
}

// RandomRevealPayload publishes this party's unmask share of a named
// random generator's combined entropy.
type RandomRevealPayload struct {
	Name  string
	Share vtmf.SecretShare
	Proof vtmf.SecretShareProof
}

func (p RandomRevealPayload) kind() byte { return kindRandomReveal }
func (p RandomRevealPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) {
		w.PutString(p.Name)
		w.PutPoint(p.Share.D)
		w.PutBytes(p.Proof.Encode())
	})
}

// BytesPayload carries an opaque application-defined message, unrelated to
// any stack.
type BytesPayload struct {
	Data []byte
}

func (p BytesPayload) kind() byte { return kindBytes }
func (p BytesPayload) Id() Id {
	return payloadId(p, func(w *serde.Writer) { w.PutBytes(p.Data) })
}

func putId(w *serde.Writer, id Id) { w.PutBytes(id[:]) }

func putStack(w *serde.Writer, s mask.Stack) {
	w.PutUint64(uint64(len(s)))
	for _, m := range s {
		putMask(w, m)
	}
}

func putMask(w *serde.Writer, m mask.Mask) {
	w.PutPoint(m.C0)
	w.PutPoint(m.C1)
}
