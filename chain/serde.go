package chain

import (
	"fmt"

	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/pbmxerr"
	"github.com/rawblock/pbmx/proofs"
	"github.com/rawblock/pbmx/serde"
	"github.com/rawblock/pbmx/vtmf"
)

func getId(r *serde.Reader) (Id, error) {
	b, err := r.GetBytes()
	if err != nil {
		return Id{}, err
	}
	if len(b) != len(Id{}) {
		return Id{}, fmt.Errorf("%w: chain: bad id length %d", pbmxerr.ErrDecoding, len(b))
	}
	var id Id
	copy(id[:], b)
	return id, nil
}

func getStack(r *serde.Reader) (mask.Stack, error) {
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	out := make(mask.Stack, n)
	for i := range out {
		if out[i], err = getMask(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func getMask(r *serde.Reader) (mask.Mask, error) {
	c0, err := r.GetPoint()
	if err != nil {
		return mask.Mask{}, err
	}
	c1, err := r.GetPoint()
	if err != nil {
		return mask.Mask{}, err
	}
	return mask.Mask{C0: c0, C1: c1}, nil
}

// Encode returns the payload's canonical encoding: its kind byte followed
// by its field-by-field body, the same bytes Id() hashes.
func Encode(p Payload) []byte {
	w := serde.NewWriter()
	w.PutByte(p.kind())
	switch v := p.(type) {
	case PublishKeyPayload:
		w.PutString(v.Name)
		w.PutPoint(v.Key.Point())
	case OpenStackPayload:
		putStack(w, v.Stack)
	case MaskStackPayload:
		putId(w, v.Source)
		putStack(w, v.Stack)
		w.PutUint64(uint64(len(v.Proofs)))
		for _, p := range v.Proofs {
			w.PutBytes(p.Encode())
		}
	case ShuffleStackPayload:
		putId(w, v.Source)
		putStack(w, v.Stack)
		w.PutBytes(v.Proof.Encode())
	case ShiftStackPayload:
		putId(w, v.Source)
		putStack(w, v.Stack)
		w.PutBytes(v.Proof.Encode())
	case NameStackPayload:
		putId(w, v.Stack)
		w.PutString(v.Name)
	case TakeStackPayload:
		putId(w, v.Source)
		w.PutUint64(uint64(len(v.Indices)))
		for _, i := range v.Indices {
			w.PutUint64(uint64(i))
		}
		putId(w, v.Result)
	case PileStacksPayload:
		w.PutUint64(uint64(len(v.Sources)))
		for _, id := range v.Sources {
			putId(w, id)
		}
		putId(w, v.Result)
	case InsertStackPayload:
		putId(w, v.Needle)
		putId(w, v.Haystack)
		putId(w, v.Result)
		putStack(w, v.Stack)
		w.PutBytes(v.Proof.Encode())
	case PublishSharesPayload:
		putId(w, v.Stack)
		w.PutUint64(uint64(len(v.Shares)))
		for _, s := range v.Shares {
			w.PutPoint(s.D)
		}
		w.PutUint64(uint64(len(v.Proofs)))
		for _, p := range v.Proofs {
			w.PutBytes(p.Encode())
		}
	case RandomSpecPayload:
		w.PutString(v.Name)
		w.PutString(v.Spec)
	case RandomEntropyPayload:
		w.PutString(v.Name)
		putMask(w, v.Entropy)
	case RandomRevealPayload:
		w.PutString(v.Name)
		w.PutPoint(v.Share.D)
		w.PutBytes(v.Proof.Encode())
	case BytesPayload:
		w.PutBytes(v.Data)
	}
	return w.Bytes()
}

// DecodePayload parses the encoding produced by Encode, dispatching on its
// leading kind byte.
func DecodePayload(b []byte) (Payload, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: chain: empty payload", pbmxerr.ErrDecoding)
	}
	kind, body := b[0], b[1:]
	r := serde.NewReader(body)
	switch kind {
	case kindPublishKey:
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		h, err := r.GetPoint()
		if err != nil {
			return nil, err
		}
		return PublishKeyPayload{Name: name, Key: keys.FromElement(h)}, nil
	case kindOpenStack:
		s, err := getStack(r)
		if err != nil {
			return nil, err
		}
		return OpenStackPayload{Stack: s}, nil
	case kindMaskStack:
		src, err := getId(r)
		if err != nil {
			return nil, err
		}
		s, err := getStack(r)
		if err != nil {
			return nil, err
		}
		n, err := r.GetUint64()
		if err != nil {
			return nil, err
		}
		proofList := make([]vtmf.MaskProof, n)
		for i := range proofList {
			pb, err := r.GetBytes()
			if err != nil {
				return nil, err
			}
			if proofList[i], err = proofs.DecodeDlogEq(pb); err != nil {
				return nil, err
			}
		}
		return MaskStackPayload{Source: src, Stack: s, Proofs: proofList}, nil
	case kindShuffleStack:
		src, err := getId(r)
		if err != nil {
			return nil, err
		}
		s, err := getStack(r)
		if err != nil {
			return nil, err
		}
		pb, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		proof, err := proofs.DecodeSecretShuffle(pb)
		if err != nil {
			return nil, err
		}
		return ShuffleStackPayload{Source: src, Stack: s, Proof: proof}, nil
	case kindShiftStack:
		src, err := getId(r)
		if err != nil {
			return nil, err
		}
		s, err := getStack(r)
		if err != nil {
			return nil, err
		}
		pb, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		proof, err := proofs.DecodeSecretRotation(pb)
		if err != nil {
			return nil, err
		}
		return ShiftStackPayload{Source: src, Stack: s, Proof: proof}, nil
	case kindNameStack:
		stack, err := getId(r)
		if err != nil {
			return nil, err
		}
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		return NameStackPayload{Stack: stack, Name: name}, nil
	case kindTakeStack:
		src, err := getId(r)
		if err != nil {
			return nil, err
		}
		n, err := r.GetUint64()
		if err != nil {
			return nil, err
		}
		indices := make([]int, n)
		for i := range indices {
			v, err := r.GetUint64()
			if err != nil {
				return nil, err
			}
			indices[i] = int(v)
		}
		result, err := getId(r)
		if err != nil {
			return nil, err
		}
		return TakeStackPayload{Source: src, Indices: indices, Result: result}, nil
	case kindPileStacks:
		n, err := r.GetUint64()
		if err != nil {
			return nil, err
		}
		sources := make([]Id, n)
		for i := range sources {
			if sources[i], err = getId(r); err != nil {
				return nil, err
			}
		}
		result, err := getId(r)
		if err != nil {
			return nil, err
		}
		return PileStacksPayload{Sources: sources, Result: result}, nil
	case kindInsertStack:
		needle, err := getId(r)
		if err != nil {
			return nil, err
		}
		haystack, err := getId(r)
		if err != nil {
			return nil, err
		}
		result, err := getId(r)
		if err != nil {
			return nil, err
		}
		s, err := getStack(r)
		if err != nil {
			return nil, err
		}
		pb, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		proof, err := proofs.DecodeInsertion(pb)
		if err != nil {
			return nil, err
		}
		return InsertStackPayload{Needle: needle, Haystack: haystack, Result: result, Stack: s, Proof: proof}, nil
	case kindPublishShares:
		stack, err := getId(r)
		if err != nil {
			return nil, err
		}
		n, err := r.GetUint64()
		if err != nil {
			return nil, err
		}
		shares := make([]vtmf.SecretShare, n)
		for i := range shares {
			d, err := r.GetPoint()
			if err != nil {
				return nil, err
			}
			shares[i] = vtmf.SecretShare{D: d}
		}
		m, err := r.GetUint64()
		if err != nil {
			return nil, err
		}
		proofList := make([]vtmf.SecretShareProof, m)
		for i := range proofList {
			pb, err := r.GetBytes()
			if err != nil {
				return nil, err
			}
			if proofList[i], err = proofs.DecodeDlogEq(pb); err != nil {
				return nil, err
			}
		}
		return PublishSharesPayload{Stack: stack, Shares: shares, Proofs: proofList}, nil
	case kindRandomSpec:
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		spec, err := r.GetString()
		if err != nil {
			return nil, err
		}
		return RandomSpecPayload{Name: name, Spec: spec}, nil
	case kindRandomEntropy:
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		entropy, err := getMask(r)
		if err != nil {
			return nil, err
		}
		return RandomEntropyPayload{Name: name, Entropy: entropy}, nil
	case kindRandomReveal:
		name, err := r.GetString()
		if err != nil {
			return nil, err
		}
		d, err := r.GetPoint()
		if err != nil {
			return nil, err
		}
		pb, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		proof, err := proofs.DecodeDlogEq(pb)
		if err != nil {
			return nil, err
		}
		return RandomRevealPayload{Name: name, Share: vtmf.SecretShare{D: d}, Proof: proof}, nil
	case kindBytes:
		data, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		return BytesPayload{Data: data}, nil
	default:
		return nil, fmt.Errorf("%w: chain: unknown payload kind %d", pbmxerr.ErrDecoding, kind)
	}
}

// Encode returns b's canonical wire encoding: its acks, every payload's
// full body in order, the signer fingerprint, and the signature. Unlike
// the internal encode() used to derive Id (which only references payloads
// by id), this carries enough to reconstruct the block from nothing.
func (b *Block) Encode() []byte {
	w := serde.NewWriter()
	w.PutUint64(uint64(len(b.acks)))
	for _, ack := range b.acks {
		putId(w, ack)
	}
	w.PutUint64(uint64(len(b.payloads)))
	for _, p := range b.payloads {
		w.PutBytes(Encode(p))
	}
	w.PutBytes(b.signer[:])
	w.PutBytes(b.sig.Encode())
	return w.Bytes()
}

// DecodeBlock parses the encoding produced by Block.Encode.
func DecodeBlock(buf []byte) (*Block, error) {
	r := serde.NewReader(buf)
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	acks := make([]Id, n)
	for i := range acks {
		if acks[i], err = getId(r); err != nil {
			return nil, err
		}
	}
	m, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	payloads := make([]Payload, m)
	for i := 0; i < int(m); i++ {
		pb, err := r.GetBytes()
		if err != nil {
			return nil, err
		}
		p, err := DecodePayload(pb)
		if err != nil {
			return nil, err
		}
		payloads[i] = p
	}
	signerBytes, err := r.GetBytes()
	if err != nil {
		return nil, err
	}
	if len(signerBytes) != len(Id{}) {
		return nil, fmt.Errorf("%w: chain: bad signer length", pbmxerr.ErrDecoding)
	}
	var signer keys.Fingerprint
	copy(signer[:], signerBytes)
	sigBytes, err := r.GetBytes()
	if err != nil {
		return nil, err
	}
	sig, err := keys.DecodeSignature(sigBytes)
	if err != nil {
		return nil, err
	}
	return &Block{acks: acks, payloads: payloads, signer: signer, sig: sig}, nil
}

// ToBase64 frames and base64-aliases b, the exported form blocks travel in.
func (b *Block) ToBase64() string { return serde.ToBase64(b.Encode()) }

// BlockFromBase64 reverses Block.ToBase64.
func BlockFromBase64(s string) (*Block, error) {
	buf, err := serde.FromBase64(s)
	if err != nil {
		return nil, err
	}
	return DecodeBlock(buf)
}
