package keys

import "github.com/rawblock/pbmx/serde"

// Encode returns pk's canonical encoding: its point, canonically.
func (pk PublicKey) Encode() []byte {
	w := serde.NewWriter()
	w.PutPoint(pk.h)
	return w.Bytes()
}

// DecodePublicKey parses the encoding produced by PublicKey.Encode.
func DecodePublicKey(b []byte) (PublicKey, error) {
	r := serde.NewReader(b)
	h, err := r.GetPoint()
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{h: h}, nil
}

// Encode returns sig's canonical encoding: c and r back to back.
func (sig Signature) Encode() []byte {
	w := serde.NewWriter()
	w.PutScalar(sig.C)
	w.PutScalar(sig.R)
	return w.Bytes()
}

// DecodeSignature parses the encoding produced by Signature.Encode.
func DecodeSignature(b []byte) (Signature, error) {
	r := serde.NewReader(b)
	c, err := r.GetScalar()
	if err != nil {
		return Signature{}, err
	}
	x, err := r.GetScalar()
	if err != nil {
		return Signature{}, err
	}
	return Signature{C: c, R: x}, nil
}

// ToBase64 frames and base64-aliases pk, the exported form a public key
// travels in outside a PublishKeyPayload.
func (pk PublicKey) ToBase64() string { return serde.ToBase64(pk.Encode()) }

// PublicKeyFromBase64 reverses PublicKey.ToBase64.
func PublicKeyFromBase64(s string) (PublicKey, error) {
	buf, err := serde.FromBase64(s)
	if err != nil {
		return PublicKey{}, err
	}
	return DecodePublicKey(buf)
}
