package mask

import "github.com/rawblock/pbmx/serde"

// Encode returns m's canonical encoding: c0 and c1 back to back.
func (m Mask) Encode() []byte {
	w := serde.NewWriter()
	w.PutPoint(m.C0)
	w.PutPoint(m.C1)
	return w.Bytes()
}

// Decode parses the encoding produced by Mask.Encode.
func Decode(b []byte) (Mask, error) {
	r := serde.NewReader(b)
	c0, err := r.GetPoint()
	if err != nil {
		return Mask{}, err
	}
	c1, err := r.GetPoint()
	if err != nil {
		return Mask{}, err
	}
	return Mask{C0: c0, C1: c1}, nil
}

// ToBase64 frames and base64-aliases m, the exported form a single mask
// travels in outside a stack payload.
func (m Mask) ToBase64() string { return serde.ToBase64(m.Encode()) }

// FromBase64 reverses Mask.ToBase64.
func FromBase64(s string) (Mask, error) {
	buf, err := serde.FromBase64(s)
	if err != nil {
		return Mask{}, err
	}
	return Decode(buf)
}

// EncodeStack returns s's canonical encoding: a length prefix followed by
// each mask's encoding in order.
func (s Stack) EncodeStack() []byte {
	w := serde.NewWriter()
	w.PutUint64(uint64(len(s)))
	for _, m := range s {
		w.PutPoint(m.C0)
		w.PutPoint(m.C1)
	}
	return w.Bytes()
}

// DecodeStack parses the encoding produced by Stack.EncodeStack.
func DecodeStack(b []byte) (Stack, error) {
	r := serde.NewReader(b)
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	out := make(Stack, n)
	for i := range out {
		if out[i].C0, err = r.GetPoint(); err != nil {
			return nil, err
		}
		if out[i].C1, err = r.GetPoint(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
