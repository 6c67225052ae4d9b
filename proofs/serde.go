package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/serde"
)

func putScalars(w *serde.Writer, s []group.Scalar) {
	w.PutUint64(uint64(len(s)))
	for _, x := range s {
		w.PutScalar(x)
	}
}

func getScalars(r *serde.Reader) ([]group.Scalar, error) {
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	out := make([]group.Scalar, n)
	for i := range out {
		if out[i], err = r.GetScalar(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func putPoints(w *serde.Writer, e []group.Element) {
	w.PutUint64(uint64(len(e)))
	for _, x := range e {
		w.PutPoint(x)
	}
}

func getPoints(r *serde.Reader) ([]group.Element, error) {
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	out := make([]group.Element, n)
	for i := range out {
		if out[i], err = r.GetPoint(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func putMask(w *serde.Writer, m mask.Mask) {
	w.PutPoint(m.C0)
	w.PutPoint(m.C1)
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

func putMasks(w *serde.Writer, s []mask.Mask) {
	w.PutUint64(uint64(len(s)))
	for _, m := range s {
		putMask(w, m)
	}
}

func getMasks(r *serde.Reader) ([]mask.Mask, error) {
	n, err := r.GetUint64()
	if err != nil {
		return nil, err
	}
	out := make([]mask.Mask, n)
	for i := range out {
		if out[i], err = getMask(r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Encode returns the canonical field-by-field encoding of a dlog_eq proof.
func (p DlogEqProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutScalar(p.C)
	w.PutScalar(p.R)
	return w.Bytes()
}

// DecodeDlogEq parses the encoding produced by DlogEqProof.Encode.
func DecodeDlogEq(b []byte) (DlogEqProof, error) {
	r := serde.NewReader(b)
	c, err := r.GetScalar()
	if err != nil {
		return DlogEqProof{}, err
	}
	x, err := r.GetScalar()
	if err != nil {
		return DlogEqProof{}, err
	}
	return DlogEqProof{C: c, R: x}, nil
}

// Encode returns the canonical field-by-field encoding of a
// dlog_eq_1of2 proof.
func (p DlogEq1of2Proof) Encode() []byte {
	w := serde.NewWriter()
	w.PutScalar(p.C[0])
	w.PutScalar(p.C[1])
	w.PutScalar(p.R[0])
	w.PutScalar(p.R[1])
	return w.Bytes()
}

// DecodeDlogEq1of2 parses the encoding produced by DlogEq1of2Proof.Encode.
func DecodeDlogEq1of2(b []byte) (DlogEq1of2Proof, error) {
	r := serde.NewReader(b)
	var p DlogEq1of2Proof
	var err error
	if p.C[0], err = r.GetScalar(); err != nil {
		return DlogEq1of2Proof{}, err
	}
	if p.C[1], err = r.GetScalar(); err != nil {
		return DlogEq1of2Proof{}, err
	}
	if p.R[0], err = r.GetScalar(); err != nil {
		return DlogEq1of2Proof{}, err
	}
	if p.R[1], err = r.GetScalar(); err != nil {
		return DlogEq1of2Proof{}, err
	}
	return p, nil
}

// Encode returns the canonical field-by-field encoding of a known_shuffle
// proof.
func (p KnownShuffleProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutPoint(p.Cd)
	w.PutPoint(p.Cdd)
	w.PutPoint(p.Cda)
	putScalars(w, p.F)
	w.PutScalar(p.Z)
	putScalars(w, p.Fd)
	w.PutScalar(p.Zd)
	return w.Bytes()
}

// DecodeKnownShuffle parses the encoding produced by KnownShuffleProof.Encode.
func DecodeKnownShuffle(b []byte) (KnownShuffleProof, error) {
	r := serde.NewReader(b)
	var p KnownShuffleProof
	var err error
	if p.Cd, err = r.GetPoint(); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.Cdd, err = r.GetPoint(); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.Cda, err = r.GetPoint(); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.F, err = getScalars(r); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.Z, err = r.GetScalar(); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.Fd, err = getScalars(r); err != nil {
		return KnownShuffleProof{}, err
	}
	if p.Zd, err = r.GetScalar(); err != nil {
		return KnownShuffleProof{}, err
	}
	return p, nil
}

// Encode returns the canonical field-by-field encoding of a known_rotation
// proof.
func (p KnownRotationProof) Encode() []byte {
	w := serde.NewWriter()
	putPoints(w, p.F)
	putScalars(w, p.L)
	putScalars(w, p.Tv)
	return w.Bytes()
}

// DecodeKnownRotation parses the encoding produced by
// KnownRotationProof.Encode.
func DecodeKnownRotation(b []byte) (KnownRotationProof, error) {
	r := serde.NewReader(b)
	var p KnownRotationProof
	var err error
	if p.F, err = getPoints(r); err != nil {
		return KnownRotationProof{}, err
	}
	if p.L, err = getScalars(r); err != nil {
		return KnownRotationProof{}, err
	}
	if p.Tv, err = getScalars(r); err != nil {
		return KnownRotationProof{}, err
	}
	return p, nil
}

// Encode returns the canonical field-by-field encoding of a
// secret_shuffle proof.
func (p SecretShuffleProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutBytes(p.Skc.Encode())
	w.PutPoint(p.C)
	w.PutPoint(p.Cd)
	putMask(w, p.Ed)
	putScalars(w, p.F)
	w.PutScalar(p.Z)
	return w.Bytes()
}

// DecodeSecretShuffle parses the encoding produced by
// SecretShuffleProof.Encode.
func DecodeSecretShuffle(b []byte) (SecretShuffleProof, error) {
	r := serde.NewReader(b)
	var p SecretShuffleProof
	skcBytes, err := r.GetBytes()
	if err != nil {
		return SecretShuffleProof{}, err
	}
	if p.Skc, err = DecodeKnownShuffle(skcBytes); err != nil {
		return SecretShuffleProof{}, err
	}
	if p.C, err = r.GetPoint(); err != nil {
		return SecretShuffleProof{}, err
	}
	if p.Cd, err = r.GetPoint(); err != nil {
		return SecretShuffleProof{}, err
	}
	if p.Ed, err = getMask(r); err != nil {
		return SecretShuffleProof{}, err
	}
	if p.F, err = getScalars(r); err != nil {
		return SecretShuffleProof{}, err
	}
	if p.Z, err = r.GetScalar(); err != nil {
		return SecretShuffleProof{}, err
	}
	return p, nil
}

// Encode returns the canonical field-by-field encoding of a
// secret_rotation proof.
func (p SecretRotationProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutBytes(p.Rkc.Encode())
	putPoints(w, p.H)
	putMasks(w, p.Z)
	w.PutScalar(p.V)
	putPoints(w, p.F)
	putMasks(w, p.Ff)
	putScalars(w, p.Tau)
	putScalars(w, p.Rho)
	putScalars(w, p.Mu)
	return w.Bytes()
}

// DecodeSecretRotation parses the encoding produced by
// SecretRotationProof.Encode.
func DecodeSecretRotation(b []byte) (SecretRotationProof, error) {
	r := serde.NewReader(b)
	var p SecretRotationProof
	rkcBytes, err := r.GetBytes()
	if err != nil {
		return SecretRotationProof{}, err
	}
	if p.Rkc, err = DecodeKnownRotation(rkcBytes); err != nil {
		return SecretRotationProof{}, err
	}
	if p.H, err = getPoints(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.Z, err = getMasks(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.V, err = r.GetScalar(); err != nil {
		return SecretRotationProof{}, err
	}
	if p.F, err = getPoints(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.Ff, err = getMasks(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.Tau, err = getScalars(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.Rho, err = getScalars(r); err != nil {
		return SecretRotationProof{}, err
	}
	if p.Mu, err = getScalars(r); err != nil {
		return SecretRotationProof{}, err
	}
	return p, nil
}

// Encode returns the canonical field-by-field encoding of an
// entanglement proof: one nested secret_shuffle encoding per tangled pair.
func (p EntanglementProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutUint64(uint64(len(p.Tangles)))
	for _, t := range p.Tangles {
		w.PutBytes(t.Encode())
	}
	return w.Bytes()
}

// DecodeEntanglement parses the encoding produced by EntanglementProof.Encode.
func DecodeEntanglement(b []byte) (EntanglementProof, error) {
	r := serde.NewReader(b)
	n, err := r.GetUint64()
	if err != nil {
		return EntanglementProof{}, err
	}
	tangles := make([]SecretShuffleProof, n)
	for i := range tangles {
		tb, err := r.GetBytes()
		if err != nil {
			return EntanglementProof{}, err
		}
		if tangles[i], err = DecodeSecretShuffle(tb); err != nil {
			return EntanglementProof{}, err
		}
	}
	return EntanglementProof{Tangles: tangles}, nil
}

// Encode returns the canonical field-by-field encoding of a secret_insert
// proof: the two nested secret_rotation proofs bracketing the
// intermediate stack, then the 1-of-2 dlog_eq proof.
func (p InsertionProof) Encode() []byte {
	w := serde.NewWriter()
	w.PutBytes(p.Rot1.Encode())
	putMasks(w, p.S1)
	w.PutBytes(p.Rot2.Encode())
	w.PutBytes(p.EqTopBottom.Encode())
	return w.Bytes()
}

// DecodeInsertion parses the encoding produced by InsertionProof.Encode.
func DecodeInsertion(b []byte) (InsertionProof, error) {
	r := serde.NewReader(b)
	var p InsertionProof
	rot1Bytes, err := r.GetBytes()
	if err != nil {
		return InsertionProof{}, err
	}
	if p.Rot1, err = DecodeSecretRotation(rot1Bytes); err != nil {
		return InsertionProof{}, err
	}
	s1, err := getMasks(r)
	if err != nil {
		return InsertionProof{}, err
	}
	p.S1 = s1
	rot2Bytes, err := r.GetBytes()
	if err != nil {
		return InsertionProof{}, err
	}
	if p.Rot2, err = DecodeSecretRotation(rot2Bytes); err != nil {
		return InsertionProof{}, err
	}
	eqBytes, err := r.GetBytes()
	if err != nil {
		return InsertionProof{}, err
	}
	if p.EqTopBottom, err = DecodeDlogEq1of2(eqBytes); err != nil {
		return InsertionProof{}, err
	}
	return p, nil
}
