package proofs

import (
	"io"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// InsertionProof proves Result is Haystack with Needle inserted at a
// position that stays hidden from the verifier. It reduces to two
// SecretRotationProofs — rotate the hidden insertion point to the end of
// the stack, append the needle, rotate back — plus a dlog_eq_1of2 proof
// that one of the stack's two ends is an untouched remask of the
// original, so neither end can be singled out as the side the insertion
// landed on.
type InsertionProof struct {
	Rot1        SecretRotationProof
	S1          mask.Stack
	Rot2        SecretRotationProof
	EqTopBottom DlogEq1of2Proof
}

// InsertionPublics is the joint key, the token being inserted, the
// original stack, and the stack after insertion.
type InsertionPublics struct {
	H        group.Element
	Needle   mask.Mask
	Haystack mask.Stack
	Result   mask.Stack
}

// InsertionSecrets holds the hidden rotation amount K (in [0, len(Haystack)];
// the needle lands at index len(Haystack)-K of Result) and the re-mask
// blinding factors used for the two rotations.
type InsertionSecrets struct {
	K      int
	R1, R2 []group.Scalar
}

func randomBit(rng io.Reader) (bool, error) {
	var b [1]byte
	if _, err := io.ReadFull(rng, b[:]); err != nil {
		return false, err
	}
	return b[0]&1 == 1, nil
}

// CreateInsertion proves Result is Haystack with Needle inserted at the
// hidden index len(Haystack)-sec.K.
func CreateInsertion(t *transcript.T, pub InsertionPublics, sec InsertionSecrets) (InsertionProof, error) {
	t.DomainSep("secret_insert")
	t.CommitMasks("c", mask.Stack{pub.Needle})
	t.CommitMasks("s0", pub.Haystack)
	t.CommitMasks("s2", pub.Result)

	n := len(pub.Haystack)
	n2 := len(pub.Result)
	gh := mask.Mask{C0: group.G, C1: pub.H}

	rng, err := t.BuildRng().
		CommitUint("k", uint64(sec.K)).
		CommitScalars("r1", sec.R1).
		CommitScalars("r2", sec.R2).
		Finalize(nil)
	if err != nil {
		return InsertionProof{}, err
	}

	k := sec.K % n
	shift := perm.Shift(n, k)
	s1 := append(mask.Stack(nil), pub.Haystack...)
	perm.ApplyTo(shift, s1)
	for i := range s1 {
		s1[i] = s1[i].Add(gh.MulScalar(sec.R1[i]))
	}
	t.CommitMasks("s1", s1)

	rot1, err := CreateSecretRotation(t,
		SecretRotationPublics{H: pub.H, E0: pub.Haystack, E1: s1},
		SecretRotationSecrets{K: k, R: sec.R1})
	if err != nil {
		return InsertionProof{}, err
	}

	s1c := append(append(mask.Stack(nil), s1...), pub.Needle)
	t.CommitMasks("s1c", s1c)

	rot2, err := CreateSecretRotation(t,
		SecretRotationPublics{H: pub.H, E0: s1c, E1: pub.Result},
		SecretRotationSecrets{K: (n2 - sec.K%n2) % n2, R: sec.R2})
	if err != nil {
		return InsertionProof{}, err
	}

	ir1 := append([]group.Scalar(nil), sec.R1...)
	perm.ApplyTo(shift.Inverse(), ir1)

	coinFlip, err := randomBit(rng)
	if err != nil {
		return InsertionProof{}, err
	}
	onTop := sec.K != n
	inMiddle := sec.K != n && sec.K != 0
	isFirst := onTop
	if inMiddle {
		isFirst = coinFlip
	}

	topX := ir1[0].Add(sec.R2[0])
	bottomX := ir1[n-1].Add(sec.R2[n2-1])
	x := bottomX
	index := 1
	if isFirst {
		x = topX
		index = 0
	}

	eqTopBottom, err := CreateDlogEq1of2(t, insertionEqPublics(pub), DlogEq1of2Secrets{Index: index, X: x})
	if err != nil {
		return InsertionProof{}, err
	}

	return InsertionProof{Rot1: rot1, S1: s1, Rot2: rot2, EqTopBottom: eqTopBottom}, nil
}

// VerifyInsertion checks a secret_insert proof.
func VerifyInsertion(t *transcript.T, pub InsertionPublics, proof InsertionProof) error {
	t.DomainSep("secret_insert")
	t.CommitMasks("c", mask.Stack{pub.Needle})
	t.CommitMasks("s0", pub.Haystack)
	t.CommitMasks("s2", pub.Result)
	t.CommitMasks("s1", proof.S1)

	if err := VerifySecretRotation(t,
		SecretRotationPublics{H: pub.H, E0: pub.Haystack, E1: proof.S1}, proof.Rot1); err != nil {
		return err
	}

	s1c := append(append(mask.Stack(nil), proof.S1...), pub.Needle)
	t.CommitMasks("s1c", s1c)

	if err := VerifySecretRotation(t,
		SecretRotationPublics{H: pub.H, E0: s1c, E1: pub.Result}, proof.Rot2); err != nil {
		return err
	}

	return VerifyDlogEq1of2(t, insertionEqPublics(pub), proof.EqTopBottom)
}

// insertionEqPublics builds the 1-of-2 dlog_eq statement: either the top
// of Result is Haystack's top re-masked in place, or Result's bottom is
// Haystack's bottom re-masked in place.
func insertionEqPublics(pub InsertionPublics) DlogEq1of2Publics {
	n := len(pub.Haystack)
	n2 := len(pub.Result)
	return DlogEq1of2Publics{
		G: group.G,
		H: pub.H,
		A: [2]group.Element{
			pub.Result[0].C0.Sub(pub.Haystack[0].C0),
			pub.Result[n2-1].C0.Sub(pub.Haystack[n-1].C0),
		},
		B: [2]group.Element{
			pub.Result[0].C1.Sub(pub.Haystack[0].C1),
			pub.Result[n2-1].C1.Sub(pub.Haystack[n-1].C1),
		},
	}
}
