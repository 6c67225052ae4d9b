package proofs

import (
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

// EntanglementProof proves that a single permutation simultaneously shuffled
// every stack in a group, by pairwise-mixing adjacent stacks and running a
// SecretShuffleProof over each mixed pair on one shared transcript.
type EntanglementProof struct {
	Tangles []SecretShuffleProof
}

// EntanglementPublics is the joint key and the pre/post-shuffle stack sets.
type EntanglementPublics struct {
	H      group.Element
	E0, E1 [][]mask.Mask
}

// EntanglementSecrets holds the single shared permutation and the per-stack
// re-mask blinding factors.
type EntanglementSecrets struct {
	Pi *perm.Permutation
	R  [][]group.Scalar
}

// two64 is 2^64 reduced into the scalar field, the fixed domain-separating
// multiplier that keeps each stack's contribution to an entangled pair
// recoverable.
func two64() group.Scalar {
	var wide [64]byte
	wide[8] = 1
	return group.ScalarFromUniformBytes(wide[:])
}

func entangleMasks(a, b []mask.Mask) []mask.Mask {
	out := make([]mask.Mask, len(a))
	tw := two64()
	for i := range a {
		out[i] = a[i].MulScalar(tw).Add(b[i])
	}
	return out
}

func entangleScalars(a, b []group.Scalar) []group.Scalar {
	out := make([]group.Scalar, len(a))
	tw := two64()
	for i := range a {
		out[i] = a[i].Mul(tw).Add(b[i])
	}
	return out
}

// CreateEntanglement proves Pi shuffled every stack in E0 into E1 with the
// given per-stack blindings.
func CreateEntanglement(t *transcript.T, pub EntanglementPublics, sec EntanglementSecrets) (EntanglementProof, error) {
	t.DomainSep("entanglement")

	npairs := len(pub.E0) - 1
	tangles := make([]SecretShuffleProof, npairs)
	for i := 0; i < npairs; i++ {
		e0 := entangleMasks(pub.E0[i], pub.E0[i+1])
		e1 := entangleMasks(pub.E1[i], pub.E1[i+1])
		r := entangleScalars(sec.R[i], sec.R[i+1])

		proof, err := CreateSecretShuffle(t, SecretShufflePublics{H: pub.H, E0: e0, E1: e1}, SecretShuffleSecrets{Pi: sec.Pi, R: r})
		if err != nil {
			return EntanglementProof{}, err
		}
		tangles[i] = proof
	}
	return EntanglementProof{Tangles: tangles}, nil
}

// VerifyEntanglement checks an entanglement proof.
func VerifyEntanglement(t *transcript.T, pub EntanglementPublics, proof EntanglementProof) error {
	t.DomainSep("entanglement")

	npairs := len(pub.E0) - 1
	for i := 0; i < npairs; i++ {
		e0 := entangleMasks(pub.E0[i], pub.E0[i+1])
		e1 := entangleMasks(pub.E1[i], pub.E1[i+1])

		if err := VerifySecretShuffle(t, SecretShufflePublics{H: pub.H, E0: e0, E1: e1}, proof.Tangles[i]); err != nil {
			return err
		}
	}
	return nil
}
