package proofs

import (
	"testing"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/perm"
	"github.com/rawblock/pbmx/transcript"
)

func mustScalar(t *testing.T) group.Scalar {
	t.Helper()
	x, err := group.RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	return x
}

func TestDlogEqRoundTrips(t *testing.T) {
	x := mustScalar(t)
	h := group.G.ScalarMult(mustScalar(t))
	proof, err := CreateDlogEq(transcript.New("test"),
		DlogEqPublics{A: group.G.ScalarMult(x), B: h.ScalarMult(x), G: group.G, H: h},
		DlogEqSecrets{X: x})
	if err != nil {
		t.Fatalf("CreateDlogEq: %v", err)
	}
	got, err := DecodeDlogEq(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeDlogEq: %v", err)
	}
	if !got.C.Equal(proof.C) || !got.R.Equal(proof.R) {
		t.Fatal("round trip changed the proof")
	}
}

func TestDlogEq1of2RoundTrips(t *testing.T) {
	x := mustScalar(t)
	h := group.G.ScalarMult(mustScalar(t))
	other := group.G.ScalarMult(mustScalar(t))
	proof, err := CreateDlogEq1of2(transcript.New("test"),
		DlogEq1of2Publics{
			G: group.G, H: h,
			A: [2]group.Element{group.G.ScalarMult(x), other},
			B: [2]group.Element{h.ScalarMult(x), other},
		},
		DlogEq1of2Secrets{Index: 0, X: x})
	if err != nil {
		t.Fatalf("CreateDlogEq1of2: %v", err)
	}
	got, err := DecodeDlogEq1of2(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeDlogEq1of2: %v", err)
	}
	for i := 0; i < 2; i++ {
		if !got.C[i].Equal(proof.C[i]) || !got.R[i].Equal(proof.R[i]) {
			t.Fatal("round trip changed the proof")
		}
	}
	pub := DlogEq1of2Publics{
		G: group.G, H: h,
		A: [2]group.Element{group.G.ScalarMult(x), other},
		B: [2]group.Element{h.ScalarMult(x), other},
	}
	if err := VerifyDlogEq1of2(transcript.New("test"), pub, got); err != nil {
		t.Fatalf("the decoded proof no longer verifies: %v", err)
	}
}

func maskFor(t *testing.T, h group.Element, p group.Element) (mask.Mask, group.Scalar) {
	t.Helper()
	r := mustScalar(t)
	return mask.Mask{C0: group.G.ScalarMult(r), C1: h.ScalarMult(r).Add(p)}, r
}

func TestSecretShuffleRoundTrips(t *testing.T) {
	h := group.G.ScalarMult(mustScalar(t))
	n := 3
	e0 := make([]mask.Mask, n)
	for i := range e0 {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		e0[i], _ = maskFor(t, h, p)
	}
	pi, err := perm.Shuffles{N: n}.Sample(nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	r := make([]group.Scalar, n)
	e1 := make([]mask.Mask, n)
	for i := range e0 {
		r[i] = mustScalar(t)
		e1[i] = mask.Mask{C0: group.G.ScalarMult(r[i]).Add(e0[i].C0), C1: h.ScalarMult(r[i]).Add(e0[i].C1)}
	}
	perm.ApplyTo(pi, e1)
	perm.ApplyTo(pi, r)

	proof, err := CreateSecretShuffle(transcript.New("test"),
		SecretShufflePublics{H: h, E0: e0, E1: e1},
		SecretShuffleSecrets{Pi: pi, R: r})
	if err != nil {
		t.Fatalf("CreateSecretShuffle: %v", err)
	}
	got, err := DecodeSecretShuffle(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeSecretShuffle: %v", err)
	}
	if err := VerifySecretShuffle(transcript.New("test"), SecretShufflePublics{H: h, E0: e0, E1: e1}, got); err != nil {
		t.Fatalf("the decoded proof no longer verifies: %v", err)
	}
}

func TestSecretRotationRoundTrips(t *testing.T) {
	h := group.G.ScalarMult(mustScalar(t))
	n := 3
	e0 := make([]mask.Mask, n)
	for i := range e0 {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		e0[i], _ = maskFor(t, h, p)
	}
	k := 1
	pi := perm.Shift(n, k)
	r := make([]group.Scalar, n)
	e1 := make([]mask.Mask, n)
	for i := range e0 {
		r[i] = mustScalar(t)
		e1[i] = mask.Mask{C0: group.G.ScalarMult(r[i]).Add(e0[i].C0), C1: h.ScalarMult(r[i]).Add(e0[i].C1)}
	}
	perm.ApplyTo(pi, e1)
	perm.ApplyTo(pi, r)

	proof, err := CreateSecretRotation(transcript.New("test"),
		SecretRotationPublics{H: h, E0: e0, E1: e1},
		SecretRotationSecrets{K: k, R: r})
	if err != nil {
		t.Fatalf("CreateSecretRotation: %v", err)
	}
	got, err := DecodeSecretRotation(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeSecretRotation: %v", err)
	}
	if err := VerifySecretRotation(transcript.New("test"), SecretRotationPublics{H: h, E0: e0, E1: e1}, got); err != nil {
		t.Fatalf("the decoded proof no longer verifies: %v", err)
	}
}

func TestSecretInsertionRoundTrips(t *testing.T) {
	h := group.G.ScalarMult(mustScalar(t))
	gh := mask.Mask{C0: group.G, C1: h}
	n := 3
	haystack := make(mask.Stack, n)
	for i := range haystack {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		haystack[i], _ = maskFor(t, h, p)
	}
	needle, _ := maskFor(t, h, group.G.ScalarMult(group.ScalarFromUint64(99)))

	k := 2
	r1 := make([]group.Scalar, n)
	for i := range r1 {
		r1[i] = mustScalar(t)
	}
	n2 := n + 1
	r2 := make([]group.Scalar, n2)
	for i := range r2 {
		r2[i] = mustScalar(t)
	}

	shift1 := perm.Shift(n, k%n)
	s1 := append(mask.Stack(nil), haystack...)
	perm.ApplyTo(shift1, s1)
	for i := range s1 {
		s1[i] = s1[i].Add(gh.MulScalar(r1[i]))
	}
	s1c := append(append(mask.Stack(nil), s1...), needle)
	shift2 := perm.Shift(n2, (n2-k%n2)%n2)
	result := append(mask.Stack(nil), s1c...)
	perm.ApplyTo(shift2, result)
	for i := range result {
		result[i] = result[i].Add(gh.MulScalar(r2[i]))
	}

	pub := InsertionPublics{H: h, Needle: needle, Haystack: haystack, Result: result}
	proof, err := CreateInsertion(transcript.New("test"), pub, InsertionSecrets{K: k, R1: r1, R2: r2})
	if err != nil {
		t.Fatalf("CreateInsertion: %v", err)
	}
	if err := VerifyInsertion(transcript.New("test"), pub, proof); err != nil {
		t.Fatalf("VerifyInsertion: %v", err)
	}

	got, err := DecodeInsertion(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeInsertion: %v", err)
	}
	if err := VerifyInsertion(transcript.New("test"), pub, got); err != nil {
		t.Fatalf("the decoded proof no longer verifies: %v", err)
	}
}

func TestEntanglementRoundTrips(t *testing.T) {
	h := group.G.ScalarMult(mustScalar(t))
	n := 2
	mkStack := func(seed uint64) []mask.Mask {
		s := make([]mask.Mask, n)
		for i := range s {
			p := group.G.ScalarMult(group.ScalarFromUint64(seed + uint64(i) + 1))
			s[i], _ = maskFor(t, h, p)
		}
		return s
	}
	e0 := [][]mask.Mask{mkStack(0), mkStack(10)}
	pi, err := perm.Shuffles{N: n}.Sample(nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	r := make([][]group.Scalar, len(e0))
	e1 := make([][]mask.Mask, len(e0))
	for si, stack := range e0 {
		r[si] = make([]group.Scalar, n)
		e1[si] = make([]mask.Mask, n)
		for i := range stack {
			r[si][i] = mustScalar(t)
			e1[si][i] = mask.Mask{
				C0: group.G.ScalarMult(r[si][i]).Add(stack[i].C0),
				C1: h.ScalarMult(r[si][i]).Add(stack[i].C1),
			}
		}
		perm.ApplyTo(pi, e1[si])
		perm.ApplyTo(pi, r[si])
	}

	proof, err := CreateEntanglement(transcript.New("test"),
		EntanglementPublics{H: h, E0: e0, E1: e1},
		EntanglementSecrets{Pi: pi, R: r})
	if err != nil {
		t.Fatalf("CreateEntanglement: %v", err)
	}
	got, err := DecodeEntanglement(proof.Encode())
	if err != nil {
		t.Fatalf("DecodeEntanglement: %v", err)
	}
	if err := VerifyEntanglement(transcript.New("test"), EntanglementPublics{H: h, E0: e0, E1: e1}, got); err != nil {
		t.Fatalf("the decoded proof no longer verifies: %v", err)
	}
}
