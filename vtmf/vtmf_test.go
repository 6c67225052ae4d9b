package vtmf

import (
	"testing"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/perm"
)

func mustSK(t *testing.T) keys.PrivateKey {
	t.Helper()
	sk, err := keys.Random(nil)
	if err != nil {
		t.Fatalf("keys.Random: %v", err)
	}
	return sk
}

func TestMaskVerifiesAndUnmasksToThePlaintext(t *testing.T) {
	sk := mustSK(t)
	v := New(sk)

	p := group.G.ScalarMult(group.One())
	c, _, proof, err := v.Mask(p)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	if err := v.VerifyMask(p, c, proof); err != nil {
		t.Fatalf("VerifyMask: %v", err)
	}

	share, shareProof, err := v.UnmaskShare(c)
	if err != nil {
		t.Fatalf("UnmaskShare: %v", err)
	}
	if err := v.VerifyUnmask(c, sk.PublicKey().Fingerprint(), share, shareProof); err != nil {
		t.Fatalf("VerifyUnmask: %v", err)
	}

	opened := v.Unmask(c, share)
	if !v.UnmaskOpen(opened).Equal(p) {
		t.Fatal("Unmask did not recover the original plaintext")
	}
}

func TestRemaskPreservesThePlaintext(t *testing.T) {
	sk := mustSK(t)
	v := New(sk)

	p := group.G.ScalarMult(group.One().Add(group.One()))
	c, _, _, err := v.Mask(p)
	if err != nil {
		t.Fatalf("Mask: %v", err)
	}
	c2, _, proof, err := v.Remask(c)
	if err != nil {
		t.Fatalf("Remask: %v", err)
	}
	if err := v.VerifyRemask(c, c2, proof); err != nil {
		t.Fatalf("VerifyRemask: %v", err)
	}

	share, _, err := v.UnmaskShare(c2)
	if err != nil {
		t.Fatalf("UnmaskShare: %v", err)
	}
	if !v.UnmaskOpen(v.Unmask(c2, share)).Equal(p) {
		t.Fatal("Remask changed the underlying plaintext")
	}
}

func TestMaskShuffleVerifies(t *testing.T) {
	sk := mustSK(t)
	v := New(sk)

	n := 4
	src := make(mask.Stack, n)
	for i := 0; i < n; i++ {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		c, _, _, err := v.Mask(p)
		if err != nil {
			t.Fatalf("Mask(%d): %v", i, err)
		}
		src[i] = c
	}

	pi, err := perm.Shuffles{N: n}.Sample(nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	shuffled, _, proof, err := v.MaskShuffle(src, pi)
	if err != nil {
		t.Fatalf("MaskShuffle: %v", err)
	}
	if err := v.VerifyMaskShuffle(src, shuffled, proof); err != nil {
		t.Fatalf("VerifyMaskShuffle: %v", err)
	}
}

func TestMaskInsertVerifiesAtEveryPosition(t *testing.T) {
	sk := mustSK(t)
	v := New(sk)

	n := 3
	haystack := make(mask.Stack, n)
	for i := 0; i < n; i++ {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		c, _, _, err := v.Mask(p)
		if err != nil {
			t.Fatalf("Mask(%d): %v", i, err)
		}
		haystack[i] = c
	}
	needlePlain := group.G.ScalarMult(group.ScalarFromUint64(99))
	needle, _, _, err := v.Mask(needlePlain)
	if err != nil {
		t.Fatalf("Mask(needle): %v", err)
	}

	for k := 0; k <= n; k++ {
		result, proof, err := v.MaskInsert(haystack, needle, k)
		if err != nil {
			t.Fatalf("MaskInsert(k=%d): %v", k, err)
		}
		if len(result) != n+1 {
			t.Fatalf("MaskInsert(k=%d): got %d-element result, want %d", k, len(result), n+1)
		}
		if err := v.VerifyMaskInsert(haystack, result, needle, proof); err != nil {
			t.Fatalf("VerifyMaskInsert(k=%d): %v", k, err)
		}
	}
}

func TestMaskInsertRejectsAForgedResult(t *testing.T) {
	sk := mustSK(t)
	v := New(sk)

	n := 3
	haystack := make(mask.Stack, n)
	for i := 0; i < n; i++ {
		p := group.G.ScalarMult(group.ScalarFromUint64(uint64(i + 1)))
		c, _, _, err := v.Mask(p)
		if err != nil {
			t.Fatalf("Mask(%d): %v", i, err)
		}
		haystack[i] = c
	}
	needle, _, _, err := v.Mask(group.G.ScalarMult(group.ScalarFromUint64(99)))
	if err != nil {
		t.Fatalf("Mask(needle): %v", err)
	}
	result, proof, err := v.MaskInsert(haystack, needle, 1)
	if err != nil {
		t.Fatalf("MaskInsert: %v", err)
	}
	tampered := append(mask.Stack(nil), result...)
	tampered[0] = tampered[0].Add(mask.Mask{C0: group.G, C1: group.G})
	if err := v.VerifyMaskInsert(haystack, tampered, needle, proof); err == nil {
		t.Fatal("VerifyMaskInsert accepted a tampered result")
	}
}
