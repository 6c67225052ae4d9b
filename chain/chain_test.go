package chain

import (
	"testing"

	"github.com/rawblock/pbmx/keys"
)

func mustKey(t *testing.T) keys.PrivateKey {
	t.Helper()
	sk, err := keys.Random(nil)
	if err != nil {
		t.Fatalf("keys.Random: %v", err)
	}
	return sk
}

func TestBuilderSignsAVerifiableBlock(t *testing.T) {
	sk := mustKey(t)
	b, err := NewBuilder().AddPayload(BytesPayload{Data: []byte("hello")}).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	pki := map[keys.Fingerprint]keys.PublicKey{sk.PublicKey().Fingerprint(): sk.PublicKey()}
	if v := b.IsValid(pki); v != Valid {
		t.Fatalf("IsValid: got %v, want Valid", v)
	}
}

func TestIsValidIsIndeterminateForUnknownSigner(t *testing.T) {
	sk := mustKey(t)
	b, err := NewBuilder().AddPayload(BytesPayload{Data: []byte("x")}).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if v := b.IsValid(map[keys.Fingerprint]keys.PublicKey{}); v != Indeterminate {
		t.Fatalf("IsValid: got %v, want Indeterminate", v)
	}
}

func TestPayloadOrderIsPreserved(t *testing.T) {
	sk := mustKey(t)
	bu := NewBuilder()
	ids := make([]Id, 4)
	for i := 0; i < 4; i++ {
		p := BytesPayload{Data: []byte{byte(i)}}
		ids[i] = p.Id()
		bu.AddPayload(p)
	}
	b, err := bu.Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := b.Payloads()
	if len(got) != len(ids) {
		t.Fatalf("Payloads: got %d, want %d", len(got), len(ids))
	}
	for i, p := range got {
		if p.Id() != ids[i] {
			t.Fatalf("Payloads[%d]: order not preserved", i)
		}
	}
}

func TestDuplicatePayloadsAreBothKept(t *testing.T) {
	sk := mustKey(t)
	b, err := NewBuilder().
		AddPayload(BytesPayload{Data: []byte("x")}).
		AddPayload(BytesPayload{Data: []byte("x")}).
		Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	got := b.Payloads()
	if len(got) != 2 {
		t.Fatalf("Payloads: got %d, want 2", len(got))
	}
	if got[0].Id() != got[1].Id() {
		t.Fatal("identical payloads should share an id")
	}
}

func TestChainBlockIterationIsTopological(t *testing.T) {
	sk := mustKey(t)
	c := New()

	genesis, err := c.BuildBlock().AddPayload(BytesPayload{Data: []byte("genesis")}).Build(sk)
	if err != nil {
		t.Fatalf("Build genesis: %v", err)
	}
	if err := c.AddBlock(genesis); err != nil {
		t.Fatalf("AddBlock genesis: %v", err)
	}

	left, err := c.BuildBlock().AddPayload(BytesPayload{Data: []byte("left")}).Build(sk)
	if err != nil {
		t.Fatalf("Build left: %v", err)
	}
	if err := c.AddBlock(left); err != nil {
		t.Fatalf("AddBlock left: %v", err)
	}

	right := NewBuilder().Acknowledge(genesis.Id()).AddPayload(BytesPayload{Data: []byte("right")})
	rightBlock, err := right.Build(sk)
	if err != nil {
		t.Fatalf("Build right: %v", err)
	}
	if err := c.AddBlock(rightBlock); err != nil {
		t.Fatalf("AddBlock right: %v", err)
	}

	merge := NewBuilder().Acknowledge(left.Id()).Acknowledge(rightBlock.Id()).AddPayload(BytesPayload{Data: []byte("merge")})
	mergeBlock, err := merge.Build(sk)
	if err != nil {
		t.Fatalf("Build merge: %v", err)
	}
	if err := c.AddBlock(mergeBlock); err != nil {
		t.Fatalf("AddBlock merge: %v", err)
	}

	order := c.Blocks()
	if len(order) != 4 {
		t.Fatalf("Blocks: got %d blocks, want 4", len(order))
	}
	pos := make(map[Id]int, 4)
	for i, b := range order {
		pos[b.Id()] = i
	}
	if pos[genesis.Id()] >= pos[left.Id()] || pos[genesis.Id()] >= pos[rightBlock.Id()] {
		t.Fatal("genesis must precede both of its children")
	}
	if pos[left.Id()] >= pos[mergeBlock.Id()] || pos[rightBlock.Id()] >= pos[mergeBlock.Id()] {
		t.Fatal("merge must follow both of its parents")
	}
	if !c.IsMerged() {
		t.Fatal("IsMerged: expected a single head after the merge block")
	}
}

func TestAddBlockRejectsDuplicateId(t *testing.T) {
	sk := mustKey(t)
	c := New()
	b, err := c.BuildBlock().AddPayload(BytesPayload{Data: []byte("x")}).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := c.AddBlock(b); err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	if err := c.AddBlock(b); err == nil {
		t.Fatal("expected error re-adding the same block")
	}
}
