package state

import (
	"testing"

	"github.com/rawblock/pbmx/chain"
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/vtmf"
)

func mustSK(t *testing.T) keys.PrivateKey {
	t.Helper()
	sk, err := keys.Random(nil)
	if err != nil {
		t.Fatalf("keys.Random: %v", err)
	}
	return sk
}

func TestPublishKeyAndOpenStackReplay(t *testing.T) {
	sk := mustSK(t)
	s := New(sk)
	c := chain.New()

	publish := chain.PublishKeyPayload{Name: "alice", Key: sk.PublicKey()}
	b, err := c.BuildBlock().AddPayload(publish).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b) {
		t.Fatal("AddBlock: expected a valid PublishKey block to apply")
	}
	if s.Names[sk.PublicKey().Fingerprint()] != "alice" {
		t.Fatal("PublishKey: name was not recorded")
	}

	open := chain.OpenStackPayload{Stack: mask.Stack{mask.Open(group.G)}}
	b2, err := c.BuildBlock().AddPayload(open).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b2) {
		t.Fatal("AddBlock: expected a valid OpenStack block to apply")
	}
	id := chain.StackId(open.Stack)
	if !s.Stacks.Contains(id) {
		t.Fatal("OpenStack: stack was not recorded")
	}
}

func TestPublishKeyRejectsMismatchedSigner(t *testing.T) {
	signer := mustSK(t)
	other := mustSK(t)
	s := New(signer)
	c := chain.New()

	publish := chain.PublishKeyPayload{Name: "mallory", Key: other.PublicKey()}
	b, err := c.BuildBlock().AddPayload(publish).Build(signer)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.AddBlock(b) {
		t.Fatal("AddBlock: a PublishKey payload naming a different signer must be rejected")
	}
	if _, ok := s.Names[other.PublicKey().Fingerprint()]; ok {
		t.Fatal("AddBlock: rejected block must not leave partial state behind")
	}
}

func TestMaskStackReplayVerifiesRemask(t *testing.T) {
	sk := mustSK(t)
	s := New(sk)
	c := chain.New()

	open := chain.OpenStackPayload{Stack: mask.Stack{mask.Open(group.G)}}
	b, err := c.BuildBlock().AddPayload(open).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b) {
		t.Fatal("AddBlock: open stack should apply")
	}
	srcId := chain.StackId(open.Stack)

	remasked, _, proof, err := s.Vtmf.Remask(open.Stack[0])
	if err != nil {
		t.Fatalf("Remask: %v", err)
	}
	maskPayload := chain.MaskStackPayload{
		Source: srcId,
		Stack:  mask.Stack{remasked},
		Proofs: []vtmf.MaskProof{proof},
	}
	b2, err := c.BuildBlock().AddPayload(maskPayload).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b2) {
		t.Fatal("AddBlock: a genuine remask should verify and apply")
	}
	if !s.Stacks.Contains(chain.StackId(maskPayload.Stack)) {
		t.Fatal("MaskStack: remasked stack was not recorded")
	}
}

func TestInsertStackReplayAcceptsAHiddenPosition(t *testing.T) {
	sk := mustSK(t)
	s := New(sk)
	c := chain.New()

	haystack := mask.Stack{mask.Open(group.G), mask.Open(group.G.ScalarMult(group.ScalarFromUint64(2)))}
	open := chain.OpenStackPayload{Stack: haystack}
	b, err := c.BuildBlock().AddPayload(open).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b) {
		t.Fatal("AddBlock: haystack should apply")
	}
	haystackId := chain.StackId(haystack)

	needleStack := mask.Stack{mask.Open(group.G.ScalarMult(group.ScalarFromUint64(3)))}
	openNeedle := chain.OpenStackPayload{Stack: needleStack}
	bn, err := c.BuildBlock().AddPayload(openNeedle).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(bn) {
		t.Fatal("AddBlock: needle should apply")
	}
	needleId := chain.StackId(needleStack)

	result, proof, err := s.Vtmf.MaskInsert(haystack, needleStack[0], 1)
	if err != nil {
		t.Fatalf("MaskInsert: %v", err)
	}
	insert := chain.InsertStackPayload{
		Needle:   needleId,
		Haystack: haystackId,
		Result:   chain.StackId(result),
		Stack:    result,
		Proof:    proof,
	}
	b3, err := c.BuildBlock().AddPayload(insert).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b3) {
		t.Fatal("AddBlock: a genuine insertion should verify and apply")
	}
	if !s.Stacks.Contains(chain.StackId(result)) {
		t.Fatal("InsertStack: result stack was not recorded")
	}
}

func TestInsertStackReplayRejectsAMismatchedResult(t *testing.T) {
	sk := mustSK(t)
	s := New(sk)
	c := chain.New()

	haystack := mask.Stack{mask.Open(group.G), mask.Open(group.G.ScalarMult(group.ScalarFromUint64(2)))}
	b, err := c.BuildBlock().AddPayload(chain.OpenStackPayload{Stack: haystack}).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(b) {
		t.Fatal("AddBlock: haystack should apply")
	}
	haystackId := chain.StackId(haystack)

	needleStack := mask.Stack{mask.Open(group.G.ScalarMult(group.ScalarFromUint64(3)))}
	bn, err := c.BuildBlock().AddPayload(chain.OpenStackPayload{Stack: needleStack}).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !s.AddBlock(bn) {
		t.Fatal("AddBlock: needle should apply")
	}
	needleId := chain.StackId(needleStack)

	result, proof, err := s.Vtmf.MaskInsert(haystack, needleStack[0], 0)
	if err != nil {
		t.Fatalf("MaskInsert: %v", err)
	}
	tampered := append(mask.Stack(nil), result...)
	tampered[0] = tampered[0].Add(mask.Mask{C0: group.G, C1: group.G})
	insert := chain.InsertStackPayload{
		Needle:   needleId,
		Haystack: haystackId,
		Result:   chain.StackId(tampered),
		Stack:    tampered,
		Proof:    proof,
	}
	b3, err := c.BuildBlock().AddPayload(insert).Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if s.AddBlock(b3) {
		t.Fatal("AddBlock: a tampered insertion must not verify")
	}
}
