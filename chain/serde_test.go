package chain

import (
	"testing"

	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/mask"
)

func TestPayloadRoundTrips(t *testing.T) {
	sk := mustKey(t)
	stack := mask.Stack{mask.Open(group.G.ScalarMult(group.One()))}
	cases := []Payload{
		PublishKeyPayload{Name: "alice", Key: sk.PublicKey()},
		OpenStackPayload{Stack: stack},
		NameStackPayload{Stack: StackId(stack), Name: "deck"},
		TakeStackPayload{Source: StackId(stack), Indices: []int{0}, Result: StackId(stack)},
		PileStacksPayload{Sources: []Id{StackId(stack)}, Result: StackId(stack)},
		RandomSpecPayload{Name: "roll", Spec: "2d6+3"},
		BytesPayload{Data: []byte("hello")},
	}
	for _, p := range cases {
		got, err := DecodePayload(Encode(p))
		if err != nil {
			t.Fatalf("DecodePayload(%T): %v", p, err)
		}
		if got.Id() != p.Id() {
			t.Fatalf("DecodePayload(%T): round trip changed the payload id", p)
		}
	}
}

func TestBlockRoundTrips(t *testing.T) {
	sk := mustKey(t)
	b, err := NewBuilder().
		AddPayload(PublishKeyPayload{Name: "alice", Key: sk.PublicKey()}).
		AddPayload(BytesPayload{Data: []byte("hello")}).
		Build(sk)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := DecodeBlock(b.Encode())
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if got.Id() != b.Id() {
		t.Fatal("round trip changed the block id")
	}
	s, err := BlockFromBase64(b.ToBase64())
	if err != nil {
		t.Fatalf("BlockFromBase64: %v", err)
	}
	if s.Id() != b.Id() {
		t.Fatal("base64 round trip changed the block id")
	}
}
