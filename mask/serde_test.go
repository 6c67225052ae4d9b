package mask

import (
	"testing"

	"github.com/rawblock/pbmx/group"
)

func TestMaskRoundTrips(t *testing.T) {
	r, err := group.RandomScalar(nil)
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	m := Mask{C0: group.G.ScalarMult(r), C1: group.G.ScalarMult(group.One())}

	got, err := Decode(m.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Equal(m) {
		t.Fatal("round trip changed the mask")
	}

	s, err := FromBase64(m.ToBase64())
	if err != nil {
		t.Fatalf("FromBase64: %v", err)
	}
	if !s.Equal(m) {
		t.Fatal("base64 round trip changed the mask")
	}
}

func TestStackRoundTrips(t *testing.T) {
	s := Stack{
		Open(group.G.ScalarMult(group.One())),
		Open(group.G.ScalarMult(group.ScalarFromUint64(2))),
	}
	got, err := DecodeStack(s.EncodeStack())
	if err != nil {
		t.Fatalf("DecodeStack: %v", err)
	}
	if len(got) != len(s) {
		t.Fatalf("DecodeStack: got %d masks, want %d", len(got), len(s))
	}
	for i := range s {
		if !got[i].Equal(s[i]) {
			t.Fatalf("mask %d changed across round trip", i)
		}
	}
}
