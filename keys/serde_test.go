package keys

import (
	"testing"

	"github.com/rawblock/pbmx/transcript"
)

func TestPublicKeyRoundTrips(t *testing.T) {
	sk, err := Random(nil)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	pk := sk.PublicKey()

	got, err := DecodePublicKey(pk.Encode())
	if err != nil {
		t.Fatalf("DecodePublicKey: %v", err)
	}
	if got.Fingerprint() != pk.Fingerprint() {
		t.Fatal("round trip changed the public key")
	}

	s, err := PublicKeyFromBase64(pk.ToBase64())
	if err != nil {
		t.Fatalf("PublicKeyFromBase64: %v", err)
	}
	if s.Fingerprint() != pk.Fingerprint() {
		t.Fatal("base64 round trip changed the public key")
	}
}

func TestSignatureRoundTrips(t *testing.T) {
	sk, err := Random(nil)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	sig, err := sk.Sign(transcript.New("test"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, err := DecodeSignature(sig.Encode())
	if err != nil {
		t.Fatalf("DecodeSignature: %v", err)
	}
	if !got.C.Equal(sig.C) || !got.R.Equal(sig.R) {
		t.Fatal("round trip changed the signature")
	}
}
