package elgamal

import (
	"testing"

	big "github.com/ncw/gmp"
)

type message string

func (m message) SignatureMessage() string { return string(m) }

func TestSchnorrSignature(t *testing.T) {
	eg := Belenios2048()

	kp, err := GenerateKeyPair(nil, eg)
	if err != nil {
		t.Fatal(err)
	}
	m := message("1,2,3,4")
	sig, err := kp.Secret().Sign(nil, m)
	if err != nil {
		t.Fatal(err)
	}
	if err := kp.Public().Verify(m, sig); err != nil {
		t.Fatalf("signature verification failed: %v", err)
	}

	if err := kp.Public().Verify(message("1,2,3,5"), sig); err == nil {
		t.Fatal("signature verified for a different message")
	}

	other, _ := GenerateKeyPair(nil, eg)
	if err := other.Public().Verify(m, sig); err == nil {
		t.Fatal("signature verified under a different key")
	}

	sig.Challenge.Add(sig.Challenge, big.NewInt(1))
	if err := kp.Public().Verify(m, sig); err == nil {
		t.Fatal("signature verified with tampered challenge")
	}
}
