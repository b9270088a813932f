package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

// Signable interface represents an object that can be signed.
// The message goes verbatim into the transcript after the commitment.
type Signable interface {
	SignatureMessage() string
}

// Schnorr signature over the transcript "sig|<y>|<a>|<message>":
//
//	w random, a = g^w
//	c = H(transcript) mod q
//	r = w - x*c mod q
//
// The verifier gets a back as g^r * y^c.
func (pk *PublicKey) signingChallenge(a *big.Int, msg string) *big.Int {
	return random.Challenge(pk.Q, "sig|%s|%s|%s", pk.Y, a, msg)
}

// CreateSignature signs the given message with this key using Schnorr
func (sk *SecretKey) CreateSignature(rnd io.Reader, msg string) (*Proof, error) {
	w, err := random.Int(rnd, sk.Q)
	if err != nil {
		return nil, err
	}
	a := sk.GExp(w)
	c := sk.signingChallenge(a, msg)
	// the response is now (w - sk.X * C) % Q
	r := new(big.Int).Mul(sk.X, c)
	r.Sub(w, r)
	r.Mod(r, sk.Q)
	return &Proof{Challenge: c, Response: r}, nil
}

// Sign a signable object
func (sk *SecretKey) Sign(rnd io.Reader, v Signable) (*Proof, error) {
	return sk.CreateSignature(rnd, v.SignatureMessage())
}

// Verify a signable object
func (pk *PublicKey) Verify(v Signable, s *Proof) error {
	return pk.VerifySignature(s, v.SignatureMessage())
}

// VerifySignature verifies a signature on a message
func (pk *PublicKey) VerifySignature(sig *Proof, msg string) error {
	if err := pk.Validate(); err != nil {
		return fmt.Errorf("Signature invalid: public key not valid: %w", err)
	}
	if sig == nil || !pk.inExponent(sig.Challenge) || !pk.inExponent(sig.Response) {
		return fmt.Errorf("Signature invalid: challenge or response not in Z_q")
	}
	// g^r * y^c % p
	a := pk.mul(pk.GExp(sig.Response), pk.exp(pk.Y, sig.Challenge))
	expected := pk.signingChallenge(a, msg)
	if expected.Cmp(sig.Challenge) != 0 {
		return fmt.Errorf("Signature invalid: calculated challenge does not match expected")
	}
	return nil
}

// we alias it so we can use the "right" one each time.
type ProofOfKnowledge = Proof

// ProofOfKnowledge generates a ZKP of knowledge of the secret key,
// the transcript is "pok|<y>|<a>" and unlike the signature the
// response is w + x*c.
func (sk *SecretKey) ProofOfKnowledge(rnd io.Reader) (*ProofOfKnowledge, error) {
	w, err := random.Int(rnd, sk.Q)
	if err != nil {
		return nil, err
	}
	a := sk.GExp(w)
	c := random.Challenge(sk.Q, "pok|%s|%s", sk.Y, a)
	r := new(big.Int).Mul(sk.X, c)
	r.Add(r, w)
	r.Mod(r, sk.Q)
	return &ProofOfKnowledge{Challenge: c, Response: r}, nil
}

// VerifyProof a proof of knowledge of the secret key associated with the given public key.
func (pk *PublicKey) VerifyProof(pok *ProofOfKnowledge) error {
	if err := pk.Validate(); err != nil {
		return fmt.Errorf("ProofOfKnowledge invalid: public key not valid: %w", err)
	}
	if pok == nil || !pk.inExponent(pok.Challenge) || !pk.inExponent(pok.Response) {
		return fmt.Errorf("ProofOfKnowledge invalid: challenge or response not in Z_q")
	}
	// a = g^r / y^c
	a := pk.mul(pk.GExp(pok.Response), pk.inv(pk.exp(pk.Y, pok.Challenge)))
	if random.Challenge(pk.Q, "pok|%s|%s", pk.Y, a).Cmp(pok.Challenge) != 0 {
		return fmt.Errorf("ProofOfKnowledge invalid: calculated challenge does not match expected")
	}
	return nil
}
