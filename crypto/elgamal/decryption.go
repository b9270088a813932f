package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

// Decryption is shared between trustees: the election key is the
// product of every trustee key, so each trustee contributes
// alpha^x_i and the product of those is alpha^x.
//
// Alongside the factor a trustee publishes a Chaum-Pedersen proof that
// log_g(y_i) == log_alpha(factor):
//
//	w random, a = g^w, b = alpha^w
//	c = H("decrypt|<y_i>|<a>,<b>") mod q
//	r = c*x + w mod p
//
// The response is reduced mod p rather than mod q. Verification only
// needs the exponent to be consistent, and existing tally files were
// produced this way.

func (pk *PublicKey) decryptionChallenge(a, b *big.Int) *big.Int {
	return random.Challenge(pk.Q, "decrypt|%s|%s,%s", pk.Y, a, b)
}

// PartialDecrypt returns alpha^x and the proof that x is the secret for
// this public key.
func (sk *SecretKey) PartialDecrypt(rnd io.Reader, ct *Ciphertext) (*big.Int, *Proof, error) {
	if err := sk.CheckCiphertext(ct); err != nil {
		return nil, nil, err
	}
	factor := sk.exp(ct.Alpha, sk.X)

	w, err := random.Int(rnd, sk.Q)
	if err != nil {
		return nil, nil, err
	}
	c := sk.decryptionChallenge(sk.GExp(w), sk.exp(ct.Alpha, w))
	r := new(big.Int).Mul(c, sk.X)
	r.Add(r, w)
	r.Mod(r, sk.P)
	return factor, &Proof{Challenge: c, Response: r}, nil
}

// VerifyPartialDecryption checks that factor = alpha^x for the x behind pk.
func (pk *PublicKey) VerifyPartialDecryption(ct *Ciphertext, factor *big.Int, proof *Proof) error {
	if err := pk.Validate(); err != nil {
		return fmt.Errorf("ZKP invalid: public key not valid: %w", err)
	}
	if err := pk.CheckCiphertext(ct); err != nil {
		return err
	}
	if !pk.inElement(factor) {
		return fmt.Errorf("ZKP invalid: decryption factor not in [1, p-1]")
	}
	if proof == nil || !pk.inExponent(proof.Challenge) || proof.Response == nil ||
		proof.Response.Sign() < 0 || proof.Response.Cmp(pk.P) != -1 {
		return fmt.Errorf("ZKP invalid: decryption proof out of range")
	}
	// a = g^r / y^c
	a := pk.mul(pk.GExp(proof.Response), pk.inv(pk.exp(pk.Y, proof.Challenge)))
	// b = alpha^r / factor^c
	b := pk.mul(pk.exp(ct.Alpha, proof.Response), pk.inv(pk.exp(factor, proof.Challenge)))
	if pk.decryptionChallenge(a, b).Cmp(proof.Challenge) != 0 {
		return fmt.Errorf("ZKP invalid: decryption challenge does not match")
	}
	return nil
}

// CombineFactors multiplies the trustees' factors for one ciphertext.
func (grp *Group) CombineFactors(factors ...*big.Int) *big.Int {
	return grp.mul(factors...)
}

// Unblind strips the combined factor from beta, leaving g^m.
func (grp *Group) Unblind(ct *Ciphertext, factor *big.Int) (*big.Int, error) {
	if !grp.inElement(factor) {
		return nil, fmt.Errorf("decryption factor not in [1, p-1]")
	}
	return grp.mul(ct.Beta, grp.inv(factor)), nil
}
