package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

// Ciphertext is the exponential ElGamal encryption (g^r, y^r * g^m)
// of a small integer m.
type Ciphertext struct {
	Alpha, Beta *big.Int
}

// CiphertextWithSecret keeps the randomness r used to build the
// ciphertext, which the prover needs. It only lives while a ballot is
// built and is never serialized.
type CiphertextWithSecret struct {
	*Ciphertext
	R *big.Int
}

// Neutral returns a fresh (1, 1), the identity for Combine.
func Neutral() *Ciphertext {
	return &Ciphertext{Alpha: big.NewInt(1), Beta: big.NewInt(1)}
}

// Copy returns a deep copy, so the receiver is safe to use as an accumulator.
func (ct *Ciphertext) Copy() *Ciphertext {
	return &Ciphertext{Alpha: new(big.Int).Set(ct.Alpha), Beta: new(big.Int).Set(ct.Beta)}
}

// Mul does a homomorphic multiplication of another ciphertext into this one.
// It mutates the receiver and is designed to be part of an aggregation,
// so the canonical usage is:
//
//	acc := Neutral()
//	acc.Mul(grp, other1)
//	acc.Mul(grp, other2) // now other1 * other2
//
// Since we encode g^m this is an _addition_ of the plaintexts.
func (ct *Ciphertext) Mul(grp *Group, other *Ciphertext) *Ciphertext {
	ct.Alpha.Mul(ct.Alpha, other.Alpha)
	ct.Alpha.Mod(ct.Alpha, grp.P)
	ct.Beta.Mul(ct.Beta, other.Beta)
	ct.Beta.Mod(ct.Beta, grp.P)
	return ct
}

// Combine is the group operation on ciphertexts. Neither input is touched.
func (grp *Group) Combine(cts ...*Ciphertext) *Ciphertext {
	acc := Neutral()
	for _, ct := range cts {
		acc.Mul(grp, ct)
	}
	return acc
}

// Pow raises both halves to w, which multiplies the plaintext by w.
func (grp *Group) Pow(ct *Ciphertext, w int64) *Ciphertext {
	e := big.NewInt(w)
	return &Ciphertext{Alpha: grp.exp(ct.Alpha, e), Beta: grp.exp(ct.Beta, e)}
}

func (ct *Ciphertext) Equals(other *Ciphertext) bool {
	cmpA, cmpB := ct.Alpha.Cmp(other.Alpha), ct.Beta.Cmp(other.Beta)
	return cmpA == 0 && cmpB == 0
}

func (ct *Ciphertext) String() string {
	return fmt.Sprintf("Ciphertext[alpha=%s, beta=%s]", ct.Alpha, ct.Beta)
}

// Check that both halves are elements of Z_p*.
func (grp *Group) CheckCiphertext(ct *Ciphertext) error {
	if ct == nil {
		return fmt.Errorf("Ciphertext invalid: missing")
	}
	if !grp.inElement(ct.Alpha) {
		return fmt.Errorf("Ciphertext invalid: alpha not in [1, p-1]")
	}
	if !grp.inElement(ct.Beta) {
		return fmt.Errorf("Ciphertext invalid: beta not in [1, p-1]")
	}
	return nil
}

// Encrypt the integer m with randomness r, which is reduced mod q.
func (pk *PublicKey) Encrypt(m int64, r *big.Int) *Ciphertext {
	r = new(big.Int).Mod(r, pk.Q)
	beta := pk.exp(pk.Y, r)
	beta.Mul(beta, pk.GExp(big.NewInt(m)))
	beta.Mod(beta, pk.P)
	return &Ciphertext{Alpha: pk.GExp(r), Beta: beta}
}

// EncryptRandom draws r from rnd and keeps it alongside the ciphertext.
func (pk *PublicKey) EncryptRandom(rnd io.Reader, m int64) (*CiphertextWithSecret, error) {
	r, err := random.Int(rnd, pk.Q)
	if err != nil {
		return nil, err
	}
	return &CiphertextWithSecret{Ciphertext: pk.Encrypt(m, r), R: r}, nil
}

// CombineWithSecret adds ciphertexts and sums their randomness mod q,
// so the result can still be proven about.
func (grp *Group) CombineWithSecret(cts ...*CiphertextWithSecret) *CiphertextWithSecret {
	acc := &CiphertextWithSecret{Ciphertext: Neutral(), R: big.NewInt(0)}
	for _, ct := range cts {
		acc.Mul(grp, ct.Ciphertext)
		acc.R.Add(acc.R, ct.R)
		acc.R.Mod(acc.R, grp.Q)
	}
	return acc
}

// Decrypt a ciphertext with this single key and return g^m.
func (sk *SecretKey) Decrypt(ct *Ciphertext) *big.Int {
	// s = alpha^x
	pt := sk.exp(ct.Alpha, sk.X)
	// s^-1 * beta
	pt.ModInverse(pt, sk.P)
	pt.Mul(pt, ct.Beta)
	pt.Mod(pt, sk.P)
	return pt
}
