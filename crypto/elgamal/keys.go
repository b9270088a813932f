package elgamal

import (
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

type KeyPair struct {
	sk *SecretKey
}

// Secret gets the private part of this keypair
func (kp *KeyPair) Secret() *SecretKey {
	return kp.sk
}

// Public gets the public half of this keypair
func (kp *KeyPair) Public() *PublicKey {
	return kp.sk.PublicKey
}

// GenerateKeyPair creates a new random key pair
func GenerateKeyPair(rnd io.Reader, grp *Group) (*KeyPair, error) {
	x, err := random.Int(rnd, grp.Q)
	if err != nil {
		return nil, err
	}
	return KeyPairForSecret(grp, x), nil
}

// KeyPairForSecret rebuilds the pair (x, g^x). x is reduced mod q.
func KeyPairForSecret(grp *Group, x *big.Int) (kp *KeyPair) {
	kp = new(KeyPair)
	x = new(big.Int).Mod(x, grp.Q)
	kp.sk = &SecretKey{
		PublicKey: &PublicKey{Group: grp, Y: grp.GExp(x)},
		X:         x,
	}
	return
}

// CombinePublicKeys multiplies the public keys together. Decrypting under
// the result needs every one of the matching secrets.
func CombinePublicKeys(grp *Group, keys ...*big.Int) *PublicKey {
	return &PublicKey{Group: grp, Y: grp.mul(keys...)}
}
