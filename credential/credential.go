// Package credential turns short, human manageable voter tokens into
// signing keys.
//
// A private credential is 14 random base58 symbols plus one checksum
// symbol, printed in groups of three (e.g. "NYC-SgM-axC-fCu-pvP"). The
// token itself is far too weak to be a key, so it is stretched with
// PBKDF2 using the election UUID as salt and the output reduced mod q.
package credential

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	big "github.com/ncw/gmp"
	"golang.org/x/crypto/pbkdf2"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
	"github.com/thechriswalker/go-belenios/crypto/random"
)

const (
	// Alphabet is base58 without 0, O, I and l.
	Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	// TokenLength is the number of random symbols.
	TokenLength = 14
	// RawLength is the token plus its checksum symbol.
	RawLength = TokenLength + 1

	checksumModulus = 53
	groupSize       = 3

	// PBKDF2-HMAC-SHA256 parameters.
	Iterations = 1000
	KeyLength  = 32
)

// ErrMalformed is returned for credentials with the wrong length or
// symbols outside the alphabet.
var ErrMalformed = errors.New("malformed credential")

var (
	big58 = big.NewInt(int64(len(Alphabet)))
	big53 = big.NewInt(checksumModulus)
)

// Credentials is what the credential authority hands out: the private
// token to the voter and the public credential to the election.
type Credentials struct {
	PrivateCred string
	PublicCred  *big.Int
}

// GenerateToken draws TokenLength random symbols. Besides credentials
// this is the usual way to make an election UUID.
func GenerateToken(rnd io.Reader) (string, error) {
	var sb strings.Builder
	for i := 0; i < TokenLength; i++ {
		idx, err := random.Int(rnd, big58)
		if err != nil {
			return "", err
		}
		sb.WriteByte(Alphabet[idx.Int64()])
	}
	return sb.String(), nil
}

// value reads the first TokenLength symbols as a base58 number.
func value(privateCred string) (*big.Int, error) {
	raw := strings.ReplaceAll(privateCred, "-", "")
	if len(raw) != RawLength {
		return nil, fmt.Errorf("%w: expected %d symbols, got %d", ErrMalformed, RawLength, len(raw))
	}
	v := big.NewInt(0)
	for i := 0; i < RawLength; i++ {
		idx := strings.IndexByte(Alphabet, raw[i])
		if idx < 0 {
			return nil, fmt.Errorf("%w: invalid symbol %q", ErrMalformed, raw[i])
		}
		if i < TokenLength {
			v.Mul(v, big58)
			v.Add(v, big.NewInt(int64(idx)))
		}
	}
	return v, nil
}

// checksum is 53 - (value mod 53), an index into the alphabet.
func checksum(v *big.Int) byte {
	m := new(big.Int).Mod(v, big53)
	return Alphabet[checksumModulus-m.Int64()]
}

// Check reports why a credential is not acceptable, nil if it is.
func Check(privateCred string) error {
	v, err := value(privateCred)
	if err != nil {
		return err
	}
	last := privateCred[len(privateCred)-1]
	if last != checksum(v) {
		return fmt.Errorf("%w: checksum mismatch", ErrMalformed)
	}
	return nil
}

// IsValid is Check as a boolean.
func IsValid(privateCred string) bool {
	return Check(privateCred) == nil
}

// format adds the checksum and groups the symbols by three.
func format(token string) (string, error) {
	// the placeholder checksum symbol is only there for the length check
	v, err := value(token + Alphabet[:1])
	if err != nil {
		return "", err
	}
	raw := token + string(checksum(v))
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if i > 0 && i%groupSize == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(raw[i])
	}
	return sb.String(), nil
}

// SecretKey stretches the credential into an exponent. The credential
// string is used exactly as given, hyphens included.
func SecretKey(privateCred, uuid string, grp *elgamal.Group) *big.Int {
	dk := pbkdf2.Key([]byte(privateCred), []byte(uuid), Iterations, KeyLength, sha256.New)
	x := new(big.Int).SetBytes(dk)
	return x.Mod(x, grp.Q)
}

// Derive returns the signing key pair for a credential. The public half
// is the public credential.
func Derive(privateCred, uuid string, grp *elgamal.Group) (*elgamal.KeyPair, error) {
	if err := Check(privateCred); err != nil {
		return nil, err
	}
	return elgamal.KeyPairForSecret(grp, SecretKey(privateCred, uuid, grp)), nil
}

// Generate makes a fresh credential for the election.
func Generate(rnd io.Reader, uuid string, grp *elgamal.Group) (*Credentials, error) {
	token, err := GenerateToken(rnd)
	if err != nil {
		return nil, err
	}
	priv, err := format(token)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		PrivateCred: priv,
		PublicCred:  grp.GExp(SecretKey(priv, uuid, grp)),
	}, nil
}
