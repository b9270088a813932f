package random

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	gbig "math/big"

	big "github.com/ncw/gmp"
)

// Reader is used whenever a nil source is passed in.
var Reader io.Reader = rand.Reader

// Int returns a uniformly random int in [0, max) read from rnd.
func Int(rnd io.Reader, max *big.Int) (*big.Int, error) {
	if rnd == nil {
		rnd = Reader
	}
	if max.Sign() <= 0 {
		return nil, fmt.Errorf("random: upper bound must be positive, got %s", max)
	}
	r, err := rand.Int(rnd, new(gbig.Int).SetBytes(max.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("random: source failed: %w", err)
	}
	return new(big.Int).SetBytes(r.Bytes()), nil
}

// Ints draws n independent values from [0, max).
func Ints(rnd io.Reader, max *big.Int, n int) ([]*big.Int, error) {
	out := make([]*big.Int, n)
	for i := range out {
		x, err := Int(rnd, max)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

// Oracle is used for turning bytes into a random, but deterministic integer.
func Oracle(input []byte, max *big.Int) *big.Int {
	h := sha256.Sum256(input)
	var x big.Int
	x.SetBytes(h[:])
	x.Mod(&x, max)
	return &x
}

// Challenge formats a Fiat-Shamir transcript and hashes it into Z_q.
// Integers are rendered in decimal by their String method, so the
// transcript is byte for byte what other implementations produce.
func Challenge(q *big.Int, format string, args ...interface{}) *big.Int {
	return Oracle([]byte(fmt.Sprintf(format, args...)), q)
}
