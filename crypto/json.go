package crypto

import (
	"encoding/json"
	"errors"
	"fmt"

	big "github.com/ncw/gmp"
)

// ErrFormat is wrapped by every big integer parse failure.
var ErrFormat = errors.New("malformed integer")

// BigIntToJSON renders an integer the way the wire format wants it:
// a plain decimal string.
func BigIntToJSON(x *big.Int) string {
	return x.String()
}

// BigIntFromJSON parses a decimal string. Signs, whitespace and empty
// strings are all rejected.
func BigIntFromJSON(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrFormat)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return nil, fmt.Errorf("%w: expecting decimal digits, got %q", ErrFormat, s)
		}
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: expecting decimal digits, got %q", ErrFormat, s)
	}
	return n, nil
}

// BigInt wraps a single integer for struct fields that marshal as a
// decimal string.
type BigInt struct {
	*big.Int
}

func (b BigInt) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return []byte("null"), nil
	}
	return json.Marshal(BigIntToJSON(b.Int))
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	n, err := BigIntFromJSON(s)
	if err != nil {
		return err
	}
	b.Int = n
	return nil
}

// slice of *big.Int s
type BigIntSlice []*big.Int

func (s BigIntSlice) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(s))
	for i, n := range s {
		strs[i] = BigIntToJSON(n)
	}
	return json.Marshal(strs)
}

func (s *BigIntSlice) UnmarshalJSON(b []byte) error {
	var strs []string
	if err := json.Unmarshal(b, &strs); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	bs := make(BigIntSlice, len(strs))
	for i := range strs {
		n, err := BigIntFromJSON(strs[i])
		if err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
		bs[i] = n
	}
	*s = bs
	return nil
}
