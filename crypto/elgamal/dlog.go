package elgamal

import (
	"errors"
	"fmt"

	big "github.com/ncw/gmp"
)

// ErrDiscreteLogNotFound means the value is not g^m for any m in the
// table's range. For a tally that is never a normal outcome: either
// the bound was wrong, a factor was computed with the wrong key, or the
// ciphertext is not what it claims to be.
var ErrDiscreteLogNotFound = errors.New("discrete log not found")

const dlogSparseLimit = 100000

// DiscreteLogTable maps g^m back to m for m in [0, max].
//
// For small bounds we simply build every entry. In a national sized
// election the bound is large and the table would be many GB, but there
// are only a handful of values we actually want, so past
// dlogSparseLimit we walk the powers once and keep just the targets.
type DiscreteLogTable struct {
	max   uint64
	table map[string]uint64
}

// NewDiscreteLogTable builds the lookup. targets are only used for the
// sparse form and can be nil for small bounds.
func NewDiscreteLogTable(grp *Group, max uint64, targets []*big.Int) *DiscreteLogTable {
	t := &DiscreteLogTable{max: max, table: map[string]uint64{}}
	wanted := map[string]bool{}
	sparse := max >= dlogSparseLimit
	if sparse {
		for _, x := range targets {
			wanted[key(x)] = true
		}
	}
	remaining := len(wanted)
	last := big.NewInt(1)
	for counter := uint64(0); counter <= max; counter++ {
		k := key(last)
		if !sparse {
			t.table[k] = counter
		} else if wanted[k] {
			if _, seen := t.table[k]; !seen {
				t.table[k] = counter
				remaining--
				if remaining == 0 {
					break
				}
			}
		}
		last.Mul(last, grp.G)
		last.Mod(last, grp.P)
	}
	return t
}

// we cannot key our map on the big.Int as it is a pointer,
// but the byte string of the value is comparable.
func key(x *big.Int) string {
	return string(x.Bytes())
}

// Lookup returns m such that g^m == x.
func (t *DiscreteLogTable) Lookup(x *big.Int) (uint64, error) {
	if m, ok := t.table[key(x)]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: bound %d", ErrDiscreteLogNotFound, t.max)
}
