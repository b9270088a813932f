package random

import (
	"bytes"
	"testing"

	big "github.com/ncw/gmp"
)

func TestOracleVectors(t *testing.T) {
	q, _ := new(big.Int).SetString("78571733251071885079927659812671450121821421258408794611510081919805623223441", 10)
	for _, tc := range []struct {
		msg  string
		mod  *big.Int
		want string
	}{
		{"Hello world!", big.NewInt(17), "5"},
		{"General Election", q, "21975804506769217954373109906108369112774727951412621094989250905673600375274"},
	} {
		got := Oracle([]byte(tc.msg), tc.mod)
		if got.String() != tc.want {
			t.Fatalf("Oracle(%q) = %s, want %s", tc.msg, got, tc.want)
		}
	}
}

func TestChallengeFormatsDecimal(t *testing.T) {
	q := big.NewInt(1000003)
	a, b := big.NewInt(12), big.NewInt(340)
	want := Oracle([]byte("sig|12|340|x"), q)
	if got := Challenge(q, "sig|%s|%s|%s", a, b, "x"); got.Cmp(want) != 0 {
		t.Fatalf("Challenge did not format integers in decimal")
	}
}

func TestIntRange(t *testing.T) {
	max := big.NewInt(7)
	for i := 0; i < 200; i++ {
		n, err := Int(nil, max)
		if err != nil {
			t.Fatal(err)
		}
		if n.Sign() < 0 || n.Cmp(max) >= 0 {
			t.Fatalf("%s outside [0, 7)", n)
		}
	}
	if _, err := Int(nil, big.NewInt(0)); err == nil {
		t.Fatal("zero bound accepted")
	}
	// an exhausted source is an error, not a panic
	if _, err := Int(bytes.NewReader(nil), max); err == nil {
		t.Fatal("empty reader accepted")
	}
}
