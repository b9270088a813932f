package elgamal

import (
	"fmt"
	"sync"

	big "github.com/ncw/gmp"
)

// Group represents the parameters of a prime order subgroup of Z_p*.
// All exponentiations in the election happen here.
type Group struct {
	P, Q, G *big.Int

	optsOnce sync.Once
	opts     *PlaintextOptionsCache
}

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

const (
	belenios2048P = "20694785691422546401013643657505008064922989295751104097100884787057374219242717401922237254497684338129066633138078958404960054389636289796393038773905722803605973749427671376777618898589872735865049081167099310535867780980030790491654063777173764198678527273474476341835600035698305193144284561701911000786737307333564123971732897913240474578834468260652327974647951137672658693582180046317922073668860052627186363386088796882120769432366149491002923444346373222145884100586421050242120365433561201320481118852408731077014151666200162313177169372189248078507711827842317498073276598828825169183103125680162072880719"
	belenios2048Q = "78571733251071885079927659812671450121821421258408794611510081919805623223441"
	belenios2048G = "2402352677501852209227687703532399932712287657378364916510075318787663274146353219320285676155269678799694668298749389095083896573425601900601068477164491735474137283104610458681314511781646755400527402889846139864532661215055797097162016168270312886432456663834863635782106154918419982534315189740658186868651151358576410138882215396016043228843603930989333662772848406593138406010231675095763777982665103606822406635076697764025346253773085133173495194248967754052573659049492477631475991575198775177711481490920456600205478127054728238140972518639858334115700568353695553423781475582491896050296680037745308460627"
)

// Belenios2048 is the default group of the Belenios reference tooling:
// a 2048 bit p with a 256 bit q dividing p-1.
func Belenios2048() *Group {
	return mustGroup(belenios2048P, belenios2048Q, belenios2048G)
}

func mustGroup(p, q, g string) *Group {
	grp := &Group{P: new(big.Int), Q: new(big.Int), G: new(big.Int)}
	if _, ok := grp.P.SetString(p, 10); !ok {
		panic("bad group constant p")
	}
	if _, ok := grp.Q.SetString(q, 10); !ok {
		panic("bad group constant q")
	}
	if _, ok := grp.G.SetString(g, 10); !ok {
		panic("bad group constant g")
	}
	return grp
}

// Validate checks the group params are OK. That is that
// q divides p-1, that P and Q are (probably) prime
// and that G generates the order q subgroup.
func (grp *Group) Validate() error {
	if grp.P == nil || grp.Q == nil || grp.G == nil {
		return fmt.Errorf("Group invalid: missing parameter")
	}
	if !grp.P.ProbablyPrime(20) {
		return fmt.Errorf("Group invalid: p is not prime")
	}
	if !grp.Q.ProbablyPrime(20) {
		return fmt.Errorf("Group invalid: q is not prime")
	}
	pMinusOne := new(big.Int).Sub(grp.P, bigOne)
	if new(big.Int).Rem(pMinusOne, grp.Q).Cmp(bigZero) != 0 {
		return fmt.Errorf("Group invalid: q does not divide p-1")
	}
	if grp.G.Cmp(bigOne) != 1 || grp.G.Cmp(grp.P) != -1 {
		return fmt.Errorf("Group invalid: g not in [2, p-1]")
	}
	if new(big.Int).Exp(grp.G, grp.Q, grp.P).Cmp(bigOne) != 0 {
		return fmt.Errorf("Group invalid: g^q != 1 mod p")
	}
	return nil
}

// Equals compares all three parameters.
func (grp *Group) Equals(other *Group) bool {
	return grp.P.Cmp(other.P) == 0 && grp.Q.Cmp(other.Q) == 0 && grp.G.Cmp(other.G) == 0
}

// exp is base^e mod p
func (grp *Group) exp(base, e *big.Int) *big.Int {
	return new(big.Int).Exp(base, e, grp.P)
}

// GExp returns g^e mod p.
func (grp *Group) GExp(e *big.Int) *big.Int {
	return grp.exp(grp.G, e)
}

// mul multiplies the factors mod p into a fresh int.
func (grp *Group) mul(xs ...*big.Int) *big.Int {
	r := big.NewInt(1)
	for _, x := range xs {
		r.Mul(r, x)
		r.Mod(r, grp.P)
	}
	return r
}

// inv is the multiplicative inverse mod p, x must be non zero mod p.
func (grp *Group) inv(x *big.Int) *big.Int {
	return new(big.Int).ModInverse(x, grp.P)
}

// inElement is true for x in [1, p-1].
func (grp *Group) inElement(x *big.Int) bool {
	return x != nil && x.Sign() > 0 && x.Cmp(grp.P) == -1
}

// inExponent is true for x in [0, q-1].
func (grp *Group) inExponent(x *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(grp.Q) == -1
}

func (grp *Group) String() string {
	return fmt.Sprintf("Group[p=%d bits, q=%d bits, g=%s]", grp.P.BitLen(), grp.Q.BitLen(), grp.G)
}

// PublicKey is an ElGamal public key for encryption and signature verification
type PublicKey struct {
	*Group
	Y *big.Int
}

func (pk *PublicKey) String() string {
	return fmt.Sprintf("pk:Y=%s", pk.Y)
}

// Validate that the Y value is within range for the group params
func (pk *PublicKey) Validate() error {
	if pk.Group == nil {
		return fmt.Errorf("PublicKey invalid: No Group Parameters")
	}
	if pk.Y == nil {
		return fmt.Errorf("PublicKey invalid: missing y")
	}
	// our signature and ZKP scheme requires y \in [1, p-1]
	if pk.Y.Cmp(bigOne) == -1 {
		return fmt.Errorf("PublicKey invalid: y < 1")
	}
	if pk.Y.Cmp(pk.P) != -1 {
		return fmt.Errorf("PublicKey invalid: y > p-1")
	}
	return nil
}

// SecretKey is an ElGamal secret key for decryption and signature creation
type SecretKey struct {
	*PublicKey
	X *big.Int
}

func (sk *SecretKey) String() string {
	return fmt.Sprintf("sk:X=%s", sk.X)
}

// Validate that the X value is within range for the group params
// and that the PublicKey is correct (or generate it!)
func (sk *SecretKey) Validate() error {
	if sk.PublicKey == nil || sk.Group == nil {
		return fmt.Errorf("SecretKey invalid: No Group Parameters")
	}
	// the secret key is from range [0, q-1]
	if sk.X.Cmp(bigZero) == -1 {
		return fmt.Errorf("SecretKey invalid: x < 0")
	}
	if sk.X.Cmp(sk.Q) != -1 {
		return fmt.Errorf("SecretKey invalid: x > q-1")
	}
	if sk.Y == nil {
		sk.Y = sk.GExp(sk.X)
		return nil
	}
	if err := sk.PublicKey.Validate(); err != nil {
		return fmt.Errorf("SecretKey invalid: %w", err)
	}
	if sk.GExp(sk.X).Cmp(sk.Y) != 0 {
		return fmt.Errorf("SecretKey invalid: y != g^x")
	}
	return nil
}
