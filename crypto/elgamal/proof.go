package elgamal

import (
	"errors"
	"fmt"
	"io"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

// ErrOutOfRange is returned when asked to prove a plaintext that is not
// one of the allowed values.
var ErrOutOfRange = errors.New("plaintext outside of proof range")

// Proof is one branch of a sigma protocol transcript. The commitments
// are never stored, the verifier recomputes them from these two values.
type Proof struct {
	Challenge, Response *big.Int
}

func (p *Proof) String() string {
	return fmt.Sprintf("Proof[c=%s, r=%s]", p.Challenge, p.Response)
}

// The OR proofs below all share one shape.
//
// Each branch is the statement "ct encrypts m". For every branch except
// the real one we pick the challenge and response at random and work
// backwards to commitments that satisfy the verification equation. Then
// the real branch gets fresh commitments (g^w, y^w), the Fiat-Shamir
// challenge is taken over all commitments in order, and the real
// challenge is whatever is left over so the challenges sum to it. Only
// a prover knowing r for the real branch can close that gap.
//
// There are two sign conventions in use:
//
//	divide:   A = g^z / alpha^c   B = y^z / (beta/g^m)^c   z = w + r*c
//	multiply: A = g^z * alpha^c   B = y^z * (beta/g^m)^c   z = w - r*c
//
// "prove" uses the first, "bproof0" and "bproof1" the second.
type branch struct {
	ct *Ciphertext
	m  int
}

type transcriptFn = func(commitments []*big.Int) *big.Int

// commitment recomputes (A, B) for one branch.
func (pk *PublicKey) commitment(b branch, c, z *big.Int, divide bool) (A, B *big.Int) {
	ac := pk.exp(b.ct.Alpha, c)
	shifted := pk.mul(b.ct.Beta, pk.Group.gInverse(b.m))
	bc := pk.exp(shifted, c)
	if divide {
		ac.ModInverse(ac, pk.P)
		bc.ModInverse(bc, pk.P)
	}
	A = pk.mul(pk.GExp(z), ac)
	B = pk.mul(pk.exp(pk.Y, z), bc)
	return
}

func (pk *PublicKey) proveOr(
	rnd io.Reader,
	branches []branch,
	real int,
	r *big.Int,
	divide bool,
	challenge transcriptFn,
) ([]*Proof, error) {
	proofs := make([]*Proof, len(branches))
	commits := make([]*big.Int, 2*len(branches))

	// first we fill in all the "fake" proofs, so we can sum the challenges.
	csum := big.NewInt(0)
	for i, b := range branches {
		if i == real {
			continue
		}
		cz, err := random.Ints(rnd, pk.Q, 2)
		if err != nil {
			return nil, err
		}
		commits[2*i], commits[2*i+1] = pk.commitment(b, cz[0], cz[1], divide)
		proofs[i] = &Proof{Challenge: cz[0], Response: cz[1]}
		csum.Add(csum, cz[0])
	}

	w, err := random.Int(rnd, pk.Q)
	if err != nil {
		return nil, err
	}
	commits[2*real] = pk.GExp(w)
	commits[2*real+1] = pk.exp(pk.Y, w)

	c := challenge(commits)
	c.Sub(c, csum)
	c.Mod(c, pk.Q)

	z := new(big.Int).Mul(c, r)
	if divide {
		z.Add(w, z)
	} else {
		z.Sub(w, z)
	}
	z.Mod(z, pk.Q)
	proofs[real] = &Proof{Challenge: c, Response: z}
	return proofs, nil
}

func (pk *PublicKey) verifyOr(
	branches []branch,
	proofs []*Proof,
	divide bool,
	challenge transcriptFn,
) error {
	if len(proofs) != len(branches) {
		return fmt.Errorf("ZKP invalid: expected %d proofs, got %d", len(branches), len(proofs))
	}
	commits := make([]*big.Int, 2*len(branches))
	csum := big.NewInt(0)
	for i, b := range branches {
		p := proofs[i]
		if p == nil || !pk.inExponent(p.Challenge) || !pk.inExponent(p.Response) {
			return fmt.Errorf("ZKP invalid: proof[%d] not in Z_q", i)
		}
		commits[2*i], commits[2*i+1] = pk.commitment(b, p.Challenge, p.Response, divide)
		csum.Add(csum, p.Challenge)
	}
	csum.Mod(csum, pk.Q)
	if challenge(commits).Cmp(csum) != 0 {
		return fmt.Errorf("ZKP invalid: challenge sum does not match computed challenge")
	}
	return nil
}

func joinInts(xs []*big.Int) string {
	strs := make([]string, len(xs))
	for i, x := range xs {
		strs[i] = x.String()
	}
	return strings.Join(strs, ",")
}

func intervalBranches(ct *Ciphertext, min, max int) []branch {
	branches := make([]branch, 0, max-min+1)
	for j := min; j <= max; j++ {
		branches = append(branches, branch{ct: ct, m: j})
	}
	return branches
}

func (pk *PublicKey) intervalChallenge(ct *Ciphertext, cred *big.Int) transcriptFn {
	return func(commits []*big.Int) *big.Int {
		return random.Challenge(pk.Q, "prove|%s|%s,%s|%s", cred, ct.Alpha, ct.Beta, joinInts(commits))
	}
}

// ProveInterval shows that ct encrypts some integer in [min, max]
// (it is m, but that stays hidden). The credential is bound into the
// transcript so a proof cannot be lifted into somebody else's ballot.
func (pk *PublicKey) ProveInterval(
	rnd io.Reader,
	ct *CiphertextWithSecret,
	min, max, m int,
	cred *big.Int,
) ([]*Proof, error) {
	if min > max {
		return nil, fmt.Errorf("ZKP: empty interval [%d, %d]", min, max)
	}
	if m < min || m > max {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, m, min, max)
	}
	return pk.proveOr(
		rnd,
		intervalBranches(ct.Ciphertext, min, max),
		m-min,
		ct.R,
		true,
		pk.intervalChallenge(ct.Ciphertext, cred),
	)
}

// VerifyInterval checks a proof made by ProveInterval.
func (pk *PublicKey) VerifyInterval(ct *Ciphertext, min, max int, proofs []*Proof, cred *big.Int) error {
	if min > max {
		return fmt.Errorf("ZKP invalid: empty interval [%d, %d]", min, max)
	}
	if err := pk.CheckCiphertext(ct); err != nil {
		return err
	}
	return pk.verifyOr(
		intervalBranches(ct, min, max),
		proofs,
		true,
		pk.intervalChallenge(ct, cred),
	)
}

const plaintextCacheSize = 1024

// PlaintextOptionsCache memoizes g^-m, the shift applied to beta in
// every branch of every OR proof.
type PlaintextOptionsCache struct {
	group *Group
	cache *lru.Cache[int, *big.Int]
}

func NewPlaintextOptionsCache(grp *Group, size int) *PlaintextOptionsCache {
	cache, err := lru.New[int, *big.Int](size)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &PlaintextOptionsCache{group: grp, cache: cache}
}

// Inverse returns g^-m mod p. The result is shared, do not modify it.
func (c *PlaintextOptionsCache) Inverse(m int) *big.Int {
	if v, ok := c.cache.Get(m); ok {
		return v
	}
	v := c.group.GExp(big.NewInt(int64(m)))
	v.ModInverse(v, c.group.P)
	c.cache.Add(m, v)
	return v
}

func (grp *Group) gInverse(m int) *big.Int {
	grp.optsOnce.Do(func() {
		grp.opts = NewPlaintextOptionsCache(grp, plaintextCacheSize)
	})
	return grp.opts.Inverse(m)
}
