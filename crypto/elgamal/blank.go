package elgamal

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/random"
)

// Questions that accept a blank vote carry two extra proofs instead of
// the interval proof over the sum. ct0 is the first choice slot, which
// encrypts 1 for a blank vote and 0 otherwise, and ctSigma is the
// combination of every other slot.
//
// The blank proof says "ct0 encrypts 0 OR ctSigma encrypts 0".
// The overall proof says "ct0 encrypts 1 OR ctSigma encrypts some j
// in [min, max]".
//
// A blank vote proves the second branch of the first and the first
// branch of the second, any other vote does the opposite, so the pair
// together shows the ballot is either all zeros with the blank flag or
// a regular vote within bounds.

// BlankStatement is the public part shared by both proofs.
type BlankStatement struct {
	Zero  *Ciphertext // the blank flag slot
	Sigma *Ciphertext // every other slot combined
	Min   int
	Max   int
}

// BlankWitness is what the voter knows about the statement.
type BlankWitness struct {
	Zero    *CiphertextWithSecret
	Sigma   *CiphertextWithSecret
	IsBlank bool
	Sum     int // number of ones in the non blank slots
}

func (s *BlankStatement) check(grp *Group) error {
	if s.Min > s.Max {
		return fmt.Errorf("ZKP invalid: empty interval [%d, %d]", s.Min, s.Max)
	}
	if err := grp.CheckCiphertext(s.Zero); err != nil {
		return err
	}
	return grp.CheckCiphertext(s.Sigma)
}

// prefix is "g,y,alpha0,beta0,alphaSigma,betaSigma"
func (pk *PublicKey) blankPrefix(s *BlankStatement) string {
	return joinInts([]*big.Int{
		pk.G, pk.Y,
		s.Zero.Alpha, s.Zero.Beta,
		s.Sigma.Alpha, s.Sigma.Beta,
	})
}

func (pk *PublicKey) blankChallenge(tag string, s *BlankStatement, cred *big.Int) transcriptFn {
	prefix := pk.blankPrefix(s)
	return func(commits []*big.Int) *big.Int {
		return random.Challenge(pk.Q, "%s|%s|%s|%s", tag, cred, prefix, joinInts(commits))
	}
}

func blankBranches(s *BlankStatement) []branch {
	return []branch{{ct: s.Zero, m: 0}, {ct: s.Sigma, m: 0}}
}

func overallBranches(s *BlankStatement) []branch {
	branches := make([]branch, 0, s.Max-s.Min+2)
	branches = append(branches, branch{ct: s.Zero, m: 1})
	for j := s.Min; j <= s.Max; j++ {
		branches = append(branches, branch{ct: s.Sigma, m: j})
	}
	return branches
}

// ProveBlank creates the "bproof0" proof.
func (pk *PublicKey) ProveBlank(rnd io.Reader, w *BlankWitness, min, max int, cred *big.Int) ([]*Proof, error) {
	s := w.statement(min, max)
	real, r := 0, w.Zero.R
	if w.IsBlank {
		if w.Sum != 0 {
			return nil, fmt.Errorf("%w: blank vote with %d other choices", ErrOutOfRange, w.Sum)
		}
		real, r = 1, w.Sigma.R
	}
	return pk.proveOr(rnd, blankBranches(s), real, r, false, pk.blankChallenge("bproof0", s, cred))
}

// VerifyBlank checks a "bproof0" proof.
func (pk *PublicKey) VerifyBlank(s *BlankStatement, proofs []*Proof, cred *big.Int) error {
	if err := s.check(pk.Group); err != nil {
		return err
	}
	return pk.verifyOr(blankBranches(s), proofs, false, pk.blankChallenge("bproof0", s, cred))
}

// ProveOverall creates the "bproof1" proof.
func (pk *PublicKey) ProveOverall(rnd io.Reader, w *BlankWitness, min, max int, cred *big.Int) ([]*Proof, error) {
	if min > max {
		return nil, fmt.Errorf("ZKP: empty interval [%d, %d]", min, max)
	}
	s := w.statement(min, max)
	real, r := 0, w.Zero.R
	if !w.IsBlank {
		if w.Sum < min || w.Sum > max {
			return nil, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, w.Sum, min, max)
		}
		real, r = 1+w.Sum-min, w.Sigma.R
	}
	return pk.proveOr(rnd, overallBranches(s), real, r, false, pk.blankChallenge("bproof1", s, cred))
}

// VerifyOverall checks a "bproof1" proof.
func (pk *PublicKey) VerifyOverall(s *BlankStatement, proofs []*Proof, cred *big.Int) error {
	if err := s.check(pk.Group); err != nil {
		return err
	}
	return pk.verifyOr(overallBranches(s), proofs, false, pk.blankChallenge("bproof1", s, cred))
}

func (w *BlankWitness) statement(min, max int) *BlankStatement {
	return &BlankStatement{Zero: w.Zero.Ciphertext, Sigma: w.Sigma.Ciphertext, Min: min, Max: max}
}
