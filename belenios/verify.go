package belenios

import (
	"context"
	"fmt"
	"time"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// Verifier checks ballots against one election. The election hash is
// computed once so it is cheap to check many ballots, and it is safe
// for concurrent use.
type Verifier struct {
	election *Election
	pk       *elgamal.PublicKey
	hash     string
}

func NewVerifier(e *Election) (*Verifier, error) {
	if e.PublicKey == nil || e.PublicKey.Group == nil {
		return nil, fmt.Errorf("%w: election has no public key", ErrStructure)
	}
	hash, err := ElectionHash(e)
	if err != nil {
		return nil, err
	}
	return &Verifier{election: e, pk: e.PublicKey.PublicKey(), hash: hash}, nil
}

// Election this verifier is for.
func (v *Verifier) Election() *Election {
	return v.election
}

// VerifyBallot is the accept/reject answer.
func (v *Verifier) VerifyBallot(b *Ballot) bool {
	return v.CheckBallot(b) == nil
}

// CheckBallot returns nil for a valid ballot, otherwise an error naming
// the first thing that failed.
func (v *Verifier) CheckBallot(b *Ballot) error {
	if b == nil {
		return fmt.Errorf("%w: no ballot", ErrStructure)
	}
	if b.ElectionUUID != v.election.UUID {
		return fmt.Errorf("%w: ballot is for election %q", ErrElectionMismatch, b.ElectionUUID)
	}
	if b.ElectionHash != v.hash {
		return fmt.Errorf("%w: election hash %q does not match %q", ErrElectionMismatch, b.ElectionHash, v.hash)
	}
	if err := v.checkStructure(b); err != nil {
		return err
	}

	sig := b.Signature
	credKey := &elgamal.PublicKey{Group: v.pk.Group, Y: sig.PublicKey}
	if err := credKey.Verify(signedAnswers(b.Answers), sig.proof()); err != nil {
		return fmt.Errorf("%w: signature: %v", ErrInvalidProof, err)
	}

	for i, q := range v.election.Questions {
		if err := v.checkAnswer(q, b.Answers[i], sig.PublicKey); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrInvalidProof, i, err)
		}
	}
	return nil
}

func (v *Verifier) checkStructure(b *Ballot) error {
	if b.Signature == nil || b.Signature.PublicKey == nil {
		return fmt.Errorf("%w: ballot is not signed", ErrStructure)
	}
	if len(b.Answers) != len(v.election.Questions) {
		return fmt.Errorf("%w: %d questions but %d answers", ErrStructure, len(v.election.Questions), len(b.Answers))
	}
	for i, q := range v.election.Questions {
		a := b.Answers[i]
		if a == nil {
			return fmt.Errorf("%w: answer %d missing", ErrStructure, i)
		}
		if len(a.Choices) != q.Slots() || len(a.IndividualProofs) != q.Slots() {
			return fmt.Errorf("%w: answer %d has %d choices and %d proofs, expected %d",
				ErrStructure, i, len(a.Choices), len(a.IndividualProofs), q.Slots())
		}
		for _, ct := range a.Choices {
			if ct == nil {
				return fmt.Errorf("%w: answer %d has an empty choice", ErrStructure, i)
			}
		}
		if q.Blank != (a.BlankProof != nil) {
			return fmt.Errorf("%w: answer %d blank proof presence does not match question", ErrStructure, i)
		}
	}
	return nil
}

func (v *Verifier) checkAnswer(q *Question, a *Answer, cred *big.Int) error {
	for j, ct := range a.Choices {
		if err := v.pk.VerifyInterval(ct, 0, 1, a.IndividualProofs[j], cred); err != nil {
			return fmt.Errorf("choice %d: %w", j, err)
		}
	}
	if !q.Blank {
		all := v.pk.Combine(a.Choices...)
		if err := v.pk.VerifyInterval(all, q.Min, q.Max, a.OverallProof, cred); err != nil {
			return fmt.Errorf("overall proof: %w", err)
		}
		return nil
	}
	s := &elgamal.BlankStatement{
		Zero:  a.Choices[0],
		Sigma: v.pk.Combine(a.Choices[1:]...),
		Min:   q.Min,
		Max:   q.Max,
	}
	if err := v.pk.VerifyBlank(s, a.BlankProof, cred); err != nil {
		return fmt.Errorf("blank proof: %w", err)
	}
	if err := v.pk.VerifyOverall(s, a.OverallProof, cred); err != nil {
		return fmt.Errorf("overall proof: %w", err)
	}
	return nil
}

// VerifyBallot is a one-off check of a single ballot.
func VerifyBallot(e *Election, b *Ballot) bool {
	v, err := NewVerifier(e)
	if err != nil {
		return false
	}
	return v.VerifyBallot(b)
}

// VerifyBallots checks every ballot using up to workers goroutines.
// The returned slice lines up with ballots and is nil where the ballot
// was accepted. progress, if given, is called once per ballot checked
// and may be called concurrently. The error is only for cancellation.
func (v *Verifier) VerifyBallots(ctx context.Context, ballots []*Ballot, workers int, progress func()) ([]error, error) {
	start := time.Now()
	if workers < 1 {
		workers = 1
	}
	results := make([]error, len(ballots))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ballots {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = v.CheckBallot(ballots[i])
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rejected := 0
	for _, err := range results {
		if err != nil {
			rejected++
		}
	}
	log.Debug().
		Int("ballots", len(ballots)).
		Int("rejected", rejected).
		Int("workers", workers).
		Dur("ms", time.Since(start)).
		Msg("Ballots verified")
	return results, nil
}
