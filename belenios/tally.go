package belenios

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// Tallier accumulates ballots into an encrypted tally. Every slot starts
// at the neutral ciphertext so an empty tally decrypts to zeros.
// A Tallier is not safe for concurrent use, give each goroutine its own
// and Merge them.
type Tallier struct {
	election *Election
	grp      *elgamal.Group
	slots    EncryptedTally
	n        int
}

func NewTallier(e *Election) *Tallier {
	slots := make(EncryptedTally, len(e.Questions))
	for i, q := range e.Questions {
		slots[i] = make([]*elgamal.Ciphertext, q.Slots())
		for j := range slots[i] {
			slots[i][j] = elgamal.Neutral()
		}
	}
	return &Tallier{election: e, grp: e.Group(), slots: slots}
}

// Add a ballot that counts weight times. The ballot is assumed to be
// verified already, only its shape is checked here.
func (t *Tallier) Add(b *Ballot, weight int) error {
	if weight < 1 {
		return fmt.Errorf("%w: weight %d must be positive", ErrRange, weight)
	}
	if err := t.checkShape(b); err != nil {
		return err
	}
	for i, a := range b.Answers {
		for j, ct := range a.Choices {
			if weight != 1 {
				ct = t.grp.Pow(ct, int64(weight))
			}
			t.slots[i][j].Mul(t.grp, ct)
		}
	}
	t.n += weight
	return nil
}

func (t *Tallier) checkShape(b *Ballot) error {
	if b == nil {
		return fmt.Errorf("%w: no ballot", ErrStructure)
	}
	if len(b.Answers) != len(t.slots) {
		return fmt.Errorf("%w: tally has %d questions but ballot has %d answers", ErrStructure, len(t.slots), len(b.Answers))
	}
	for i, a := range b.Answers {
		if a == nil || len(a.Choices) != len(t.slots[i]) {
			return fmt.Errorf("%w: question %d choice count does not match", ErrStructure, i)
		}
		for _, ct := range a.Choices {
			if ct == nil || ct.Alpha == nil || ct.Beta == nil {
				return fmt.Errorf("%w: question %d has an empty choice", ErrStructure, i)
			}
		}
	}
	return nil
}

// Merge folds another partial tally of the same election into this one.
func (t *Tallier) Merge(other *Tallier) {
	for i := range t.slots {
		for j := range t.slots[i] {
			t.slots[i][j].Mul(t.grp, other.slots[i][j])
		}
	}
	t.n += other.n
}

// Result returns the encrypted tally and the total weight counted.
func (t *Tallier) Result() (EncryptedTally, int) {
	return t.slots, t.n
}

// Tally adds up the ballots, each counting once.
func Tally(e *Election, ballots []*Ballot) (EncryptedTally, error) {
	t := NewTallier(e)
	for i, b := range ballots {
		if err := t.Add(b, 1); err != nil {
			return nil, fmt.Errorf("ballot %d: %w", i, err)
		}
	}
	tally, _ := t.Result()
	return tally, nil
}

// TallyWeighted adds up ballots that count their weight times each and
// also returns the total weight, which is the bound on any decrypted slot.
func TallyWeighted(e *Election, ballots []*WeightedBallot) (EncryptedTally, int, error) {
	t := NewTallier(e)
	for i, wb := range ballots {
		if err := t.Add(wb.Ballot, wb.Weight); err != nil {
			return nil, 0, fmt.Errorf("ballot %d: %w", i, err)
		}
	}
	tally, n := t.Result()
	return tally, n, nil
}

// TallyParallel is TallyWeighted split across workers. Each worker
// keeps its own partial sum and they are merged at the end, which gives
// the same tally as the serial fold since combining is commutative.
func TallyParallel(ctx context.Context, e *Election, ballots []*WeightedBallot, workers int) (EncryptedTally, int, error) {
	start := time.Now()
	if workers < 1 {
		workers = 1
	}
	if workers > len(ballots) {
		workers = len(ballots)
	}
	if workers <= 1 {
		return TallyWeighted(e, ballots)
	}
	partials := make([]*Tallier, workers)
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		partials[w] = NewTallier(e)
		g.Go(func() error {
			for i := w; i < len(ballots); i += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := partials[w].Add(ballots[i].Ballot, ballots[i].Weight); err != nil {
					return fmt.Errorf("ballot %d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	total := partials[0]
	for _, p := range partials[1:] {
		total.Merge(p)
	}
	tally, n := total.Result()
	log.Debug().
		Int("ballots", len(ballots)).
		Int("tallied", n).
		Int("workers", workers).
		Dur("ms", time.Since(start)).
		Msg("Tally computed")
	return tally, n, nil
}
