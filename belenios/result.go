package belenios

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// CreateResult checks the trustees against the election key, checks each
// partial decryption against its trustee and then combines them.
// partials[i] must come from trustees[i].
func CreateResult(e *Election, trustees []*TrusteePublicKey, tally EncryptedTally, numTallied int, partials []*PartialDecryption) (*Result, error) {
	start := time.Now()
	grp := e.Group()
	if len(trustees) == 0 || len(partials) != len(trustees) {
		return nil, fmt.Errorf("%w: %d trustees but %d partial decryptions", ErrStructure, len(trustees), len(partials))
	}
	if numTallied < 0 {
		return nil, fmt.Errorf("%w: negative number of tallied ballots %d", ErrStructure, numTallied)
	}
	if len(tally) != len(e.Questions) {
		return nil, fmt.Errorf("%w: tally has %d questions, election %d", ErrStructure, len(tally), len(e.Questions))
	}
	for i, q := range e.Questions {
		if len(tally[i]) != q.Slots() {
			return nil, fmt.Errorf("%w: tally question %d has %d slots, expected %d", ErrStructure, i, len(tally[i]), q.Slots())
		}
	}
	if y := CombineTrusteeKeys(grp, trustees); y.Cmp(e.PublicKey.Y) != 0 {
		return nil, fmt.Errorf("%w: trustee keys do not combine to the election key", ErrElectionMismatch)
	}
	for i, t := range trustees {
		if err := t.Verify(grp); err != nil {
			return nil, err
		}
		if err := VerifyPartialDecryption(grp, t, tally, partials[i]); err != nil {
			return nil, err
		}
	}
	counts, err := CombinePartialDecryptions(grp, tally, partials, numTallied)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("election", e.UUID).
		Int("trustees", len(trustees)).
		Int("tallied", numTallied).
		Dur("ms", time.Since(start)).
		Msg("Result computed")
	return &Result{
		NumTallied:         numTallied,
		EncryptedTally:     tally,
		PartialDecryptions: partials,
		Result:             counts,
	}, nil
}
