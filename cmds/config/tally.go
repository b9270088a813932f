package config

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-belenios/belenios"
)

// VerifiedTally tallies only the ballots that verify, as every trustee
// and auditor must agree on what was counted. Weights come from the
// ballots file.
func (cfg *Config) VerifiedTally(ctx context.Context, e *belenios.Election, ballotsPath string) (belenios.EncryptedTally, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ballots, err := cfg.Ballots(ballotsPath)
	if err != nil {
		return nil, 0, err
	}
	v, err := belenios.NewVerifier(e)
	if err != nil {
		return nil, 0, err
	}
	bar := MaybeProgress(len(ballots), "verify")
	bar.Start()
	results, err := v.VerifyBallots(ctx, Unweighted(ballots), cfg.Workers, bar.Increment)
	bar.Finish()
	if err != nil {
		return nil, 0, err
	}
	accepted := make([]*belenios.WeightedBallot, 0, len(ballots))
	for i, err := range results {
		if err != nil {
			log.Warn().Int("ballot", i+1).Err(err).Msg("Ballot rejected, not tallied")
			continue
		}
		accepted = append(accepted, ballots[i])
	}
	return belenios.TallyParallel(ctx, e, accepted, cfg.Workers)
}
