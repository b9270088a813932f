package ballotbox

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/crypto"
)

var (
	// ErrUnknownCredential is a ballot signed by a credential not on the list.
	ErrUnknownCredential = errors.New("credential not registered")
	// ErrRejected wraps the reason a ballot failed verification.
	ErrRejected = errors.New("ballot rejected")
)

// Box accepts verified ballots for one election into a Storage.
type Box struct {
	verifier *belenios.Verifier
	store    Storage
	// public credential -> weight. nil accepts any credential.
	creds map[string]int
}

// Open a box for the election on the given storage.
func Open(e *belenios.Election, store Storage) (*Box, error) {
	v, err := belenios.NewVerifier(e)
	if err != nil {
		return nil, err
	}
	return &Box{verifier: v, store: store}, nil
}

// SetCredentials restricts the box to these public credentials, keyed
// by decimal value with their weight.
func (b *Box) SetCredentials(creds map[string]int) {
	b.creds = creds
}

// ReadCredentials parses a public credentials file: one decimal credential
// per line, optionally followed by ",weight".
func ReadCredentials(r io.Reader) (map[string]int, error) {
	creds := map[string]int{}
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		cred, weight := text, 1
		if i := strings.IndexByte(text, ','); i >= 0 {
			w, err := strconv.Atoi(text[i+1:])
			if err != nil || w < 1 {
				return nil, fmt.Errorf("%w: line %d: bad weight %q", belenios.ErrFormat, line, text[i+1:])
			}
			cred, weight = text[:i], w
		}
		if _, err := crypto.BigIntFromJSON(cred); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		creds[cred] = weight
	}
	return creds, sc.Err()
}

// Cast verifies and stores the ballot, returning its tracker. A weight
// of 0 uses the registered weight for the credential, or 1. With a
// credentials list any other weight must match the registered one. A
// second ballot from the same credential replaces the first, but a
// ballot already cast is refused with ErrDuplicateBallot.
func (b *Box) Cast(ctx context.Context, ballot *belenios.Ballot, weight int) (string, error) {
	if err := b.verifier.CheckBallot(ballot); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRejected, err)
	}
	cred := ballot.Signature.PublicKey.String()
	registered := 1
	if b.creds != nil {
		w, ok := b.creds[cred]
		if !ok {
			return "", ErrUnknownCredential
		}
		registered = w
		if weight != 0 && weight != registered {
			return "", fmt.Errorf("%w: weight %d, credential registered with %d", belenios.ErrRange, weight, registered)
		}
	}
	if weight == 0 {
		weight = registered
	}
	if weight < 1 {
		return "", fmt.Errorf("%w: weight %d must be positive", belenios.ErrRange, weight)
	}
	data, err := belenios.CanonicalJSON.Marshal(ballot)
	if err != nil {
		return "", err
	}
	rec := &Record{
		Tracker:    belenios.HashBytes(data),
		Credential: cred,
		Weight:     weight,
		Ballot:     data,
		CastAt:     time.Now().Unix(),
	}
	replaced, err := b.store.Put(ctx, rec)
	if err != nil {
		return "", err
	}
	ev := log.Info().Str("tracker", rec.Tracker).Int("weight", weight)
	if replaced != "" {
		ev = ev.Str("replaced", replaced)
	}
	ev.Msg("Ballot accepted")
	return rec.Tracker, nil
}

// Ballots visits every live ballot in cast order.
func (b *Box) Ballots(ctx context.Context, fn func(tracker string, wb *belenios.WeightedBallot) error) error {
	return b.store.Each(ctx, func(rec *Record) error {
		ballot := new(belenios.Ballot)
		if err := json.Unmarshal(rec.Ballot, ballot); err != nil {
			return fmt.Errorf("stored ballot %s: %w", rec.Tracker, err)
		}
		return fn(rec.Tracker, &belenios.WeightedBallot{Weight: rec.Weight, Ballot: ballot})
	})
}

// Get returns the ballot behind a tracker.
func (b *Box) Get(ctx context.Context, tracker string) (*belenios.WeightedBallot, error) {
	rec, err := b.store.Get(ctx, tracker)
	if err != nil {
		return nil, err
	}
	ballot := new(belenios.Ballot)
	if err := json.Unmarshal(rec.Ballot, ballot); err != nil {
		return nil, fmt.Errorf("stored ballot %s: %w", rec.Tracker, err)
	}
	return &belenios.WeightedBallot{Weight: rec.Weight, Ballot: ballot}, nil
}

// Count of live ballots.
func (b *Box) Count(ctx context.Context) (int, error) {
	return b.store.Count(ctx)
}

// Export writes every live ballot with its weight as one JSON line,
// in cast order, and returns how many were written.
func (b *Box) Export(ctx context.Context, w io.Writer) (n int, err error) {
	err = b.Ballots(ctx, func(_ string, wb *belenios.WeightedBallot) error {
		if err := belenios.CanonicalJSON.Encode(w, wb); err != nil {
			return err
		}
		n++
		_, err := io.WriteString(w, "\n")
		return err
	})
	return n, err
}

// Tally the whole box.
func (b *Box) Tally(ctx context.Context, workers int) (belenios.EncryptedTally, int, error) {
	var all []*belenios.WeightedBallot
	err := b.Ballots(ctx, func(_ string, wb *belenios.WeightedBallot) error {
		all = append(all, wb)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return belenios.TallyParallel(ctx, b.verifier.Election(), all, workers)
}

func (b *Box) Close() error {
	return b.store.Close()
}
