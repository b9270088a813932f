package ballotbox

import (
	"context"
	"errors"
)

var (
	// ErrBallotMissing should be returned from Storage.Get for unknown trackers
	ErrBallotMissing = errors.New("Ballot Not Found")
	// ErrDuplicateBallot is returned from Storage.Put for a tracker that
	// was stored before, live or replaced.
	ErrDuplicateBallot = errors.New("Ballot Already Cast")
)

// Record is one accepted ballot as stored.
type Record struct {
	Tracker    string // hash of the ballot bytes
	Credential string // decimal public credential, one live record each
	Weight     int
	Ballot     []byte // canonical JSON
	CastAt     int64  // unix seconds
}

// Storage keeps the ballot box contents. Implementations need to be
// safe for concurrent use.
type Storage interface {
	// Put stores the record, replacing any record with the same
	// credential. It returns the tracker of the replaced record, if any.
	// Trackers are never reused, so an old ballot cannot be replayed
	// over a newer one.
	Put(ctx context.Context, rec *Record) (replaced string, err error)
	// Get only finds live records.
	Get(ctx context.Context, tracker string) (*Record, error)
	// Each visits the live records in the order they were cast.
	Each(ctx context.Context, fn func(*Record) error) error
	Count(ctx context.Context) (int, error)
	Close() error
}
