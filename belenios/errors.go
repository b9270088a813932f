package belenios

import (
	"errors"

	"github.com/thechriswalker/go-belenios/crypto"
)

// Errors are grouped by what went wrong so callers can decide with
// errors.Is whether it is bad input or a bad ballot.
var (
	// ErrStructure is a shape mismatch between data and election:
	// question counts, choice counts, proof list lengths.
	ErrStructure = errors.New("structural mismatch")
	// ErrRange is a vote that breaks the question's rules.
	ErrRange = errors.New("vote out of range")
	// ErrFormat is unparseable input.
	ErrFormat = crypto.ErrFormat
	// ErrInvalidProof is a proof or signature that does not verify.
	ErrInvalidProof = errors.New("invalid proof")
	// ErrElectionMismatch is data that belongs to another election.
	ErrElectionMismatch = errors.New("election mismatch")
	// ErrDiscreteLog is a decrypted value outside the expected bound.
	ErrDiscreteLog = errors.New("tally value not recoverable")
)
