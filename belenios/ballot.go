package belenios

import (
	"fmt"
	"io"
	"time"

	big "github.com/ncw/gmp"
	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-belenios/credential"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// CreateBallot encrypts the votes under the election key and signs them
// with the key derived from the private credential.
//
// rawVotes has one row per question. Each row has one 0/1 entry per
// answer, with an extra leading entry when the question allows a blank
// vote: [1, 0, ..., 0] is a blank vote.
func CreateBallot(rnd io.Reader, e *Election, privateCred string, rawVotes [][]int) (*Ballot, error) {
	if e.PublicKey == nil || e.PublicKey.Group == nil {
		return nil, fmt.Errorf("%w: election has no public key", ErrStructure)
	}
	kp, err := credential.Derive(privateCred, e.UUID, e.Group())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructure, err)
	}
	return CreateBallotWithKey(rnd, e, kp, rawVotes)
}

// CreateBallotWithKey is CreateBallot for an already derived credential key.
func CreateBallotWithKey(rnd io.Reader, e *Election, kp *elgamal.KeyPair, rawVotes [][]int) (*Ballot, error) {
	start := time.Now()
	if err := checkVotes(e, rawVotes); err != nil {
		return nil, err
	}
	hash, err := ElectionHash(e)
	if err != nil {
		return nil, err
	}
	pk := e.PublicKey.PublicKey()
	cred := kp.Public().Y

	answers := make([]*Answer, len(e.Questions))
	for i, q := range e.Questions {
		if answers[i], err = encryptAnswer(rnd, pk, q, rawVotes[i], cred); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}

	sig, err := kp.Secret().Sign(rnd, signedAnswers(answers))
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("election", e.UUID).
		Int("questions", len(answers)).
		Dur("ms", time.Since(start)).
		Msg("Ballot created")
	return &Ballot{
		Answers:      answers,
		ElectionHash: hash,
		ElectionUUID: e.UUID,
		Signature: &Signature{
			PublicKey: cred,
			Challenge: sig.Challenge,
			Response:  sig.Response,
		},
	}, nil
}

// checkVotes runs before any cryptography, structure first then range.
func checkVotes(e *Election, rawVotes [][]int) error {
	if len(rawVotes) != len(e.Questions) {
		return fmt.Errorf("%w: %d questions but %d vote rows", ErrStructure, len(e.Questions), len(rawVotes))
	}
	for i, q := range e.Questions {
		if len(rawVotes[i]) != q.Slots() {
			return fmt.Errorf("%w: question %d has %d slots, vote has %d", ErrStructure, i, q.Slots(), len(rawVotes[i]))
		}
	}
	for i, q := range e.Questions {
		if err := checkRow(q, rawVotes[i]); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

func checkRow(q *Question, row []int) error {
	for j, v := range row {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: choice %d is %d, must be 0 or 1", ErrRange, j, v)
		}
	}
	if q.Blank && row[0] == 1 {
		if s := sum(row[1:]); s != 0 {
			return fmt.Errorf("%w: blank vote with %d choices made", ErrRange, s)
		}
		return nil
	}
	s := sum(row)
	if q.Blank {
		s = sum(row[1:])
	}
	if s < q.Min || s > q.Max {
		return fmt.Errorf("%w: %d choices made, need between %d and %d", ErrRange, s, q.Min, q.Max)
	}
	return nil
}

func sum(xs []int) (s int) {
	for _, x := range xs {
		s += x
	}
	return
}

func encryptAnswer(rnd io.Reader, pk *elgamal.PublicKey, q *Question, row []int, cred *big.Int) (*Answer, error) {
	cts := make([]*elgamal.CiphertextWithSecret, len(row))
	a := &Answer{
		Choices:          make([]*elgamal.Ciphertext, len(row)),
		IndividualProofs: make([][]*elgamal.Proof, len(row)),
	}
	var err error
	for j, m := range row {
		if cts[j], err = pk.EncryptRandom(rnd, int64(m)); err != nil {
			return nil, err
		}
		a.Choices[j] = cts[j].Ciphertext
		if a.IndividualProofs[j], err = pk.ProveInterval(rnd, cts[j], 0, 1, m, cred); err != nil {
			return nil, err
		}
	}

	if !q.Blank {
		all := pk.CombineWithSecret(cts...)
		a.OverallProof, err = pk.ProveInterval(rnd, all, q.Min, q.Max, sum(row), cred)
		return a, err
	}

	w := &elgamal.BlankWitness{
		Zero:    cts[0],
		Sigma:   pk.CombineWithSecret(cts[1:]...),
		IsBlank: row[0] == 1,
		Sum:     sum(row[1:]),
	}
	if a.BlankProof, err = pk.ProveBlank(rnd, w, q.Min, q.Max, cred); err != nil {
		return nil, err
	}
	if a.OverallProof, err = pk.ProveOverall(rnd, w, q.Min, q.Max, cred); err != nil {
		return nil, err
	}
	return a, nil
}
