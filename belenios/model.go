package belenios

import (
	"fmt"
	"strings"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// Question asks the voter to pick between Min and Max of the Answers.
// With Blank set the voter may instead cast an explicit blank vote.
type Question struct {
	Answers  []string `json:"answers"`
	Blank    bool     `json:"blank,omitempty"`
	Min      int      `json:"min"`
	Max      int      `json:"max"`
	Question string   `json:"question"`
}

// Slots is the number of ciphertexts an answer to this question has:
// one per answer, plus the blank flag in front when allowed.
func (q *Question) Slots() int {
	if q.Blank {
		return len(q.Answers) + 1
	}
	return len(q.Answers)
}

func (q *Question) Validate() error {
	if len(q.Answers) == 0 {
		return fmt.Errorf("question %q has no answers", q.Question)
	}
	if q.Min < 0 || q.Min > q.Max || q.Max > len(q.Answers) {
		return fmt.Errorf("question %q: need 0 <= min (%d) <= max (%d) <= %d", q.Question, q.Min, q.Max, len(q.Answers))
	}
	return nil
}

// WrappedPublicKey is the election key together with its group.
type WrappedPublicKey struct {
	Group *elgamal.Group
	Y     *big.Int
}

// PublicKey unwraps it for the crypto layer.
func (w *WrappedPublicKey) PublicKey() *elgamal.PublicKey {
	return &elgamal.PublicKey{Group: w.Group, Y: w.Y}
}

// Election is the public definition everything else refers to. The
// field order is significant, see ElectionHash.
type Election struct {
	Description         string            `json:"description"`
	Name                string            `json:"name"`
	PublicKey           *WrappedPublicKey `json:"public_key"`
	Questions           []*Question       `json:"questions"`
	UUID                string            `json:"uuid"`
	Administrator       string            `json:"administrator"`
	CredentialAuthority string            `json:"credential_authority"`
}

// Group is a shortcut to the election group.
func (e *Election) Group() *elgamal.Group {
	return e.PublicKey.Group
}

// Validate checks the election can be voted on. This includes the
// primality tests on the group so it is not free.
func (e *Election) Validate() error {
	if e.UUID == "" {
		return fmt.Errorf("%w: election has no uuid", ErrStructure)
	}
	if e.PublicKey == nil || e.PublicKey.Group == nil {
		return fmt.Errorf("%w: election has no public key", ErrStructure)
	}
	if err := e.PublicKey.Group.Validate(); err != nil {
		return fmt.Errorf("election: %w", err)
	}
	if err := e.PublicKey.PublicKey().Validate(); err != nil {
		return fmt.Errorf("election: %w", err)
	}
	if len(e.Questions) == 0 {
		return fmt.Errorf("%w: election has no questions", ErrStructure)
	}
	for i, q := range e.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrStructure, i, err)
		}
	}
	return nil
}

// Answer is the encrypted response to one question.
type Answer struct {
	Choices          []*elgamal.Ciphertext `json:"choices"`
	IndividualProofs [][]*elgamal.Proof    `json:"individual_proofs"`
	OverallProof     []*elgamal.Proof      `json:"overall_proof"`
	BlankProof       []*elgamal.Proof      `json:"blank_proof,omitempty"`
}

// Signature binds the answers to a credential.
type Signature struct {
	PublicKey *big.Int
	Challenge *big.Int
	Response  *big.Int
}

func (s *Signature) proof() *elgamal.Proof {
	return &elgamal.Proof{Challenge: s.Challenge, Response: s.Response}
}

// Ballot is what a voter submits.
type Ballot struct {
	Answers      []*Answer  `json:"answers"`
	ElectionHash string     `json:"election_hash"`
	ElectionUUID string     `json:"election_uuid"`
	Signature    *Signature `json:"signature"`
}

// signedAnswers is the signature message: every choice of every answer
// as "alpha,beta", all joined by commas.
type signedAnswers []*Answer

func (sa signedAnswers) SignatureMessage() string {
	var parts []string
	for _, a := range sa {
		for _, c := range a.Choices {
			parts = append(parts, c.Alpha.String(), c.Beta.String())
		}
	}
	return strings.Join(parts, ",")
}

var _ elgamal.Signable = signedAnswers(nil)

// WeightedBallot is a ballot from a voter who carries more than one vote.
type WeightedBallot struct {
	Weight int     `json:"weight"`
	Ballot *Ballot `json:"ballot"`
}

// EncryptedTally holds one ciphertext per question per slot.
type EncryptedTally [][]*elgamal.Ciphertext

// TrusteePublicKey is what a trustee publishes.
type TrusteePublicKey struct {
	ID        string
	PoK       *elgamal.ProofOfKnowledge
	PublicKey *big.Int
}

// TrusteeKeyPair is what a trustee keeps.
type TrusteeKeyPair struct {
	PublicKey  *TrusteePublicKey
	PrivateKey *big.Int
}

// PartialDecryption is one trustee's share of the tally decryption.
type PartialDecryption struct {
	DecryptionFactors []crypto.BigIntSlice `json:"decryption_factors"`
	DecryptionProofs  [][]*elgamal.Proof   `json:"decryption_proofs"`
}

// Result is the published outcome with everything needed to check it.
type Result struct {
	NumTallied         int                  `json:"num_tallied"`
	EncryptedTally     EncryptedTally       `json:"encrypted_tally"`
	PartialDecryptions []*PartialDecryption `json:"partial_decryptions"`
	Result             [][]int              `json:"result"`
}
