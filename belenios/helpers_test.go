package belenios

import (
	"sync/atomic"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-belenios/credential"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

const testUUID = "deT9e32LvYeDzg"

var testGroup = elgamal.Belenios2048()

type testSetup struct {
	election *Election
	trustees []*TrusteeKeyPair
}

func (s *testSetup) publicTrustees() []*TrusteePublicKey {
	pubs := make([]*TrusteePublicKey, len(s.trustees))
	for i, t := range s.trustees {
		pubs[i] = t.PublicKey
	}
	return pubs
}

func newSetup(t *testing.T, numTrustees int, questions ...*Question) *testSetup {
	t.Helper()
	s := &testSetup{}
	for i := 0; i < numTrustees; i++ {
		kp, err := GenTrusteeKey(nil, testGroup)
		require.NoError(t, err)
		s.trustees = append(s.trustees, kp)
	}
	tpl := &Template{
		Description: "A test election",
		Name:        "Test",
		Questions:   questions,
	}
	var err error
	s.election, err = NewElection(tpl, testUUID, testGroup, CombineTrusteeKeys(testGroup, s.publicTrustees()))
	require.NoError(t, err)
	return s
}

func newCred(t *testing.T) string {
	t.Helper()
	creds, err := credential.Generate(nil, testUUID, testGroup)
	require.NoError(t, err)
	return creds.PrivateCred
}

func castBallot(t *testing.T, e *Election, votes ...[]int) *Ballot {
	t.Helper()
	b, err := CreateBallot(nil, e, newCred(t), votes)
	require.NoError(t, err)
	return b
}

func plusOne(x *big.Int) *big.Int {
	return new(big.Int).Add(x, big.NewInt(1))
}

// decryptResult runs the whole trustee side for a tally.
func decryptResult(t *testing.T, s *testSetup, tally EncryptedTally, n int) *Result {
	t.Helper()
	partials := make([]*PartialDecryption, len(s.trustees))
	for i, kp := range s.trustees {
		pd, err := CreatePartialDecryption(nil, testGroup, kp, tally)
		require.NoError(t, err)
		partials[i] = pd
	}
	res, err := CreateResult(s.election, s.publicTrustees(), tally, n, partials)
	require.NoError(t, err)
	return res
}

func simpleQuestion() *Question {
	return &Question{
		Question: "Favourite colour?",
		Answers:  []string{"Red", "Green", "Blue"},
		Min:      0,
		Max:      1,
	}
}

func blankQuestion() *Question {
	return &Question{
		Question: "Pick two",
		Answers:  []string{"A", "B", "C"},
		Blank:    true,
		Min:      1,
		Max:      2,
	}
}

func atomicAdd(n *int32) {
	atomic.AddInt32(n, 1)
}
