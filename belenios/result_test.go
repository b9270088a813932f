package belenios

import (
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultTwoTrusteesMatchesCombinedKey(t *testing.T) {
	s := newSetup(t, 2, simpleQuestion(), blankQuestion())
	ballots := []*Ballot{
		castBallot(t, s.election, []int{1, 0, 0}, []int{0, 1, 1, 0}),
		castBallot(t, s.election, []int{0, 0, 1}, []int{1, 0, 0, 0}),
		castBallot(t, s.election, []int{0, 0, 1}, []int{0, 0, 1, 1}),
	}
	tally, err := Tally(s.election, ballots)
	require.NoError(t, err)

	split := decryptResult(t, s, tally, len(ballots))
	assert.Equal(t, [][]int{{1, 0, 2}, {1, 1, 2, 1}}, split.Result)

	// one trustee holding x1 + x2 has the same public key
	x := new(big.Int).Add(s.trustees[0].PrivateKey, s.trustees[1].PrivateKey)
	x.Mod(x, testGroup.Q)
	single, err := DeriveTrusteeKeyPair(nil, testGroup, x)
	require.NoError(t, err)
	require.Equal(t, 0, single.PublicKey.PublicKey.Cmp(s.election.PublicKey.Y))

	combined := decryptResult(t, &testSetup{election: s.election, trustees: []*TrusteeKeyPair{single}}, tally, len(ballots))
	assert.Equal(t, split.Result, combined.Result)
}

func TestResultRejectsWrongKey(t *testing.T) {
	s := newSetup(t, 2, simpleQuestion())
	tally, err := Tally(s.election, []*Ballot{castBallot(t, s.election, []int{0, 1, 0})})
	require.NoError(t, err)

	impostor, err := GenTrusteeKey(nil, testGroup)
	require.NoError(t, err)
	// factors from the wrong secret, presented as the real trustee
	bad, err := CreatePartialDecryption(nil, testGroup, impostor, tally)
	require.NoError(t, err)
	err = VerifyPartialDecryption(testGroup, s.trustees[0].PublicKey, tally, bad)
	assert.ErrorIs(t, err, ErrInvalidProof)

	good, err := CreatePartialDecryption(nil, testGroup, s.trustees[1], tally)
	require.NoError(t, err)
	_, err = CreateResult(s.election, s.publicTrustees(), tally, 1, []*PartialDecryption{bad, good})
	assert.ErrorIs(t, err, ErrInvalidProof)

	// missing a trustee altogether
	_, err = CreateResult(s.election, s.publicTrustees(), tally, 1, []*PartialDecryption{good})
	assert.ErrorIs(t, err, ErrStructure)

	// a trustee set that is not the election's
	_, err = CreateResult(s.election, []*TrusteePublicKey{impostor.PublicKey}, tally, 1, []*PartialDecryption{bad})
	assert.ErrorIs(t, err, ErrElectionMismatch)
}

func TestResultBoundTooSmall(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	ballots := []*Ballot{
		castBallot(t, s.election, []int{1, 0, 0}),
		castBallot(t, s.election, []int{1, 0, 0}),
	}
	tally, err := Tally(s.election, ballots)
	require.NoError(t, err)

	pd, err := CreatePartialDecryption(nil, testGroup, s.trustees[0], tally)
	require.NoError(t, err)
	_, err = CombinePartialDecryptions(testGroup, tally, []*PartialDecryption{pd}, 1)
	assert.ErrorIs(t, err, ErrDiscreteLog)

	counts, err := CombinePartialDecryptions(testGroup, tally, []*PartialDecryption{pd}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 0, 0}}, counts)
}

func TestResultNegativeCount(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	tally, err := Tally(s.election, []*Ballot{castBallot(t, s.election, []int{1, 0, 0})})
	require.NoError(t, err)
	pd, err := CreatePartialDecryption(nil, testGroup, s.trustees[0], tally)
	require.NoError(t, err)

	_, err = CombinePartialDecryptions(testGroup, tally, []*PartialDecryption{pd}, -1)
	assert.ErrorIs(t, err, ErrStructure)
	_, err = CreateResult(s.election, s.publicTrustees(), tally, -1, []*PartialDecryption{pd})
	assert.ErrorIs(t, err, ErrStructure)
}

func TestVerifyPartialDecryptionBadTrustee(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	tally, err := Tally(s.election, []*Ballot{castBallot(t, s.election, []int{0, 0, 1})})
	require.NoError(t, err)
	pd, err := CreatePartialDecryption(nil, testGroup, s.trustees[0], tally)
	require.NoError(t, err)

	assert.ErrorIs(t, VerifyPartialDecryption(testGroup, nil, tally, pd), ErrStructure)
	keyless := &TrusteePublicKey{ID: s.trustees[0].PublicKey.ID}
	assert.ErrorIs(t, VerifyPartialDecryption(testGroup, keyless, tally, pd), ErrInvalidProof)
	assert.NoError(t, VerifyPartialDecryption(testGroup, s.trustees[0].PublicKey, tally, pd))
}
