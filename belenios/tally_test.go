package belenios

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

func tallyEqual(t *testing.T, expected, actual EncryptedTally) {
	t.Helper()
	require.Len(t, actual, len(expected))
	for i := range expected {
		require.Len(t, actual[i], len(expected[i]))
		for j := range expected[i] {
			assert.True(t, expected[i][j].Equals(actual[i][j]), "tally[%d][%d]", i, j)
		}
	}
}

func TestTallySingleBallot(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion(), blankQuestion())
	b := castBallot(t, s.election, []int{0, 0, 1}, []int{0, 1, 0, 1})

	tally, err := Tally(s.election, []*Ballot{b})
	require.NoError(t, err)
	tallyEqual(t, EncryptedTally{b.Answers[0].Choices, b.Answers[1].Choices}, tally)
}

func TestTallyEmpty(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	tally, err := Tally(s.election, nil)
	require.NoError(t, err)
	for _, ct := range tally[0] {
		assert.True(t, ct.Equals(elgamal.Neutral()))
	}
	res := decryptResult(t, s, tally, 0)
	assert.Equal(t, [][]int{{0, 0, 0}}, res.Result)
}

func TestTallyOrderIndependent(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	ballots := []*Ballot{
		castBallot(t, s.election, []int{1, 0, 0}),
		castBallot(t, s.election, []int{0, 1, 0}),
		castBallot(t, s.election, []int{0, 1, 0}),
		castBallot(t, s.election, []int{0, 0, 0}),
	}
	forward, err := Tally(s.election, ballots)
	require.NoError(t, err)

	reversed := make([]*Ballot, len(ballots))
	for i, b := range ballots {
		reversed[len(ballots)-1-i] = b
	}
	backward, err := Tally(s.election, reversed)
	require.NoError(t, err)
	tallyEqual(t, forward, backward)

	weighted := make([]*WeightedBallot, len(ballots))
	for i, b := range ballots {
		weighted[i] = &WeightedBallot{Weight: 1, Ballot: b}
	}
	parallel, n, err := TallyParallel(context.Background(), s.election, weighted, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	tallyEqual(t, forward, parallel)
}

func TestTallyWeighted(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	weighted := []*WeightedBallot{
		{Weight: 10, Ballot: castBallot(t, s.election, []int{1, 0, 0})},
		{Weight: 20, Ballot: castBallot(t, s.election, []int{0, 1, 0})},
		{Weight: 30, Ballot: castBallot(t, s.election, []int{0, 0, 1})},
	}
	tally, n, err := TallyWeighted(s.election, weighted)
	require.NoError(t, err)
	assert.Equal(t, 60, n)

	res := decryptResult(t, s, tally, n)
	assert.Equal(t, [][]int{{10, 20, 30}}, res.Result)
	assert.Equal(t, 60, res.NumTallied)
}

func TestTallyStructureMismatch(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	other := newSetup(t, 1, simpleQuestion(), blankQuestion())
	b := castBallot(t, other.election, []int{1, 0, 0}, []int{1, 0, 0, 0})

	_, err := Tally(s.election, []*Ballot{b})
	assert.ErrorIs(t, err, ErrStructure)

	b.Answers = b.Answers[1:]
	_, err = Tally(s.election, []*Ballot{b})
	assert.ErrorIs(t, err, ErrStructure)

	_, _, err = TallyWeighted(s.election, []*WeightedBallot{{Weight: 0, Ballot: castBallot(t, s.election, []int{1, 0, 0})}})
	assert.ErrorIs(t, err, ErrRange)
}

func TestWeightedBallotJSON(t *testing.T) {
	s := newSetup(t, 1, simpleQuestion())
	b := castBallot(t, s.election, []int{0, 1, 0})
	bare, err := CanonicalJSON.Marshal(b)
	require.NoError(t, err)
	weighted, err := CanonicalJSON.Marshal(&WeightedBallot{Weight: 4, Ballot: b})
	require.NoError(t, err)
	assert.Equal(t, `{"weight":4,"ballot":`+string(bare)+`}`, string(weighted))

	wb := new(WeightedBallot)
	require.NoError(t, json.Unmarshal(weighted, wb))
	assert.Equal(t, 4, wb.Weight)
	assert.True(t, VerifyBallot(s.election, wb.Ballot))

	// a bare ballot counts once
	wb = new(WeightedBallot)
	require.NoError(t, json.Unmarshal(bare, wb))
	assert.Equal(t, 1, wb.Weight)
	assert.True(t, VerifyBallot(s.election, wb.Ballot))

	err = json.Unmarshal([]byte(`{"weight":0,"ballot":`+string(bare)+`}`), new(WeightedBallot))
	assert.ErrorIs(t, err, ErrRange)
}
