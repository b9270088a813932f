package ballotbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-belenios/belenios"
	"github.com/thechriswalker/go-belenios/credential"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

var grp = elgamal.Belenios2048()

const uuid = "box-test-election"

type fixture struct {
	election *belenios.Election
	trustee  *belenios.TrusteeKeyPair
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kp, err := belenios.GenTrusteeKey(nil, grp)
	require.NoError(t, err)
	e, err := belenios.NewElection(&belenios.Template{
		Name: "box",
		Questions: []*belenios.Question{{
			Question: "?",
			Answers:  []string{"yes", "no"},
			Min:      1,
			Max:      1,
		}},
	}, uuid, grp, kp.PublicKey.PublicKey)
	require.NoError(t, err)
	return &fixture{election: e, trustee: kp}
}

func (f *fixture) vote(t *testing.T, cred string, votes ...int) *belenios.Ballot {
	t.Helper()
	b, err := belenios.CreateBallot(nil, f.election, cred, [][]int{votes})
	require.NoError(t, err)
	return b
}

func newCred(t *testing.T) *credential.Credentials {
	t.Helper()
	c, err := credential.Generate(nil, uuid, grp)
	require.NoError(t, err)
	return c
}

func storages(t *testing.T) map[string]func() Storage {
	return map[string]func() Storage{
		"memory": func() Storage { return NewMemoryStorage() },
		"sqlite": func() Storage {
			s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "box.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestBoxCastAndTally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for name, open := range storages(t) {
		t.Run(name, func(t *testing.T) {
			box, err := Open(f.election, open())
			require.NoError(t, err)
			defer box.Close()

			alice, bob := newCred(t), newCred(t)
			first, err := box.Cast(ctx, f.vote(t, alice.PrivateCred, 1, 0), 0)
			require.NoError(t, err)
			_, err = box.Cast(ctx, f.vote(t, bob.PrivateCred, 1, 0), 3)
			require.NoError(t, err)

			// alice votes again
			second, err := box.Cast(ctx, f.vote(t, alice.PrivateCred, 0, 1), 0)
			require.NoError(t, err)
			assert.NotEqual(t, first, second)

			n, err := box.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			_, err = box.Get(ctx, first)
			assert.ErrorIs(t, err, ErrBallotMissing)
			wb, err := box.Get(ctx, second)
			require.NoError(t, err)
			assert.Equal(t, 1, wb.Weight)

			var order []string
			require.NoError(t, box.Ballots(ctx, func(tracker string, _ *belenios.WeightedBallot) error {
				order = append(order, tracker)
				return nil
			}))
			assert.Equal(t, second, order[1])

			tally, total, err := box.Tally(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, 4, total)

			pd, err := belenios.CreatePartialDecryption(nil, grp, f.trustee, tally)
			require.NoError(t, err)
			res, err := belenios.CreateResult(f.election, []*belenios.TrusteePublicKey{f.trustee.PublicKey}, tally, total, []*belenios.PartialDecryption{pd})
			require.NoError(t, err)
			assert.Equal(t, [][]int{{3, 1}}, res.Result)
		})
	}
}

func TestBoxRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box, err := Open(f.election, NewMemoryStorage())
	require.NoError(t, err)

	registered, stranger := newCred(t), newCred(t)
	box.SetCredentials(map[string]int{registered.PublicCred.String(): 5})

	_, err = box.Cast(ctx, f.vote(t, stranger.PrivateCred, 1, 0), 0)
	assert.ErrorIs(t, err, ErrUnknownCredential)

	b := f.vote(t, registered.PrivateCred, 1, 0)
	b.Answers[0].Choices[0], b.Answers[0].Choices[1] = b.Answers[0].Choices[1], b.Answers[0].Choices[0]
	_, err = box.Cast(ctx, b, 0)
	assert.ErrorIs(t, err, ErrRejected)

	// the registered weight cannot be overridden
	_, err = box.Cast(ctx, f.vote(t, registered.PrivateCred, 1, 0), 1000)
	assert.ErrorIs(t, err, belenios.ErrRange)
	n, err := box.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	tracker, err := box.Cast(ctx, f.vote(t, registered.PrivateCred, 1, 0), 0)
	require.NoError(t, err)
	wb, err := box.Get(ctx, tracker)
	require.NoError(t, err)
	assert.Equal(t, 5, wb.Weight)

	_, err = box.Cast(ctx, f.vote(t, registered.PrivateCred, 0, 1), 5)
	require.NoError(t, err)
}

func TestBoxRefusesReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for name, open := range storages(t) {
		t.Run(name, func(t *testing.T) {
			box, err := Open(f.election, open())
			require.NoError(t, err)
			defer box.Close()

			alice := newCred(t)
			old := f.vote(t, alice.PrivateCred, 1, 0)
			_, err = box.Cast(ctx, old, 0)
			require.NoError(t, err)
			_, err = box.Cast(ctx, old, 0)
			assert.ErrorIs(t, err, ErrDuplicateBallot)

			newer, err := box.Cast(ctx, f.vote(t, alice.PrivateCred, 0, 1), 0)
			require.NoError(t, err)

			// the replaced ballot cannot come back over the revote
			_, err = box.Cast(ctx, old, 0)
			assert.ErrorIs(t, err, ErrDuplicateBallot)

			var live []string
			require.NoError(t, box.Ballots(ctx, func(tracker string, _ *belenios.WeightedBallot) error {
				live = append(live, tracker)
				return nil
			}))
			assert.Equal(t, []string{newer}, live)
		})
	}
}

func TestBoxExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box, err := Open(f.election, NewMemoryStorage())
	require.NoError(t, err)

	_, err = box.Cast(ctx, f.vote(t, newCred(t).PrivateCred, 1, 0), 3)
	require.NoError(t, err)
	_, err = box.Cast(ctx, f.vote(t, newCred(t).PrivateCred, 0, 1), 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := box.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	var exported []*belenios.WeightedBallot
	for _, line := range lines {
		wb := new(belenios.WeightedBallot)
		require.NoError(t, json.Unmarshal([]byte(line), wb))
		exported = append(exported, wb)
	}
	assert.Equal(t, 3, exported[0].Weight)
	assert.Equal(t, 1, exported[1].Weight)

	fromFile, total, err := belenios.TallyWeighted(f.election, exported)
	require.NoError(t, err)
	fromBox, boxTotal, err := box.Tally(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, boxTotal, total)
	assert.Equal(t, 4, total)
	for i := range fromBox {
		for j := range fromBox[i] {
			assert.True(t, fromBox[i][j].Equals(fromFile[i][j]))
		}
	}
}

func TestReadCredentials(t *testing.T) {
	a, b := newCred(t), newCred(t)
	input := fmt.Sprintf("%s\n\n%s,7\n", a.PublicCred, b.PublicCred)
	creds, err := ReadCredentials(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{a.PublicCred.String(): 1, b.PublicCred.String(): 7}, creds)

	_, err = ReadCredentials(strings.NewReader("12,0\n"))
	assert.ErrorIs(t, err, belenios.ErrFormat)
	_, err = ReadCredentials(strings.NewReader("abc\n"))
	assert.ErrorIs(t, err, belenios.ErrFormat)
}
