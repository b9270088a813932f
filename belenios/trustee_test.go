package belenios

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	big "github.com/ncw/gmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

func TestTrusteeKey(t *testing.T) {
	kp, err := GenTrusteeKey(nil, testGroup)
	require.NoError(t, err)
	pub := kp.PublicKey
	assert.NoError(t, pub.Verify(testGroup))
	assert.Len(t, pub.ID, 8)
	assert.Equal(t, strings.ToUpper(pub.ID), pub.ID)

	again, err := DeriveTrusteeKeyPair(nil, testGroup, kp.PrivateKey)
	require.NoError(t, err)
	assert.Equal(t, pub.ID, again.PublicKey.ID)
	assert.Equal(t, 0, pub.PublicKey.Cmp(again.PublicKey.PublicKey))

	pub.ID = "00000000"
	assert.ErrorIs(t, pub.Verify(testGroup), ErrInvalidProof)

	_, err = DeriveTrusteeKeyPair(nil, testGroup, testGroup.Q)
	assert.ErrorIs(t, err, ErrRange)
}

func TestTrusteeKnownKey(t *testing.T) {
	x, _ := new(big.Int).SetString("47663895767201702907625612414185978205585858428381657990435036965748868986818", 10)
	c, _ := new(big.Int).SetString("63927280939860978903064758552838380017425397976503877948445018169990377905147", 10)
	r, _ := new(big.Int).SetString("61899678553699875386298524482495635368456257494822752952788876892322896717017", 10)

	y := testGroup.GExp(x)
	pub := &TrusteePublicKey{
		ID:        TrusteeID(y),
		PoK:       &elgamal.ProofOfKnowledge{Challenge: c, Response: r},
		PublicKey: y,
	}
	assert.Equal(t, "19B46B98", pub.ID)
	assert.NoError(t, pub.Verify(testGroup))
}

func TestTrusteesFile(t *testing.T) {
	var pubs []*TrusteePublicKey
	for i := 0; i < 2; i++ {
		kp, err := GenTrusteeKey(nil, testGroup)
		require.NoError(t, err)
		pubs = append(pubs, kp.PublicKey)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrustees(&buf, pubs))
	assert.True(t, strings.HasPrefix(buf.String(), `[["Single",{"id":"`))

	read, err := ReadTrustees(&buf)
	require.NoError(t, err)
	require.Len(t, read, 2)
	for i := range pubs {
		assert.Equal(t, pubs[i].ID, read[i].ID)
		assert.NoError(t, read[i].Verify(testGroup))
	}
	assert.Equal(t, 0, CombineTrusteeKeys(testGroup, read).Cmp(CombineTrusteeKeys(testGroup, pubs)))

	_, err = ReadTrustees(strings.NewReader(`[["Pedersen",{}]]`))
	assert.ErrorIs(t, err, ErrFormat)
	_, err = ReadTrustees(strings.NewReader(`[["Single"]]`))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTrusteeKeyPairJSON(t *testing.T) {
	kp, err := GenTrusteeKey(nil, testGroup)
	require.NoError(t, err)
	data, err := json.Marshal(kp)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "public_key")
	assert.Contains(t, raw, "private_key")

	var decoded TrusteeKeyPair
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0, kp.PrivateKey.Cmp(decoded.PrivateKey))
	assert.NoError(t, decoded.PublicKey.Verify(testGroup))
}
