package elgamal

import (
	"testing"
)

func blankWitness(t *testing.T, pk *PublicKey, votes []int64) *BlankWitness {
	t.Helper()
	cts := make([]*CiphertextWithSecret, len(votes))
	sum := 0
	for i, v := range votes {
		ct, err := pk.EncryptRandom(nil, v)
		if err != nil {
			t.Fatal(err)
		}
		cts[i] = ct
		if i > 0 {
			sum += int(v)
		}
	}
	return &BlankWitness{
		Zero:    cts[0],
		Sigma:   pk.Group.CombineWithSecret(cts[1:]...),
		IsBlank: votes[0] == 1,
		Sum:     sum,
	}
}

func TestBlankAndOverallProofs(t *testing.T) {
	eg := Belenios2048()
	kp, _ := GenerateKeyPair(nil, eg)
	pk := kp.Public()
	cred := pk.Y

	for _, votes := range [][]int64{
		{1, 0, 0, 0}, // blank
		{0, 1, 0, 0},
		{0, 1, 1, 0},
	} {
		w := blankWitness(t, pk, votes)
		s := w.statement(1, 2)

		bp, err := pk.ProveBlank(nil, w, 1, 2, cred)
		if err != nil {
			t.Fatalf("%v: %v", votes, err)
		}
		if err := pk.VerifyBlank(s, bp, cred); err != nil {
			t.Logf("Blank proof for %v failed: %s", votes, err)
			t.Fail()
		}

		op, err := pk.ProveOverall(nil, w, 1, 2, cred)
		if err != nil {
			t.Fatalf("%v: %v", votes, err)
		}
		if len(op) != 3 {
			t.Fatalf("expected 3 overall branches, got %d", len(op))
		}
		if err := pk.VerifyOverall(s, op, cred); err != nil {
			t.Logf("Overall proof for %v failed: %s", votes, err)
			t.Fail()
		}

		// proofs are not interchangeable
		if err := pk.VerifyOverall(s, bp, cred); err == nil {
			t.Logf("Blank proof accepted as overall proof for %v", votes)
			t.Fail()
		}
	}
}

func TestBlankProofRefusesBadWitness(t *testing.T) {
	eg := Belenios2048()
	kp, _ := GenerateKeyPair(nil, eg)
	pk := kp.Public()

	// blank flag plus a choice
	w := blankWitness(t, pk, []int64{1, 1, 0})
	if _, err := pk.ProveBlank(nil, w, 1, 1, pk.Y); err == nil {
		t.Fatal("blank proof created for a non empty blank vote")
	}
	// too many choices
	w = blankWitness(t, pk, []int64{0, 1, 1})
	if _, err := pk.ProveOverall(nil, w, 1, 1, pk.Y); err == nil {
		t.Fatal("overall proof created for an out of range sum")
	}
}
