package belenios

import (
	"fmt"
	"io"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// CreatePartialDecryption is one trustee's share of decrypting the tally:
// alpha^x for every slot, each with its proof.
func CreatePartialDecryption(rnd io.Reader, grp *elgamal.Group, key *TrusteeKeyPair, tally EncryptedTally) (*PartialDecryption, error) {
	sk := key.SecretKey(grp)
	pd := &PartialDecryption{
		DecryptionFactors: make([]crypto.BigIntSlice, len(tally)),
		DecryptionProofs:  make([][]*elgamal.Proof, len(tally)),
	}
	for i, row := range tally {
		pd.DecryptionFactors[i] = make(crypto.BigIntSlice, len(row))
		pd.DecryptionProofs[i] = make([]*elgamal.Proof, len(row))
		for j, ct := range row {
			factor, proof, err := sk.PartialDecrypt(rnd, ct)
			if err != nil {
				return nil, fmt.Errorf("tally[%d][%d]: %w", i, j, err)
			}
			pd.DecryptionFactors[i][j] = factor
			pd.DecryptionProofs[i][j] = proof
		}
	}
	return pd, nil
}

// VerifyPartialDecryption checks every factor was made with the secret
// behind the trustee's public key.
func VerifyPartialDecryption(grp *elgamal.Group, trustee *TrusteePublicKey, tally EncryptedTally, pd *PartialDecryption) error {
	if trustee == nil {
		return fmt.Errorf("%w: missing trustee", ErrStructure)
	}
	if err := checkPartialShape(tally, pd); err != nil {
		return err
	}
	pk := trustee.Key(grp)
	for i, row := range tally {
		for j, ct := range row {
			if err := pk.VerifyPartialDecryption(ct, pd.DecryptionFactors[i][j], pd.DecryptionProofs[i][j]); err != nil {
				return fmt.Errorf("%w: trustee %q tally[%d][%d]: %v", ErrInvalidProof, trustee.ID, i, j, err)
			}
		}
	}
	return nil
}

func checkPartialShape(tally EncryptedTally, pd *PartialDecryption) error {
	if pd == nil {
		return fmt.Errorf("%w: missing partial decryption", ErrStructure)
	}
	if len(pd.DecryptionFactors) != len(tally) || len(pd.DecryptionProofs) != len(tally) {
		return fmt.Errorf("%w: partial decryption has wrong number of questions", ErrStructure)
	}
	for i, row := range tally {
		if len(pd.DecryptionFactors[i]) != len(row) || len(pd.DecryptionProofs[i]) != len(row) {
			return fmt.Errorf("%w: partial decryption question %d has wrong number of slots", ErrStructure, i)
		}
	}
	return nil
}

// CombinePartialDecryptions recovers the counts. Every trustee's share
// must be present, and no count can exceed numTallied.
func CombinePartialDecryptions(grp *elgamal.Group, tally EncryptedTally, partials []*PartialDecryption, numTallied int) ([][]int, error) {
	if len(partials) == 0 {
		return nil, fmt.Errorf("%w: no partial decryptions", ErrStructure)
	}
	if numTallied < 0 {
		return nil, fmt.Errorf("%w: negative number of tallied ballots %d", ErrStructure, numTallied)
	}
	for _, pd := range partials {
		if err := checkPartialShape(tally, pd); err != nil {
			return nil, err
		}
	}
	// first unblind everything, so the sparse table knows what to look for.
	plain := make([][]*big.Int, len(tally))
	var targets []*big.Int
	for i, row := range tally {
		plain[i] = make([]*big.Int, len(row))
		for j, ct := range row {
			factors := make([]*big.Int, len(partials))
			for k, pd := range partials {
				factors[k] = pd.DecryptionFactors[i][j]
			}
			gm, err := grp.Unblind(ct, grp.CombineFactors(factors...))
			if err != nil {
				return nil, fmt.Errorf("%w: tally[%d][%d]: %v", ErrStructure, i, j, err)
			}
			plain[i][j] = gm
			targets = append(targets, gm)
		}
	}

	table := elgamal.NewDiscreteLogTable(grp, uint64(numTallied), targets)
	result := make([][]int, len(tally))
	for i, row := range plain {
		result[i] = make([]int, len(row))
		for j, gm := range row {
			m, err := table.Lookup(gm)
			if err != nil {
				return nil, fmt.Errorf("%w: tally[%d][%d]: %v", ErrDiscreteLog, i, j, err)
			}
			result[i][j] = int(m)
		}
	}
	return result, nil
}
