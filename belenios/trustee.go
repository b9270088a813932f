package belenios

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// TrusteeID is the fingerprint of a trustee public key: the first 8 hex
// characters of SHA-256 over its decimal form, upper case.
func TrusteeID(y *big.Int) string {
	sum := sha256.Sum256([]byte(y.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:8])
}

// GenTrusteeKey creates a fresh trustee key with its proof of knowledge.
func GenTrusteeKey(rnd io.Reader, grp *elgamal.Group) (*TrusteeKeyPair, error) {
	kp, err := elgamal.GenerateKeyPair(rnd, grp)
	if err != nil {
		return nil, err
	}
	return trusteeKeyPair(rnd, kp)
}

// DeriveTrusteeKeyPair rebuilds the key pair for a stored private key.
// The proof of knowledge is fresh so will not match the original.
func DeriveTrusteeKeyPair(rnd io.Reader, grp *elgamal.Group, x *big.Int) (*TrusteeKeyPair, error) {
	if x == nil || x.Sign() < 0 || x.Cmp(grp.Q) >= 0 {
		return nil, fmt.Errorf("%w: trustee private key not in [0, q-1]", ErrRange)
	}
	return trusteeKeyPair(rnd, elgamal.KeyPairForSecret(grp, x))
}

func trusteeKeyPair(rnd io.Reader, kp *elgamal.KeyPair) (*TrusteeKeyPair, error) {
	pok, err := kp.Secret().ProofOfKnowledge(rnd)
	if err != nil {
		return nil, err
	}
	y := kp.Public().Y
	return &TrusteeKeyPair{
		PublicKey: &TrusteePublicKey{
			ID:        TrusteeID(y),
			PoK:       pok,
			PublicKey: y,
		},
		PrivateKey: kp.Secret().X,
	}, nil
}

// SecretKey for decrypting with this trustee key.
func (t *TrusteeKeyPair) SecretKey(grp *elgamal.Group) *elgamal.SecretKey {
	return &elgamal.SecretKey{
		PublicKey: t.PublicKey.Key(grp),
		X:         t.PrivateKey,
	}
}

// Key is the trustee key in the election group.
func (t *TrusteePublicKey) Key(grp *elgamal.Group) *elgamal.PublicKey {
	return &elgamal.PublicKey{Group: grp, Y: t.PublicKey}
}

// Verify checks the proof of knowledge and the fingerprint.
func (t *TrusteePublicKey) Verify(grp *elgamal.Group) error {
	if t.PublicKey == nil {
		return fmt.Errorf("%w: trustee %q has no public key", ErrStructure, t.ID)
	}
	if err := t.Key(grp).VerifyProof(t.PoK); err != nil {
		return fmt.Errorf("%w: trustee %q: %v", ErrInvalidProof, t.ID, err)
	}
	if id := TrusteeID(t.PublicKey); id != t.ID {
		return fmt.Errorf("%w: trustee id %q does not match key fingerprint %q", ErrInvalidProof, t.ID, id)
	}
	return nil
}

// CombineTrusteeKeys is the election key: the product of every trustee key.
func CombineTrusteeKeys(grp *elgamal.Group, trustees []*TrusteePublicKey) *big.Int {
	ys := make([]*big.Int, len(trustees))
	for i, t := range trustees {
		ys[i] = t.PublicKey
	}
	return elgamal.CombinePublicKeys(grp, ys...).Y
}

// trusteeKindSingle is the only kind of trustee entry we produce or
// accept. Threshold trustees use a different entry.
const trusteeKindSingle = "Single"

// ReadTrustees parses a trustees file: [["Single", {...}], ...]
func ReadTrustees(r io.Reader) ([]*TrusteePublicKey, error) {
	var entries [][]json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: trustees: %v", ErrFormat, err)
	}
	trustees := make([]*TrusteePublicKey, len(entries))
	for i, entry := range entries {
		if len(entry) != 2 {
			return nil, fmt.Errorf("%w: trustee entry %d has %d elements", ErrFormat, i, len(entry))
		}
		var kind string
		if err := json.Unmarshal(entry[0], &kind); err != nil {
			return nil, fmt.Errorf("%w: trustee entry %d: %v", ErrFormat, i, err)
		}
		if kind != trusteeKindSingle {
			return nil, fmt.Errorf("%w: trustee entry %d is %q, only %q is supported", ErrFormat, i, kind, trusteeKindSingle)
		}
		trustees[i] = new(TrusteePublicKey)
		if err := json.Unmarshal(entry[1], trustees[i]); err != nil {
			return nil, fmt.Errorf("trustee entry %d: %w", i, err)
		}
	}
	return trustees, nil
}

// WriteTrustees writes the trustees file read by ReadTrustees.
func WriteTrustees(w io.Writer, trustees []*TrusteePublicKey) error {
	entries := make([][2]interface{}, len(trustees))
	for i, t := range trustees {
		entries[i] = [2]interface{}{trusteeKindSingle, t}
	}
	return CanonicalJSON.Encode(w, entries)
}
