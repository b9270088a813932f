package belenios

import (
	"encoding/json"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto"
	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// The wire types with big integer fields carry their own JSON shape,
// see crypto/elgamal/json.go for why.

func bigIntField(name string, b crypto.BigInt) (*big.Int, error) {
	if b.Int == nil {
		return nil, fmt.Errorf("%w: field '%s' missing", ErrFormat, name)
	}
	return b.Int, nil
}

/////////////////// type WrappedPublicKey ///////////////////

type wrappedPublicKeyJSON struct {
	Group *elgamal.Group `json:"group"`
	Y     crypto.BigInt  `json:"y"`
}

func (w *WrappedPublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(wrappedPublicKeyJSON{Group: w.Group, Y: crypto.BigInt{Int: w.Y}})
}

func (w *WrappedPublicKey) UnmarshalJSON(b []byte) (err error) {
	var v wrappedPublicKeyJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Group == nil {
		return fmt.Errorf("%w: field 'group' missing", ErrFormat)
	}
	w.Group = v.Group
	w.Y, err = bigIntField("y", v.Y)
	return err
}

/////////////////// type Signature ///////////////////

type signatureJSON struct {
	PublicKey crypto.BigInt `json:"public_key"`
	Challenge crypto.BigInt `json:"challenge"`
	Response  crypto.BigInt `json:"response"`
}

func (s *Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(signatureJSON{
		PublicKey: crypto.BigInt{Int: s.PublicKey},
		Challenge: crypto.BigInt{Int: s.Challenge},
		Response:  crypto.BigInt{Int: s.Response},
	})
}

func (s *Signature) UnmarshalJSON(b []byte) (err error) {
	var v signatureJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if s.PublicKey, err = bigIntField("public_key", v.PublicKey); err != nil {
		return err
	}
	if s.Challenge, err = bigIntField("challenge", v.Challenge); err != nil {
		return err
	}
	s.Response, err = bigIntField("response", v.Response)
	return err
}

/////////////////// type TrusteePublicKey ///////////////////

type trusteePublicKeyJSON struct {
	ID        string                    `json:"id"`
	PoK       *elgamal.ProofOfKnowledge `json:"pok"`
	PublicKey crypto.BigInt             `json:"public_key"`
}

func (t *TrusteePublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(trusteePublicKeyJSON{
		ID:        t.ID,
		PoK:       t.PoK,
		PublicKey: crypto.BigInt{Int: t.PublicKey},
	})
}

func (t *TrusteePublicKey) UnmarshalJSON(b []byte) (err error) {
	var v trusteePublicKeyJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.PoK == nil {
		return fmt.Errorf("%w: field 'pok' missing", ErrFormat)
	}
	t.ID, t.PoK = v.ID, v.PoK
	t.PublicKey, err = bigIntField("public_key", v.PublicKey)
	return err
}

/////////////////// type TrusteeKeyPair ///////////////////

type trusteeKeyPairJSON struct {
	PublicKey  *TrusteePublicKey `json:"public_key"`
	PrivateKey crypto.BigInt     `json:"private_key"`
}

func (t *TrusteeKeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal(trusteeKeyPairJSON{
		PublicKey:  t.PublicKey,
		PrivateKey: crypto.BigInt{Int: t.PrivateKey},
	})
}

func (t *TrusteeKeyPair) UnmarshalJSON(b []byte) (err error) {
	var v trusteeKeyPairJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.PublicKey == nil {
		return fmt.Errorf("%w: field 'public_key' missing", ErrFormat)
	}
	t.PublicKey = v.PublicKey
	t.PrivateKey, err = bigIntField("private_key", v.PrivateKey)
	return err
}

/////////////////// type WeightedBallot ///////////////////

type weightedBallotJSON struct {
	Weight *int            `json:"weight"`
	Ballot json.RawMessage `json:"ballot"`
}

// UnmarshalJSON accepts {"weight":n,"ballot":{..}} and also a bare
// ballot, which has weight 1.
func (wb *WeightedBallot) UnmarshalJSON(b []byte) error {
	var v weightedBallotJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	wb.Weight, wb.Ballot = 1, new(Ballot)
	if v.Ballot == nil {
		return json.Unmarshal(b, wb.Ballot)
	}
	if v.Weight != nil {
		if *v.Weight < 1 {
			return fmt.Errorf("%w: weight %d must be positive", ErrRange, *v.Weight)
		}
		wb.Weight = *v.Weight
	}
	return json.Unmarshal(v.Ballot, wb.Ballot)
}
