package elgamal

import (
	"encoding/json"
	"fmt"

	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto"
)

// Having this file is a bit of a shame.
//
// Go natively JSON encodes big.Int values as json numbers, which breaks
// every other implementation once the numbers get big. The wire format
// wants decimal strings, and the field order matters because the
// election hash is taken over the serialized bytes.
//
// So this file explicitly defines the JSON shape of each type through a
// small struct of strings, which keeps the field order fixed.
//
/////////////////// Helpers ///////////////////

func bigIntField(name, s string) (*big.Int, error) {
	n, err := crypto.BigIntFromJSON(s)
	if err != nil {
		return nil, fmt.Errorf("field '%s': %w", name, err)
	}
	return n, nil
}

/////////////////// type Group ///////////////////

type groupJSON struct {
	G string `json:"g"`
	P string `json:"p"`
	Q string `json:"q"`
}

func (grp *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		G: crypto.BigIntToJSON(grp.G),
		P: crypto.BigIntToJSON(grp.P),
		Q: crypto.BigIntToJSON(grp.Q),
	})
}

// UnmarshalJSON reads the parameters but does not Validate them, that
// is slow and callers decide when they need it.
func (grp *Group) UnmarshalJSON(b []byte) (err error) {
	var v groupJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if grp.G, err = bigIntField("g", v.G); err != nil {
		return err
	}
	if grp.P, err = bigIntField("p", v.P); err != nil {
		return err
	}
	grp.Q, err = bigIntField("q", v.Q)
	return err
}

/////////////////// type Ciphertext ///////////////////

type ciphertextJSON struct {
	Alpha string `json:"alpha"`
	Beta  string `json:"beta"`
}

func (ct *Ciphertext) MarshalJSON() ([]byte, error) {
	return json.Marshal(ciphertextJSON{
		Alpha: crypto.BigIntToJSON(ct.Alpha),
		Beta:  crypto.BigIntToJSON(ct.Beta),
	})
}

func (ct *Ciphertext) UnmarshalJSON(b []byte) (err error) {
	var v ciphertextJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if ct.Alpha, err = bigIntField("alpha", v.Alpha); err != nil {
		return err
	}
	ct.Beta, err = bigIntField("beta", v.Beta)
	return err
}

/////////////////// type Proof ///////////////////

type proofJSON struct {
	Challenge string `json:"challenge"`
	Response  string `json:"response"`
}

func (p *Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(proofJSON{
		Challenge: crypto.BigIntToJSON(p.Challenge),
		Response:  crypto.BigIntToJSON(p.Response),
	})
}

func (p *Proof) UnmarshalJSON(b []byte) (err error) {
	var v proofJSON
	if err = json.Unmarshal(b, &v); err != nil {
		return err
	}
	if p.Challenge, err = bigIntField("challenge", v.Challenge); err != nil {
		return err
	}
	p.Response, err = bigIntField("response", v.Response)
	return err
}
