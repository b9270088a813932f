package credential

import (
	"encoding/json"

	"github.com/thechriswalker/go-belenios/crypto"
)

type credentialsJSON struct {
	PrivateCred string        `json:"private_cred"`
	PublicCred  crypto.BigInt `json:"public_cred"`
}

func (c *Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(credentialsJSON{
		PrivateCred: c.PrivateCred,
		PublicCred:  crypto.BigInt{Int: c.PublicCred},
	})
}

func (c *Credentials) UnmarshalJSON(b []byte) error {
	var v credentialsJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	c.PrivateCred = v.PrivateCred
	c.PublicCred = v.PublicCred.Int
	return nil
}
