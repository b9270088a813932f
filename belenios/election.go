package belenios

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	big "github.com/ncw/gmp"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

// Template is the part of an election the administrator writes by hand.
type Template struct {
	Description         string      `json:"description"`
	Name                string      `json:"name"`
	Questions           []*Question `json:"questions"`
	Administrator       string      `json:"administrator,omitempty"`
	CredentialAuthority string      `json:"credential_authority,omitempty"`
}

// NewElection fills in the template with the group, the combined key and
// the uuid. An empty id gets a random one.
func NewElection(tpl *Template, id string, grp *elgamal.Group, y *big.Int) (*Election, error) {
	if id == "" {
		id = uuid.NewString()
	}
	e := &Election{
		Description:         tpl.Description,
		Name:                tpl.Name,
		PublicKey:           &WrappedPublicKey{Group: grp, Y: y},
		Questions:           tpl.Questions,
		UUID:                id,
		Administrator:       tpl.Administrator,
		CredentialAuthority: tpl.CredentialAuthority,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// ReadElection parses an election file. It does not Validate the group.
func ReadElection(r io.Reader) (*Election, error) {
	e := new(Election)
	if err := json.NewDecoder(r).Decode(e); err != nil {
		return nil, fmt.Errorf("%w: election: %v", ErrFormat, err)
	}
	if e.PublicKey == nil {
		return nil, fmt.Errorf("%w: election has no public key", ErrStructure)
	}
	return e, nil
}

// ReadTemplate parses an election template.
func ReadTemplate(r io.Reader) (*Template, error) {
	tpl := new(Template)
	if err := json.NewDecoder(r).Decode(tpl); err != nil {
		return nil, fmt.Errorf("%w: template: %v", ErrFormat, err)
	}
	return tpl, nil
}
