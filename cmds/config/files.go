package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/thechriswalker/go-belenios/belenios"
)

// The well known files in an election directory.
const (
	ElectionFile = "election.json"
	TrusteesFile = "trustees.json"
	BallotsFile  = "ballots.jsonl"
	PartialsFile = "partial_decryptions.jsonl"
	ResultFile   = "result.json"
	PubCredsFile = "public_creds.txt"
)

// Fatal logs and exits.
func Fatal(err error, msg string) {
	log.Fatal().Err(err).Msg(msg)
}

func ReadJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v in canonical form with a final newline.
func WriteJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := PrintJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// PrintJSON writes v in canonical form with a final newline.
func PrintJSON(w io.Writer, v interface{}) error {
	if err := belenios.CanonicalJSON.Encode(w, v); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// ReadJSONLines calls fn with each non empty line of the file.
func ReadJSONLines(path string, fn func(line int, data []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	// ballots are big, give the scanner room
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := fn(n, sc.Bytes()); err != nil {
			return fmt.Errorf("%s:%d: %w", path, n, err)
		}
	}
	return sc.Err()
}

// AppendJSONLine adds v as one line at the end of the file.
func AppendJSONLine(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := PrintJSON(f, v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *Config) Election() (*belenios.Election, error) {
	f, err := os.Open(c.Path(ElectionFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return belenios.ReadElection(f)
}

func (c *Config) Trustees() ([]*belenios.TrusteePublicKey, error) {
	f, err := os.Open(c.Path(TrusteesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return belenios.ReadTrustees(f)
}

// Ballots reads a ballots file, one ballot per line. A line is either
// {"weight":n,"ballot":{..}} as written by box export, or a bare ballot
// counted with weight 1.
func (c *Config) Ballots(path string) ([]*belenios.WeightedBallot, error) {
	if path == "" {
		path = c.Path(BallotsFile)
	}
	var ballots []*belenios.WeightedBallot
	err := ReadJSONLines(path, func(_ int, data []byte) error {
		wb := new(belenios.WeightedBallot)
		if err := json.Unmarshal(data, wb); err != nil {
			return err
		}
		ballots = append(ballots, wb)
		return nil
	})
	return ballots, err
}

// Unweighted strips the weights, for verification.
func Unweighted(wbs []*belenios.WeightedBallot) []*belenios.Ballot {
	ballots := make([]*belenios.Ballot, len(wbs))
	for i, wb := range wbs {
		ballots[i] = wb.Ballot
	}
	return ballots
}

// Partials reads the partial decryptions file, one per line in trustee order.
func (c *Config) Partials(path string) ([]*belenios.PartialDecryption, error) {
	if path == "" {
		path = c.Path(PartialsFile)
	}
	var partials []*belenios.PartialDecryption
	err := ReadJSONLines(path, func(_ int, data []byte) error {
		pd := new(belenios.PartialDecryption)
		if err := json.Unmarshal(data, pd); err != nil {
			return err
		}
		partials = append(partials, pd)
		return nil
	})
	return partials, err
}
