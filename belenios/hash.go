package belenios

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
)

type canonicalJSON struct{}

// CanonicalJSON is the serialization every digest in an election is
// taken over.
//
// The rules are simple and follow what the other Belenios tools emit:
//
//   - object keys keep their declared struct order (never sorted, the
//     election hash depends on it)
//   - no whitespace at all
//   - no HTML escaping of <, > and &
//   - big integers are decimal strings
//   - no trailing newline
var CanonicalJSON = canonicalJSON{}

// Encode the object in its canonical representation to the output stream given
func (c canonicalJSON) Encode(out io.Writer, v interface{}) error {
	b, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// Marshal returns the canonical bytes.
func (c canonicalJSON) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	// the encoder always adds a newline, we do not want it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Hash the object given in its canonical JSON representation
func (c canonicalJSON) Hash(v interface{}) (string, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(b), nil
}

// EncodeAndHash encodes the object in its canonical representation to
// the output stream and calculates the hash at the same time
func (c canonicalJSON) EncodeAndHash(out io.Writer, v interface{}) (string, error) {
	h := sha256.New()
	if err := c.Encode(io.MultiWriter(out, h), v); err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(h.Sum(nil)), nil
}

// HashBytes is the digest used throughout: SHA-256 in base64 with no padding.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return base64.RawStdEncoding.EncodeToString(sum[:])
}

// ElectionHash is what every ballot carries to say which election it is for.
func ElectionHash(e *Election) (string, error) {
	return CanonicalJSON.Hash(e)
}
