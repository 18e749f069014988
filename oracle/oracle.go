// Package oracle implements the services the attacks in blockbreak run
// against. Each oracle is built once from a Secret, keeps it for its whole
// life and only exposes a narrow channel: an encryption, a padding check or a
// validation. Methods that return ground truth, such as Plaintext or Key, are
// there to verify an attack and are not part of any attack surface.
package oracle

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/manelmontilla/blockbreak/crypto"
)

var (
	// ErrInvalidIV is returned when an IV of the wrong size reaches an
	// oracle.
	ErrInvalidIV = errors.New("invalid iv")
)

// Secret is the state an oracle holds for one run: a key and optional
// prefix and suffix bytes. It is never modified after NewSecret.
type Secret struct {
	Key    []byte
	Prefix []byte
	Suffix []byte
}

// NewSecret generates a random key and keeps copies of prefix and suffix.
func NewSecret(prefix, suffix []byte) (*Secret, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Secret{
		Key:    key,
		Prefix: append([]byte{}, prefix...),
		Suffix: append([]byte{}, suffix...),
	}, nil
}

// NewSecretBase64 is NewSecret for a suffix given in standard base64. Line
// breaks in suffix are ignored.
func NewSecretBase64(prefix []byte, suffix string) (*Secret, error) {
	b, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(suffix, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}
	return NewSecret(prefix, b)
}

// RandomInt returns a uniform random number in [0, n).
func RandomInt(n int) (int, error) {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(r.Int64()), nil
}

// RandomPadding returns between min and max, both included, random bytes.
func RandomPadding(min, max int) ([]byte, error) {
	n, err := RandomInt(max - min + 1)
	if err != nil {
		return nil, err
	}
	return crypto.RandomBytes(min + n)
}

func concat(bs ...[]byte) []byte {
	var n int
	for _, b := range bs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}
