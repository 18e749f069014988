// Package blockbreak implements chosen-plaintext and padding-oracle attacks
// against the ECB, CBC and CTR modes of the crypto package. Every attack
// talks to its target only through one of the small oracle interfaces
// declared here and never sees the key.
package blockbreak

import (
	"errors"
	"io"
	"log"

	"github.com/manelmontilla/blockbreak/crypto"
)

var (
	// ErrInvalidCiphertext is returned when the ciphertext passed to an
	// attack is malformed. It is the same error the crypto package returns.
	ErrInvalidCiphertext = crypto.ErrInvalidCiphertext

	// ErrSearchExhausted is returned when no candidate matched. It means the
	// oracle does not behave the way the attack assumes.
	ErrSearchExhausted = errors.New("search exhausted")

	// ErrNotECB is returned by attacks that need an ECB oracle when no
	// repeated block shows up.
	ErrNotECB = errors.New("oracle is not using ECB mode")

	// ErrNoLeak is returned by RecoverIVKey when the validator accepts the
	// tampered ciphertext and so leaks nothing.
	ErrNoLeak = errors.New("validator leaked no plaintext")

	// DefaultBlockSize defines the length in bytes of the block cipher.
	DefaultBlockSize = 16

	// DefaultWorkers the maximun number of workers making queries
	// concurrently to a padding oracle for the same byte.
	DefaultWorkers = 20

	// MaxProbeLen bounds the attacker input used while measuring an oracle.
	MaxProbeLen = 256
)

// Encrypter is a chosen-plaintext oracle. It returns the encryption of p
// together with whatever secret material the oracle adds around it.
type Encrypter interface {
	Encrypt(p []byte) ([]byte, error)
}

// PaddingChecker is a CBC padding oracle. It reports whether c, decrypted
// with iv, has valid PKCS#7 padding. A non nil error means the oracle could
// not be queried, not that the padding is wrong.
type PaddingChecker interface {
	CheckPadding(iv, c []byte) (bool, error)
}

// Validator accepts or rejects a ciphertext. The error it returns for a
// rejected message may carry the offending plaintext, see RecoverIVKey.
type Validator interface {
	Validate(c []byte) error
}

// Editor rewrites the plaintext of a CTR ciphertext at offset and returns the
// new ciphertext.
type Editor interface {
	Edit(c []byte, offset int, p []byte) ([]byte, error)
}

// EncrypterFunc adapts a plain function to the Encrypter interface.
type EncrypterFunc func(p []byte) ([]byte, error)

// Encrypt calls f(p).
func (f EncrypterFunc) Encrypt(p []byte) ([]byte, error) { return f(p) }

func discardLogger(l *log.Logger) *log.Logger {
	if l != nil {
		return l
	}
	return log.New(io.Discard, "", 0)
}
