package oracle

import (
	"fmt"

	"github.com/manelmontilla/blockbreak/crypto"
)

// TextError is returned by IVKey.Validate for a message with bytes outside
// ASCII. Like a careless server, it quotes the message.
type TextError struct {
	text []byte
}

func (e *TextError) Error() string {
	return fmt.Sprintf("invalid text: %q", e.text)
}

// Plaintext returns the rejected message.
func (e *TextError) Plaintext() []byte {
	return append([]byte{}, e.text...)
}

// IVKey is the CBC user data oracle of a service that uses its key as IV.
type IVKey struct {
	key []byte
}

// NewIVKey returns an IVKey oracle for s.
func NewIVKey(s *Secret) *IVKey {
	return &IVKey{key: s.Key}
}

// Encrypt implements blockbreak.Encrypter.
func (o *IVKey) Encrypt(p []byte) ([]byte, error) {
	m := concat([]byte(userDataPrefix), Escape(p), []byte(userDataSuffix))
	return crypto.EncryptCBC(o.key, o.key, m), nil
}

// Validate implements blockbreak.Validator. It returns a *TextError when the
// plaintext has a byte above 0x7f.
func (o *IVKey) Validate(c []byte) error {
	m, err := crypto.DecryptCBC(o.key, o.key, c)
	if err != nil {
		return err
	}
	for _, b := range m {
		if b > 0x7f {
			return &TextError{text: m}
		}
	}
	return nil
}

// Key returns the key, which is also the IV.
func (o *IVKey) Key() []byte {
	return append([]byte{}, o.key...)
}
