package oracle

import (
	"errors"

	"github.com/manelmontilla/blockbreak/crypto"
)

// Padding is a CBC padding oracle. It holds the encryption of the secret
// suffix under a random IV and answers whether a ciphertext decrypts to valid
// PKCS#7 padding. It says nothing else, not even whether the message makes
// sense.
type Padding struct {
	s  *Secret
	iv []byte
	c  []byte
}

// NewPadding encrypts s.Suffix with a random IV.
func NewPadding(s *Secret) (*Padding, error) {
	iv, err := crypto.RandomBytes(crypto.BlockSize)
	if err != nil {
		return nil, err
	}
	return &Padding{s: s, iv: iv, c: crypto.EncryptCBC(s.Key, iv, s.Suffix)}, nil
}

// Ciphertext returns the IV and the ciphertext handed to the attacker.
func (o *Padding) Ciphertext() (iv, c []byte) {
	return append([]byte{}, o.iv...), append([]byte{}, o.c...)
}

// CheckPadding implements blockbreak.PaddingChecker.
func (o *Padding) CheckPadding(iv, c []byte) (bool, error) {
	if len(iv) != crypto.BlockSize {
		return false, ErrInvalidIV
	}
	_, err := crypto.DecryptCBC(o.s.Key, iv, c)
	if errors.Is(err, crypto.ErrInvalidPad) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Plaintext returns the encrypted secret.
func (o *Padding) Plaintext() []byte {
	return append([]byte{}, o.s.Suffix...)
}
