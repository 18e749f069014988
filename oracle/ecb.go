package oracle

import "github.com/manelmontilla/blockbreak/crypto"

// ECB encrypts AES-ECB(prefix || input || suffix) under the secret key.
type ECB struct {
	s *Secret
}

// NewECB returns an ECB oracle for s.
func NewECB(s *Secret) *ECB {
	return &ECB{s: s}
}

// Encrypt implements blockbreak.Encrypter.
func (o *ECB) Encrypt(p []byte) ([]byte, error) {
	return crypto.EncryptECB(o.s.Key, concat(o.s.Prefix, p, o.s.Suffix)), nil
}

// Suffix returns the secret the oracle appends.
func (o *ECB) Suffix() []byte {
	return append([]byte{}, o.s.Suffix...)
}
