package oracle

import "github.com/manelmontilla/blockbreak/crypto"

// Edit keeps the CTR encryption of the secret suffix and offers a random
// access edit operation on ciphertexts under the same key and nonce.
type Edit struct {
	s     *Secret
	nonce []byte
	c     []byte
}

// NewEdit encrypts s.Suffix under a random nonce.
func NewEdit(s *Secret) (*Edit, error) {
	nonce, err := crypto.GenerateNonce()
	if err != nil {
		return nil, err
	}
	return &Edit{s: s, nonce: nonce, c: crypto.EncryptCTR(s.Key, nonce, s.Suffix)}, nil
}

// Ciphertext returns the encrypted secret.
func (o *Edit) Ciphertext() []byte {
	return append([]byte{}, o.c...)
}

// Edit implements blockbreak.Editor.
func (o *Edit) Edit(c []byte, offset int, p []byte) ([]byte, error) {
	return crypto.EditCTR(o.s.Key, o.nonce, c, offset, p)
}

// Plaintext returns the encrypted secret.
func (o *Edit) Plaintext() []byte {
	return append([]byte{}, o.s.Suffix...)
}
