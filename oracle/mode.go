package oracle

import "github.com/manelmontilla/blockbreak/crypto"

// Mode encrypts under ECB or CBC, chosen at random once. Every call wraps the
// input in 5 to 10 random bytes on each side, and CBC draws a fresh IV.
type Mode struct {
	s   *Secret
	ecb bool
}

// NewMode flips the coin for s.
func NewMode(s *Secret) (*Mode, error) {
	n, err := RandomInt(2)
	if err != nil {
		return nil, err
	}
	return &Mode{s: s, ecb: n == 0}, nil
}

// Encrypt implements blockbreak.Encrypter.
func (o *Mode) Encrypt(p []byte) ([]byte, error) {
	before, err := RandomPadding(5, 10)
	if err != nil {
		return nil, err
	}
	after, err := RandomPadding(5, 10)
	if err != nil {
		return nil, err
	}
	m := concat(before, p, after)
	if o.ecb {
		return crypto.EncryptECB(o.s.Key, m), nil
	}
	iv, err := crypto.RandomBytes(crypto.BlockSize)
	if err != nil {
		return nil, err
	}
	return crypto.EncryptCBC(o.s.Key, iv, m), nil
}

// IsECB tells which mode the coin chose.
func (o *Mode) IsECB() bool { return o.ecb }
