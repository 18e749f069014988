package blockbreak

import (
	"errors"
	"fmt"

	"github.com/manelmontilla/blockbreak/crypto"
)

// RecoverIVKey recovers the key of a CBC oracle that also uses its key as the
// IV. It submits C1 || 0 || C1 || rest to the validator. The third block then
// decrypts to D(C1) while the first decrypts to D(C1) xor IV, so xoring them
// gives the IV, which is the key. v must return an error implementing
// Plaintext() []byte when it rejects the message.
func RecoverIVKey(o Encrypter, v Validator, blockSize int) ([]byte, error) {
	c, err := o.Encrypt(make([]byte, 3*blockSize))
	if err != nil {
		return nil, err
	}
	// Keep the last two blocks untouched so the padding stays valid.
	if len(c) < 5*blockSize {
		return nil, ErrInvalidCiphertext
	}
	c1 := c[:blockSize]
	t := make([]byte, 0, len(c))
	t = append(t, c1...)
	t = append(t, make([]byte, blockSize)...)
	t = append(t, c1...)
	t = append(t, c[3*blockSize:]...)

	err = v.Validate(t)
	if err == nil {
		return nil, ErrNoLeak
	}
	var leak interface{ Plaintext() []byte }
	if !errors.As(err, &leak) {
		return nil, fmt.Errorf("recover iv key: %w", err)
	}
	p := leak.Plaintext()
	if len(p) < 3*blockSize {
		return nil, ErrInvalidCiphertext
	}
	return crypto.BlockXOR(p[:blockSize], p[2*blockSize:3*blockSize]), nil
}
