package blockbreak

import (
	"bytes"
	"fmt"

	"github.com/manelmontilla/blockbreak/crypto"
)

// CutAndPaste forges an ECB ciphertext in which the last replaced bytes of the
// oracle's message are swapped for role. It works against encoders such as
// "email=<input>&uid=10&role=user" with replaced = len("user"): the input
// is first used to encrypt a padded role block on its own, then sized so the
// old role starts a block, and that final block is replaced.
func CutAndPaste(o Encrypter, blockSize int, role []byte, replaced int) ([]byte, error) {
	if len(role) >= blockSize || replaced >= blockSize || replaced < 0 {
		return nil, fmt.Errorf("cut and paste: role does not fit in a block of %d", blockSize)
	}
	off, err := InjectionOffset(o, blockSize)
	if err != nil {
		return nil, err
	}
	align := (blockSize - off%blockSize) % blockSize
	in := append(bytes.Repeat([]byte("A"), align), crypto.Pad(role, blockSize)...)
	c, err := o.Encrypt(in)
	if err != nil {
		return nil, err
	}
	roleBlock := block(c, (off+align)/blockSize, blockSize)
	if roleBlock == nil {
		return nil, ErrInvalidCiphertext
	}

	g, err := MeasureGeometry(o)
	if err != nil {
		return nil, err
	}
	// Choose n so that everything but the old role fills whole blocks.
	n := ((replaced-g.Fixed)%blockSize + blockSize) % blockSize
	c, err = o.Encrypt(bytes.Repeat([]byte("A"), n))
	if err != nil {
		return nil, err
	}
	if len(c) < blockSize {
		return nil, ErrInvalidCiphertext
	}
	forged := append([]byte{}, c[:len(c)-blockSize]...)
	return append(forged, roleBlock...), nil
}
