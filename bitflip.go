package blockbreak

import (
	"fmt"
)

// FlipCBC returns a ciphertext that decrypts with want somewhere inside the
// attacker controlled part of the plaintext, even if the oracle escapes the
// bytes of want. The input is aligned to a block boundary and followed by a
// sacrificial block and a block of zeros. Xoring want into the sacrificial
// ciphertext block turns the zeros into want and garbles the sacrificial
// plaintext block.
func FlipCBC(o Encrypter, blockSize int, want []byte) ([]byte, error) {
	if len(want) > blockSize {
		return nil, fmt.Errorf("flip cbc: %d bytes do not fit in a block of %d", len(want), blockSize)
	}
	off, err := InjectionOffset(o, blockSize)
	if err != nil {
		return nil, err
	}
	align := (blockSize - off%blockSize) % blockSize
	c, err := o.Encrypt(make([]byte, align+blockSize+len(want)))
	if err != nil {
		return nil, err
	}
	start := off + align
	return flip(c, start, want)
}

// FlipCTR is FlipCBC for CTR. The keystream is xored byte by byte, so want is
// flipped in place and nothing else changes.
func FlipCTR(o Encrypter, want []byte) ([]byte, error) {
	off, err := InjectionOffset(o, 1)
	if err != nil {
		return nil, err
	}
	c, err := o.Encrypt(make([]byte, len(want)))
	if err != nil {
		return nil, err
	}
	return flip(c, off, want)
}

func flip(c []byte, start int, delta []byte) ([]byte, error) {
	if start+len(delta) > len(c) {
		return nil, ErrInvalidCiphertext
	}
	out := append([]byte{}, c...)
	for i, d := range delta {
		out[start+i] ^= d
	}
	return out, nil
}
