// Package crypto implements the AES-128 block primitive, PKCS#7 padding and
// the ECB, CBC and CTR modes used by the oracles. The modes are the legacy,
// unauthenticated constructions and must not be used to protect real data.
package crypto

import (
	"crypto/rand"
	"errors"
)

const (
	// KeySize is the length in bytes of the keys accepted by the modes.
	KeySize = 16

	// BlockSize is the length in bytes of a cipher block.
	BlockSize = 16

	// NonceSize is the length in bytes of a CTR nonce. The remaining half
	// of each counter block holds a little endian block counter.
	NonceSize = 8
)

var (
	// ErrInvalidPad is returned when the PKCS#7 padding of a decrypted
	// message is malformed. It never says why.
	ErrInvalidPad = errors.New("error invalid pad")

	// ErrInvalidCiphertext is returned when a ciphertext is not a whole,
	// non empty, number of blocks.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrInvalidOffset is returned by EditCTR when the edited window does
	// not fit inside the ciphertext.
	ErrInvalidOffset = errors.New("invalid offset")
)

// RandomBytes returns n bytes read from crypto/rand.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// GenerateKey generates a 16 bytes key.
func GenerateKey() ([]byte, error) {
	return RandomBytes(KeySize)
}

// GenerateNonce generates an 8 bytes CTR nonce.
func GenerateNonce() ([]byte, error) {
	return RandomBytes(NonceSize)
}

// BlockXOR xors a block with a given "key". The key length must be grater or
// equal than the block length, shorter keys are repeated.
func BlockXOR(block, key []byte) []byte {
	res := make([]byte, len(block))
	for i := 0; i < len(block); i++ {
		res[i] = block[i] ^ key[i%len(key)]
	}
	return res
}

// Blocks splits b in consecutive slices of n bytes. A trailing partial block
// is dropped. The returned slices share memory with b. It panics if n < 1.
func Blocks(b []byte, n int) [][]byte {
	if n < 1 {
		panic("crypto: invalid block size")
	}
	var bs [][]byte
	for len(b) >= n {
		bs = append(bs, b[:n])
		b = b[n:]
	}
	return bs
}
