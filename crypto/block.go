package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// newCipher returns an AES block for key. It panics on a key of the wrong
// size.
func newCipher(key []byte) cipher.Block {
	if len(key) != KeySize {
		panic(fmt.Sprintf("crypto: invalid key length %d", len(key)))
	}
	b, err := aes.NewCipher(key)
	if err != nil {
		panic(err)
	}
	return b
}

func checkBlock(b []byte) {
	if len(b) != BlockSize {
		panic(fmt.Sprintf("crypto: invalid block length %d", len(b)))
	}
}

// EncryptBlock encrypts exactly one block under key.
func EncryptBlock(key, block []byte) []byte {
	checkBlock(block)
	out := make([]byte, BlockSize)
	newCipher(key).Encrypt(out, block)
	return out
}

// DecryptBlock decrypts exactly one block under key.
func DecryptBlock(key, block []byte) []byte {
	checkBlock(block)
	out := make([]byte, BlockSize)
	newCipher(key).Decrypt(out, block)
	return out
}
