package crypto

import (
	"encoding/binary"
	"fmt"
)

func checkNonce(nonce []byte) {
	if len(nonce) != NonceSize {
		panic(fmt.Sprintf("crypto: invalid nonce length %d", len(nonce)))
	}
}

// KeyStreamCTR returns n bytes of the CTR keystream for key and nonce,
// starting at byte offset. Counter block i is nonce || little endian uint64(i).
func KeyStreamCTR(key, nonce []byte, offset, n int) []byte {
	checkNonce(nonce)
	if offset < 0 || n < 0 {
		panic("crypto: negative keystream window")
	}
	c := newCipher(key)
	skip := offset % BlockSize
	ks := make([]byte, 0, skip+n+BlockSize)
	in := make([]byte, BlockSize)
	copy(in, nonce)
	out := make([]byte, BlockSize)
	for i := uint64(offset / BlockSize); len(ks) < skip+n; i++ {
		binary.LittleEndian.PutUint64(in[NonceSize:], i)
		c.Encrypt(out, in)
		ks = append(ks, out...)
	}
	return ks[skip : skip+n]
}

// CTR encrypts or decrypts in with the CTR keystream for key and nonce. Both
// directions are the same operation and no padding is involved.
func CTR(key, nonce, in []byte) []byte {
	return BlockXOR(in, KeyStreamCTR(key, nonce, 0, len(in)))
}

// EncryptCTR is CTR.
func EncryptCTR(key, nonce, pt []byte) []byte { return CTR(key, nonce, pt) }

// DecryptCTR is CTR.
func DecryptCTR(key, nonce, ct []byte) []byte { return CTR(key, nonce, ct) }

// EditCTR returns a copy of ct where the plaintext starting at offset is
// replaced by newText. Only the keystream covering the window is generated.
func EditCTR(key, nonce, ct []byte, offset int, newText []byte) ([]byte, error) {
	if offset < 0 || offset+len(newText) > len(ct) {
		return nil, ErrInvalidOffset
	}
	out := append([]byte{}, ct...)
	ks := KeyStreamCTR(key, nonce, offset, len(newText))
	for i, b := range newText {
		out[offset+i] = b ^ ks[i]
	}
	return out, nil
}
