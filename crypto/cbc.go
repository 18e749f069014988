package crypto

import (
	"bytes"
	"fmt"
)

func checkIV(iv []byte) {
	if len(iv) != BlockSize {
		panic(fmt.Sprintf("crypto: invalid iv length %d", len(iv)))
	}
}

// EncryptCBC pads pt and encrypts it in CBC mode. The iv is not part of the
// returned ciphertext.
func EncryptCBC(key, iv, pt []byte) []byte {
	checkIV(iv)
	c := newCipher(key)
	// Implement the CBC mode. c[i] = e(k,c[i-1] + m[i]), c[-1] = iv.
	prev := iv
	m := Pad(pt, BlockSize)
	ct := bytes.NewBuffer(make([]byte, 0, len(m)))
	for _, b := range Blocks(m, BlockSize) {
		x := BlockXOR(b, prev)
		c.Encrypt(x, x)
		ct.Write(x)
		prev = x
	}
	return ct.Bytes()
}

// DecryptCBC decrypts ct in CBC mode and strips the padding. WARNING: the
// distinguishable ErrInvalidPad makes this function a padding oracle, that
// is the point of it.
func DecryptCBC(key, iv, ct []byte) ([]byte, error) {
	checkIV(iv)
	m, err := decryptCBC(key, iv, ct)
	if err != nil {
		return nil, err
	}
	return Unpad(m)
}

// decryptCBC decrypts ct without looking at the padding.
func decryptCBC(key, iv, ct []byte) ([]byte, error) {
	if len(ct) == 0 || len(ct)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	bc := newCipher(key)
	m := bytes.NewBuffer(make([]byte, 0, len(ct)))
	prev := iv
	aux := make([]byte, BlockSize)
	for _, ci := range Blocks(ct, BlockSize) {
		bc.Decrypt(aux, ci)
		m.Write(BlockXOR(aux, prev))
		prev = ci
	}
	return m.Bytes(), nil
}
