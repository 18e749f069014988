package crypto

import "crypto/cipher"

// ecb is a cipher.BlockMode that applies the block cipher to every block
// independently. Equal plaintext blocks give equal ciphertext blocks.
type ecb struct {
	b       cipher.Block
	decrypt bool
}

// NewECBEncrypter returns a BlockMode which encrypts in electronic codebook
// mode using b.
func NewECBEncrypter(b cipher.Block) cipher.BlockMode {
	return ecb{b: b}
}

// NewECBDecrypter returns a BlockMode which decrypts in electronic codebook
// mode using b.
func NewECBDecrypter(b cipher.Block) cipher.BlockMode {
	return ecb{b: b, decrypt: true}
}

func (x ecb) BlockSize() int { return x.b.BlockSize() }

func (x ecb) CryptBlocks(dst, src []byte) {
	n := x.b.BlockSize()
	if len(src)%n != 0 {
		panic("crypto: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("crypto: output smaller than input")
	}
	for len(src) > 0 {
		if x.decrypt {
			x.b.Decrypt(dst[:n], src[:n])
		} else {
			x.b.Encrypt(dst[:n], src[:n])
		}
		dst = dst[n:]
		src = src[n:]
	}
}

// EncryptECB pads pt and encrypts it in ECB mode.
func EncryptECB(key, pt []byte) []byte {
	m := Pad(pt, BlockSize)
	NewECBEncrypter(newCipher(key)).CryptBlocks(m, m)
	return m
}

// DecryptECB decrypts ct in ECB mode and strips its padding.
func DecryptECB(key, ct []byte) ([]byte, error) {
	if len(ct) == 0 || len(ct)%BlockSize != 0 {
		return nil, ErrInvalidCiphertext
	}
	m := make([]byte, len(ct))
	NewECBDecrypter(newCipher(key)).CryptBlocks(m, ct)
	return Unpad(m)
}
