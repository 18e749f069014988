package blockbreak

import (
	"bytes"

	"github.com/manelmontilla/blockbreak/crypto"
)

// DetectECB reports whether any two block aligned blocks of c are equal,
// which in practice only happens under ECB.
func DetectECB(c []byte, blockSize int) bool {
	seen := make(map[string]bool)
	for _, b := range crypto.Blocks(c, blockSize) {
		if seen[string(b)] {
			return true
		}
		seen[string(b)] = true
	}
	return false
}

// IsECB feeds three blocks of zeros to the oracle. Whatever the oracle puts
// in front of them, at least two aligned blocks are identical under ECB.
func IsECB(o Encrypter, blockSize int) (bool, error) {
	c, err := o.Encrypt(make([]byte, 3*blockSize))
	if err != nil {
		return false, err
	}
	return DetectECB(c, blockSize), nil
}

// repeatedBlock returns the index of the first block of c that is equal to
// the block following it.
func repeatedBlock(c []byte, blockSize int) (int, bool) {
	bs := crypto.Blocks(c, blockSize)
	for i := 0; i+1 < len(bs); i++ {
		if bytes.Equal(bs[i], bs[i+1]) {
			return i, true
		}
	}
	return 0, false
}

// firstDiffBlock returns the index of the first block where a and b differ,
// or -1.
func firstDiffBlock(a, b []byte, blockSize int) int {
	ab, bb := crypto.Blocks(a, blockSize), crypto.Blocks(b, blockSize)
	for i := 0; i < len(ab) && i < len(bb); i++ {
		if !bytes.Equal(ab[i], bb[i]) {
			return i
		}
	}
	return -1
}

func block(c []byte, i, blockSize int) []byte {
	if (i+1)*blockSize > len(c) {
		return nil
	}
	return c[i*blockSize : (i+1)*blockSize]
}
