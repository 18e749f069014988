package blockbreak

import (
	"bytes"
	"fmt"
	"sort"
)

// Geometry is what growing the attacker input one byte at a time tells about
// an oracle.
type Geometry struct {
	// BlockSize is the size of the jump in the ciphertext length. It is 1
	// for stream modes.
	BlockSize int

	// Fixed is the number of bytes, before padding, that the oracle adds
	// around the attacker input: secret prefix plus secret suffix.
	Fixed int
}

// MeasureGeometry feeds zero filled inputs of increasing length to the
// oracle until the length of the ciphertext jumps. For a padded mode the
// jump happens when prefix, input and suffix fill whole blocks.
func MeasureGeometry(o Encrypter) (Geometry, error) {
	c, err := o.Encrypt(nil)
	if err != nil {
		return Geometry{}, err
	}
	base := len(c)
	for n := 1; n <= MaxProbeLen; n++ {
		c, err := o.Encrypt(make([]byte, n))
		if err != nil {
			return Geometry{}, err
		}
		if len(c) == base {
			continue
		}
		g := Geometry{BlockSize: len(c) - base}
		if g.BlockSize == 1 {
			// A stream grows with every byte, nothing was padded.
			g.Fixed = base
		} else {
			g.Fixed = base - n
		}
		return g, nil
	}
	return Geometry{}, fmt.Errorf("measure geometry: %w", ErrSearchExhausted)
}

// BlockSize returns the block size of the cipher behind the oracle.
func BlockSize(o Encrypter) (int, error) {
	g, err := MeasureGeometry(o)
	if err != nil {
		return 0, err
	}
	return g.BlockSize, nil
}

// prefixFills are the filler bytes PrefixLength tries. A secret prefix ending
// with the filler makes the answer too small, a secret suffix starting with
// it makes the answer too big. Each can spoil only one filler, so the median
// of three is always right.
var prefixFills = []byte{0x00, 0xff, 'A'}

// PrefixLength returns the length of the secret prefix an ECB oracle puts in
// front of the attacker input.
func PrefixLength(o Encrypter, blockSize int) (int, error) {
	var ls []int
	for _, fill := range prefixFills {
		l, err := prefixLength(o, blockSize, fill)
		if err != nil {
			return 0, err
		}
		ls = append(ls, l)
	}
	sort.Ints(ls)
	return ls[len(ls)/2], nil
}

// prefixLength grows a run of fill bytes from two to three blocks until two
// adjacent ciphertext blocks are equal. At that point the run fills exactly
// two aligned blocks and the prefix ends where the run starts.
func prefixLength(o Encrypter, blockSize int, fill byte) (int, error) {
	for n := 2 * blockSize; n < 3*blockSize; n++ {
		c, err := o.Encrypt(bytes.Repeat([]byte{fill}, n))
		if err != nil {
			return 0, err
		}
		if i, ok := repeatedBlock(c, blockSize); ok {
			return (i+2)*blockSize - n, nil
		}
	}
	return 0, fmt.Errorf("prefix length: %w", ErrNotECB)
}

// InjectionOffset returns the position in the plaintext where the oracle
// places the attacker input. It needs a deterministic oracle: ECB, or CBC and
// CTR with a fixed IV or nonce. Use a block size of 1 for stream modes.
func InjectionOffset(o Encrypter, blockSize int) (int, error) {
	a, err := o.Encrypt([]byte("A"))
	if err != nil {
		return 0, err
	}
	b, err := o.Encrypt([]byte("B"))
	if err != nil {
		return 0, err
	}
	j := firstDiffBlock(a, b, blockSize)
	if j < 0 {
		return 0, fmt.Errorf("injection offset: %w", ErrSearchExhausted)
	}
	// Shift a marker right until it leaves block j. The shift needed is the
	// room the input had in that block.
	for n := 1; n <= blockSize; n++ {
		x, err := o.Encrypt(append(bytes.Repeat([]byte("A"), n), 'X'))
		if err != nil {
			return 0, err
		}
		y, err := o.Encrypt(append(bytes.Repeat([]byte("A"), n), 'Y'))
		if err != nil {
			return 0, err
		}
		if bytes.Equal(block(x, j, blockSize), block(y, j, blockSize)) {
			return j*blockSize + blockSize - n, nil
		}
	}
	return 0, fmt.Errorf("injection offset: %w", ErrSearchExhausted)
}
