package blockbreak

import (
	"bytes"
	"fmt"
	"log"
)

// SuffixAttack recovers, one byte at a time, the secret an ECB oracle appends
// to the attacker input. A secret prefix of unknown length is measured and
// skipped.
type SuffixAttack struct {
	Oracle Encrypter
	Logger *log.Logger
}

// RecoverSuffix runs a SuffixAttack against o without logging.
func RecoverSuffix(o Encrypter) ([]byte, error) {
	a := SuffixAttack{Oracle: o}
	return a.Recover()
}

// Recover returns the secret suffix. The length of the secret comes from the
// oracle geometry, so trailing padding is never mistaken for secret bytes.
func (a SuffixAttack) Recover() ([]byte, error) {
	l := discardLogger(a.Logger)
	g, err := MeasureGeometry(a.Oracle)
	if err != nil {
		return nil, err
	}
	bs := g.BlockSize
	ecb, err := IsECB(a.Oracle, bs)
	if err != nil {
		return nil, err
	}
	if !ecb {
		return nil, ErrNotECB
	}
	prefixLen, err := PrefixLength(a.Oracle, bs)
	if err != nil {
		return nil, err
	}
	secretLen := g.Fixed - prefixLen
	if secretLen < 0 {
		return nil, fmt.Errorf("recover suffix: prefix %d longer than fixed %d: %w", prefixLen, g.Fixed, ErrSearchExhausted)
	}
	l.Printf("block size %d, prefix length %d, secret length %d", bs, prefixLen, secretLen)

	// align pads the prefix to a block boundary, first is the block where
	// the attacker input starts.
	align := (bs - prefixLen%bs) % bs
	first := (prefixLen + align) / bs

	secret := make([]byte, 0, secretLen)
	for i := 0; i < secretLen; i++ {
		// Push the unknown byte i to the last position of block n.
		offset := make([]byte, align+bs-1-i%bs)
		n := first + i/bs
		c, err := a.Oracle.Encrypt(offset)
		if err != nil {
			return nil, err
		}
		target := block(c, n, bs)
		if target == nil {
			return nil, fmt.Errorf("recover suffix: short ciphertext: %w", ErrInvalidCiphertext)
		}
		probe := append(append(offset, secret...), 0)
		b, err := a.matchByte(probe, n, bs, target)
		if err != nil {
			return nil, fmt.Errorf("recover suffix: byte %d: %w", i, err)
		}
		secret = append(secret, b)
	}
	return secret, nil
}

// matchByte tries every value for the last byte of probe and returns the
// first one, in ascending order, whose block n encrypts to target.
func (a SuffixAttack) matchByte(probe []byte, n, bs int, target []byte) (byte, error) {
	last := len(probe) - 1
	for g := 0; g < 256; g++ {
		probe[last] = byte(g)
		c, err := a.Oracle.Encrypt(probe)
		if err != nil {
			return 0, err
		}
		if bytes.Equal(block(c, n, bs), target) {
			return byte(g), nil
		}
	}
	return 0, ErrSearchExhausted
}
