package crypto

import "bytes"

// Pad returns a copy of m with PKCS#7 padding for the given block size. A
// message that is already aligned gets a whole extra block of padding.
func Pad(m []byte, blockSize int) []byte {
	if blockSize < 1 || blockSize > 0xff {
		panic("crypto: invalid block size")
	}
	r := blockSize - len(m)%blockSize
	var b bytes.Buffer
	b.Grow(len(m) + r)
	b.Write(m)
	b.Write(bytes.Repeat([]byte{byte(r)}, r))
	return b.Bytes()
}

// Unpad removes the PKCS#7 padding from m. It returns ErrInvalidPad when the
// last byte is zero, when it is bigger than the message or when any of the
// bytes it covers has a different value.
func Unpad(m []byte) ([]byte, error) {
	if len(m) == 0 {
		return nil, ErrInvalidPad
	}
	p := int(m[len(m)-1])
	if p < 1 || p > len(m) {
		return nil, ErrInvalidPad
	}
	// Check the pad
	for _, b := range m[len(m)-p:] {
		if b != byte(p) {
			return nil, ErrInvalidPad
		}
	}
	return append([]byte{}, m[:len(m)-p]...), nil
}
