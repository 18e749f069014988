package blockbreak

import "github.com/manelmontilla/blockbreak/crypto"

// RecoverCTR recovers the plaintext of c through a CTR edit oracle. Rewriting
// the whole message with zeros hands back the bare keystream.
func RecoverCTR(e Editor, c []byte) ([]byte, error) {
	ks, err := e.Edit(c, 0, make([]byte, len(c)))
	if err != nil {
		return nil, err
	}
	if len(ks) != len(c) {
		return nil, ErrInvalidCiphertext
	}
	return crypto.BlockXOR(c, ks), nil
}
