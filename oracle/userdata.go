package oracle

import (
	"bytes"

	"github.com/manelmontilla/blockbreak/crypto"
)

const (
	userDataPrefix = "comment1=cooking%20MCs;userdata="
	userDataSuffix = ";comment2=%20like%20a%20pound%20of%20bacon"
)

// Escape quotes the field separators ';' and '=' so user data cannot add
// fields of its own.
func Escape(p []byte) []byte {
	p = bytes.ReplaceAll(p, []byte(";"), []byte("%3B"))
	return bytes.ReplaceAll(p, []byte("="), []byte("%3D"))
}

// Fields parses a ';' separated list of key=value pairs. Pairs without '='
// are ignored and later keys win.
func Fields(m []byte) map[string]string {
	fields := make(map[string]string)
	for _, pair := range bytes.Split(m, []byte(";")) {
		kv := bytes.SplitN(pair, []byte("="), 2)
		if len(kv) != 2 {
			continue
		}
		fields[string(kv[0])] = string(kv[1])
	}
	return fields
}

// UserData embeds escaped user data in a cookie like string and encrypts it,
// under CBC with a fixed IV or under CTR with a fixed nonce.
type UserData struct {
	key   []byte
	iv    []byte
	nonce []byte
}

// NewUserDataCBC returns a CBC user data oracle for s.
func NewUserDataCBC(s *Secret) (*UserData, error) {
	iv, err := crypto.RandomBytes(crypto.BlockSize)
	if err != nil {
		return nil, err
	}
	return &UserData{key: s.Key, iv: iv}, nil
}

// NewUserDataCTR returns a CTR user data oracle for s.
func NewUserDataCTR(s *Secret) (*UserData, error) {
	nonce, err := crypto.GenerateNonce()
	if err != nil {
		return nil, err
	}
	return &UserData{key: s.Key, nonce: nonce}, nil
}

// Encrypt implements blockbreak.Encrypter.
func (o *UserData) Encrypt(p []byte) ([]byte, error) {
	m := concat([]byte(userDataPrefix), Escape(p), []byte(userDataSuffix))
	if o.nonce != nil {
		return crypto.EncryptCTR(o.key, o.nonce, m), nil
	}
	return crypto.EncryptCBC(o.key, o.iv, m), nil
}

// Decrypt returns the plaintext of c.
func (o *UserData) Decrypt(c []byte) ([]byte, error) {
	if o.nonce != nil {
		return crypto.DecryptCTR(o.key, o.nonce, c), nil
	}
	return crypto.DecryptCBC(o.key, o.iv, c)
}

// IsAdmin decrypts c and reports whether it has the field admin=true.
func (o *UserData) IsAdmin(c []byte) (bool, error) {
	m, err := o.Decrypt(c)
	if err != nil {
		return false, err
	}
	return Fields(m)["admin"] == "true", nil
}
