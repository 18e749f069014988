package oracle

import (
	"errors"
	"strings"

	"github.com/manelmontilla/blockbreak/crypto"
)

// ErrNoRole is returned by Profile.Role when the decrypted profile has no
// role field.
var ErrNoRole = errors.New("profile without role")

// ProfileFor encodes the profile of a user with the given email. '&' and '='
// are removed from the email.
func ProfileFor(email string) string {
	san := strings.NewReplacer("&", "", "=", "").Replace(email)
	return "email=" + san + "&uid=10&role=user"
}

// ParseProfile parses an '&' separated list of key=value pairs.
func ParseProfile(s string) map[string]string {
	res := make(map[string]string)
	for _, pair := range strings.Split(s, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		res[kv[0]] = kv[1]
	}
	return res
}

// Profile hands out ECB encrypted profiles for any email.
type Profile struct {
	s *Secret
}

// NewProfile returns a Profile oracle for s.
func NewProfile(s *Secret) *Profile {
	return &Profile{s: s}
}

// Encrypt implements blockbreak.Encrypter, p being the email.
func (o *Profile) Encrypt(p []byte) ([]byte, error) {
	return crypto.EncryptECB(o.s.Key, []byte(ProfileFor(string(p)))), nil
}

// Role decrypts an encrypted profile and returns its role.
func (o *Profile) Role(c []byte) (string, error) {
	m, err := crypto.DecryptECB(o.s.Key, c)
	if err != nil {
		return "", err
	}
	role, ok := ParseProfile(string(m))["role"]
	if !ok {
		return "", ErrNoRole
	}
	return role, nil
}
