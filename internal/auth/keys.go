package auth

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys are the independent signing keys derived from the server secret.
type Keys struct {
	Session []byte
	CSRF    []byte
}

// DeriveKeys expands the server secret into one key per purpose, so a leaked
// CSRF token never helps forge a session token and vice versa.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, fmt.Errorf("empty server secret")
	}

	var k Keys
	for _, p := range []struct {
		info string
		dst  *[]byte
	}{
		{"katalog session v1", &k.Session},
		{"katalog csrf v1", &k.CSRF},
	} {
		buf := make([]byte, 32)
		r := hkdf.New(sha256.New, []byte(secret), nil, []byte(p.info))
		if _, err := io.ReadFull(r, buf); err != nil {
			return Keys{}, fmt.Errorf("deriving %s key: %w", p.info, err)
		}
		*p.dst = buf
	}
	return k, nil
}
