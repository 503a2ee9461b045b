package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/erazemk/katalog/internal/model"
)

var (
	// ErrUnauthenticated means the session holds no credential.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrNoIdentity means the session holds a credential but no identity.
	ErrNoIdentity = errors.New("session has no identity")

	// ErrForbidden means the caller is logged in but does not own the resource.
	ErrForbidden = errors.New("not the owner")

	// ErrStateMismatch means the echoed anti-forgery state does not match the session.
	ErrStateMismatch = errors.New("invalid state parameter")
)

// CurrentIdentity returns the external identity of a session, if any.
func CurrentIdentity(s *model.Session) (string, bool) {
	if !s.Authenticated() || s.Identity == "" {
		return "", false
	}
	return s.Identity, true
}

// RequireAuthenticated fails with ErrUnauthenticated unless the session
// holds a credential.
func RequireAuthenticated(s *model.Session) error {
	if !s.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// CheckOwner verifies that the session's identity owns a resource.
func CheckOwner(s *model.Session, item *model.Item) error {
	if err := RequireAuthenticated(s); err != nil {
		return err
	}
	identity, ok := CurrentIdentity(s)
	if !ok {
		return ErrNoIdentity
	}
	if !item.OwnedBy(identity) {
		return ErrForbidden
	}
	return nil
}

// NewState generates a one-time anti-forgery nonce for the login flow.
func NewState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CheckState verifies that echoed matches the nonce stored on the session.
func CheckState(s *model.Session, echoed string) error {
	if s == nil || s.State == "" || echoed == "" {
		return ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(s.State), []byte(echoed)) != 1 {
		return ErrStateMismatch
	}
	return nil
}
