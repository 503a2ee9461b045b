package model

import "time"

// Session is the server-side state of one browser session.
//
// An empty Credential means the session is anonymous. State holds the
// anti-forgery nonce issued by the login page until it is consumed.
type Session struct {
	ID         string
	State      string
	Identity   string
	Credential string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Authenticated reports whether the session holds a credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Credential != ""
}
