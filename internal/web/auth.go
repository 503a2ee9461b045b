package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// maxTokenBytes bounds the access token accepted by POST /gconnect.
const maxTokenBytes = 8 << 10

// LoginPage handles GET /login. It starts an anonymous session when needed
// and stores a fresh anti-forgery state on it.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())
	if sess == nil {
		created, err := store.CreateSession(r.Context(), s.DB, auth.SessionLifetime)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.setSessionCookie(w, created); err != nil {
			s.fail(w, r, err)
			return
		}
		sess = created
		r = r.WithContext(context.WithValue(r.Context(), webSessionKey, sess))
	}

	state, err := auth.NewState()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := store.SetSessionState(r.Context(), s.DB, sess.ID, state); err != nil {
		s.fail(w, r, err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "login.html", &struct {
		PageData
		ClientID string
		State    string
	}{
		PageData: s.page(r, "Log in"),
		ClientID: s.ClientID,
		State:    state,
	})
}

// Connect handles POST /gconnect?state=. The body is the provider access
// token. On success the caller gets a new authenticated session.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r) {
		slog.Warn("login rate limited", "client", clientKey(r))
		s.fail(w, r, errRateLimited)
		return
	}

	sess := GetSession(r.Context())
	err := auth.CheckState(sess, r.URL.Query().Get("state"))
	if sess != nil && sess.State != "" {
		// The state is single-use whatever the outcome.
		if clearErr := store.SetSessionState(r.Context(), s.DB, sess.ID, ""); clearErr != nil {
			s.fail(w, r, clearErr)
			return
		}
	}
	if err != nil {
		metrics.RecordLogin("bad_state")
		s.fail(w, r, err)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBytes))
	if err != nil {
		s.fail(w, r, badRequest("unreadable token"))
		return
	}
	token := strings.TrimSpace(string(body))
	if token == "" {
		s.fail(w, r, badRequest("token is required"))
		return
	}

	identity, err := s.verify(r.Context(), token)
	if err != nil {
		metrics.RecordLogin("rejected")
		s.fail(w, r, err)
		return
	}

	next, err := s.authenticate(r.Context(), sess, identity)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.setSessionCookie(w, next); err != nil {
		s.fail(w, r, err)
		return
	}

	metrics.RecordLogin("success")
	slog.Info("user logged in", "user", identity.ID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Welcome, %s\n", identity.ID)
}

// verify checks the token with the identity provider under the configured
// timeout.
func (s *Server) verify(ctx context.Context, token string) (*auth.Identity, error) {
	if s.VerifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.VerifyTimeout)
		defer cancel()
	}

	identity, err := s.Verifier.Verify(ctx, token)
	switch {
	case err == nil:
		return identity, nil
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", errUpstream, err)
	}
}

// authenticate replaces the anonymous session with a fresh authenticated one
// so a session ID seen before login is never trusted after it.
func (s *Server) authenticate(ctx context.Context, old *model.Session, identity *auth.Identity) (*model.Session, error) {
	next, err := store.CreateSession(ctx, s.DB, auth.SessionLifetime)
	if err != nil {
		return nil, err
	}
	if err := store.AuthenticateSession(ctx, s.DB, next.ID, identity.ID, identity.Credential); err != nil {
		return nil, err
	}
	if err := store.DeleteSession(ctx, s.DB, old.ID); err != nil {
		slog.Warn("failed to delete anonymous session", "error", err)
	}

	next.Identity = identity.ID
	next.Credential = identity.Credential
	return next, nil
}

// Logout handles POST /logout. Revoking the credential is best effort; the
// session is always destroyed.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess := GetSession(r.Context())

	if sess.Authenticated() {
		ctx := r.Context()
		if s.VerifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.VerifyTimeout)
			defer cancel()
		}
		if err := s.Verifier.Revoke(ctx, sess.Credential); err != nil {
			slog.Warn("failed to revoke credential", "user", sess.Identity, "error", err)
		}
	}

	if sess != nil {
		if err := store.DeleteSession(r.Context(), s.DB, sess.ID); err != nil {
			s.fail(w, r, err)
			return
		}
		slog.Info("user logged out", "user", sess.Identity)
	}

	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
