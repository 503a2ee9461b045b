package web

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type webContextKey string

const webSessionKey webContextKey = "session"

// sessionCookie is the name of the cookie holding the signed session token.
const sessionCookie = "session"

// formOverhead is the room left for ordinary form fields on top of the
// upload size limit.
const formOverhead = 1 << 20

// SessionMiddleware loads the session referenced by the session cookie into
// the request context. Requests without a valid cookie carry no session.
func (s *Server) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		var sess *model.Session
		if id, err := auth.ParseSession(s.Keys.Session, cookie.Value); err == nil {
			sess, err = store.GetSession(r.Context(), s.DB, id)
			if err != nil {
				s.fail(w, r, err)
				return
			}
		}
		if sess == nil {
			s.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), webSessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CSRFMiddleware parses POST bodies and rejects them unless they carry the
// anti-forgery token bound to the current session, either as the csrf_token
// form field or the X-CSRF-Token header.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, s.Uploads.MaxBytes()+formOverhead)
		if err := parseForm(r); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.fail(w, r, errTooLarge)
				return
			}
			s.fail(w, r, badRequest("malformed form"))
			return
		}
		// The server only cleans up forms parsed on its own request value,
		// and r is a copy by now.
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" {
			token = r.PostFormValue("csrf_token")
		}

		sess := GetSession(r.Context())
		if sess == nil || !auth.ValidCSRFToken(s.Keys.CSRF, sess.ID, token) {
			slog.Warn("csrf check failed", "path", r.URL.Path)
			s.fail(w, r, errBadCSRF)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// parseForm parses urlencoded and multipart bodies. Other content types are
// left unread for the handler.
func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return r.ParseMultipartForm(formOverhead)
	case "application/x-www-form-urlencoded":
		return r.ParseForm()
	default:
		return nil
	}
}

// GetSession retrieves the session from the request context, or nil.
func GetSession(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(webSessionKey).(*model.Session)
	return sess
}

// setSessionCookie issues a signed cookie for the session.
func (s *Server) setSessionCookie(w http.ResponseWriter, sess *model.Session) error {
	token, err := auth.SignSession(s.Keys.Session, sess.ID, sess.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// clearSessionCookie clears the session cookie with consistent attributes.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireLogin gates protected routes. Anonymous callers get a 403 page
// that links to the login page.
func (s *Server) requireLogin(w http.ResponseWriter, r *http.Request) bool {
	if err := auth.RequireAuthenticated(GetSession(r.Context())); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}
