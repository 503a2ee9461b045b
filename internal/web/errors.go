package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/store"
	"github.com/erazemk/katalog/internal/upload"
)

var (
	errNotFound    = errors.New("not found")
	errBadRequest  = errors.New("bad request")
	errBadCSRF     = errors.New("missing or invalid csrf token")
	errTooLarge    = errors.New("request too large")
	errRateLimited = errors.New("too many requests")
	errUpstream    = errors.New("identity provider unavailable")
)

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

// requestError carries a message that is safe to show to the user.
type requestError struct {
	msg string
}

func (e *requestError) Error() string        { return e.msg }
func (e *requestError) Is(target error) bool { return target == errBadRequest }

// statusFor maps an error to the HTTP status answered for it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errNotFound), errors.Is(err, upload.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNoIdentity),
		errors.Is(err, auth.ErrStateMismatch),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrForbidden),
		errors.Is(err, errBadCSRF):
		return http.StatusForbidden
	case errors.Is(err, store.ErrCategoryNotEmpty), errors.Is(err, store.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail answers err with its mapped status. Internal details are logged,
// never shown.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := http.StatusText(status)

	var reqErr *requestError
	switch {
	case status >= http.StatusInternalServerError:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	case errors.As(err, &reqErr):
		message = reqErr.msg
	default:
		slog.Debug("request refused", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	s.Templates.Render(w, status, "error.html", &struct {
		PageData
		Status     int
		Message    string
		NeedsLogin bool
	}{
		PageData:   s.page(r, http.StatusText(status)),
		Status:     status,
		Message:    message,
		NeedsLogin: errors.Is(err, auth.ErrUnauthenticated),
	})
}
