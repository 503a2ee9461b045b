package web

import (
	"bytes"
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/upload"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"categoryPath": model.CategoryPath,
		"itemPath":     model.ItemPath,
	}
}

var pages = []string{
	"catalog.html",
	"category.html",
	"item.html",
	"category_form.html",
	"item_form.html",
	"confirm.html",
	"login.html",
	"error.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates(tfs fs.FS) (*Templates, error) {
	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a page with the given status. The page is buffered so a
// template error never leaves a half-written response.
func (ts *Templates) Render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title     string
	LoggedIn  bool
	Identity  string
	CSRFToken string
	Error     string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB            *sql.DB
	Templates     *Templates
	Static        fs.FS
	Uploads       *upload.Manager
	Keys          auth.Keys
	Verifier      auth.Verifier
	ClientID      string
	VerifyTimeout time.Duration
	SecureCookie  bool

	limiter  *RateLimiter
	validate *validator.Validate
}

// page builds the common template data for the current request.
func (s *Server) page(r *http.Request, title string) PageData {
	sess := GetSession(r.Context())
	data := PageData{Title: title, LoggedIn: sess.Authenticated()}
	if sess != nil {
		data.Identity = sess.Identity
		data.CSRFToken = auth.CSRFToken(s.Keys.CSRF, sess.ID)
	}
	return data
}
