package web

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/upload"
	webembed "github.com/erazemk/katalog/web"
)

// RecentLimit is the number of recent items shown on the home page.
const RecentLimit = 8

// Config holds the dependencies of the page router.
type Config struct {
	DB            *sql.DB
	Uploads       *upload.Manager
	Keys          auth.Keys
	Verifier      auth.Verifier
	ClientID      string
	VerifyTimeout time.Duration
	SecureCookie  bool

	// LoginRate and LoginBurst bound POST /gconnect per client address.
	LoginRate  float64
	LoginBurst int
}

// NewRouter creates the web page router with all page routes registered.
func NewRouter(cfg Config) (http.Handler, error) {
	tfs, err := webembed.TemplatesFS()
	if err != nil {
		return nil, fmt.Errorf("opening templates: %w", err)
	}
	templates, err := LoadTemplates(tfs)
	if err != nil {
		return nil, err
	}
	static, err := webembed.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("opening static assets: %w", err)
	}

	if cfg.LoginRate <= 0 {
		cfg.LoginRate = 1
	}
	if cfg.LoginBurst <= 0 {
		cfg.LoginBurst = 5
	}

	s := &Server{
		DB:            cfg.DB,
		Templates:     templates,
		Static:        static,
		Uploads:       cfg.Uploads,
		Keys:          cfg.Keys,
		Verifier:      cfg.Verifier,
		ClientID:      cfg.ClientID,
		VerifyTimeout: cfg.VerifyTimeout,
		SecureCookie:  cfg.SecureCookie,
		limiter:       NewRateLimiter(cfg.LoginRate, cfg.LoginBurst),
		validate:      newValidator(),
	}

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		// Middleware wraps each route so the mux records the matched
		// pattern on the caller's request.
		mux.Handle(pattern, s.SessionMiddleware(s.CSRFMiddleware(h)))
	}

	// Assets.
	mux.HandleFunc("GET /css/main.css", s.Stylesheet)
	mux.HandleFunc("GET /uploads/{filename}", s.Upload)

	// Browsing.
	handle("GET /{$}", s.CatalogPage)
	handle("GET /catalog", s.CatalogPage)
	handle("GET /catalog/{category}", s.CategoryPage)
	handle("GET /catalog/{category}/{id}", s.ItemPage)

	// Login.
	handle("GET /login", s.LoginPage)
	handle("POST /gconnect", s.Connect)
	handle("POST /logout", s.Logout)

	// Categories.
	handle("GET /categories/new", s.CategoryNewPage)
	handle("POST /categories/new", s.CategoryCreateSubmit)
	handle("GET /categories/{id}/edit", s.CategoryEditPage)
	handle("POST /categories/{id}/edit", s.CategoryEditSubmit)
	handle("GET /categories/{id}/delete", s.CategoryDeletePage)
	handle("POST /categories/{id}/delete", s.CategoryDeleteSubmit)

	// Items.
	handle("GET /catalog/{category}/new", s.ItemNewPage)
	handle("POST /catalog/{category}/new", s.ItemCreateSubmit)
	handle("GET /catalog/{category}/{id}/edit", s.ItemEditPage)
	handle("POST /catalog/{category}/{id}/edit", s.ItemEditSubmit)
	handle("GET /catalog/{category}/{id}/delete", s.ItemDeletePage)
	handle("POST /catalog/{category}/{id}/delete", s.ItemDeleteSubmit)

	return mux, nil
}
