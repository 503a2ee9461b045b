// Package app assembles the catalog HTTP handler from its parts.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/katalog/internal/api"
	"github.com/erazemk/katalog/internal/auth"
	"github.com/erazemk/katalog/internal/config"
	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/store"
	"github.com/erazemk/katalog/internal/upload"
	"github.com/erazemk/katalog/internal/web"
)

type options struct {
	verifier auth.Verifier
}

// Option customises New.
type Option func(*options)

// WithVerifier replaces the Google identity verifier.
func WithVerifier(v auth.Verifier) Option {
	return func(o *options) { o.verifier = v }
}

// New builds the complete handler: pages, exports and metrics behind the
// request logging and instrumentation middleware.
func New(ctx context.Context, cfg *config.Config, database *sql.DB, opts ...Option) (http.Handler, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.verifier == nil {
		if cfg.GoogleClientID == "" {
			slog.Warn("GOOGLE_CLIENT_ID is not set, logins will fail")
		}
		o.verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	}

	secret := cfg.SecretKey
	if secret == "" {
		var err error
		secret, err = store.ServerSecret(ctx, database)
		if err != nil {
			return nil, fmt.Errorf("loading server secret: %w", err)
		}
	}
	keys, err := auth.DeriveKeys(secret)
	if err != nil {
		return nil, err
	}

	uploads, err := upload.New(upload.Config{
		Dir:               cfg.UploadFolder,
		AllowedExtensions: cfg.AllowedExtensions,
		MaxBytes:          cfg.MaxUploadBytes,
	})
	if err != nil {
		return nil, err
	}

	webRouter, err := web.NewRouter(web.Config{
		DB:            database,
		Uploads:       uploads,
		Keys:          keys,
		Verifier:      o.verifier,
		ClientID:      cfg.GoogleClientID,
		VerifyTimeout: cfg.VerifyTimeout,
		SecureCookie:  strings.HasPrefix(cfg.BaseURL, "https://"),
	})
	if err != nil {
		return nil, fmt.Errorf("setting up web router: %w", err)
	}
	apiRouter := api.NewRouter(database, cfg.BaseURL)

	// Exports and metrics take priority, pages handle the rest.
	mux := http.NewServeMux()
	mux.Handle("GET /catalog.json", apiRouter)
	mux.Handle("GET /feed.atom", apiRouter)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/", webRouter)

	slog.Info("uploads ready", "dir", uploads.Dir(), "extensions", cfg.AllowedExtensions)
	return metrics.InstrumentHandler(api.LoggingMiddleware(mux)), nil
}
