package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
)

// serverSecretKey names the settings row holding the key material that
// signs session cookies and CSRF tokens when none is configured.
const serverSecretKey = "server_secret"

// ServerSecret returns the persisted server secret, creating it on first use.
// Two processes starting together agree on whichever row landed first.
func ServerSecret(ctx context.Context, db *sql.DB) (string, error) {
	secret, err := setting(ctx, db, serverSecretKey)
	if err == nil {
		return secret, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating server secret: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`,
		serverSecretKey, hex.EncodeToString(raw),
	); err != nil {
		return "", fmt.Errorf("storing server secret: %w", err)
	}
	return setting(ctx, db, serverSecretKey)
}

func setting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("reading setting %s: %w", key, err)
	}
	return value, nil
}
