package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/model"
)

// CreateSession creates a new anonymous session that expires after ttl.
func CreateSession(ctx context.Context, db *sql.DB, ttl time.Duration) (*model.Session, error) {
	now := time.Now().UTC()
	s := &model.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		s.ID, s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	// Opportunistically clean up expired sessions.
	_, _ = db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, now,
	)

	return s, nil
}

// GetSession returns a live session by ID, or nil if it doesn't exist or has expired.
func GetSession(ctx context.Context, db *sql.DB, id string) (*model.Session, error) {
	s := &model.Session{}
	var state, identity, credential sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, state, identity, credential, created_at, expires_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &state, &identity, &credential, &s.CreatedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if !s.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	s.State = state.String
	s.Identity = identity.String
	s.Credential = credential.String
	return s, nil
}

// SetSessionState stores the anti-forgery nonce for a session's login attempt.
func SetSessionState(ctx context.Context, db *sql.DB, id, state string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sessions SET state = ? WHERE id = ?`, nullString(state), id,
	)
	if err != nil {
		return fmt.Errorf("setting session state: %w", err)
	}
	return nil
}

// AuthenticateSession records the verified identity and credential on a
// session and consumes its nonce.
func AuthenticateSession(ctx context.Context, db *sql.DB, id, identity, credential string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sessions SET identity = ?, credential = ?, state = NULL WHERE id = ?`,
		identity, credential, id,
	)
	if err != nil {
		return fmt.Errorf("authenticating session: %w", err)
	}
	return nil
}

// DeleteSession removes a session and everything stored on it.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
