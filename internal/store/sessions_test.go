package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/katalog/internal/db"
)

func TestSessionLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, database, time.Hour)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if s.ID == "" {
		t.Fatal("expected session id")
	}

	got, err := GetSession(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Authenticated() {
		t.Error("new session should be anonymous")
	}

	if err := SetSessionState(ctx, database, s.ID, "nonce"); err != nil {
		t.Fatalf("SetSessionState: %v", err)
	}
	got, _ = GetSession(ctx, database, s.ID)
	if got.State != "nonce" {
		t.Errorf("expected state 'nonce', got %q", got.State)
	}

	if err := AuthenticateSession(ctx, database, s.ID, "12345", "access-token"); err != nil {
		t.Fatalf("AuthenticateSession: %v", err)
	}
	got, _ = GetSession(ctx, database, s.ID)
	if !got.Authenticated() || got.Identity != "12345" || got.Credential != "access-token" {
		t.Errorf("unexpected session after authentication %+v", got)
	}
	if got.State != "" {
		t.Errorf("expected state consumed, got %q", got.State)
	}

	if err := DeleteSession(ctx, database, s.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	got, _ = GetSession(ctx, database, s.ID)
	if got != nil {
		t.Error("expected session gone after delete")
	}
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	s, err := CreateSession(ctx, database, -time.Minute)
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := GetSession(ctx, database, s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Error("expected expired session to be absent")
	}
}

func TestGetSessionUnknown(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetSession(context.Background(), database, "does-not-exist")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown session")
	}
}
