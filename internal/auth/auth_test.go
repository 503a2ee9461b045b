package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/katalog/internal/model"
)

func testKeys(t *testing.T) Keys {
	t.Helper()
	k, err := DeriveKeys("test-secret")
	if err != nil {
		t.Fatalf("DeriveKeys: %v", err)
	}
	return k
}

func TestDeriveKeys(t *testing.T) {
	k := testKeys(t)
	if len(k.Session) != 32 || len(k.CSRF) != 32 {
		t.Fatalf("expected 32-byte keys, got %d and %d", len(k.Session), len(k.CSRF))
	}
	if string(k.Session) == string(k.CSRF) {
		t.Error("session and CSRF keys must differ")
	}

	again := testKeys(t)
	if string(again.Session) != string(k.Session) {
		t.Error("derivation must be deterministic")
	}

	if _, err := DeriveKeys(""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestSignAndParseSession(t *testing.T) {
	k := testKeys(t)

	token, err := SignSession(k.Session, "session-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("SignSession: %v", err)
	}

	id, err := ParseSession(k.Session, token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if id != "session-1" {
		t.Errorf("expected session-1, got %q", id)
	}
}

func TestParseSessionRejects(t *testing.T) {
	k := testKeys(t)
	other, _ := DeriveKeys("other-secret")

	token, _ := SignSession(k.Session, "session-1", time.Now().Add(time.Hour))
	if _, err := ParseSession(other.Session, token); err == nil {
		t.Error("expected error for wrong key")
	}

	expired, _ := SignSession(k.Session, "session-1", time.Now().Add(-time.Hour))
	if _, err := ParseSession(k.Session, expired); err == nil {
		t.Error("expected error for expired token")
	}

	if _, err := ParseSession(k.Session, "not-a-token"); err == nil {
		t.Error("expected error for garbage")
	}
}

func TestCSRFToken(t *testing.T) {
	k := testKeys(t)

	token := CSRFToken(k.CSRF, "session-1")
	if !ValidCSRFToken(k.CSRF, "session-1", token) {
		t.Error("expected token valid for its session")
	}
	if ValidCSRFToken(k.CSRF, "session-2", token) {
		t.Error("token must not validate for another session")
	}
	if ValidCSRFToken(k.Session, "session-1", token) {
		t.Error("token must not validate under another key")
	}
	if ValidCSRFToken(k.CSRF, "", "") || ValidCSRFToken(k.CSRF, "session-1", "") {
		t.Error("empty inputs must not validate")
	}
}

func TestCurrentIdentity(t *testing.T) {
	if _, ok := CurrentIdentity(nil); ok {
		t.Error("nil session has no identity")
	}
	if _, ok := CurrentIdentity(&model.Session{Identity: "123"}); ok {
		t.Error("anonymous session has no identity")
	}
	id, ok := CurrentIdentity(&model.Session{Identity: "123", Credential: "tok"})
	if !ok || id != "123" {
		t.Errorf("expected identity 123, got %q, %v", id, ok)
	}
}

func TestCheckOwner(t *testing.T) {
	item := &model.Item{ID: 1, OwnerID: "alice"}

	tests := []struct {
		name    string
		session *model.Session
		want    error
	}{
		{"no session", nil, ErrUnauthenticated},
		{"anonymous", &model.Session{ID: "s"}, ErrUnauthenticated},
		{"credential without identity", &model.Session{ID: "s", Credential: "tok"}, ErrNoIdentity},
		{"other user", &model.Session{ID: "s", Credential: "tok", Identity: "bob"}, ErrForbidden},
		{"owner", &model.Session{ID: "s", Credential: "tok", Identity: "alice"}, nil},
	}

	for _, tt := range tests {
		err := CheckOwner(tt.session, item)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: CheckOwner = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestState(t *testing.T) {
	state, err := NewState()
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if len(state) != 32 || strings.Trim(state, "0123456789abcdef") != "" {
		t.Errorf("expected 32 hex chars, got %q", state)
	}

	other, _ := NewState()
	if other == state {
		t.Error("states must be unique")
	}

	s := &model.Session{ID: "s", State: state}
	if err := CheckState(s, state); err != nil {
		t.Errorf("CheckState with matching state: %v", err)
	}
	if err := CheckState(s, other); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("expected ErrStateMismatch, got %v", err)
	}
	if err := CheckState(&model.Session{ID: "s"}, ""); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("expected ErrStateMismatch for unset state, got %v", err)
	}
	if err := CheckState(nil, state); !errors.Is(err, ErrStateMismatch) {
		t.Errorf("expected ErrStateMismatch for nil session, got %v", err)
	}
}
