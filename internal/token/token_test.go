package token

import (
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", "HS256", 60)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.Access(42, "lider_municipal")
	if err != nil {
		t.Fatalf("Access: %v", err)
	}

	claims, err := m.Parse(signed, TypAccess)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, err := claims.SubjectID()
	if err != nil {
		t.Fatalf("SubjectID: %v", err)
	}
	if id != 42 {
		t.Errorf("subject = %d, want 42", id)
	}
	if claims.Role != "lider_municipal" {
		t.Errorf("role = %q, want lider_municipal", claims.Role)
	}
}

func TestParseRejectsWrongType(t *testing.T) {
	m := newTestManager(t)

	invite, err := m.LeaderInvite("lider_zona", 7, time.Hour)
	if err != nil {
		t.Fatalf("LeaderInvite: %v", err)
	}

	// An invitation must not pass as a bearer token.
	if _, err := m.Parse(invite, TypAccess); err != ErrWrongType {
		t.Errorf("Parse(invite as access) err = %v, want ErrWrongType", err)
	}

	claims, err := m.Parse(invite, TypLeaderInvite)
	if err != nil {
		t.Fatalf("Parse invite: %v", err)
	}
	if claims.InviteRole != "lider_zona" || claims.SuperiorID != 7 {
		t.Errorf("invite claims = %+v", claims)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.PersonInvite(3, -time.Minute)
	if err != nil {
		t.Fatalf("PersonInvite: %v", err)
	}
	if _, err := m.Parse(signed, TypPersonInvite); err != ErrInvalid {
		t.Errorf("Parse(expired) err = %v, want ErrInvalid", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t)
	other, err := NewManager("another-secret", "HS256", 60)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	signed, err := other.Access(1, "admin")
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if _, err := m.Parse(signed, TypAccess); err != ErrInvalid {
		t.Errorf("Parse(foreign) err = %v, want ErrInvalid", err)
	}
}

func TestNewManagerRejectsNonHMAC(t *testing.T) {
	if _, err := NewManager("secret", "RS256", 60); err == nil {
		t.Error("expected error for RS256")
	}
	if _, err := NewManager("secret", "nonsense", 60); err == nil {
		t.Error("expected error for unknown algorithm")
	}
}
