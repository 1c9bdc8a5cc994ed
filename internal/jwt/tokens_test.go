package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestSessionRoundTrip(t *testing.T) {
	m := NewManager("secreto-de-test", "ajustes")

	tok, err := m.IssueSession("u1", time.Hour)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	uid, err := m.ParseSession(tok)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}
	if uid != "u1" {
		t.Errorf("uid = %q, want u1", uid)
	}
}

func TestReauthRoundTrip(t *testing.T) {
	m := NewManager("secreto-de-test", "ajustes")

	tok, err := m.IssueReauth("u1", 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.VerifyReauth(tok, "u1"); err != nil {
		t.Errorf("VerifyReauth: %v", err)
	}
	if err := m.VerifyReauth(tok, "u2"); !errors.Is(err, ErrSubjectMismatch) {
		t.Errorf("otro uid debe fallar con ErrSubjectMismatch, got %v", err)
	}
}

func TestReauthTokenIsNotASession(t *testing.T) {
	m := NewManager("secreto-de-test", "ajustes")

	tok, err := m.IssueReauth("u1", 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseSession(tok); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("reauth como sesión debe fallar, got %v", err)
	}
}

func TestSessionTokenIsNotReauth(t *testing.T) {
	m := NewManager("secreto-de-test", "ajustes")

	tok, err := m.IssueSession("u1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.VerifyReauth(tok, "u1"); !errors.Is(err, ErrWrongPurpose) {
		t.Errorf("sesión como reauth debe fallar, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	a := NewManager("secreto-a", "ajustes")
	b := NewManager("secreto-b", "ajustes")

	tok, err := a.IssueSession("u1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.ParseSession(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("firma inválida debe rechazarse, got %v", err)
	}
}

func TestExpiredRejected(t *testing.T) {
	m := NewManager("secreto-de-test", "ajustes")

	tok, err := m.IssueSession("u1", -2*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ParseSession(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token vencido debe rechazarse, got %v", err)
	}
}
