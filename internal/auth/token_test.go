package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenService_IssueAndParse_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "foodgram", time.Hour)

	raw, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if raw == "" {
		t.Fatalf("expected non-empty token")
	}

	uid, err := svc.Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if uid != "u1" {
		t.Fatalf("expected user id u1, got %q", uid)
	}
}

func TestTokenService_Parse_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", "foodgram", time.Hour)
	verifier := NewTokenService("secret-b", "foodgram", time.Hour)

	raw, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(raw); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Parse_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", "foodgram", -time.Minute)

	raw, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := svc.Parse(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Parse_Garbage(t *testing.T) {
	svc := NewTokenService("test-secret", "foodgram", time.Hour)
	if _, err := svc.Parse("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestPassword_HashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2" || hash == "" {
		t.Fatalf("hash should not equal plaintext")
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("expected non-matching password to fail")
	}
}
