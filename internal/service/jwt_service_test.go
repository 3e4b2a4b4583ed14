package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueValidateRoundtrip(t *testing.T) {
	svc := NewJWTService("secret", 60*time.Minute)

	token, err := svc.Issue("user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	subject, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if subject != "user@example.com" {
		t.Fatalf("unexpected subject: %q", subject)
	}
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	svc := NewJWTService("secret", 60*time.Minute)
	issuedAt := time.Now().UTC()
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Justo antes de expirar sigue siendo válido.
	svc.now = func() time.Time { return issuedAt.Add(60*time.Minute - time.Second) }
	if _, err := svc.Validate(token); err != nil {
		t.Fatalf("expected valid before expiry, got %v", err)
	}

	// En o después de la expiración se rechaza.
	svc.now = func() time.Time { return issuedAt.Add(60*time.Minute + time.Second) }
	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_RejectsTamperedSignature(t *testing.T) {
	svc := NewJWTService("secret", 60*time.Minute)
	other := NewJWTService("other-secret", 60*time.Minute)

	token, err := other.Issue("user@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}
}

func TestJWTService_RejectsMissingSubject(t *testing.T) {
	svc := NewJWTService("secret", 60*time.Minute)
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    "multiuser-ai-assistant",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Validate(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for missing subject, got %v", err)
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := NewJWTService("secret", 60*time.Minute)
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    "other-issuer",
		Subject:   "user@example.com",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := svc.Validate(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	svc := NewJWTService("", 60*time.Minute)

	if _, err := svc.Issue("user@example.com"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on empty secret, got %v", err)
	}
}
