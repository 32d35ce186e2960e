package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/ports"
)

func TestJWTSignerRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	in := ports.AuthClaims{
		UserID:    uuid.New(),
		Email:     "athlete@example.com",
		SessionID: uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(15 * time.Minute),
	}

	raw, err := signer.Sign(in)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	out, err := signer.ParseAndValidate(raw)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if out.UserID != in.UserID || out.SessionID != in.SessionID || out.Email != in.Email {
		t.Fatalf("claims mismatch: got %+v, want %+v", out, in)
	}
	if out.KeyID != "test-key-1" {
		t.Fatalf("kid = %q, want test-key-1", out.KeyID)
	}
}

func TestJWTSignerRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	past := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := signer.Sign(ports.AuthClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		IssuedAt:  past,
		ExpiresAt: past.Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signer.ParseAndValidate(raw); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestJWTSignerRejectsForeignIssuer(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("key-a")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, portalJWTClaims{
		UserID:    uuid.New().String(),
		SessionID: uuid.New().String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "viralforge-identity",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
		},
	})
	token.Header["kid"] = "key-a"
	raw, err := token.SignedString(signer.privateKey)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := signer.ParseAndValidate(raw); err == nil {
		t.Fatal("expected token from another issuer to be rejected")
	}
}

func TestJWTSignerRejectsForeignSignature(t *testing.T) {
	t.Parallel()

	signerA, _ := NewEphemeralJWTSigner("key-a")
	signerB, _ := NewEphemeralJWTSigner("key-b")

	now := time.Now().UTC()
	raw, err := signerA.Sign(ports.AuthClaims{
		UserID:    uuid.New(),
		SessionID: uuid.New(),
		IssuedAt:  now,
		ExpiresAt: now.Add(15 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signerB.ParseAndValidate(raw); err == nil {
		t.Fatal("expected token signed by another key to be rejected")
	}
}
