package ports

import (
	"time"

	"github.com/google/uuid"
)

// PasswordHasher abstracts the credential hashing scheme.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthClaims is the validated content of a session token.
type AuthClaims struct {
	UserID    uuid.UUID
	Email     string
	SessionID uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
	KeyID     string
}

// TokenSigner signs and validates session tokens. Held behind an interface so
// the application layer stays crypto-library agnostic.
type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	ParseAndValidate(raw string) (AuthClaims, error)
	PublicJWKs() ([]map[string]any, error)
}
