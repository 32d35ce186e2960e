package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRevocationStore flags revoked sessions for fast checks ahead of the
// database row.
type SessionRevocationStore interface {
	MarkRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) error
	IsRevoked(ctx context.Context, sessionID uuid.UUID) (bool, error)
}

// LockoutState is the current brute-force counter for a sign-in identifier.
type LockoutState struct {
	FailedCount int
	LockedUntil *time.Time
}

// LockoutStore tracks failed sign-in attempts and temporary lockouts.
type LockoutStore interface {
	Get(ctx context.Context, key string) (LockoutState, error)
	RecordFailure(ctx context.Context, key string, now time.Time, threshold int, lockoutWindow time.Duration) (LockoutState, error)
	Clear(ctx context.Context, key string) error
}

// EventSelectionStore persists the client's active event selection, keyed by
// session. This is the only durable client-side state the core owns.
type EventSelectionStore interface {
	Put(ctx context.Context, sessionID uuid.UUID, eventID uuid.UUID, ttl time.Duration) error
	Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, bool, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}
