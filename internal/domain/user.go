package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the portal's identity aggregate. Confirmed gates all access; an
// unconfirmed user can authenticate but is always routed to pending approval.
type User struct {
	UserID       uuid.UUID
	Email        string
	FullName     string
	Phone        string
	DocumentID   string
	PasswordHash string
	Confirmed    bool
	// RegisteredBy points at the representative who signed this user up, for
	// dependents registered on somebody else's behalf.
	RegisteredBy *uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// EventStatus is the lifecycle state of a competition event.
type EventStatus string

const (
	EventOpen      EventStatus = "open"
	EventClosed    EventStatus = "closed"
	EventSuspended EventStatus = "suspended"
	EventTesting   EventStatus = "testing"
)

// Event is a time-boxed competition with a registration window.
// Its lifecycle is owned elsewhere; the core only reads it.
type Event struct {
	EventID              uuid.UUID
	Name                 string
	Status               EventStatus
	RegistrationOpensAt  time.Time
	RegistrationClosesAt time.Time
	CreatedAt            time.Time
}

// Session models an authenticated portal session.
// We persist this separately to support per-device revocation.
type Session struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
}
