package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RegistrationFee is the amount owed for holding a role within an event.
type RegistrationFee struct {
	FeeID       uuid.UUID
	EventID     uuid.UUID
	RoleID      uuid.UUID
	AmountCents int64
	Currency    string
	Exempt      bool
	CreatedAt   time.Time
}

// PaymentStatus tracks the billing lifecycle of a registration.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentCanceled  PaymentStatus = "canceled"
)

// Payment is created once per (user, event) at first exclusive-role
// assignment and keyed to that role's fee.
type Payment struct {
	PaymentID   uuid.UUID
	UserID      uuid.UUID
	EventID     uuid.UUID
	RoleID      uuid.UUID
	FeeID       uuid.UUID
	AmountCents int64
	Currency    string
	Status      PaymentStatus
	// Reference is a zero-padded per-event sequence assigned by counting
	// existing payments. Best-effort: not collision-free under concurrent
	// sign-ups for the same event.
	Reference string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PaymentReference formats the human-readable sequence number.
func PaymentReference(seq int64) string {
	return fmt.Sprintf("%06d", seq)
}
