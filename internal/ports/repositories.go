package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
)

// CreateUserTxParams captures atomic user-creation inputs.
// Outbox metadata rides along so sign-up can be durable and replay-safe.
type CreateUserTxParams struct {
	Email        string
	FullName     string
	Phone        string
	DocumentID   string
	PasswordHash string
	RegisteredBy *uuid.UUID
	SignedUpAt   time.Time
}

// UserRepository defines persistence operations for portal users.
// The transactional create method enforces user+outbox consistency.
type UserRepository interface {
	CreateWithOutboxTx(ctx context.Context, params CreateUserTxParams, outboxEvent OutboxEvent) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	SetConfirmed(ctx context.Context, userID uuid.UUID, confirmed bool, updatedAt time.Time) error
}

// EventRepository reads events. Event lifecycle is owned by the organizer
// tooling; this core never mutates them.
type EventRepository interface {
	GetByID(ctx context.Context, eventID uuid.UUID) (domain.Event, error)
}

// RoleRepository reads role definitions scoped to an event.
type RoleRepository interface {
	GetByID(ctx context.Context, roleID uuid.UUID) (domain.Role, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Role, error)
}

// AssignmentRepository mutates role assignments for a (user, event).
// ReplaceTx applies the full desired set in one transaction; SwapExclusiveTx
// atomically swaps the exclusive assignment and re-points the payment fee so
// a concurrent reader can never observe both or neither exclusive role.
type AssignmentRepository interface {
	ListByUserEvent(ctx context.Context, userID, eventID uuid.UUID) ([]domain.RoleAssignment, error)
	ReplaceTx(ctx context.Context, userID, eventID uuid.UUID, roleIDs []uuid.UUID, assignedAt time.Time, outboxEvent OutboxEvent) error
	SwapExclusiveTx(ctx context.Context, userID, eventID, newRoleID, oldRoleID uuid.UUID, newFee domain.RegistrationFee, swappedAt time.Time, outboxEvent OutboxEvent) error
}

// FeeRepository resolves registration fees keyed by (event, role).
type FeeRepository interface {
	GetByEventRole(ctx context.Context, eventID, roleID uuid.UUID) (domain.RegistrationFee, error)
}

// CreatePaymentParams carries the initial payment record.
type CreatePaymentParams struct {
	UserID      uuid.UUID
	EventID     uuid.UUID
	RoleID      uuid.UUID
	FeeID       uuid.UUID
	AmountCents int64
	Currency    string
	Status      domain.PaymentStatus
	CreatedAt   time.Time
}

// PaymentRepository owns payment records. CreateTx counts existing payments
// for the event and assigns the zero-padded reference inside the same
// transaction as the insert.
type PaymentRepository interface {
	CreateTx(ctx context.Context, params CreatePaymentParams, outboxEvent OutboxEvent) (domain.Payment, error)
	GetByUserEvent(ctx context.Context, userID, eventID uuid.UUID) (domain.Payment, error)
}

// SessionCreateParams captures metadata required to create a session record.
type SessionCreateParams struct {
	UserID         uuid.UUID
	IPAddress      string
	UserAgent      string
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// SessionRepository manages persistent session lifecycle. Token parsing is
// separate so revocation and activity tracking stay source-of-truth driven.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByID(ctx context.Context, sessionID uuid.UUID) (domain.Session, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	RevokeByID(ctx context.Context, sessionID uuid.UUID, revokedAt time.Time) error
}

// VerificationRepository owns email-confirmation token lifecycle.
// Separate create/consume methods keep one-time-token invariants explicit.
type VerificationRepository interface {
	CreateConfirmationToken(ctx context.Context, userID uuid.UUID, tokenHash string, createdAt, expiresAt time.Time) error
	ConsumeConfirmationToken(ctx context.Context, tokenHash string, confirmedAt time.Time) (uuid.UUID, error)
}

// OutboxEvent is the write-side event payload prior to storage.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	FirstSeenAt    time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls the publish-retry workflow for domain events
// without leaking broker or DB details into the application layer.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
