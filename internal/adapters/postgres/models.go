package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"column:email"`
	FullName     string     `gorm:"column:full_name"`
	Phone        string     `gorm:"column:phone"`
	DocumentID   string     `gorm:"column:document_id"`
	PasswordHash string     `gorm:"column:password_hash"`
	Confirmed    bool       `gorm:"column:confirmed"`
	RegisteredBy *uuid.UUID `gorm:"column:registered_by"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	DeletedAt    *time.Time `gorm:"column:deleted_at"`
}

func (userModel) TableName() string { return "users" }

type eventModel struct {
	EventID              uuid.UUID `gorm:"column:event_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                 string    `gorm:"column:name"`
	Status               string    `gorm:"column:status"`
	RegistrationOpensAt  time.Time `gorm:"column:registration_opens_at"`
	RegistrationClosesAt time.Time `gorm:"column:registration_closes_at"`
	CreatedAt            time.Time `gorm:"column:created_at"`
}

func (eventModel) TableName() string { return "events" }

type roleModel struct {
	RoleID    uuid.UUID `gorm:"column:role_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id"`
	Name      string    `gorm:"column:name"`
	Category  string    `gorm:"column:category"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (roleModel) TableName() string { return "roles" }

type roleAssignmentModel struct {
	AssignmentID uuid.UUID `gorm:"column:assignment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id"`
	EventID      uuid.UUID `gorm:"column:event_id"`
	RoleID       uuid.UUID `gorm:"column:role_id"`
	RoleCategory string    `gorm:"column:role_category"`
	AssignedAt   time.Time `gorm:"column:assigned_at"`
}

func (roleAssignmentModel) TableName() string { return "role_assignments" }

type registrationFeeModel struct {
	FeeID       uuid.UUID `gorm:"column:fee_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID     uuid.UUID `gorm:"column:event_id"`
	RoleID      uuid.UUID `gorm:"column:role_id"`
	AmountCents int64     `gorm:"column:amount_cents"`
	Currency    string    `gorm:"column:currency"`
	Exempt      bool      `gorm:"column:exempt"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (registrationFeeModel) TableName() string { return "registration_fees" }

type paymentModel struct {
	PaymentID   uuid.UUID `gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id"`
	EventID     uuid.UUID `gorm:"column:event_id"`
	RoleID      uuid.UUID `gorm:"column:role_id"`
	FeeID       uuid.UUID `gorm:"column:fee_id"`
	AmountCents int64     `gorm:"column:amount_cents"`
	Currency    string    `gorm:"column:currency"`
	Status      string    `gorm:"column:status"`
	Reference   string    `gorm:"column:reference"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

type sessionModel struct {
	SessionID      uuid.UUID  `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID  `gorm:"column:user_id"`
	IPAddress      *string    `gorm:"column:ip_address"`
	UserAgent      string     `gorm:"column:user_agent"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	LastActivityAt time.Time  `gorm:"column:last_activity_at"`
	ExpiresAt      time.Time  `gorm:"column:expires_at"`
	RevokedAt      *time.Time `gorm:"column:revoked_at"`
}

func (sessionModel) TableName() string { return "sessions" }

type emailConfirmationTokenModel struct {
	TokenID     uuid.UUID  `gorm:"column:token_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID  `gorm:"column:user_id"`
	TokenHash   string     `gorm:"column:token_hash"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	ExpiresAt   time.Time  `gorm:"column:expires_at"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at"`
}

func (emailConfirmationTokenModel) TableName() string { return "email_confirmation_tokens" }

type portalOutboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;type:uuid;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (portalOutboxModel) TableName() string { return "portal_outbox" }
