package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
)

type Config struct {
	TokenTTL           time.Duration
	SessionTTL         time.Duration
	SessionAbsoluteTTL time.Duration
	FailedThreshold    int
	LockoutDuration    time.Duration
	EventSelectionTTL  time.Duration
}

type SignUpRequest struct {
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	DocumentID   string     `json:"document_id"`
	EventID      uuid.UUID  `json:"event_id"`
	RoleID       uuid.UUID  `json:"role_id"`
	RegisteredBy *uuid.UUID `json:"registered_by,omitempty"`
}

type SignUpResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	PaymentReference string    `json:"payment_reference,omitempty"`
	PaymentStatus    string    `json:"payment_status,omitempty"`
}

type SignInRequest struct {
	Email string `json:"email"`
	// EventID is the client's persisted event selection; role assignments are
	// fetched scoped to it.
	EventID   uuid.UUID `json:"event_id"`
	Password  string    `json:"password"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

type SignInResponse struct {
	Token     string                 `json:"token"`
	SessionID uuid.UUID              `json:"session_id"`
	ExpiresIn int64                  `json:"expires_in"`
	Route     domain.Route           `json:"route"`
	Roles     []string               `json:"roles,omitempty"`
	User      UserView               `json:"user"`
	Decision  domain.RoutingDecision `json:"-"`
}

type UserView struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Confirmed bool      `json:"confirmed"`
}

type BootstrapRequest struct {
	Token     string `json:"token"`
	NavTarget string `json:"nav_target"`
}

// BootstrapResult mirrors the client bootstrap contract: either an anonymous
// session with an optional redirect, or a populated session with a route.
type BootstrapResult struct {
	Anonymous        bool                    `json:"anonymous"`
	RedirectToSignIn bool                    `json:"redirect_to_sign_in"`
	Route            domain.Route            `json:"route,omitempty"`
	Roles            []string                `json:"roles,omitempty"`
	User             *UserView               `json:"user,omitempty"`
	ActiveEventID    *uuid.UUID              `json:"active_event_id,omitempty"`
	Assignments      []domain.RoleAssignment `json:"-"`
}

type SessionView struct {
	User          UserView                `json:"user"`
	Route         domain.Route            `json:"route"`
	Roles         []string                `json:"roles,omitempty"`
	ActiveEventID *uuid.UUID              `json:"active_event_id,omitempty"`
	Assignments   []domain.RoleAssignment `json:"-"`
}

type SetRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids"`
}

type SwapExclusiveRoleRequest struct {
	NewRoleID uuid.UUID `json:"new_role_id"`
	OldRoleID uuid.UUID `json:"old_role_id"`
}

type RoleView struct {
	RoleID   uuid.UUID           `json:"role_id"`
	Name     string              `json:"name"`
	Category domain.RoleCategory `json:"category"`
	Assigned bool                `json:"assigned"`
}

type PaymentView struct {
	PaymentID   uuid.UUID            `json:"payment_id"`
	EventID     uuid.UUID            `json:"event_id"`
	RoleID      uuid.UUID            `json:"role_id"`
	AmountCents int64                `json:"amount_cents"`
	Currency    string               `json:"currency"`
	Status      domain.PaymentStatus `json:"status"`
	Reference   string               `json:"reference"`
	CreatedAt   time.Time            `json:"created_at"`
}
