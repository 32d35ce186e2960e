package application

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

// Service implements the portal core use-cases: session lifecycle, role
// assignment, and registration fee binding. All I/O goes through ports so
// tests can inject in-memory fakes.
type Service struct {
	cfg          Config
	users        ports.UserRepository
	events       ports.EventRepository
	roles        ports.RoleRepository
	assignments  ports.AssignmentRepository
	fees         ports.FeeRepository
	payments     ports.PaymentRepository
	sessions     ports.SessionRepository
	verification ports.VerificationRepository
	outbox       ports.OutboxRepository
	revocations  ports.SessionRevocationStore
	lockouts     ports.LockoutStore
	selections   ports.EventSelectionStore
	hasher       ports.PasswordHasher
	tokenSigner  ports.TokenSigner
	notifier     *Notifier
	nowFn        func() time.Time
}

type Dependencies struct {
	Config       Config
	Users        ports.UserRepository
	Events       ports.EventRepository
	Roles        ports.RoleRepository
	Assignments  ports.AssignmentRepository
	Fees         ports.FeeRepository
	Payments     ports.PaymentRepository
	Sessions     ports.SessionRepository
	Verification ports.VerificationRepository
	Outbox       ports.OutboxRepository
	Revocations  ports.SessionRevocationStore
	Lockouts     ports.LockoutStore
	Selections   ports.EventSelectionStore
	Hasher       ports.PasswordHasher
	TokenSigner  ports.TokenSigner
}

func NewService(deps Dependencies) *Service {
	return &Service{
		cfg:          deps.Config,
		users:        deps.Users,
		events:       deps.Events,
		roles:        deps.Roles,
		assignments:  deps.Assignments,
		fees:         deps.Fees,
		payments:     deps.Payments,
		sessions:     deps.Sessions,
		verification: deps.Verification,
		outbox:       deps.Outbox,
		revocations:  deps.Revocations,
		lockouts:     deps.Lockouts,
		selections:   deps.Selections,
		hasher:       deps.Hasher,
		tokenSigner:  deps.TokenSigner,
		notifier:     NewNotifier(),
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

// AuthEvents exposes the credential-state notification stream.
func (s *Service) AuthEvents() *Notifier { return s.notifier }

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func randomHex(bytesLen int) string {
	raw := make([]byte, bytesLen)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

// routeDecision resolves the route with event-selection awareness. Role
// assignments are always event-scoped, so without an active event the
// assignment set is unknown, not empty: a confirmed user is prompted to pick
// an event rather than being misread as holding zero roles. Confirmation
// still gates everything.
func routeDecision(user domain.User, hasEvent bool, assignments []domain.RoleAssignment) domain.RoutingDecision {
	if !user.Confirmed || hasEvent {
		return domain.ResolveRoute(user, assignments)
	}
	return domain.RoutingDecision{Route: domain.RouteEventSelection}
}

func toUserView(u domain.User) UserView {
	return UserView{
		UserID:    u.UserID,
		Email:     u.Email,
		FullName:  u.FullName,
		Confirmed: u.Confirmed,
	}
}
