package postgres

import (
	"github.com/viralforge/event-portal/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles every Postgres-backed port implementation behind a
// single constructor so wiring stays in one place.
type Repositories struct {
	Users        ports.UserRepository
	Events       ports.EventRepository
	Roles        ports.RoleRepository
	Assignments  ports.AssignmentRepository
	Fees         ports.FeeRepository
	Payments     ports.PaymentRepository
	Sessions     ports.SessionRepository
	Verification ports.VerificationRepository
	Outbox       ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:        &userRepository{db: db},
		Events:       &eventRepository{db: db},
		Roles:        &roleRepository{db: db},
		Assignments:  &assignmentRepository{db: db},
		Fees:         &feeRepository{db: db},
		Payments:     &paymentRepository{db: db},
		Sessions:     &sessionRepository{db: db},
		Verification: &verificationRepository{db: db},
		Outbox:       &outboxRepository{db: db},
	}
}
