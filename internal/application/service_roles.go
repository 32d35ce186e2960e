package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

// SetRoles replaces the caller's role set for an event with the requested set.
// The desired set is validated up front: it must be non-empty, every role must
// belong to the event, and it may carry at most one exclusive role. A request
// that violates exclusivity is rejected whole; no subset is applied. A
// request that would replace an exclusive role already backed by a payment is
// also rejected: that change belongs to SwapExclusiveRole, which re-points
// the payment atomically.
func (s *Service) SetRoles(ctx context.Context, token string, eventID uuid.UUID, req SetRolesRequest) ([]RoleView, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(req.RoleIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", domain.ErrInvalidInput)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	desired := make([]domain.Role, 0, len(req.RoleIDs))
	seen := make(map[uuid.UUID]bool, len(req.RoleIDs))
	exclusiveCount := 0
	var exclusiveRole *domain.Role
	for _, roleID := range req.RoleIDs {
		if seen[roleID] {
			continue
		}
		seen[roleID] = true
		role, err := s.roles.GetByID(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if role.EventID != event.EventID {
			return nil, fmt.Errorf("%w: role %s does not belong to event", domain.ErrInvalidInput, role.Name)
		}
		if role.IsExclusive() {
			exclusiveCount++
			r := role
			exclusiveRole = &r
		}
		desired = append(desired, role)
	}
	if exclusiveCount > 1 {
		return nil, fmt.Errorf("%w: at most one of Athlete or General Public may be held", domain.ErrExclusivityViolation)
	}

	current, err := s.assignments.ListByUserEvent(ctx, claims.UserID, event.EventID)
	if err != nil {
		return nil, err
	}
	if sameRoleSet(current, desired) {
		return roleViews(desired), nil
	}

	// Resolve the fee before any write so a misconfigured event blocks the
	// change instead of leaving an unbilled exclusive assignment.
	var fee domain.RegistrationFee
	needPayment := false
	if exclusiveRole != nil {
		payment, err := s.payments.GetByUserEvent(ctx, claims.UserID, event.EventID)
		switch {
		case err == nil:
			// The payment is keyed to the exclusive role. Changing that role
			// must go through the swap so the payment is re-pointed in the
			// same transaction, never left billing the old role's fee.
			if payment.RoleID != exclusiveRole.RoleID {
				return nil, fmt.Errorf("%w: changing the exclusive role requires the swap operation", domain.ErrInvalidInput)
			}
		case errors.Is(err, domain.ErrNotFound):
			fee, err = s.resolveFee(ctx, event.EventID, *exclusiveRole)
			if err != nil {
				return nil, err
			}
			needPayment = true
		default:
			return nil, err
		}
	}

	now := s.nowFn()
	desiredIDs := make([]uuid.UUID, len(desired))
	desiredNames := make([]string, len(desired))
	for i, role := range desired {
		desiredIDs[i] = role.RoleID
		desiredNames[i] = role.Name
	}
	payload, _ := json.Marshal(map[string]any{
		"user_id":  claims.UserID,
		"event_id": event.EventID,
		"roles":    desiredNames,
	})
	if err := s.assignments.ReplaceTx(ctx, claims.UserID, event.EventID, desiredIDs, now, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "roles.assigned",
		PartitionKey: claims.UserID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		return nil, err
	}

	if needPayment {
		if _, err := s.bindRegistrationFee(ctx, claims.UserID, event.EventID, *exclusiveRole, fee); err != nil {
			return nil, err
		}
	}

	// Re-read and verify the stored set matches what was requested.
	applied, err := s.assignments.ListByUserEvent(ctx, claims.UserID, event.EventID)
	if err != nil {
		return nil, err
	}
	if !sameRoleSet(applied, desired) {
		return nil, fmt.Errorf("%w: stored roles do not match requested set", domain.ErrPostconditionFailed)
	}

	return roleViews(desired), nil
}

// SwapExclusiveRole atomically exchanges the caller's exclusive role within an
// event and re-points the registration payment at the new role's fee. The swap
// runs in one transaction: a concurrent reader sees the old role or the new
// one, never both and never neither.
func (s *Service) SwapExclusiveRole(ctx context.Context, token string, eventID uuid.UUID, req SwapExclusiveRoleRequest) ([]RoleView, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if req.NewRoleID == uuid.Nil || req.OldRoleID == uuid.Nil {
		return nil, fmt.Errorf("%w: new_role_id and old_role_id are required", domain.ErrInvalidInput)
	}
	if req.NewRoleID == req.OldRoleID {
		return nil, fmt.Errorf("%w: new role equals current role", domain.ErrInvalidInput)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	newRole, err := s.roles.GetByID(ctx, req.NewRoleID)
	if err != nil {
		return nil, err
	}
	oldRole, err := s.roles.GetByID(ctx, req.OldRoleID)
	if err != nil {
		return nil, err
	}
	if newRole.EventID != event.EventID || oldRole.EventID != event.EventID {
		return nil, fmt.Errorf("%w: role does not belong to event", domain.ErrInvalidInput)
	}
	if !newRole.IsExclusive() || !oldRole.IsExclusive() {
		return nil, fmt.Errorf("%w: swap applies to exclusive roles only", domain.ErrInvalidInput)
	}

	current, err := s.assignments.ListByUserEvent(ctx, claims.UserID, event.EventID)
	if err != nil {
		return nil, err
	}
	if !holdsRole(current, oldRole.RoleID) {
		return nil, fmt.Errorf("%w: current exclusive role not held", domain.ErrNotFound)
	}

	fee, err := s.resolveFee(ctx, event.EventID, newRole)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"user_id":   claims.UserID,
		"event_id":  event.EventID,
		"from_role": oldRole.Name,
		"to_role":   newRole.Name,
	})
	if err := s.assignments.SwapExclusiveTx(ctx, claims.UserID, event.EventID, newRole.RoleID, oldRole.RoleID, fee, now, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "roles.swapped",
		PartitionKey: claims.UserID.String(),
		Payload:      payload,
		OccurredAt:   now,
	}); err != nil {
		return nil, err
	}

	applied, err := s.assignments.ListByUserEvent(ctx, claims.UserID, event.EventID)
	if err != nil {
		return nil, err
	}
	if domain.CountExclusive(applied) != 1 || !holdsRole(applied, newRole.RoleID) {
		return nil, fmt.Errorf("%w: exclusive role not swapped cleanly", domain.ErrPostconditionFailed)
	}

	out := make([]domain.Role, 0, len(applied))
	for _, a := range applied {
		out = append(out, domain.Role{RoleID: a.RoleID, EventID: event.EventID, Name: a.RoleName, Category: a.Category})
	}
	return roleViews(out), nil
}

// ListEventRoles returns the event's role catalog with the caller's held
// roles flagged.
func (s *Service) ListEventRoles(ctx context.Context, token string, eventID uuid.UUID) ([]RoleView, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	catalog, err := s.roles.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	current, err := s.assignments.ListByUserEvent(ctx, claims.UserID, eventID)
	if err != nil {
		return nil, err
	}
	held := make(map[uuid.UUID]bool, len(current))
	for _, a := range current {
		held[a.RoleID] = true
	}
	views := make([]RoleView, 0, len(catalog))
	for _, role := range catalog {
		views = append(views, RoleView{
			RoleID:   role.RoleID,
			Name:     role.Name,
			Category: role.Category,
			Assigned: held[role.RoleID],
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

func roleViews(roles []domain.Role) []RoleView {
	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, RoleView{
			RoleID:   role.RoleID,
			Name:     role.Name,
			Category: role.Category,
			Assigned: true,
		})
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

func sameRoleSet(current []domain.RoleAssignment, desired []domain.Role) bool {
	if len(current) != len(desired) {
		return false
	}
	have := make(map[uuid.UUID]bool, len(current))
	for _, a := range current {
		have[a.RoleID] = true
	}
	for _, role := range desired {
		if !have[role.RoleID] {
			return false
		}
	}
	return true
}

func holdsRole(assignments []domain.RoleAssignment, roleID uuid.UUID) bool {
	for _, a := range assignments {
		if a.RoleID == roleID {
			return true
		}
	}
	return false
}
