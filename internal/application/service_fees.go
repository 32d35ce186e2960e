package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
)

// bindRegistrationFee creates the payment for a user's first exclusive role
// within an event. A payment that already exists for the (user, event) pair is
// returned as-is, which makes sign-up retries and role re-applies idempotent.
// Exempt fees produce an immediately confirmed payment.
func (s *Service) bindRegistrationFee(ctx context.Context, userID, eventID uuid.UUID, role domain.Role, fee domain.RegistrationFee) (domain.Payment, error) {
	existing, err := s.payments.GetByUserEvent(ctx, userID, eventID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Payment{}, fmt.Errorf("lookup payment: %w", err)
	}

	status := domain.PaymentPending
	if fee.Exempt {
		status = domain.PaymentConfirmed
	}

	now := s.nowFn()
	payload, _ := json.Marshal(map[string]any{
		"user_id":      userID,
		"event_id":     eventID,
		"role":         role.Name,
		"amount_cents": fee.AmountCents,
		"currency":     fee.Currency,
		"status":       status,
	})
	payment, err := s.payments.CreateTx(ctx, ports.CreatePaymentParams{
		UserID:      userID,
		EventID:     eventID,
		RoleID:      role.RoleID,
		FeeID:       fee.FeeID,
		AmountCents: fee.AmountCents,
		Currency:    fee.Currency,
		Status:      status,
		CreatedAt:   now,
	}, ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    "payment.created",
		PartitionKey: userID.String(),
		Payload:      payload,
		OccurredAt:   now,
	})
	if err != nil {
		return domain.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	return payment, nil
}

// resolveFee looks up the fee for an exclusive role and translates a missing
// record into the blocking configuration error.
func (s *Service) resolveFee(ctx context.Context, eventID uuid.UUID, role domain.Role) (domain.RegistrationFee, error) {
	fee, err := s.fees.GetByEventRole(ctx, eventID, role.RoleID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RegistrationFee{}, domain.ErrFeeNotConfigured
		}
		return domain.RegistrationFee{}, err
	}
	return fee, nil
}

// GetPayment returns the caller's payment for the given event.
func (s *Service) GetPayment(ctx context.Context, token string, eventID uuid.UUID) (PaymentView, error) {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return PaymentView{}, err
	}
	payment, err := s.payments.GetByUserEvent(ctx, claims.UserID, eventID)
	if err != nil {
		return PaymentView{}, err
	}
	return PaymentView{
		PaymentID:   payment.PaymentID,
		EventID:     payment.EventID,
		RoleID:      payment.RoleID,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		Status:      payment.Status,
		Reference:   payment.Reference,
		CreatedAt:   payment.CreatedAt,
	}, nil
}
