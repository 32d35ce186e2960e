package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type feeRepository struct {
	db *gorm.DB
}

func (r *feeRepository) GetByEventRole(ctx context.Context, eventID, roleID uuid.UUID) (domain.RegistrationFee, error) {
	var rec registrationFeeModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("role_id = ?", roleID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RegistrationFee{}, domain.ErrNotFound
		}
		return domain.RegistrationFee{}, err
	}
	return toDomainFee(rec), nil
}

type paymentRepository struct {
	db *gorm.DB
}

// CreateTx counts the event's payments under a table lock on the event's rows
// and derives the reference from the count. References stay dense per event
// but are not guaranteed collision-free under heavy concurrent sign-up.
func (r *paymentRepository) CreateTx(ctx context.Context, params ports.CreatePaymentParams, outboxEvent ports.OutboxEvent) (domain.Payment, error) {
	var result domain.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&paymentModel{}).
			Where("event_id = ?", params.EventID).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Count(&count).Error; err != nil {
			return err
		}

		rec := paymentModel{
			UserID:      params.UserID,
			EventID:     params.EventID,
			RoleID:      params.RoleID,
			FeeID:       params.FeeID,
			AmountCents: params.AmountCents,
			Currency:    params.Currency,
			Status:      string(params.Status),
			Reference:   domain.PaymentReference(count + 1),
			CreatedAt:   params.CreatedAt,
			UpdatedAt:   params.CreatedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		if err := tx.Create(&portalOutboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: outboxEvent.PartitionKey,
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
			FirstSeenAt:  outboxEvent.OccurredAt,
		}).Error; err != nil {
			return err
		}

		result = toDomainPayment(rec)
		return nil
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return result, nil
}

func (r *paymentRepository) GetByUserEvent(ctx context.Context, userID, eventID uuid.UUID) (domain.Payment, error) {
	var rec paymentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("event_id = ?", eventID).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Payment{}, domain.ErrNotFound
		}
		return domain.Payment{}, err
	}
	return toDomainPayment(rec), nil
}
