package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"github.com/viralforge/event-portal/internal/ports"
	"gorm.io/gorm"
)

type assignmentRepository struct {
	db *gorm.DB
}

// loadRoleCategories resolves the category for every requested role.
// A missing role fails the whole write.
func loadRoleCategories(tx *gorm.DB, roleIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	var rows []roleModel
	if err := tx.Where("role_id IN ?", roleIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make(map[uuid.UUID]string, len(rows))
	for _, row := range rows {
		categories[row.RoleID] = row.Category
	}
	for _, roleID := range roleIDs {
		if _, ok := categories[roleID]; !ok {
			return nil, domain.ErrNotFound
		}
	}
	return categories, nil
}

// assignmentRow is the join of an assignment with its role definition.
type assignmentRow struct {
	UserID     uuid.UUID `gorm:"column:user_id"`
	EventID    uuid.UUID `gorm:"column:event_id"`
	RoleID     uuid.UUID `gorm:"column:role_id"`
	RoleName   string    `gorm:"column:role_name"`
	Category   string    `gorm:"column:category"`
	AssignedAt time.Time `gorm:"column:assigned_at"`
}

func (r *assignmentRepository) ListByUserEvent(ctx context.Context, userID, eventID uuid.UUID) ([]domain.RoleAssignment, error) {
	var rows []assignmentRow
	if err := r.db.WithContext(ctx).
		Table("role_assignments AS a").
		Select("a.user_id, a.event_id, a.role_id, r.name AS role_name, r.category, a.assigned_at").
		Joins("JOIN roles r ON r.role_id = a.role_id").
		Where("a.user_id = ?", userID).
		Where("a.event_id = ?", eventID).
		Order("a.assigned_at ASC, r.name ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.RoleAssignment{
			UserID:     row.UserID,
			EventID:    row.EventID,
			RoleID:     row.RoleID,
			RoleName:   row.RoleName,
			Category:   domain.RoleCategory(row.Category),
			AssignedAt: row.AssignedAt,
		})
	}
	return result, nil
}

func (r *assignmentRepository) ReplaceTx(ctx context.Context, userID, eventID uuid.UUID, roleIDs []uuid.UUID, assignedAt time.Time, outboxEvent ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := loadRoleCategories(tx, roleIDs)
		if err != nil {
			return err
		}
		exclusives := 0
		for _, category := range categories {
			if category == string(domain.CategoryExclusive) {
				exclusives++
			}
		}
		if exclusives > 1 {
			return domain.ErrExclusivityViolation
		}

		if err := tx.
			Where("user_id = ?", userID).
			Where("event_id = ?", eventID).
			Delete(&roleAssignmentModel{}).Error; err != nil {
			return err
		}
		for _, roleID := range roleIDs {
			rec := roleAssignmentModel{
				UserID:       userID,
				EventID:      eventID,
				RoleID:       roleID,
				RoleCategory: categories[roleID],
				AssignedAt:   assignedAt,
			}
			if err := tx.Create(&rec).Error; err != nil {
				if isUniqueViolation(err) {
					return domain.ErrExclusivityViolation
				}
				return err
			}
		}

		return tx.Create(&portalOutboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: outboxEvent.PartitionKey,
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
			FirstSeenAt:  outboxEvent.OccurredAt,
		}).Error
	})
}

// SwapExclusiveTx replaces the exclusive assignment and re-points the payment
// at the new role's fee in one transaction. The delete is conditioned on the
// old role so a lost race surfaces as not-found instead of a double role.
func (r *assignmentRepository) SwapExclusiveTx(ctx context.Context, userID, eventID, newRoleID, oldRoleID uuid.UUID, newFee domain.RegistrationFee, swappedAt time.Time, outboxEvent ports.OutboxEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("user_id = ?", userID).
			Where("event_id = ?", eventID).
			Where("role_id = ?", oldRoleID).
			Delete(&roleAssignmentModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		rec := roleAssignmentModel{
			UserID:       userID,
			EventID:      eventID,
			RoleID:       newRoleID,
			RoleCategory: string(domain.CategoryExclusive),
			AssignedAt:   swappedAt,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrExclusivityViolation
			}
			return err
		}

		if err := tx.Model(&paymentModel{}).
			Where("user_id = ?", userID).
			Where("event_id = ?", eventID).
			Updates(map[string]any{
				"role_id":      newRoleID,
				"fee_id":       newFee.FeeID,
				"amount_cents": newFee.AmountCents,
				"currency":     newFee.Currency,
				"updated_at":   swappedAt,
			}).Error; err != nil {
			return err
		}

		return tx.Create(&portalOutboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: outboxEvent.PartitionKey,
			Payload:      string(outboxEvent.Payload),
			CreatedAt:    outboxEvent.OccurredAt,
			FirstSeenAt:  outboxEvent.OccurredAt,
		}).Error
	})
}
