package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"gorm.io/gorm"
)

type eventRepository struct {
	db *gorm.DB
}

func (r *eventRepository) GetByID(ctx context.Context, eventID uuid.UUID) (domain.Event, error) {
	var rec eventModel
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Event{}, domain.ErrNotFound
		}
		return domain.Event{}, err
	}
	return toDomainEvent(rec), nil
}

type roleRepository struct {
	db *gorm.DB
}

func (r *roleRepository) GetByID(ctx context.Context, roleID uuid.UUID) (domain.Role, error) {
	var rec roleModel
	if err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Role{}, domain.ErrNotFound
		}
		return domain.Role{}, err
	}
	return toDomainRole(rec), nil
}

func (r *roleRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.Role, error) {
	var rows []roleModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainRole(row))
	}
	return result, nil
}
