package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viralforge/event-portal/internal/domain"
	"gorm.io/gorm"
)

type verificationRepository struct {
	db *gorm.DB
}

func (r *verificationRepository) CreateConfirmationToken(ctx context.Context, userID uuid.UUID, tokenHash string, createdAt, expiresAt time.Time) error {
	rec := emailConfirmationTokenModel{
		UserID:    userID,
		TokenHash: tokenHash,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// ConsumeConfirmationToken marks the token used and returns its owner.
// One-shot: a consumed or expired token reads as not found.
func (r *verificationRepository) ConsumeConfirmationToken(ctx context.Context, tokenHash string, confirmedAt time.Time) (uuid.UUID, error) {
	var userID uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec emailConfirmationTokenModel
		if err := tx.
			Where("token_hash = ?", tokenHash).
			Where("confirmed_at IS NULL").
			Where("expires_at > ?", confirmedAt).
			Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&emailConfirmationTokenModel{}).
			Where("token_id = ?", rec.TokenID).
			Update("confirmed_at", confirmedAt).Error; err != nil {
			return err
		}
		userID = rec.UserID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}
