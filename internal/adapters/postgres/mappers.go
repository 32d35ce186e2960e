package postgres

import (
	"errors"
	"strings"

	"github.com/viralforge/event-portal/internal/domain"
	"gorm.io/gorm"
)

func toDomainUser(row userModel) domain.User {
	return domain.User{
		UserID:       row.UserID,
		Email:        row.Email,
		FullName:     row.FullName,
		Phone:        row.Phone,
		DocumentID:   row.DocumentID,
		PasswordHash: row.PasswordHash,
		Confirmed:    row.Confirmed,
		RegisteredBy: row.RegisteredBy,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		DeletedAt:    row.DeletedAt,
	}
}

func toDomainEvent(row eventModel) domain.Event {
	return domain.Event{
		EventID:              row.EventID,
		Name:                 row.Name,
		Status:               domain.EventStatus(row.Status),
		RegistrationOpensAt:  row.RegistrationOpensAt,
		RegistrationClosesAt: row.RegistrationClosesAt,
		CreatedAt:            row.CreatedAt,
	}
}

func toDomainRole(row roleModel) domain.Role {
	return domain.Role{
		RoleID:    row.RoleID,
		EventID:   row.EventID,
		Name:      row.Name,
		Category:  domain.RoleCategory(row.Category),
		CreatedAt: row.CreatedAt,
	}
}

func toDomainFee(row registrationFeeModel) domain.RegistrationFee {
	return domain.RegistrationFee{
		FeeID:       row.FeeID,
		EventID:     row.EventID,
		RoleID:      row.RoleID,
		AmountCents: row.AmountCents,
		Currency:    row.Currency,
		Exempt:      row.Exempt,
		CreatedAt:   row.CreatedAt,
	}
}

func toDomainPayment(row paymentModel) domain.Payment {
	return domain.Payment{
		PaymentID:   row.PaymentID,
		UserID:      row.UserID,
		EventID:     row.EventID,
		RoleID:      row.RoleID,
		FeeID:       row.FeeID,
		AmountCents: row.AmountCents,
		Currency:    row.Currency,
		Status:      domain.PaymentStatus(row.Status),
		Reference:   row.Reference,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.Session{
		SessionID:      row.SessionID,
		UserID:         row.UserID,
		IPAddress:      ip,
		UserAgent:      row.UserAgent,
		CreatedAt:      row.CreatedAt,
		LastActivityAt: row.LastActivityAt,
		ExpiresAt:      row.ExpiresAt,
		RevokedAt:      row.RevokedAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
