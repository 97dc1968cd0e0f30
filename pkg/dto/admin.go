package dto

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateAdminRequest struct {
	TelegramUsername string `json:"telegram_username"`
}

func (r CreateAdminRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TelegramUsername,
			validation.Required,
			validation.Length(1, 64),
			validation.By(notOnlyAt),
		),
	)
}

func notOnlyAt(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimPrefix(strings.TrimSpace(s), "@") == "" {
		return errors.New("must contain a username")
	}
	return nil
}

type PendingAdminResponse struct {
	ID               uuid.UUID  `json:"id"`
	TelegramUsername string     `json:"telegram_username"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func PendingAdminFrom(p *models.PendingAdmin) PendingAdminResponse {
	return PendingAdminResponse{
		ID:               p.ID,
		TelegramUsername: p.TelegramUsername,
		CreatedBy:        p.CreatedBy,
		CreatedAt:        p.CreatedAt,
	}
}

func PendingAdminsFrom(pending []models.PendingAdmin) []PendingAdminResponse {
	out := make([]PendingAdminResponse, 0, len(pending))
	for i := range pending {
		out = append(out, PendingAdminFrom(&pending[i]))
	}
	return out
}

// CreateAdminResponse has exactly one of User or PendingAdmin set.
type CreateAdminResponse struct {
	Message      string                `json:"message"`
	User         *AccountProfile       `json:"user,omitempty"`
	PendingAdmin *PendingAdminResponse `json:"pending_admin,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RevokeAdminResponse struct {
	Message string         `json:"message"`
	User    AccountProfile `json:"user"`
}
