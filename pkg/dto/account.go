package dto

import (
	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type AccountProfile struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            *string   `json:"email,omitempty"`
	TelegramID       *string   `json:"telegram_id,omitempty"`
	TelegramUsername *string   `json:"telegram_username,omitempty"`
	IsAdmin          bool      `json:"is_admin"`
}

func AccountProfileFrom(a *models.Account) AccountProfile {
	return AccountProfile{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		TelegramID:       a.TelegramID,
		TelegramUsername: a.TelegramUsername,
		IsAdmin:          a.IsAdmin,
	}
}

func AccountProfilesFrom(accounts []models.Account) []AccountProfile {
	out := make([]AccountProfile, 0, len(accounts))
	for i := range accounts {
		out = append(out, AccountProfileFrom(&accounts[i]))
	}
	return out
}

// UpdateProfileRequest changes only the fields that are present. Setting
// NewPassword requires CurrentPassword once the account has a password.
type UpdateProfileRequest struct {
	Name            *string `json:"name,omitempty"`
	Email           *string `json:"email,omitempty"`
	CurrentPassword string  `json:"current_password,omitempty"`
	NewPassword     string  `json:"new_password,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.NewPassword, validation.Length(8, 72)),
	)
}
