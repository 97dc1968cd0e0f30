package models

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            *string   `json:"email,omitempty"`
	PasswordHash     *string   `json:"-"`
	TelegramID       *string   `json:"telegram_id,omitempty"`
	TelegramUsername *string   `json:"telegram_username,omitempty"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PendingAdmin is a handle pre-authorized for admin rights before its owner
// has ever signed in.
type PendingAdmin struct {
	ID               uuid.UUID  `json:"id"`
	TelegramUsername string     `json:"telegram_username"`
	CreatedBy        *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
