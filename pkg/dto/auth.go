package dto

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const TokenTypeBearer = "bearer"

// TelegramAuthRequest carries the Mini-App init data exactly as the client
// received it.
type TelegramAuthRequest struct {
	InitData string `json:"init_data"`
}

func (r TelegramAuthRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.InitData, validation.Required),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type TokenResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	User        AccountProfile `json:"user"`
}
