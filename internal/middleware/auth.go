package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	AccountKey   = "account"
	AccountIDKey = "account_id"
)

type SessionValidator interface {
	Validate(ctx context.Context, token string) (*models.Account, error)
}

// Auth validates the bearer token and loads the live account it names.
// Handlers downstream read privileges from the account, never from claims.
func Auth(sessions SessionValidator, log logging.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		account, err := sessions.Validate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidToken):
				c.Unauthorized("invalid token")
			case errors.Is(err, services.ErrAccountNotFound):
				c.NotFound("account not found")
			default:
				log.Error(c.Request.Context(), "failed to load account", "error", err)
				c.InternalServerError("failed to load account")
			}
			return
		}

		c.Set(AccountKey, account)
		c.Set(AccountIDKey, account.ID)

		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() drift.HandlerFunc {
	return func(c *drift.Context) {
		account := GetAccount(c)
		if account == nil || !account.IsAdmin {
			c.Forbidden("insufficient privileges")
			return
		}
		c.Next()
	}
}

func GetAccount(c *drift.Context) *models.Account {
	if v, ok := c.Get(AccountKey); ok {
		if a, ok := v.(*models.Account); ok {
			return a
		}
	}
	return nil
}

func GetAccountID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(AccountIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}
