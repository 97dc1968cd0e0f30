package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/models"
)

type AccountGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// SessionService resolves session tokens to the stored account. The admin
// flag in the token is ignored; callers authorize against the returned
// account.
type SessionService struct {
	tokens   *JWTService
	accounts AccountGetter
}

func NewSessionService(tokens *JWTService, accounts AccountGetter) *SessionService {
	return &SessionService{tokens: tokens, accounts: accounts}
}

// Validate returns ErrInvalidToken for bad tokens and ErrAccountNotFound when
// the account no longer exists.
func (s *SessionService) Validate(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return s.accounts.GetByID(ctx, claims.AccountID)
}
