package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
)

// AccountServiceInterface defines the methods used by handlers from AccountService
type AccountServiceInterface interface {
	AuthenticateTelegram(ctx context.Context, data *telegram.InitData) (*models.Account, error)
	LoginWithPassword(ctx context.Context, email, password string) (*models.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	ListAdmins(ctx context.Context) ([]models.Account, error)
	RevokeAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*models.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update services.ProfileUpdate) (*models.Account, error)
}

// AdminServiceInterface defines the methods used by handlers from AdminService
type AdminServiceInterface interface {
	Promote(ctx context.Context, handle string, createdBy uuid.UUID) (*services.PromotionResult, error)
	ListPending(ctx context.Context) ([]models.PendingAdmin, error)
	RemovePending(ctx context.Context, handle string) error
}

// TokenServiceInterface defines the methods used by handlers from JWTService
type TokenServiceInterface interface {
	GenerateToken(accountID uuid.UUID, isAdmin bool) (string, error)
}

// VerifierInterface defines the methods used by handlers from telegram.Verifier
type VerifierInterface interface {
	Verify(raw string) (*telegram.InitData, error)
}
