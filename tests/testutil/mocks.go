package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/services"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
	"github.com/stretchr/testify/mock"
)

// MockAccountService mocks the AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) AuthenticateTelegram(ctx context.Context, data *telegram.InitData) (*models.Account, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) LoginWithPassword(ctx context.Context, email, password string) (*models.Account, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) ListAdmins(ctx context.Context) ([]models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Account), args.Error(1)
}

func (m *MockAccountService) RevokeAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*models.Account, error) {
	args := m.Called(ctx, actorID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) UpdateProfile(ctx context.Context, id uuid.UUID, update services.ProfileUpdate) (*models.Account, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

// MockAdminService mocks the AdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Promote(ctx context.Context, handle string, createdBy uuid.UUID) (*services.PromotionResult, error) {
	args := m.Called(ctx, handle, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PromotionResult), args.Error(1)
}

func (m *MockAdminService) ListPending(ctx context.Context) ([]models.PendingAdmin, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingAdmin), args.Error(1)
}

func (m *MockAdminService) RemovePending(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

// MockVerifier mocks telegram.Verifier
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(raw string) (*telegram.InitData, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*telegram.InitData), args.Error(1)
}

// MockTokenService mocks the JWTService token issuer
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateToken(accountID uuid.UUID, isAdmin bool) (string, error) {
	args := m.Called(accountID, isAdmin)
	return args.String(0), args.Error(1)
}
