package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/models"
)

const accountColumns = `id, name, email, password_hash, telegram_id, telegram_username, is_admin, created_at, updated_at`

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateAccount creates a Telegram-linked account with default values
func (f *Fixtures) CreateAccount(t *testing.T, opts ...AccountOption) *models.Account {
	t.Helper()
	f.counter++

	telegramID := fmt.Sprintf("%d", 1000+f.counter)
	handle := fmt.Sprintf("user%d", f.counter)
	account := &models.Account{
		Name:             fmt.Sprintf("Test User %d", f.counter),
		TelegramID:       &telegramID,
		TelegramUsername: &handle,
	}

	for _, opt := range opts {
		opt(account)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash, telegram_id, telegram_username, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		account.Name, account.Email, account.PasswordHash, account.TelegramID, account.TelegramUsername, account.IsAdmin,
	).Scan(
		&account.ID, &account.Name, &account.Email, &account.PasswordHash, &account.TelegramID,
		&account.TelegramUsername, &account.IsAdmin, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create account: %v", err)
	}

	return account
}

// AccountOption configures a test account
type AccountOption func(*models.Account)

// AsAdmin marks the account as an admin
func AsAdmin() AccountOption {
	return func(a *models.Account) {
		a.IsAdmin = true
	}
}

// WithName sets the account's name
func WithName(name string) AccountOption {
	return func(a *models.Account) {
		a.Name = name
	}
}

// WithTelegram sets the account's Telegram id and handle. An empty handle is stored as NULL.
func WithTelegram(id, handle string) AccountOption {
	return func(a *models.Account) {
		a.TelegramID = &id
		if handle == "" {
			a.TelegramUsername = nil
		} else {
			a.TelegramUsername = &handle
		}
	}
}

// WithPasswordHash sets email and password hash for the legacy login
func WithPasswordHash(email, hash string) AccountOption {
	return func(a *models.Account) {
		a.Email = &email
		a.PasswordHash = &hash
	}
}

// CreatePendingAdmin queues a promotion for handle
func (f *Fixtures) CreatePendingAdmin(t *testing.T, handle string, createdBy *uuid.UUID) *models.PendingAdmin {
	t.Helper()
	ctx := context.Background()

	p := &models.PendingAdmin{}
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO pending_admins (telegram_username, created_by)
		VALUES ($1, $2)
		RETURNING id, telegram_username, created_by, created_at
	`, handle, createdBy).Scan(&p.ID, &p.TelegramUsername, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create pending admin: %v", err)
	}

	return p
}

// CountPendingAdmins returns how many pending rows exist for handle
func (f *Fixtures) CountPendingAdmins(t *testing.T, handle string) int {
	t.Helper()
	var n int
	err := f.db.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM pending_admins WHERE telegram_username = $1
	`, handle).Scan(&n)
	if err != nil {
		t.Fatalf("failed to count pending admins: %v", err)
	}
	return n
}

// CountAccountsByTelegramID returns how many accounts are linked to id
func (f *Fixtures) CountAccountsByTelegramID(t *testing.T, id string) int {
	t.Helper()
	var n int
	err := f.db.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM accounts WHERE telegram_id = $1
	`, id).Scan(&n)
	if err != nil {
		t.Fatalf("failed to count accounts: %v", err)
	}
	return n
}
