package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/hrpanel/hrpanel-api/internal/telegram"
	"github.com/jackc/pgx/v5"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrCannotRevokeSelf = errors.New("cannot revoke your own admin rights")
	ErrNotAdmin         = errors.New("account is not an admin")
	ErrEmailTaken       = errors.New("email is already in use")
)

const accountColumns = `id, name, email, password_hash, telegram_id, telegram_username, is_admin, created_at, updated_at`

type promotion int

const (
	promotionNone promotion = iota
	promotionBootstrap
	promotionPending
)

func (p promotion) String() string {
	switch p {
	case promotionBootstrap:
		return "bootstrap"
	case promotionPending:
		return "pending"
	default:
		return "none"
	}
}

type AccountService struct {
	db  *database.DB
	log logging.Logger
}

func NewAccountService(db *database.DB, log logging.Logger) *AccountService {
	return &AccountService{db: db, log: log}
}

// AuthenticateTelegram finds or creates the account for verified init data
// and settles its admin flag in the same transaction. Concurrent first
// logins of one Telegram id collide on the unique constraint; the loser
// retries and resolves to the row the winner created.
func (s *AccountService) AuthenticateTelegram(ctx context.Context, data *telegram.InitData) (*models.Account, error) {
	if data == nil || data.ExternalID == "" {
		return nil, telegram.ErrMissingIdentity
	}

	var (
		account  *models.Account
		promoted promotion
		created  bool
	)
	err := runSerializable(ctx, s.db, retryOnConflict, func(tx pgx.Tx) error {
		var err error
		account, promoted, created, err = s.authenticateTx(ctx, tx, data)
		return err
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.log.Info(ctx, "account created", "account_id", account.ID, "telegram_id", data.ExternalID)
	}
	if promoted != promotionNone {
		s.log.Info(ctx, "account promoted to admin", "account_id", account.ID, "rule", promoted.String())
	}
	return account, nil
}

func (s *AccountService) authenticateTx(ctx context.Context, tx pgx.Tx, data *telegram.InitData) (*models.Account, promotion, bool, error) {
	var account models.Account
	err := scanAccount(tx.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts WHERE telegram_id = $1
		FOR UPDATE
	`, data.ExternalID), &account)

	created := false
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		telegramID := data.ExternalID
		account = models.Account{TelegramID: &telegramID}
	case err != nil:
		return nil, promotionNone, false, fmt.Errorf("failed to find account: %w", err)
	}

	account.Name = data.DisplayName()
	account.TelegramUsername = nullableString(data.Handle())

	promoted := promotionNone
	if !account.IsAdmin {
		promoted, err = decidePromotion(ctx, tx, data.Handle())
		if err != nil {
			return nil, promotionNone, false, err
		}
		if promoted != promotionNone {
			account.IsAdmin = true
		}
	}

	var saved models.Account
	if created {
		err = scanAccount(tx.QueryRow(ctx, `
			INSERT INTO accounts (name, telegram_id, telegram_username, is_admin)
			VALUES ($1, $2, $3, $4)
			RETURNING `+accountColumns,
			account.Name, account.TelegramID, account.TelegramUsername, account.IsAdmin), &saved)
		if err != nil {
			return nil, promotionNone, false, fmt.Errorf("failed to create account: %w", err)
		}
	} else {
		err = scanAccount(tx.QueryRow(ctx, `
			UPDATE accounts SET name = $1, telegram_username = $2, is_admin = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+accountColumns,
			account.Name, account.TelegramUsername, account.IsAdmin, account.ID), &saved)
		if err != nil {
			return nil, promotionNone, false, fmt.Errorf("failed to update account: %w", err)
		}
	}

	return &saved, promoted, created, nil
}

// decidePromotion applies the bootstrap rule, then the pending-promotion
// rule. A matching pending entry is consumed by the DELETE itself.
func decidePromotion(ctx context.Context, tx pgx.Tx, handle string) (promotion, error) {
	var hasAdmin bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE is_admin)`).Scan(&hasAdmin); err != nil {
		return promotionNone, fmt.Errorf("failed to count admins: %w", err)
	}
	if !hasAdmin {
		return promotionBootstrap, nil
	}

	if handle == "" {
		return promotionNone, nil
	}

	var pendingID uuid.UUID
	err := tx.QueryRow(ctx, `
		DELETE FROM pending_admins WHERE telegram_username = $1
		RETURNING id
	`, handle).Scan(&pendingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return promotionNone, nil
	}
	if err != nil {
		return promotionNone, fmt.Errorf("failed to consume pending admin: %w", err)
	}
	return promotionPending, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := scanAccount(s.db.Pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id), &account)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountService) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	var account models.Account
	err := scanAccount(s.db.Pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE telegram_username = $1
		ORDER BY created_at LIMIT 1
	`, NormalizeHandle(handle)), &account)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountService) ListAdmins(ctx context.Context) ([]models.Account, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE is_admin
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []models.Account{}
	for rows.Next() {
		var account models.Account
		if err := scanAccount(rows, &account); err != nil {
			return nil, err
		}
		admins = append(admins, account)
	}
	return admins, rows.Err()
}

// RevokeAdmin clears the admin flag of target. Admins cannot demote themselves.
func (s *AccountService) RevokeAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*models.Account, error) {
	if actorID == targetID {
		return nil, ErrCannotRevokeSelf
	}

	var account models.Account
	err := scanAccount(s.db.Pool.QueryRow(ctx, `
		UPDATE accounts SET is_admin = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_admin
		RETURNING `+accountColumns,
		targetID), &account)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := s.GetByID(ctx, targetID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotAdmin
	}
	if err != nil {
		return nil, fmt.Errorf("failed to revoke admin: %w", err)
	}

	s.log.Info(ctx, "admin rights revoked", "account_id", targetID, "revoked_by", actorID)
	return &account, nil
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged. A non-empty NewPassword replaces the password, and an account
// that already has one must present it as CurrentPassword.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	CurrentPassword string
	NewPassword     string
}

// UpdateProfile applies the update in a single transaction, so a rejected
// email leaves the password untouched and a wrong password writes nothing.
func (s *AccountService) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*models.Account, error) {
	var account models.Account
	err := runSerializable(ctx, s.db, database.IsSerializationFailure, func(tx pgx.Tx) error {
		return s.updateProfileTx(ctx, tx, id, update, &account)
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *AccountService) updateProfileTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, update ProfileUpdate, dest *models.Account) error {
	var passwordHash *string
	if update.NewPassword != "" {
		var current models.Account
		err := scanAccount(tx.QueryRow(ctx, `
			SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE
		`, id), &current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load account: %w", err)
		}

		if current.PasswordHash != nil {
			if err := ComparePasswordAndHash(update.CurrentPassword, *current.PasswordHash); err != nil {
				return ErrInvalidCredentials
			}
		}

		hash, err := HashPassword(update.NewPassword)
		if err != nil {
			return err
		}
		passwordHash = &hash
	}

	err := scanAccount(tx.QueryRow(ctx, `
		UPDATE accounts SET
			name = COALESCE($1, name),
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+accountColumns,
		update.Name, update.Email, passwordHash, id), dest)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// ChangePassword sets a new password. An account that already has one must
// present it as current.
func (s *AccountService) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if next == "" {
		return ErrEmptyPassword
	}
	_, err := s.UpdateProfile(ctx, id, ProfileUpdate{CurrentPassword: current, NewPassword: next})
	return err
}

// LoginWithPassword is the legacy email and password sign-in.
func (s *AccountService) LoginWithPassword(ctx context.Context, email, password string) (*models.Account, error) {
	var account models.Account
	err := scanAccount(s.db.Pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE email = $1
	`, email), &account)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if account.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := ComparePasswordAndHash(password, *account.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	return &account, nil
}

func retryOnConflict(err error) bool {
	return database.IsUniqueViolation(err) || database.IsSerializationFailure(err)
}

func scanAccount(row pgx.Row, a *models.Account) error {
	return row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.TelegramID, &a.TelegramUsername,
		&a.IsAdmin, &a.CreatedAt, &a.UpdatedAt,
	)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
