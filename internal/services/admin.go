package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/hrpanel/hrpanel-api/internal/logging"
	"github.com/hrpanel/hrpanel-api/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidHandle     = errors.New("telegram username is required")
	ErrDuplicatePending  = errors.New("telegram username is already pending promotion")
	ErrAlreadyPrivileged = errors.New("account is already an admin")
	ErrPendingNotFound   = errors.New("pending admin not found")
)

const pendingColumns = `id, telegram_username, created_by, created_at`

// PromotionResult holds either the account promoted on the spot or the
// pending entry queued for a handle nobody has signed in with yet.
type PromotionResult struct {
	Account *models.Account
	Pending *models.PendingAdmin
}

type AdminService struct {
	db  *database.DB
	log logging.Logger
}

func NewAdminService(db *database.DB, log logging.Logger) *AdminService {
	return &AdminService{db: db, log: log}
}

// NormalizeHandle trims whitespace and one leading "@".
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

// Promote grants admin rights to the account owning handle, or records a
// pending promotion consumed at that handle's next sign-in. createdBy may be
// uuid.Nil for promotions issued from the command line.
func (s *AdminService) Promote(ctx context.Context, handle string, createdBy uuid.UUID) (*PromotionResult, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil, ErrInvalidHandle
	}

	var result *PromotionResult
	err := runSerializable(ctx, s.db, database.IsSerializationFailure, func(tx pgx.Tx) error {
		var err error
		result, err = promoteTx(ctx, tx, handle, createdBy)
		return err
	})
	if err != nil {
		return nil, err
	}

	if result.Account != nil {
		s.log.Info(ctx, "account promoted to admin", "account_id", result.Account.ID, "rule", "direct", "promoted_by", createdBy)
	} else {
		s.log.Info(ctx, "pending admin added", "telegram_username", handle, "created_by", createdBy)
	}
	return result, nil
}

func promoteTx(ctx context.Context, tx pgx.Tx, handle string, createdBy uuid.UUID) (*PromotionResult, error) {
	var pending bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM pending_admins WHERE telegram_username = $1)
	`, handle).Scan(&pending); err != nil {
		return nil, fmt.Errorf("failed to check pending admins: %w", err)
	}
	if pending {
		return nil, ErrDuplicatePending
	}

	var account models.Account
	err := scanAccount(tx.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE telegram_username = $1
		ORDER BY created_at LIMIT 1
		FOR UPDATE
	`, handle), &account)
	if errors.Is(err, pgx.ErrNoRows) {
		p, err := insertPending(ctx, tx, handle, createdBy)
		if err != nil {
			return nil, err
		}
		return &PromotionResult{Pending: p}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if account.IsAdmin {
		return nil, ErrAlreadyPrivileged
	}

	var promoted models.Account
	err = scanAccount(tx.QueryRow(ctx, `
		UPDATE accounts SET is_admin = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns,
		account.ID), &promoted)
	if err != nil {
		return nil, fmt.Errorf("failed to promote account: %w", err)
	}
	return &PromotionResult{Account: &promoted}, nil
}

func insertPending(ctx context.Context, tx pgx.Tx, handle string, createdBy uuid.UUID) (*models.PendingAdmin, error) {
	var creator *uuid.UUID
	if createdBy != uuid.Nil {
		creator = &createdBy
	}

	var p models.PendingAdmin
	err := tx.QueryRow(ctx, `
		INSERT INTO pending_admins (telegram_username, created_by)
		VALUES ($1, $2)
		RETURNING `+pendingColumns,
		handle, creator).Scan(&p.ID, &p.TelegramUsername, &p.CreatedBy, &p.CreatedAt)
	if database.IsUniqueViolation(err) {
		return nil, ErrDuplicatePending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add pending admin: %w", err)
	}
	return &p, nil
}

func (s *AdminService) ListPending(ctx context.Context) ([]models.PendingAdmin, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+pendingColumns+` FROM pending_admins
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pending := []models.PendingAdmin{}
	for rows.Next() {
		var p models.PendingAdmin
		if err := rows.Scan(&p.ID, &p.TelegramUsername, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (s *AdminService) RemovePending(ctx context.Context, handle string) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM pending_admins WHERE telegram_username = $1
	`, NormalizeHandle(handle))
	if err != nil {
		return fmt.Errorf("failed to remove pending admin: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPendingNotFound
	}
	return nil
}
