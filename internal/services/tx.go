package services

import (
	"context"
	"fmt"

	"github.com/hrpanel/hrpanel-api/internal/database"
	"github.com/jackc/pgx/v5"
)

const maxTxAttempts = 5

var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

// runSerializable runs fn in a serializable transaction and starts over from
// a fresh transaction while retry reports the failure as transient.
func runSerializable(ctx context.Context, db *database.DB, retry func(error) bool, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = runTxOnce(ctx, db, fn)
		if err == nil || !retry(err) {
			return err
		}
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", maxTxAttempts, err)
}

func runTxOnce(ctx context.Context, db *database.DB, fn func(tx pgx.Tx) error) error {
	tx, err := db.Pool.BeginTx(ctx, serializableTx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
