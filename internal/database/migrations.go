package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) UNIQUE,
		password_hash VARCHAR(255),
		telegram_id VARCHAR(64) UNIQUE,
		telegram_username VARCHAR(64),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS pending_admins (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		telegram_username VARCHAR(64) NOT NULL UNIQUE,
		created_by UUID REFERENCES accounts(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_accounts_telegram_username ON accounts(telegram_username)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_is_admin ON accounts(is_admin) WHERE is_admin`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
