package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	// registers the "postgres" driver for database/sql
	_ "github.com/lib/pq"

	"NewsTranslatorBot/internal/domain"
)

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by Migrate.
func Schema() string {
	return schema
}

// Migrate applies the schema through database/sql. Statements are idempotent so
// it is safe to run on every deploy.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("%w: open database: %w", domain.ErrStore, err)
	}
	defer db.Close()

	return migrateDB(ctx, db)
}

func migrateDB(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin migration: %w", domain.ErrStore, err)
	}

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: apply schema: %w", domain.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit migration: %w", domain.ErrStore, err)
	}
	return nil
}
