package accounts

import (
	"context"
	"database/sql"

	"github.com/linkup-social/linkup/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
