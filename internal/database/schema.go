package database

import (
	"context"
	"fmt"

	"buildnchill-shop/internal/database/migrations"
	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		(*models.Category)(nil),
		(*models.Product)(nil),
		(*models.Order)(nil),
		(*models.PendingCommand)(nil),
		(*models.Contact)(nil),
		(*models.SiteSettings)(nil),
		(*models.ServerStatus)(nil),
		(*models.News)(nil),
	}
}

// EnsureSchema creates missing tables straight from the bun models. SQLite
// deployments and tests use it; Postgres goes through the migration runner.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// Prepare brings the schema up to date for the configured driver.
func Prepare(ctx context.Context, db *bun.DB, driver string) error {
	if driver != DriverPostgres {
		return EnsureSchema(ctx, db)
	}
	runner := migrations.NewRunner(db)
	defer runner.Close()
	return runner.MigrateUp()
}
