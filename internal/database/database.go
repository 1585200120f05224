package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/logger"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	connectAttempts = 5
	retryDelay      = 2 * time.Second
)

// Open connects to the configured database, retrying the ping a few times
// so the service can start alongside its database container.
func Open(cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var driverName string
	switch cfg.Driver {
	case DriverSQLite:
		driverName = sqliteshim.ShimName
	case DriverPostgres:
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	var sqldb *sql.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to %s (attempt %d/%d)", cfg.Driver, i+1, connectAttempts))
		sqldb, err = sql.Open(driverName, cfg.DSN)
		if err == nil {
			if err = sqldb.Ping(); err == nil {
				break
			}
			sqldb.Close()
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s: %v", cfg.Driver, err))
		if i < connectAttempts-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s after %d attempts: %w", cfg.Driver, connectAttempts, err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// Ping is used by the readiness probe.
func Ping(ctx context.Context, db *bun.DB) error {
	return db.PingContext(ctx)
}
