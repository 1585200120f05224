package database_test

import (
	"context"
	"database/sql"
	"testing"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/database"
	"buildnchill-shop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, database.EnsureSchema(ctx, db))
	require.NoError(t, database.EnsureSchema(ctx, db))

	count, err := db.NewSelect().Model((*models.Order)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSeedSingletonsKeepsExistingRows(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, database.Prepare(ctx, db, database.DriverSQLite))

	defaults := config.SiteDefaults{ServerIP: "play.example.net:25190", SiteTitle: "BuildnChill"}
	require.NoError(t, database.SeedSingletons(ctx, db, defaults))

	var settings models.SiteSettings
	require.NoError(t, db.NewSelect().Model(&settings).Where("id = ?", models.SingletonID).Scan(ctx))
	assert.Equal(t, "play.example.net:25190", settings.ServerIP)

	_, err := db.NewUpdate().Model((*models.SiteSettings)(nil)).
		Set("server_ip = ?", "other.example.net").
		Where("id = ?", models.SingletonID).
		Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, database.SeedSingletons(ctx, db, defaults))
	require.NoError(t, db.NewSelect().Model(&settings).Where("id = ?", models.SingletonID).Scan(ctx))
	assert.Equal(t, "other.example.net", settings.ServerIP)

	var status models.ServerStatus
	require.NoError(t, db.NewSelect().Model(&status).Where("id = ?", models.SingletonID).Scan(ctx))
	assert.Equal(t, models.ServerOnline, status.Status)
	assert.Equal(t, 500, status.MaxPlayers)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(config.DatabaseConfig{Driver: "oracle"}, nil)
	assert.Error(t, err)
}
