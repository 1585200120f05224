package db

import (
	"context"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- NEWS ----------------

// ListNews → post date descending, newest insert first on ties
func (d *DB) ListNews(ctx context.Context) ([]models.News, error) {
	var news []models.News
	err := d.Bun.NewSelect().
		Model(&news).
		Order("date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return news, nil
}

func (d *DB) GetNews(ctx context.Context, id int64) (*models.News, error) {
	var news models.News
	err := d.Bun.NewSelect().
		Model(&news).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &news, nil
}

func (d *DB) CreateNews(ctx context.Context, news *models.News) error {
	_, err := d.Bun.NewInsert().Model(news).Returning("id").Exec(ctx)
	return err
}

func (d *DB) UpdateNews(ctx context.Context, news *models.News) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model(news).
		Column("title", "description", "content", "image", "date", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) DeleteNews(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.News)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------- SINGLETONS ----------------

func (d *DB) GetSettings(ctx context.Context) (*models.SiteSettings, error) {
	var settings models.SiteSettings
	err := d.Bun.NewSelect().
		Model(&settings).
		Where("id = ?", models.SingletonID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// SaveSettings → upsert of the singleton row
func (d *DB) SaveSettings(ctx context.Context, settings *models.SiteSettings) error {
	settings.ID = models.SingletonID
	_, err := d.Bun.NewInsert().
		Model(settings).
		On("CONFLICT (id) DO UPDATE").
		Set("server_ip = EXCLUDED.server_ip").
		Set("server_version = EXCLUDED.server_version").
		Set("contact_email = EXCLUDED.contact_email").
		Set("contact_phone = EXCLUDED.contact_phone").
		Set("discord_url = EXCLUDED.discord_url").
		Set("site_title = EXCLUDED.site_title").
		Set("maintenance_mode = EXCLUDED.maintenance_mode").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// SetServerVersion → mirrors a manual version into the settings row
func (d *DB) SetServerVersion(ctx context.Context, version string, at time.Time) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.SiteSettings)(nil)).
		Set("server_version = ?", version).
		Set("updated_at = ?", at).
		Where("id = ?", models.SingletonID).
		Exec(ctx)
	return err
}

func (d *DB) GetServerStatus(ctx context.Context) (*models.ServerStatus, error) {
	var status models.ServerStatus
	err := d.Bun.NewSelect().
		Model(&status).
		Where("id = ?", models.SingletonID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SaveServerStatus → upsert of the singleton row
func (d *DB) SaveServerStatus(ctx context.Context, status *models.ServerStatus) error {
	status.ID = models.SingletonID
	_, err := d.Bun.NewInsert().
		Model(status).
		On("CONFLICT (id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("players = EXCLUDED.players").
		Set("max_players = EXCLUDED.max_players").
		Set("version = EXCLUDED.version").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
