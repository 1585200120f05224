package database

import (
	"context"
	"fmt"
	"time"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

// SeedSingletons inserts the site_settings and server_status rows when they
// are missing. Existing rows are left untouched.
func SeedSingletons(ctx context.Context, db *bun.DB, defaults config.SiteDefaults) error {
	settings := &models.SiteSettings{
		ID:            models.SingletonID,
		ServerIP:      defaults.ServerIP,
		ServerVersion: defaults.ServerVersion,
		ContactEmail:  defaults.ContactEmail,
		ContactPhone:  defaults.ContactPhone,
		DiscordURL:    defaults.DiscordURL,
		SiteTitle:     defaults.SiteTitle,
		UpdatedAt:     time.Now(),
	}
	if _, err := db.NewInsert().Model(settings).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("seed site_settings: %w", err)
	}

	status := models.DefaultServerStatus()
	status.UpdatedAt = time.Now()
	if _, err := db.NewInsert().Model(&status).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("seed server_status: %w", err)
	}
	return nil
}
