package site_test

import (
	"context"
	"io"
	"testing"
	"time"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/database/dbtest"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"
	"buildnchill-shop/internal/site"
	"buildnchill-shop/internal/site/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*site.Service, *db.DB, <-chan models.Change) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bus := realtime.NewMemoryBus()
	changes, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	siteDB := &db.DB{Bun: dbtest.Open(t)}
	defaults := config.SiteDefaults{ServerIP: "play.example.net", ServerVersion: "1.21", SiteTitle: "BuildnChill"}
	return site.NewService(siteDB, defaults, bus, logger.NewWriterLogger(io.Discard)), siteDB, changes
}

func nextChange(t *testing.T, ch <-chan models.Change) models.Change {
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("no change published")
		return models.Change{}
	}
}

func TestNewsOrderedByDateDesc(t *testing.T) {
	svc, _, changes := setup(t)
	ctx := context.Background()

	for _, d := range []string{"2024-01-02", "2024-03-01", "2023-12-31"} {
		_, err := svc.CreateNews(ctx, models.NewsRequest{Title: "Post " + d, Date: d})
		require.NoError(t, err)
		assert.Equal(t, models.Change{Table: models.TableNews, Event: models.ChangeInsert}, stripTime(nextChange(t, changes)))
	}

	news, err := svc.ListNews(ctx)
	require.NoError(t, err)
	require.Len(t, news, 3)
	assert.Equal(t, []string{"2024-03-01", "2024-01-02", "2023-12-31"}, []string{news[0].Date, news[1].Date, news[2].Date})
}

func stripTime(c models.Change) models.Change {
	c.At = time.Time{}
	return c
}

func TestNewsValidationAndNotFound(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CreateNews(ctx, models.NewsRequest{Title: " "})
	assert.ErrorIs(t, err, site.ErrInvalidInput)
	_, err = svc.CreateNews(ctx, models.NewsRequest{Title: "x", Date: "15/05/2024"})
	assert.ErrorIs(t, err, site.ErrInvalidInput)

	_, err = svc.UpdateNews(ctx, 99, models.NewsRequest{Title: "x"})
	assert.ErrorIs(t, err, site.ErrNewsNotFound)
	assert.ErrorIs(t, svc.DeleteNews(ctx, 99), site.ErrNewsNotFound)
	_, err = svc.GetNews(ctx, 99)
	assert.ErrorIs(t, err, site.ErrNewsNotFound)
}

func TestSettingsCreatedFromDefaultsThenPatched(t *testing.T) {
	svc, _, changes := setup(t)
	ctx := context.Background()

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "play.example.net", settings.ServerIP)

	ip := "mc.buildnchill.vn:25565"
	updated, err := svc.UpdateSettings(ctx, models.SettingsPatch{ServerIP: &ip})
	require.NoError(t, err)
	assert.Equal(t, ip, updated.ServerIP)
	assert.Equal(t, "BuildnChill", updated.SiteTitle, "untouched fields keep their value")
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.Equal(t, models.TableSiteSettings, nextChange(t, changes).Table)

	again, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, ip, again.ServerIP)
}

func TestServerStatusOverrideMirrorsVersion(t *testing.T) {
	svc, _, changes := setup(t)
	ctx := context.Background()

	status, err := svc.ServerStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultServerStatus().Version, status.Version)

	_, err = svc.Settings(ctx)
	require.NoError(t, err)

	updated, err := svc.UpdateServerStatus(ctx, models.ServerStatusUpdate{Online: false, Players: 3, MaxPlayers: 100, Version: "1.21.4"})
	require.NoError(t, err)
	assert.Equal(t, models.ServerOffline, updated.Status)
	assert.Equal(t, models.TableServerStatus, nextChange(t, changes).Table)
	assert.Equal(t, models.TableSiteSettings, nextChange(t, changes).Table)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.21.4", settings.ServerVersion)

	_, err = svc.UpdateServerStatus(ctx, models.ServerStatusUpdate{Players: -1, MaxPlayers: 10})
	assert.ErrorIs(t, err, site.ErrInvalidInput)
}
