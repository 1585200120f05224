// Package site manages the public content: news posts, the site settings
// row and the server status row.
package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"
)

const newsDateLayout = "2006-01-02"

var (
	ErrNewsNotFound = errors.New("news not found")
	ErrInvalidInput = errors.New("invalid input")
)

type DBLayer interface {
	ListNews(ctx context.Context) ([]models.News, error)
	GetNews(ctx context.Context, id int64) (*models.News, error)
	CreateNews(ctx context.Context, news *models.News) error
	UpdateNews(ctx context.Context, news *models.News) (int64, error)
	DeleteNews(ctx context.Context, id int64) (int64, error)

	GetSettings(ctx context.Context) (*models.SiteSettings, error)
	SaveSettings(ctx context.Context, settings *models.SiteSettings) error
	SetServerVersion(ctx context.Context, version string, at time.Time) error
	GetServerStatus(ctx context.Context) (*models.ServerStatus, error)
	SaveServerStatus(ctx context.Context, status *models.ServerStatus) error
}

type Service struct {
	DB       DBLayer
	Defaults config.SiteDefaults
	Changes  realtime.Publisher
	Logger   *logger.Logger
	now      func() time.Time
}

func NewService(db DBLayer, defaults config.SiteDefaults, changes realtime.Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Defaults: defaults, Changes: changes, Logger: log, now: time.Now}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// ---------------- NEWS ----------------

func (s *Service) ListNews(ctx context.Context) ([]models.News, error) {
	news, err := s.DB.ListNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return news, nil
}

func (s *Service) GetNews(ctx context.Context, id int64) (*models.News, error) {
	news, err := s.DB.GetNews(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNewsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news %d: %w", id, err)
	}
	return news, nil
}

func (s *Service) newsFrom(req models.NewsRequest) (models.News, error) {
	n := models.News{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		Image:       strings.TrimSpace(req.Image),
		Date:        strings.TrimSpace(req.Date),
		UpdatedAt:   s.now(),
	}
	if n.Title == "" {
		return n, invalid("title is required")
	}
	if n.Date == "" {
		n.Date = s.now().Format(newsDateLayout)
	} else if _, err := time.Parse(newsDateLayout, n.Date); err != nil {
		return n, invalid("date must be YYYY-MM-DD")
	}
	return n, nil
}

func (s *Service) CreateNews(ctx context.Context, req models.NewsRequest) (*models.News, error) {
	n, err := s.newsFrom(req)
	if err != nil {
		return nil, err
	}
	if err := s.DB.CreateNews(ctx, &n); err != nil {
		return nil, fmt.Errorf("create news: %w", err)
	}
	s.Logger.LogDatabase("INSERT", models.TableNews, n.Title)
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableNews, models.ChangeInsert)
	return &n, nil
}

func (s *Service) UpdateNews(ctx context.Context, id int64, req models.NewsRequest) (*models.News, error) {
	n, err := s.newsFrom(req)
	if err != nil {
		return nil, err
	}
	n.ID = id
	rows, err := s.DB.UpdateNews(ctx, &n)
	if err != nil {
		return nil, fmt.Errorf("update news %d: %w", id, err)
	}
	if rows == 0 {
		return nil, ErrNewsNotFound
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableNews, models.ChangeUpdate)
	return &n, nil
}

func (s *Service) DeleteNews(ctx context.Context, id int64) error {
	rows, err := s.DB.DeleteNews(ctx, id)
	if err != nil {
		return fmt.Errorf("delete news %d: %w", id, err)
	}
	if rows == 0 {
		return ErrNewsNotFound
	}
	s.Logger.LogDatabase("DELETE", models.TableNews, fmt.Sprint(id))
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableNews, models.ChangeDelete)
	return nil
}

// ---------------- SETTINGS ----------------

func (s *Service) defaultSettings() models.SiteSettings {
	return models.SiteSettings{
		ID:            models.SingletonID,
		ServerIP:      s.Defaults.ServerIP,
		ServerVersion: s.Defaults.ServerVersion,
		ContactEmail:  s.Defaults.ContactEmail,
		ContactPhone:  s.Defaults.ContactPhone,
		DiscordURL:    s.Defaults.DiscordURL,
		SiteTitle:     s.Defaults.SiteTitle,
	}
}

// Settings returns the settings row, creating it from the defaults when
// missing.
func (s *Service) Settings(ctx context.Context) (*models.SiteSettings, error) {
	settings, err := s.DB.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	created := s.defaultSettings()
	created.UpdatedAt = s.now()
	if err := s.DB.SaveSettings(ctx, &created); err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	s.Logger.Info("SITE", "Created default site settings")
	return &created, nil
}

// UpdateSettings applies the submitted fields and stamps updated_at.
func (s *Service) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (*models.SiteSettings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	next := *settings

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&next.ServerIP, patch.ServerIP)
	set(&next.ServerVersion, patch.ServerVersion)
	set(&next.ContactEmail, patch.ContactEmail)
	set(&next.ContactPhone, patch.ContactPhone)
	set(&next.DiscordURL, patch.DiscordURL)
	set(&next.SiteTitle, patch.SiteTitle)
	if patch.MaintenanceMode != nil {
		next.MaintenanceMode = *patch.MaintenanceMode
	}
	next.UpdatedAt = s.now()

	if err := s.DB.SaveSettings(ctx, &next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}
	if next.ServerIP != settings.ServerIP {
		s.Logger.Info("SITE", fmt.Sprintf("Server IP changed %q → %q", settings.ServerIP, next.ServerIP))
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableSiteSettings, models.ChangeUpdate)
	return &next, nil
}

// ---------------- SERVER STATUS ----------------

// ServerStatus returns the persisted status row, creating the default one
// when missing.
func (s *Service) ServerStatus(ctx context.Context) (*models.ServerStatus, error) {
	status, err := s.DB.GetServerStatus(ctx)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get server status: %w", err)
	}

	created := models.DefaultServerStatus()
	created.UpdatedAt = s.now()
	if err := s.DB.SaveServerStatus(ctx, &created); err != nil {
		return nil, fmt.Errorf("create server status: %w", err)
	}
	return &created, nil
}

// UpdateServerStatus stores a manual override. A non-empty version is also
// written to the settings row.
func (s *Service) UpdateServerStatus(ctx context.Context, req models.ServerStatusUpdate) (*models.ServerStatus, error) {
	if req.Players < 0 {
		return nil, invalid("players must not be negative")
	}
	if req.MaxPlayers < 1 {
		return nil, invalid("max players must be at least 1")
	}

	now := s.now()
	status := models.ServerStatus{
		ID:         models.SingletonID,
		Status:     models.ServerOffline,
		Players:    req.Players,
		MaxPlayers: req.MaxPlayers,
		Version:    strings.TrimSpace(req.Version),
		UpdatedAt:  now,
	}
	if req.Online {
		status.Status = models.ServerOnline
	}
	if err := s.DB.SaveServerStatus(ctx, &status); err != nil {
		return nil, fmt.Errorf("save server status: %w", err)
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableServerStatus, models.ChangeUpdate)

	if status.Version != "" {
		if err := s.DB.SetServerVersion(ctx, status.Version, now); err != nil {
			s.Logger.Warn("SITE", fmt.Sprintf("Could not mirror version into settings: %v", err))
		} else {
			realtime.Notify(ctx, s.Changes, s.Logger, models.TableSiteSettings, models.ChangeUpdate)
		}
	}
	return &status, nil
}
