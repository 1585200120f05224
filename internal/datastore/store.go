// Package datastore keeps the application-wide state that public pages and
// the admin panel read: news, server status, site settings, contacts and the
// admin authentication flag.
//
// Refresh protocol: Start loads everything once, then every change
// notification for a table triggers a full reload of that collection, and a
// ticker re-polls the server status. Readers always get copies.
package datastore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/mcstatus"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPollInterval  = 20 * time.Second
	DefaultSettingsDelay = time.Second
)

// ContentSource reads the persisted public content.
type ContentSource interface {
	ListNews(ctx context.Context) ([]models.News, error)
	Settings(ctx context.Context) (*models.SiteSettings, error)
	ServerStatus(ctx context.Context) (*models.ServerStatus, error)
}

type ContactSource interface {
	List(ctx context.Context) ([]models.Contact, error)
}

// StatusFetcher asks the live status API about a server address.
type StatusFetcher interface {
	Fetch(ctx context.Context, serverIP string) (*mcstatus.Status, error)
}

// ChangeSink receives every change the store applied.
type ChangeSink interface {
	Emit(change models.Change)
}

type Store struct {
	Content       ContentSource
	ContactSource ContactSource
	Status        StatusFetcher
	Bus           realtime.Bus
	Sink          ChangeSink
	Logger        *logger.Logger

	PollInterval  time.Duration
	SettingsDelay time.Duration

	mu             sync.RWMutex
	news           []models.News
	serverStatus   models.ServerStatus
	settings       models.SiteSettings
	settingsLoaded bool
	contacts       []models.Contact
	authenticated  bool
	loading        bool
}

func New(content ContentSource, contacts ContactSource, status StatusFetcher, bus realtime.Bus, log *logger.Logger) *Store {
	return &Store{
		Content:       content,
		ContactSource: contacts,
		Status:        status,
		Bus:           bus,
		Logger:        log,
		PollInterval:  DefaultPollInterval,
		SettingsDelay: DefaultSettingsDelay,
		serverStatus:  models.DefaultServerStatus(),
		loading:       true,
	}
}

// ---------------- READ ACCESS ----------------

func (s *Store) News() []models.News {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.News(nil), s.news...)
}

func (s *Store) ServerStatus() models.ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverStatus
}

func (s *Store) Settings() models.SiteSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) Contacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Contact(nil), s.contacts...)
}

func (s *Store) Contact(id int64) (models.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.contacts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Contact{}, false
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Loading is true until the initial load finished.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// ---------------- WRITE ACCESS ----------------

// SetAuthenticated flips the admin flag. Turning it on loads contacts,
// turning it off drops them.
func (s *Store) SetAuthenticated(ctx context.Context, authenticated bool) {
	s.mu.Lock()
	was := s.authenticated
	s.authenticated = authenticated
	if !authenticated {
		s.contacts = nil
	}
	s.mu.Unlock()

	if authenticated && !was {
		if err := s.ReloadContacts(ctx); err != nil {
			s.Logger.Warn("STORE", fmt.Sprintf("Contacts load after login failed: %v", err))
		}
	}
}

// ApplyContactStatus sets a contact's status in memory and returns the old
// value. ok is false when the contact is not cached.
func (s *Store) ApplyContactStatus(id int64, status string) (previous string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			previous = s.contacts[i].Status
			s.contacts[i].Status = status
			return previous, true
		}
	}
	return "", false
}

func (s *Store) ApplyContactRead(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID == id {
			s.contacts[i].Read = true
			return
		}
	}
}

// ---------------- RELOADS ----------------

func (s *Store) ReloadNews(ctx context.Context) error {
	news, err := s.Content.ListNews(ctx)
	if err != nil {
		return fmt.Errorf("reload news: %w", err)
	}
	s.mu.Lock()
	s.news = news
	s.mu.Unlock()
	return nil
}

// ReloadSettings replaces the settings. A changed server address refreshes
// the server status right away.
func (s *Store) ReloadSettings(ctx context.Context) error {
	settings, err := s.Content.Settings(ctx)
	if err != nil {
		return fmt.Errorf("reload settings: %w", err)
	}

	s.mu.Lock()
	ipChanged := s.settingsLoaded && s.settings.ServerIP != settings.ServerIP
	s.settings = *settings
	s.settingsLoaded = true
	s.mu.Unlock()

	if ipChanged {
		s.Logger.Info("STORE", fmt.Sprintf("Server IP is now %s, refreshing status", settings.ServerIP))
		return s.ReloadServerStatus(ctx)
	}
	return nil
}

// ReloadServerStatus reads the persisted row and overlays the live status of
// the configured address. Every failure falls back quietly: a live failure
// keeps the persisted row, a database failure uses the default status.
func (s *Store) ReloadServerStatus(ctx context.Context) error {
	status := models.DefaultServerStatus()
	if persisted, err := s.Content.ServerStatus(ctx); err != nil {
		s.Logger.Debug("STORE", fmt.Sprintf("Server status row unavailable: %v", err))
	} else {
		status = *persisted
	}

	if s.Status != nil {
		live, err := s.Status.Fetch(ctx, s.Settings().ServerIP)
		switch {
		case err != nil:
			s.Logger.Debug("STORE", fmt.Sprintf("Live status unavailable: %v", err))
		case live != nil:
			status = live.Apply(status)
		}
	}

	s.mu.Lock()
	s.serverStatus = status
	s.mu.Unlock()
	return nil
}

// ReloadContacts is a no-op while no admin is signed in.
func (s *Store) ReloadContacts(ctx context.Context) error {
	if !s.IsAuthenticated() || s.ContactSource == nil {
		return nil
	}
	contacts, err := s.ContactSource.List(ctx)
	if err != nil {
		return fmt.Errorf("reload contacts: %w", err)
	}
	s.mu.Lock()
	if s.authenticated {
		s.contacts = contacts
	}
	s.mu.Unlock()
	return nil
}

// ---------------- LIFECYCLE ----------------

// Start performs the initial load and keeps the store current until ctx is
// done. Load errors are returned but the refresh loop runs regardless.
func (s *Store) Start(ctx context.Context) error {
	var changes <-chan models.Change
	if s.Bus != nil {
		ch, err := s.Bus.Subscribe(ctx)
		if err != nil {
			s.Logger.Warn("STORE", fmt.Sprintf("Change subscription failed, polling only: %v", err))
		} else {
			changes = ch
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.ReloadNews(gctx) })
	g.Go(func() error { return s.ReloadSettings(gctx) })
	loadErr := g.Wait()
	if err := s.ReloadServerStatus(ctx); err != nil && loadErr == nil {
		loadErr = err
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.Logger.Info("STORE", "Initial load finished")

	go s.run(ctx, changes)
	return loadErr
}

func (s *Store) run(ctx context.Context, changes <-chan models.Change) {
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reload(ctx, models.TableServerStatus, s.ReloadServerStatus)
		case change, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.apply(ctx, change)
		}
	}
}

func (s *Store) reload(ctx context.Context, table string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		s.Logger.Warn("STORE", fmt.Sprintf("Reload of %s failed, keeping last value: %v", table, err))
	}
}

func (s *Store) apply(ctx context.Context, change models.Change) {
	switch change.Table {
	case models.TableNews:
		s.reload(ctx, change.Table, s.ReloadNews)
	case models.TableServerStatus:
		s.reload(ctx, change.Table, s.ReloadServerStatus)
	case models.TableContacts:
		s.reload(ctx, change.Table, s.ReloadContacts)
	case models.TableSiteSettings:
		s.reload(ctx, change.Table, s.ReloadSettings)
		go s.delayedStatusReload(ctx)
	default:
		return
	}
	if s.Sink != nil {
		s.Sink.Emit(change)
	}
}

// delayedStatusReload gives a settings edit time to land before the status
// is recomputed against it.
func (s *Store) delayedStatusReload(ctx context.Context) {
	timer := time.NewTimer(s.SettingsDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
		s.reload(ctx, models.TableServerStatus, s.ReloadServerStatus)
	}
}
