package contact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"buildnchill-shop/internal/discord"
	"buildnchill-shop/internal/kafka"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"
	"buildnchill-shop/internal/storage"
)

var (
	ErrContactNotFound = errors.New("contact not found")
	ErrInvalidStatus   = errors.New("invalid contact status")
	ErrInvalidInput    = errors.New("invalid input")
)

type DBLayer interface {
	ListContacts(ctx context.Context) ([]models.Contact, error)
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	CreateContact(ctx context.Context, contact *models.Contact) error
	UpdateStatus(ctx context.Context, id int64, status string) (int64, error)
	MarkRead(ctx context.Context, id int64) (int64, error)
	SetDiscordMessageID(ctx context.Context, id int64, messageID string) error
	DeleteContact(ctx context.Context, id int64) (int64, error)
}

// LocalState is the in-memory contacts collection admins read from.
type LocalState interface {
	ApplyContactStatus(id int64, status string) (previous string, ok bool)
	ApplyContactRead(id int64)
	ReloadContacts(ctx context.Context) error
}

type Service struct {
	DB            DBLayer
	Images        storage.Uploader
	Webhook       discord.Gateway
	Kafka         kafka.Publisher
	Topic         string
	Changes       realtime.Publisher
	State         LocalState
	MentionUserID string
	Logger        *logger.Logger
	now           func() time.Time
}

func NewService(db DBLayer, images storage.Uploader, webhook discord.Gateway, log *logger.Logger) *Service {
	return &Service{
		DB:      db,
		Images:  images,
		Webhook: webhook,
		Kafka:   kafka.NoopPublisher{},
		Logger:  log,
		now:     time.Now,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// Submit stores a ticket from the public contact form and announces it on
// the contact channel. A rejected image fails the submission; storage and
// webhook failures do not.
func (s *Service) Submit(ctx context.Context, req models.ContactRequest, image *storage.Upload) (*models.Contact, error) {
	c := models.Contact{
		IGN:       strings.TrimSpace(req.IGN),
		Email:     strings.TrimSpace(req.Email),
		Category:  strings.TrimSpace(req.Category),
		Message:   strings.TrimSpace(req.Message),
		Status:    models.ContactStatusPending,
		CreatedAt: s.now(),
	}
	if c.IGN == "" || c.Email == "" || c.Message == "" {
		return nil, invalid("ign, email and message are required")
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return nil, invalid("email is not valid")
	}
	if c.Category == "" {
		c.Category = models.ContactCategoryOther
	}
	label, ok := models.ContactCategoryLabels[c.Category]
	if !ok {
		return nil, invalid("unknown category " + c.Category)
	}
	c.Subject = label
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		c.Phone = &phone
	}

	if image != nil && s.Images != nil {
		img, err := s.Images.Validate(*image)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		url, err := s.Images.Store(ctx, storage.BucketContactImages, img)
		if err != nil {
			s.Logger.Warn("STORAGE", fmt.Sprintf("Contact image from %s dropped: %v", c.IGN, err))
		} else {
			c.ImageURL = &url
		}
	}

	if err := s.DB.CreateContact(ctx, &c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	s.Logger.LogContact("CREATED", c.ID, fmt.Sprintf("%s (%s)", c.IGN, c.Category))

	msgID, err := s.Webhook.Send(ctx, discord.NewContactMessage(c, s.MentionUserID))
	if err != nil {
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("Contact notification for #%d failed: %v", c.ID, err))
	} else if msgID != "" {
		if err := s.DB.SetDiscordMessageID(ctx, c.ID, msgID); err != nil {
			s.Logger.Warn("CONTACT", fmt.Sprintf("Could not store message id for #%d: %v", c.ID, err))
		} else {
			c.DiscordMessageID = &msgID
			s.Logger.LogWebhook("SENT", msgID, fmt.Sprintf("contact #%d", c.ID))
		}
	}

	kafka.Emit(ctx, s.Kafka, s.Logger, s.Topic, fmt.Sprint(c.ID), models.ContactEvent{
		ContactID:  c.ID,
		IGN:        c.IGN,
		Category:   c.Category,
		OccurredAt: s.now().UTC(),
	})
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableContacts, models.ChangeInsert)
	return &c, nil
}

// UpdateStatus applies the new status locally first, then persists it. A
// failed write puts the previous local value back.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*models.Contact, error) {
	if !models.ValidContactStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var previous string
	applied := false
	if s.State != nil {
		previous, applied = s.State.ApplyContactStatus(id, status)
	}
	revert := func() {
		if applied {
			s.State.ApplyContactStatus(id, previous)
		}
	}

	n, err := s.DB.UpdateStatus(ctx, id, status)
	if err != nil {
		revert()
		return nil, fmt.Errorf("update contact %d: %w", id, err)
	}
	if n == 0 {
		revert()
		return nil, ErrContactNotFound
	}
	s.Logger.LogContact("STATUS", id, status)

	c, err := s.DB.GetContact(ctx, id)
	if err != nil {
		// the write went through; only the message sync is lost
		s.Logger.Warn("CONTACT", fmt.Sprintf("Reload of #%d after status change failed: %v", id, err))
		c = &models.Contact{ID: id, Status: status}
	}
	if c.DiscordMessageID != nil && *c.DiscordMessageID != "" {
		if err := s.Webhook.Edit(ctx, *c.DiscordMessageID, discord.ContactStatusMessage(*c, status)); err != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("Status sync for contact #%d failed: %v", id, err))
		} else {
			s.Logger.LogWebhook("EDITED", *c.DiscordMessageID, fmt.Sprintf("contact #%d → %s", id, status))
		}
	}

	realtime.Notify(ctx, s.Changes, s.Logger, models.TableContacts, models.ChangeUpdate)
	return c, nil
}

// MarkRead flips the read flag on. It never flips it back.
func (s *Service) MarkRead(ctx context.Context, id int64) error {
	n, err := s.DB.MarkRead(ctx, id)
	if err != nil {
		return fmt.Errorf("mark contact %d read: %w", id, err)
	}
	if s.State != nil {
		s.State.ApplyContactRead(id)
	}
	if n > 0 {
		realtime.Notify(ctx, s.Changes, s.Logger, models.TableContacts, models.ChangeUpdate)
	}
	return nil
}

// Get returns the ticket for the detail view and marks it read.
func (s *Service) Get(ctx context.Context, id int64) (*models.Contact, error) {
	c, err := s.DB.GetContact(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrContactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact %d: %w", id, err)
	}
	if !c.Read {
		if err := s.MarkRead(ctx, id); err != nil {
			s.Logger.Warn("CONTACT", err.Error())
		} else {
			c.Read = true
		}
	}
	return c, nil
}

// Delete removes the ticket and reloads the local collection.
func (s *Service) Delete(ctx context.Context, id int64) error {
	n, err := s.DB.DeleteContact(ctx, id)
	if err != nil {
		return fmt.Errorf("delete contact %d: %w", id, err)
	}
	if n == 0 {
		return ErrContactNotFound
	}
	s.Logger.LogContact("DELETED", id, "")

	if s.State != nil {
		if err := s.State.ReloadContacts(ctx); err != nil {
			s.Logger.Warn("CONTACT", fmt.Sprintf("Reload after delete failed: %v", err))
		}
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableContacts, models.ChangeDelete)
	return nil
}

func (s *Service) List(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.DB.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *Service) Counters(ctx context.Context) (models.ContactCounters, error) {
	contacts, err := s.List(ctx)
	if err != nil {
		return models.ContactCounters{}, err
	}
	return Count(contacts), nil
}

// Count tallies the admin badges. An empty status counts as pending.
func Count(contacts []models.Contact) models.ContactCounters {
	var out models.ContactCounters
	for _, c := range contacts {
		if !c.Read {
			out.Unread++
		}
		switch c.Status {
		case models.ContactStatusPending, "":
			out.Pending++
		case models.ContactStatusProcessing:
			out.Processing++
		}
	}
	return out
}
