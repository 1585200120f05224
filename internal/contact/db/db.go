package db

import (
	"context"

	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ListContacts → newest first
func (d *DB) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	err := d.Bun.NewSelect().
		Model(&contacts).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (d *DB) GetContact(ctx context.Context, id int64) (*models.Contact, error) {
	var contact models.Contact
	err := d.Bun.NewSelect().
		Model(&contact).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (d *DB) CreateContact(ctx context.Context, contact *models.Contact) error {
	_, err := d.Bun.NewInsert().Model(contact).Returning("id").Exec(ctx)
	return err
}

// UpdateStatus → only the status column, discord_message_id is never touched
func (d *DB) UpdateStatus(ctx context.Context, id int64, status string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Contact)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkRead → one-way, an already read row is left alone
func (d *DB) MarkRead(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Contact)(nil)).
		Set("read = ?", true).
		Where("id = ?", id).
		Where("read = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) SetDiscordMessageID(ctx context.Context, id int64, messageID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Contact)(nil)).
		Set("discord_message_id = ?", messageID).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) DeleteContact(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Contact)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
