package db

import (
	"context"
	"errors"
	"time"

	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

// ErrConflict means the row no longer matched the expected state when the
// update ran.
var ErrConflict = errors.New("order changed concurrently")

type DB struct {
	Bun *bun.DB
}

// ---------------- ORDERS ----------------

// GetOrderByID → fetch one order by its ID
func (d *DB) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders → newest first, optionally filtered on the display status
// (a set delivered flag wins over the status column)
func (d *DB) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	var orders []models.Order
	q := d.Bun.NewSelect().Model(&orders)
	switch status {
	case "":
	case models.OrderStatusDelivered:
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("status = ?", status).WhereOr("delivered = ?", true)
		})
	case models.OrderStatusPending:
		// unknown or empty statuses display as pending
		q = q.Where("status NOT IN (?)", bun.In([]string{models.OrderStatusPaid, models.OrderStatusDelivered})).
			Where("delivered = ?", false)
	default:
		q = q.Where("status = ?", status).Where("delivered = ?", false)
	}
	if err := q.Order("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return orders, nil
}

// CreateOrder → insert new order
func (d *DB) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := d.Bun.NewInsert().Model(order).Exec(ctx)
	return err
}

// UpdateNotes → only the notes column
func (d *DB) UpdateNotes(ctx context.Context, id, notes string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("notes = ?", notes).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// MarkPaid stamps the order as paid and queues its game commands in one
// transaction. Nothing is written unless the order is still open and unpaid.
func (d *DB) MarkPaid(ctx context.Context, id string, paidAt time.Time, commands []models.PendingCommand) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderStatusPaid).
			Set("paid_at = ?", paidAt).
			Where("id = ?", id).
			Where("delivered = ?", false).
			Where("status NOT IN (?)", bun.In([]string{models.OrderStatusPaid, models.OrderStatusDelivered})).
			Exec(ctx)
		if err := expectOne(res, err); err != nil {
			return err
		}

		if len(commands) == 0 {
			return nil
		}
		_, err = tx.NewInsert().Model(&commands).Exec(ctx)
		return err
	})
}

// MarkDelivered closes a paid order.
func (d *DB) MarkDelivered(ctx context.Context, id string) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Order)(nil)).
		Set("status = ?", models.OrderStatusDelivered).
		Set("delivered = ?", true).
		Where("id = ?", id).
		Where("status = ?", models.OrderStatusPaid).
		Where("delivered = ?", false).
		Exec(ctx)
	return expectOne(res, err)
}

// ---------------- COMMAND QUEUE ----------------

// ListPendingCommands → queue rows for one player, oldest first
func (d *DB) ListPendingCommands(ctx context.Context, mcUsername string) ([]models.PendingCommand, error) {
	var commands []models.PendingCommand
	err := d.Bun.NewSelect().
		Model(&commands).
		Where("mc_username = ?", mcUsername).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return commands, nil
}

type rowsResult interface {
	RowsAffected() (int64, error)
}

func expectOne(res rowsResult, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
