package db_test

import (
	"context"
	"testing"
	"time"

	"buildnchill-shop/internal/database/dbtest"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/order/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	return &db.DB{Bun: dbtest.Open(t)}
}

func newOrder(createdAt time.Time, status string) *models.Order {
	price := int64(50000)
	return &models.Order{
		ID:            uuid.New().String(),
		MCUsername:    "Steve123",
		Product:       "VIP Rank",
		Command:       "give Steve123 vip",
		Price:         &price,
		Status:        status,
		PaymentMethod: models.PaymentMethodQR,
		Notes:         "note",
		CreatedAt:     createdAt,
	}
}

func TestCreateAndGetOrder(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()

	o := newOrder(time.Now(), models.OrderStatusPending)
	require.NoError(t, orderDB.CreateOrder(ctx, o))

	got, err := orderDB.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.MCUsername, got.MCUsername)
	assert.Equal(t, int64(50000), got.PriceValue())
	assert.False(t, got.Delivered)
	assert.Nil(t, got.PaidAt)
}

func TestListOrdersNewestFirstWithFilter(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	older := newOrder(base, models.OrderStatusPending)
	newer := newOrder(base.Add(time.Minute), models.OrderStatusPaid)
	require.NoError(t, orderDB.CreateOrder(ctx, older))
	require.NoError(t, orderDB.CreateOrder(ctx, newer))

	all, err := orderDB.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	paid, err := orderDB.ListOrders(ctx, models.OrderStatusPaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, newer.ID, paid[0].ID)
}

func TestListOrdersDeliveredFlagWinsOverStatus(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()

	flagged := newOrder(time.Now(), models.OrderStatusPending)
	flagged.Delivered = true
	open := newOrder(time.Now().Add(-time.Minute), models.OrderStatusPending)
	require.NoError(t, orderDB.CreateOrder(ctx, flagged))
	require.NoError(t, orderDB.CreateOrder(ctx, open))

	delivered, err := orderDB.ListOrders(ctx, models.OrderStatusDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, flagged.ID, delivered[0].ID)

	pending, err := orderDB.ListOrders(ctx, models.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)
}

func TestListOrdersPendingMatchesDisplayStatus(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	pending := newOrder(base, models.OrderStatusPending)
	blank := newOrder(base.Add(time.Minute), "")
	legacy := newOrder(base.Add(2*time.Minute), "awaiting_payment")
	paid := newOrder(base.Add(3*time.Minute), models.OrderStatusPaid)
	for _, o := range []*models.Order{pending, blank, legacy, paid} {
		require.NoError(t, orderDB.CreateOrder(ctx, o))
	}

	listed, err := orderDB.ListOrders(ctx, models.OrderStatusPending)
	require.NoError(t, err)
	ids := []string{}
	for _, o := range listed {
		assert.Equal(t, models.OrderStatusPending, o.DisplayStatus())
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{legacy.ID, blank.ID, pending.ID}, ids)
}

func TestMarkPaidWritesOrderAndCommandsTogether(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()

	o := newOrder(time.Now(), models.OrderStatusPending)
	require.NoError(t, orderDB.CreateOrder(ctx, o))

	msgID := "123456"
	paidAt := time.Now()
	commands := []models.PendingCommand{
		{Command: "give Steve123 vip", MCUsername: "Steve123", Status: models.CommandStatusPending, DiscordMessageID: &msgID},
		{Command: "tellraw Steve123 {}", MCUsername: "Steve123", Status: models.CommandStatusPending, DiscordMessageID: &msgID},
	}
	require.NoError(t, orderDB.MarkPaid(ctx, o.ID, paidAt, commands))

	got, err := orderDB.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
	require.NotNil(t, got.PaidAt)
	assert.WithinDuration(t, paidAt, *got.PaidAt, time.Second)

	queued, err := orderDB.ListPendingCommands(ctx, "Steve123")
	require.NoError(t, err)
	require.Len(t, queued, 2)
	assert.Equal(t, "give Steve123 vip", queued[0].Command)
	require.NotNil(t, queued[1].DiscordMessageID)
	assert.Equal(t, "123456", *queued[1].DiscordMessageID)

	// A second payment attempt finds nothing to update and queues nothing.
	err = orderDB.MarkPaid(ctx, o.ID, paidAt, commands)
	assert.ErrorIs(t, err, db.ErrConflict)
	queued, err = orderDB.ListPendingCommands(ctx, "Steve123")
	require.NoError(t, err)
	assert.Len(t, queued, 2)
}

func TestMarkDeliveredRequiresPaid(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()

	o := newOrder(time.Now(), models.OrderStatusPending)
	require.NoError(t, orderDB.CreateOrder(ctx, o))

	assert.ErrorIs(t, orderDB.MarkDelivered(ctx, o.ID), db.ErrConflict)

	require.NoError(t, orderDB.MarkPaid(ctx, o.ID, time.Now(), nil))
	require.NoError(t, orderDB.MarkDelivered(ctx, o.ID))

	got, err := orderDB.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.Status)
	assert.True(t, got.Delivered)
}

func TestUpdateNotesTouchesOnlyNotes(t *testing.T) {
	orderDB := setupTestDB(t)
	ctx := context.Background()

	o := newOrder(time.Now(), models.OrderStatusPending)
	require.NoError(t, orderDB.CreateOrder(ctx, o))
	require.NoError(t, orderDB.UpdateNotes(ctx, o.ID, "note [msg_id:42]"))

	got, err := orderDB.GetOrderByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "note [msg_id:42]", got.Notes)
	assert.Equal(t, o.Command, got.Command)
	assert.Equal(t, models.OrderStatusPending, got.Status)
}
