package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildnchill-shop/internal/catalog"
	"buildnchill-shop/internal/config"
	"buildnchill-shop/internal/discord"
	"buildnchill-shop/internal/kafka"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	orderdb "buildnchill-shop/internal/order/db"
	"buildnchill-shop/internal/realtime"

	"github.com/google/uuid"
)

// PlacedNote is written on every order a player confirms on the web.
const PlacedNote = `Người chơi đã bấm nút "Đã Thanh Toán" trên web`

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderExists        = errors.New("order already placed")
	ErrOrderDelivered     = errors.New("order already delivered")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOrderConflict      = errors.New("order was changed by another request")
	ErrOrderBusy          = errors.New("order is being updated")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInvalidInput       = errors.New("invalid input")
)

type DBLayer interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, status string) ([]models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateNotes(ctx context.Context, id, notes string) error
	MarkPaid(ctx context.Context, id string, paidAt time.Time, commands []models.PendingCommand) error
	MarkDelivered(ctx context.Context, id string) error
	ListPendingCommands(ctx context.Context, mcUsername string) ([]models.PendingCommand, error)
}

type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type PaymentInstructions interface {
	Instructions(orderID string, amount int64, method string) (models.PaymentInfo, error)
}

// Locker serializes transitions of one order.
type Locker interface {
	Lock(ctx context.Context, orderID string) (func(), error)
}

type OrderService struct {
	DB            DBLayer
	Products      ProductSource
	Payments      PaymentInstructions
	Webhook       discord.Gateway
	Kafka         kafka.Publisher
	Topics        config.TopicConfig
	Changes       realtime.Publisher
	Lock          Locker
	MentionUserID string
	Logger        *logger.Logger
	now           func() time.Time
}

func NewOrderService(db DBLayer, products ProductSource, payments PaymentInstructions, webhook discord.Gateway, log *logger.Logger) *OrderService {
	return &OrderService{
		DB:       db,
		Products: products,
		Payments: payments,
		Webhook:  webhook,
		Kafka:    kafka.NoopPublisher{},
		Logger:   log,
		now:      time.Now,
	}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// ---------------- PLACEMENT ----------------

func (s *OrderService) availableProduct(ctx context.Context, id string) (*models.Product, error) {
	if id == "" {
		return nil, invalid("product is required")
	}
	p, err := s.Products.GetProduct(ctx, id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, ErrProductUnavailable
	}
	return p, nil
}

func paymentMethod(m string) (string, error) {
	switch m {
	case "":
		return models.PaymentMethodQR, nil
	case models.PaymentMethodQR, models.PaymentMethodBank:
		return m, nil
	}
	return "", invalid("payment method must be qr or bank")
}

// Checkout prepares an order for payment. Nothing is stored until the
// player confirms with PlaceOrder.
func (s *OrderService) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.OrderDraft, error) {
	username := strings.TrimSpace(req.MCUsername)
	if username == "" {
		return nil, invalid("minecraft username is required")
	}
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	product, err := s.availableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	info, err := s.Payments.Instructions(id, product.Price, method)
	if err != nil {
		return nil, fmt.Errorf("payment instructions: %w", err)
	}

	return &models.OrderDraft{
		ID:            id,
		MCUsername:    username,
		Product:       product.Name,
		ProductID:     product.ID,
		Price:         product.Price,
		DisplayPrice:  product.DisplayPrice,
		PaymentMethod: method,
		Payment:       info,
	}, nil
}

// PlaceOrder stores the order once the player reports the transfer, then
// notifies the shop channel and tags the order with the message id.
func (s *OrderService) PlaceOrder(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if _, err := uuid.Parse(req.ID); err != nil {
		return nil, invalid("order id must be the checkout id")
	}
	username := strings.TrimSpace(req.MCUsername)
	if username == "" {
		return nil, invalid("minecraft username is required")
	}
	method, err := paymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	product, err := s.availableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.DB.GetOrderByID(ctx, req.ID); err == nil && existing != nil {
		return nil, ErrOrderExists
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check order %s: %w", req.ID, err)
	}

	price := product.Price
	order := models.Order{
		ID:            req.ID,
		MCUsername:    username,
		Product:       product.Name,
		ProductID:     product.ID,
		CategoryID:    product.CategoryID,
		Command:       InstantiateCommand(product.Command, username),
		Price:         &price,
		Status:        models.OrderStatusPending,
		Delivered:     false,
		PaymentMethod: method,
		Notes:         PlacedNote,
		CreatedAt:     s.now(),
	}
	if err := s.DB.CreateOrder(ctx, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	s.Logger.LogOrder("PLACED", order.ID, fmt.Sprintf("%s bought %s", order.MCUsername, order.Product))

	msgID, err := s.Webhook.Send(ctx, discord.PaymentConfirmedMessage(order, s.MentionUserID, s.now()))
	if err != nil {
		s.Logger.Warn("WEBHOOK", fmt.Sprintf("Payment notification for order %s failed: %v", order.ID, err))
	} else if msgID != "" {
		notes := fmt.Sprintf("%s [msg_id:%s]", order.Notes, msgID)
		if err := s.DB.UpdateNotes(ctx, order.ID, notes); err != nil {
			s.Logger.Warn("ORDER", fmt.Sprintf("Could not tag order %s with message %s: %v", order.ID, msgID, err))
		} else {
			order.Notes = notes
			s.Logger.LogWebhook("SENT", msgID, "order "+order.ID)
		}
	}

	kafka.Emit(ctx, s.Kafka, s.Logger, s.Topics.OrderCreated, order.ID, models.NewOrderEvent(order))
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableOrders, models.ChangeInsert)
	return &order, nil
}

// ---------------- LIFECYCLE ----------------

// UpdateStatus moves an order forward: pending → paid → delivered.
func (s *OrderService) UpdateStatus(ctx context.Context, id, newStatus string) (*models.Order, error) {
	if newStatus != models.OrderStatusPaid && newStatus != models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: unknown target %q", ErrInvalidTransition, newStatus)
	}

	if s.Lock != nil {
		unlock, err := s.Lock.Lock(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOrderBusy, err)
		}
		defer unlock()
	}

	// Always act on the stored row; the caller's copy may carry stale notes.
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.IsFinal() {
		return nil, ErrOrderDelivered
	}

	current := order.DisplayStatus()
	now := s.now()
	msgID, hasMsgID := order.MessageID()

	switch {
	case current == models.OrderStatusPending && newStatus == models.OrderStatusPaid:
		var tag *string
		if hasMsgID {
			tag = &msgID
		}
		commands, err := DeliveryCommands(*order, tag)
		if err != nil {
			return nil, err
		}
		if err := s.DB.MarkPaid(ctx, id, now, commands); err != nil {
			return nil, s.writeError(id, err)
		}
		order.Status = models.OrderStatusPaid
		order.PaidAt = &now
		s.Logger.LogOrder("PAID", id, fmt.Sprintf("%d command(s) queued", len(commands)))

	case current == models.OrderStatusPaid && newStatus == models.OrderStatusDelivered:
		if err := s.DB.MarkDelivered(ctx, id); err != nil {
			return nil, s.writeError(id, err)
		}
		order.Status = models.OrderStatusDelivered
		order.Delivered = true
		s.Logger.LogOrder("DELIVERED", id, order.MCUsername)

	default:
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current, newStatus)
	}

	if hasMsgID {
		if err := s.Webhook.Edit(ctx, msgID, discord.OrderStatusMessage(*order, newStatus, now)); err != nil {
			s.Logger.Warn("WEBHOOK", fmt.Sprintf("Status sync for order %s failed: %v", id, err))
		} else {
			s.Logger.LogWebhook("EDITED", msgID, "order "+id+" → "+newStatus)
		}
	} else {
		s.Logger.Debug("WEBHOOK", fmt.Sprintf("Order %s has no message id, skipping sync", id))
	}

	topic := s.Topics.OrderPaid
	if newStatus == models.OrderStatusDelivered {
		topic = s.Topics.OrderDelivered
	}
	kafka.Emit(ctx, s.Kafka, s.Logger, topic, id, models.NewOrderEvent(*order))
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableOrders, models.ChangeUpdate)
	return order, nil
}

func (s *OrderService) writeError(id string, err error) error {
	if errors.Is(err, orderdb.ErrConflict) {
		return ErrOrderConflict
	}
	return fmt.Errorf("update order %s: %w", id, err)
}

// ---------------- READS ----------------

func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.DB.GetOrderByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

// ListOrders accepts all, pending, paid or delivered.
func (s *OrderService) ListOrders(ctx context.Context, filter string) ([]models.OrderView, error) {
	switch filter {
	case "", "all":
		filter = ""
	case models.OrderStatusPending, models.OrderStatusPaid, models.OrderStatusDelivered:
	default:
		return nil, invalid("unknown status filter " + filter)
	}

	orders, err := s.DB.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, models.NewOrderView(o))
	}
	return views, nil
}

// QueuedCommands lists the command queue rows for a player.
func (s *OrderService) QueuedCommands(ctx context.Context, mcUsername string) ([]models.PendingCommand, error) {
	mcUsername = strings.TrimSpace(mcUsername)
	if mcUsername == "" {
		return nil, invalid("minecraft username is required")
	}
	commands, err := s.DB.ListPendingCommands(ctx, mcUsername)
	if err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	return commands, nil
}
