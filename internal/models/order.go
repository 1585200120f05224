package models

import (
	"regexp"
	"time"

	"github.com/uptrace/bun"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"

	PaymentMethodQR   = "qr"
	PaymentMethodBank = "bank"
)

// msgIDPattern matches the correlation tag the shop writes into order notes
// after posting the webhook message.
var msgIDPattern = regexp.MustCompile(`\[msg_id:(\d+)\]`)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            string     `bun:"id,pk" json:"id"`
	MCUsername    string     `bun:"mc_username,notnull" json:"mc_username"`
	Product       string     `bun:"product" json:"product"`
	ProductID     string     `bun:"product_id" json:"product_id"`
	CategoryID    string     `bun:"category_id" json:"category_id"`
	Command       string     `bun:"command" json:"command"`
	Price         *int64     `bun:"price" json:"price"`
	Status        string     `bun:"status,notnull" json:"status"`
	Delivered     bool       `bun:"delivered,notnull" json:"delivered"`
	PaymentMethod string     `bun:"payment_method" json:"payment_method"`
	Notes         string     `bun:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	PaidAt        *time.Time `bun:"paid_at" json:"paid_at,omitempty"`
}

// PriceValue treats a missing price as zero.
func (o Order) PriceValue() int64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

// IsPaid reports whether the order counts toward revenue.
func (o Order) IsPaid() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusDelivered || o.Delivered
}

// IsFinal reports whether no further transition is allowed. The delivered
// flag and the status column can disagree after manual edits; either one
// closes the order.
func (o Order) IsFinal() bool {
	return o.Status == OrderStatusDelivered || o.Delivered
}

// DisplayStatus is the status shown to admins.
func (o Order) DisplayStatus() string {
	if o.Delivered {
		return OrderStatusDelivered
	}
	switch o.Status {
	case OrderStatusPaid, OrderStatusDelivered:
		return o.Status
	default:
		return OrderStatusPending
	}
}

// MessageID extracts the webhook message id from the notes, if any.
func (o Order) MessageID() (string, bool) {
	return ExtractMessageID(o.Notes)
}

func ExtractMessageID(notes string) (string, bool) {
	m := msgIDPattern.FindStringSubmatch(notes)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// OrderView is the admin list row with the derived display status.
type OrderView struct {
	Order
	DisplayStatus string `json:"display_status"`
}

func NewOrderView(o Order) OrderView {
	return OrderView{Order: o, DisplayStatus: o.DisplayStatus()}
}

type CheckoutRequest struct {
	MCUsername    string `json:"mc_username"`
	ProductID     string `json:"product_id"`
	PaymentMethod string `json:"payment_method"`
}

type PlaceOrderRequest struct {
	ID            string `json:"id"`
	MCUsername    string `json:"mc_username"`
	ProductID     string `json:"product_id"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentInfo struct {
	BankName    string `json:"bank_name"`
	BankAccount string `json:"bank_account"`
	AccountName string `json:"account_name"`
	Amount      int64  `json:"amount"`
	Memo        string `json:"memo"`
	QRImageURL  string `json:"qr_image_url,omitempty"`
	QRCode      string `json:"qr_code,omitempty"`
}

// OrderDraft is returned by checkout before the player confirms payment.
type OrderDraft struct {
	ID            string      `json:"id"`
	MCUsername    string      `json:"mc_username"`
	Product       string      `json:"product"`
	ProductID     string      `json:"product_id"`
	Price         int64       `json:"price"`
	DisplayPrice  string      `json:"display_price,omitempty"`
	PaymentMethod string      `json:"payment_method"`
	Payment       PaymentInfo `json:"payment"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}
