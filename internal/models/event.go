package models

import "time"

// OrderEvent is the Kafka payload for order lifecycle events.
type OrderEvent struct {
	OrderID    string    `json:"order_id"`
	MCUsername string    `json:"mc_username"`
	Product    string    `json:"product"`
	Price      int64     `json:"price"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewOrderEvent(o Order) OrderEvent {
	return OrderEvent{
		OrderID:    o.ID,
		MCUsername: o.MCUsername,
		Product:    o.Product,
		Price:      o.PriceValue(),
		Status:     o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

type ContactEvent struct {
	ContactID  int64     `json:"contact_id"`
	IGN        string    `json:"ign"`
	Category   string    `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}
