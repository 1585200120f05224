package models

import "time"

// Tables that emit change notifications.
const (
	TableNews         = "news"
	TableServerStatus = "server_status"
	TableContacts     = "contacts"
	TableSiteSettings = "site_settings"
	TableOrders       = "orders"
	TableCategories   = "categories"
	TableProducts     = "products"
)

const (
	ChangeInsert = "insert"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Change is a row-level change notification for one table.
type Change struct {
	Table string    `json:"table"`
	Event string    `json:"event"`
	At    time.Time `json:"at"`
}
