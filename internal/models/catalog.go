package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UsernamePlaceholder is replaced with the buyer's in-game name.
const UsernamePlaceholder = "{username}"

type Category struct {
	bun.BaseModel `bun:"table:categories"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Description  string    `bun:"description" json:"description"`
	Icon         string    `bun:"icon" json:"icon"`
	DisplayOrder int       `bun:"display_order,notnull" json:"display_order"`
	Active       bool      `bun:"active,notnull" json:"active"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Description  string    `bun:"description" json:"description"`
	ImageURL     string    `bun:"image_url" json:"image_url"`
	Command      string    `bun:"command,notnull" json:"command"`
	Price        int64     `bun:"price,notnull" json:"price"`
	DisplayPrice string    `bun:"display_price" json:"display_price,omitempty"`
	CategoryID   string    `bun:"category_id" json:"category_id"`
	DisplayOrder int       `bun:"display_order,notnull" json:"display_order"`
	Active       bool      `bun:"active,notnull" json:"active"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type ProductFilter struct {
	CategoryID string
	ActiveOnly bool
}
