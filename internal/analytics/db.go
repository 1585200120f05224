package analytics

import (
	"context"

	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

// DB handles analytics database operations
type DB struct {
	bun *bun.DB
}

// NewDB creates a new analytics DB handler
func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

// OrderFacts retrieves the dashboard columns of every order
func (db *DB) OrderFacts(ctx context.Context) ([]OrderFact, error) {
	var facts []OrderFact
	err := db.bun.NewSelect().
		Model((*models.Order)(nil)).
		Column("created_at", "price", "status", "delivered", "product").
		Order("created_at ASC").
		Scan(ctx, &facts)

	return facts, err
}
