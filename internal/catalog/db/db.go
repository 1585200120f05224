package db

import (
	"context"

	"buildnchill-shop/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- CATEGORIES ----------------

// ListCategories → display_order ascending, insertion order on ties
func (d *DB) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	q := d.Bun.NewSelect().Model(&categories)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Order("display_order ASC", "created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (d *DB) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	err := d.Bun.NewSelect().
		Model(&category).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (d *DB) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := d.Bun.NewInsert().Model(category).Exec(ctx)
	return err
}

// UpdateCategory → editable columns only, created_at stays
func (d *DB) UpdateCategory(ctx context.Context, category *models.Category) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model(category).
		Column("name", "description", "icon", "display_order", "active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) DeleteCategory(ctx context.Context, id string) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------- PRODUCTS ----------------

func (d *DB) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	q := d.Bun.NewSelect().Model(&products)
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	err := q.Order("display_order ASC", "created_at ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (d *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := d.Bun.NewSelect().
		Model(&product).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (d *DB) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := d.Bun.NewInsert().Model(product).Exec(ctx)
	return err
}

func (d *DB) UpdateProduct(ctx context.Context, product *models.Product) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model(product).
		Column("name", "description", "image_url", "command", "price", "display_price",
			"category_id", "display_order", "active").
		WherePK().
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) DeleteProduct(ctx context.Context, id string) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Product)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
