package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/realtime"
	"buildnchill-shop/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidInput     = errors.New("invalid input")
)

type DBLayer interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) (int64, error)
	DeleteCategory(ctx context.Context, id string) (int64, error)

	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) (int64, error)
	DeleteProduct(ctx context.Context, id string) (int64, error)
}

type Service struct {
	DB      DBLayer
	Images  storage.Uploader
	Changes realtime.Publisher
	Logger  *logger.Logger
	now     func() time.Time
}

func NewService(db DBLayer, images storage.Uploader, changes realtime.Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Images: images, Changes: changes, Logger: log, now: time.Now}
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// ---------------- CATEGORIES ----------------

func (s *Service) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	categories, err := s.DB.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Service) CreateCategory(ctx context.Context, c models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, invalid("category name is required")
	}
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()

	if err := s.DB.CreateCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.Logger.LogDatabase("INSERT", models.TableCategories, c.ID)
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableCategories, models.ChangeInsert)
	return &c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, c models.Category) (*models.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, invalid("category name is required")
	}
	c.ID = id

	n, err := s.DB.UpdateCategory(ctx, &c)
	if err != nil {
		return nil, fmt.Errorf("update category %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrCategoryNotFound
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableCategories, models.ChangeUpdate)
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	n, err := s.DB.DeleteCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	s.Logger.LogDatabase("DELETE", models.TableCategories, id)
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableCategories, models.ChangeDelete)
	return nil
}

// ---------------- PRODUCTS ----------------

func (s *Service) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.DB.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.DB.GetProduct(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (s *Service) validateProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Command = strings.TrimSpace(p.Command)
	switch {
	case p.Name == "":
		return invalid("product name is required")
	case p.Price < 0:
		return invalid("price must not be negative")
	case !strings.Contains(p.Command, models.UsernamePlaceholder):
		return invalid("command must contain " + models.UsernamePlaceholder)
	case p.CategoryID == "":
		return invalid("category is required")
	}

	if _, err := s.DB.GetCategory(ctx, p.CategoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("check category: %w", err)
	}
	return nil
}

// checkImage validates an optional upload before anything is written. A
// rejected file is an input error.
func (s *Service) checkImage(image *storage.Upload) (*storage.Image, error) {
	if image == nil || s.Images == nil {
		return nil, nil
	}
	img, err := s.Images.Validate(*image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return img, nil
}

// storeImage returns the new public URL, or fallback when there is no image
// or the backend fails. A failed store never blocks the save.
func (s *Service) storeImage(ctx context.Context, img *storage.Image, fallback string) string {
	if img == nil {
		return fallback
	}
	url, err := s.Images.Store(ctx, storage.BucketProductImages, img)
	if err != nil {
		s.Logger.Warn("CATALOG", fmt.Sprintf("Image upload failed, keeping previous image: %v", err))
		return fallback
	}
	return url
}

func (s *Service) CreateProduct(ctx context.Context, p models.Product, image *storage.Upload) (*models.Product, error) {
	img, err := s.checkImage(image)
	if err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, &p); err != nil {
		return nil, err
	}
	p.ImageURL = s.storeImage(ctx, img, p.ImageURL)
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()

	if err := s.DB.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.Logger.LogDatabase("INSERT", models.TableProducts, p.ID)
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableProducts, models.ChangeInsert)
	return &p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, p models.Product, image *storage.Upload) (*models.Product, error) {
	img, err := s.checkImage(image)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, &p); err != nil {
		return nil, err
	}

	switch {
	case img != nil:
		p.ImageURL = s.storeImage(ctx, img, existing.ImageURL)
	case p.ImageURL == "":
		p.ImageURL = existing.ImageURL
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt

	n, err := s.DB.UpdateProduct(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	if n == 0 {
		return nil, ErrProductNotFound
	}
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableProducts, models.ChangeUpdate)
	return &p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	n, err := s.DB.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if n == 0 {
		return ErrProductNotFound
	}
	s.Logger.LogDatabase("DELETE", models.TableProducts, id)
	realtime.Notify(ctx, s.Changes, s.Logger, models.TableProducts, models.ChangeDelete)
	return nil
}
