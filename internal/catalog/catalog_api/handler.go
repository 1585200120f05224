package catalog_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"buildnchill-shop/internal/catalog"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/storage"
	"buildnchill-shop/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxFormMemory = 32 << 20

type Handler struct {
	Catalog *catalog.Service
	Logger  *logger.Logger
}

func NewHandler(service *catalog.Service, log *logger.Logger) *Handler {
	return &Handler{Catalog: service, Logger: log}
}

// RegisterPublicRoutes mounts the shop read endpoints under /api/shop.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/categories", h.ListActiveCategories)
	r.Get("/products", h.ListActiveProducts)
}

// RegisterAdminRoutes mounts catalog CRUD under /api/admin.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Post("/", h.CreateProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, catalog.ErrCategoryNotFound), errors.Is(err, catalog.ErrProductNotFound):
		status = http.StatusNotFound
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, op+" failed", err)
}

func (h *Handler) ListActiveCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context(), true)
	if err != nil {
		h.fail(w, "ListCategories", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Categories", categories)
}

func (h *Handler) ListActiveProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{CategoryID: r.URL.Query().Get("category_id"), ActiveOnly: true}
	products, err := h.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.fail(w, "ListProducts", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Products", products)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.ListCategories(r.Context(), false)
	if err != nil {
		h.fail(w, "ListCategories", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Categories", categories)
}

type categoryRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Icon         string `json:"icon"`
	DisplayOrder int    `json:"display_order"`
	Active       *bool  `json:"active"`
}

func (c categoryRequest) model() models.Category {
	return models.Category{
		Name:         c.Name,
		Description:  c.Description,
		Icon:         c.Icon,
		DisplayOrder: c.DisplayOrder,
		Active:       c.Active == nil || *c.Active,
	}
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	category, err := h.Catalog.CreateCategory(r.Context(), req.model())
	if err != nil {
		h.fail(w, "CreateCategory", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Category created", category)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	category, err := h.Catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.model())
	if err != nil {
		h.fail(w, "UpdateCategory", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category updated", category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "DeleteCategory", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Category deleted", nil)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{CategoryID: r.URL.Query().Get("category_id")}
	products, err := h.Catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.fail(w, "ListProducts", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Products", products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Catalog.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "GetProduct", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Product", product)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, image, err := decodeProduct(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	defer closeUpload(image)
	created, err := h.Catalog.CreateProduct(r.Context(), product, image)
	if err != nil {
		h.fail(w, "CreateProduct", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Product created", created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, image, err := decodeProduct(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	defer closeUpload(image)
	updated, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), product, image)
	if err != nil {
		h.fail(w, "UpdateProduct", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Product updated", updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "DeleteProduct", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Product deleted", nil)
}

type productRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url"`
	Command      string `json:"command"`
	Price        int64  `json:"price"`
	DisplayPrice string `json:"display_price"`
	CategoryID   string `json:"category_id"`
	DisplayOrder int    `json:"display_order"`
	Active       *bool  `json:"active"`
}

// decodeProduct accepts JSON or a multipart form with an optional "image"
// file part.
func decodeProduct(r *http.Request) (models.Product, *storage.Upload, error) {
	var req productRequest
	var image *storage.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return models.Product{}, nil, err
		}
		req.Name = r.FormValue("name")
		req.Description = r.FormValue("description")
		req.ImageURL = r.FormValue("image_url")
		req.Command = r.FormValue("command")
		req.DisplayPrice = r.FormValue("display_price")
		req.CategoryID = r.FormValue("category_id")

		var err error
		if req.Price, err = formInt(r, "price"); err != nil {
			return models.Product{}, nil, err
		}
		order, err := formInt(r, "display_order")
		if err != nil {
			return models.Product{}, nil, err
		}
		req.DisplayOrder = int(order)
		if v := r.FormValue("active"); v != "" {
			active, err := strconv.ParseBool(v)
			if err != nil {
				return models.Product{}, nil, fmt.Errorf("active: %w", err)
			}
			req.Active = &active
		}

		if file, header, err := r.FormFile("image"); err == nil {
			image = &storage.Upload{Filename: header.Filename, Size: header.Size, Reader: file}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return models.Product{}, nil, err
	}

	return models.Product{
		Name:         req.Name,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Command:      req.Command,
		Price:        req.Price,
		DisplayPrice: req.DisplayPrice,
		CategoryID:   req.CategoryID,
		DisplayOrder: req.DisplayOrder,
		Active:       req.Active == nil || *req.Active,
	}, image, nil
}

// closeUpload releases the multipart file part behind an upload, if any.
func closeUpload(image *storage.Upload) {
	if image == nil {
		return
	}
	if c, ok := image.Reader.(io.Closer); ok {
		c.Close()
	}
}

func formInt(r *http.Request, key string) (int64, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
