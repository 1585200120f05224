package analytics_api

import (
	"net/http"

	"buildnchill-shop/internal/analytics"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Handler handles analytics HTTP endpoints
type Handler struct {
	Service *analytics.Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, logger *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: logger}
}

// RegisterAdminRoutes registers the dashboard route under /api/admin
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
}

// GetDashboard returns the aggregated order statistics
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats := h.Service.Dashboard(r.Context())
	utils.WriteSuccess(w, http.StatusOK, "Dashboard", stats)
}
