package site_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/site"
	"buildnchill-shop/internal/utils"

	"github.com/go-chi/chi/v5"
)

// Snapshot is the cached public state served without touching the database.
type Snapshot interface {
	News() []models.News
	Settings() models.SiteSettings
	ServerStatus() models.ServerStatus
}

type Handler struct {
	Site   *site.Service
	Store  Snapshot
	Logger *logger.Logger
}

func NewHandler(service *site.Service, store Snapshot, log *logger.Logger) *Handler {
	return &Handler{Site: service, Store: store, Logger: log}
}

type siteView struct {
	Settings     models.SiteSettings `json:"settings"`
	ServerStatus models.ServerStatus `json:"server_status"`
}

// RegisterPublicRoutes mounts the read endpoints under /api.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/site", h.GetSite)
	r.Get("/news", h.ListNews)
	r.Get("/news/{id}", h.GetNews)
	r.Get("/server-status", h.GetServerStatus)
}

// RegisterAdminRoutes mounts content management under /api/admin.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/news", func(r chi.Router) {
		r.Post("/", h.CreateNews)
		r.Put("/{id}", h.UpdateNews)
		r.Delete("/{id}", h.DeleteNews)
	})
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Put("/server-status", h.UpdateServerStatus)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, site.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, site.ErrNewsNotFound):
		status = http.StatusNotFound
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, op+" failed", err)
}

func newsID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, "Site", siteView{
		Settings:     h.Store.Settings(),
		ServerStatus: h.Store.ServerStatus(),
	})
}

func (h *Handler) GetServerStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, "Server status", h.Store.ServerStatus())
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, "News", h.Store.News())
}

// GetNews serves from the cache and falls back to the database for posts
// the cache has not seen yet.
func (h *Handler) GetNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid news id", err)
		return
	}
	for _, n := range h.Store.News() {
		if n.ID == id {
			utils.WriteSuccess(w, http.StatusOK, "News", n)
			return
		}
	}
	n, err := h.Site.GetNews(r.Context(), id)
	if err != nil {
		h.fail(w, "GetNews", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "News", n)
}

func (h *Handler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req models.NewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	n, err := h.Site.CreateNews(r.Context(), req)
	if err != nil {
		h.fail(w, "CreateNews", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "News created", n)
}

func (h *Handler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid news id", err)
		return
	}
	var req models.NewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	n, err := h.Site.UpdateNews(r.Context(), id, req)
	if err != nil {
		h.fail(w, "UpdateNews", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "News updated", n)
}

func (h *Handler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, err := newsID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid news id", err)
		return
	}
	if err := h.Site.DeleteNews(r.Context(), id); err != nil {
		h.fail(w, "DeleteNews", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "News deleted", nil)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Site.Settings(r.Context())
	if err != nil {
		h.fail(w, "GetSettings", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Settings", settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	settings, err := h.Site.UpdateSettings(r.Context(), patch)
	if err != nil {
		h.fail(w, "UpdateSettings", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Settings updated", settings)
}

func (h *Handler) UpdateServerStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ServerStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, err := h.Site.UpdateServerStatus(r.Context(), req)
	if err != nil {
		h.fail(w, "UpdateServerStatus", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Server status updated", status)
}
