package contact_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"buildnchill-shop/internal/contact"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/storage"
	"buildnchill-shop/internal/utils"

	"github.com/go-chi/chi/v5"
)

const maxFormMemory = 32 << 20

type Handler struct {
	Contacts *contact.Service
	Logger   *logger.Logger
}

func NewHandler(service *contact.Service, log *logger.Logger) *Handler {
	return &Handler{Contacts: service, Logger: log}
}

// RegisterPublicRoutes mounts the contact form under /api/contacts.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/", h.Submit)
}

// RegisterAdminRoutes mounts the ticket inbox under /api/admin/contacts.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/counters", h.Counters)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
	r.Put("/{id}/read", h.MarkRead)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contact.ErrInvalidInput), errors.Is(err, contact.ErrInvalidStatus):
		status = http.StatusBadRequest
	case errors.Is(err, contact.ErrContactNotFound):
		status = http.StatusNotFound
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, op+" failed", err)
}

func contactID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// Submit accepts multipart (with an optional "image" file) or JSON.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	var image *storage.Upload

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid form", err)
			return
		}
		req = models.ContactRequest{
			IGN:      r.FormValue("ign"),
			Email:    r.FormValue("email"),
			Phone:    r.FormValue("phone"),
			Category: r.FormValue("category"),
			Message:  r.FormValue("message"),
		}
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			image = &storage.Upload{Filename: header.Filename, Size: header.Size, Reader: file}
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Contacts.Submit(r.Context(), req, image)
	if err != nil {
		h.fail(w, "Submit", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Contact received", c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Contacts.List(r.Context())
	if err != nil {
		h.fail(w, "ListContacts", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contacts", contacts)
}

func (h *Handler) Counters(w http.ResponseWriter, r *http.Request) {
	counters, err := h.Contacts.Counters(r.Context())
	if err != nil {
		h.fail(w, "Counters", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contact counters", counters)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid contact id", err)
		return
	}
	c, err := h.Contacts.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "GetContact", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contact", c)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid contact id", err)
		return
	}
	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c, err := h.Contacts.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.fail(w, "UpdateContactStatus", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contact status updated", c)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid contact id", err)
		return
	}
	if err := h.Contacts.MarkRead(r.Context(), id); err != nil {
		h.fail(w, "MarkRead", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contact marked as read", nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := contactID(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid contact id", err)
		return
	}
	if err := h.Contacts.Delete(r.Context(), id); err != nil {
		h.fail(w, "DeleteContact", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Contact deleted", nil)
}
