package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/models"
	"buildnchill-shop/internal/order"
	"buildnchill-shop/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, Logger: log}
}

// RegisterPublicRoutes mounts checkout under /api/shop.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/checkout", h.Checkout)
	r.Post("/orders", h.PlaceOrder)
}

// RegisterAdminRoutes mounts order management under /api/admin.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListOrders)
		r.Get("/{orderId}", h.GetOrder)
		r.Put("/{orderId}/status", h.UpdateStatus)
	})
	r.Get("/commands", h.ListCommands)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrProductUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrOrderExists),
		errors.Is(err, order.ErrOrderDelivered),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderConflict),
		errors.Is(err, order.ErrOrderBusy):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
	} else {
		h.Logger.Debug("API", fmt.Sprintf("%s: %v", op, err))
	}
	utils.WriteError(w, status, op+" failed", err)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	draft, err := h.OrderService.Checkout(r.Context(), req)
	if err != nil {
		h.fail(w, "Checkout", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order draft created", draft)
}

func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	placed, err := h.OrderService.PlaceOrder(r.Context(), req)
	if err != nil {
		h.fail(w, "PlaceOrder", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Order placed", models.NewOrderView(*placed))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, "ListOrders", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Orders", orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.OrderService.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, "GetOrder", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order", models.NewOrderView(*o))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	updated, err := h.OrderService.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.fail(w, "UpdateStatus", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Order status updated", models.NewOrderView(*updated))
}

func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	commands, err := h.OrderService.QueuedCommands(r.Context(), r.URL.Query().Get("mc_username"))
	if err != nil {
		h.fail(w, "ListCommands", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Commands", commands)
}
