package auth_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"buildnchill-shop/internal/auth"
	"buildnchill-shop/internal/logger"
	"buildnchill-shop/internal/utils"
)

type Handler struct {
	Auth   *auth.Manager
	Logger *logger.Logger
}

func NewHandler(manager *auth.Manager, log *logger.Logger) *Handler {
	return &Handler{Auth: manager, Logger: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	session, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		utils.WriteError(w, http.StatusUnauthorized, "Sai tài khoản hoặc mật khẩu", err)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteError(w, http.StatusInternalServerError, "Could not start session", err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, "Logged in", session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	raw, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	if err := h.Auth.Logout(r.Context(), raw); err != nil {
		h.Logger.Warn("API", fmt.Sprintf("Logout: %v", err))
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}
