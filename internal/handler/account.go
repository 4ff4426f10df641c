package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinylshop/vinylshop/internal/handler/dto"
	"github.com/vinylshop/vinylshop/internal/service"
)

// AccountHandler handles HTTP requests for account operations.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Open handles POST /api/v1/accounts.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	account, err := h.svc.Open(r.Context(), service.OpenAccountInput{Email: req.Email, Name: req.Name})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/accounts/"+account.ID.String())
	writeJSON(w, http.StatusCreated, dto.ToAccountResponse(account))
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// FindByEmail handles GET /api/v1/accounts?email=.
func (h *AccountHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email query parameter is required")
		return
	}

	account, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// Rename handles PATCH /api/v1/accounts/{id}.
func (h *AccountHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req dto.RenameAccountRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	account, err := h.svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// Close handles DELETE /api/v1/accounts/{id}.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
