package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinylshop/vinylshop/internal/handler/dto"
	"github.com/vinylshop/vinylshop/internal/service"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterUserRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	dob, err := dto.ParseDate(req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "date_of_birth must be YYYY-MM-DD")
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		DateOfBirth: dob,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+user.ID.String())
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Get handles GET /api/v1/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// FindByEmail handles GET /api/v1/users?email=.
func (h *UserHandler) FindByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "MISSING_EMAIL", "email query parameter is required")
		return
	}

	user, err := h.svc.GetByEmail(r.Context(), email)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Update handles PATCH /api/v1/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateUserRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	dob, err := dto.ParseDate(req.DateOfBirth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "date_of_birth must be YYYY-MM-DD")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), chi.URLParam(r, "id"), service.UpdateProfileInput{
		Name:        req.Name,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		DateOfBirth: dob,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// ChangePassword handles POST /api/v1/users/{id}/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), chi.URLParam(r, "id"), req.CurrentPassword, req.NewPassword); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Verify handles POST /api/v1/users/{id}/verify.
func (h *UserHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyUserRequest
	if err := decode(r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	user, err := h.svc.Verify(r.Context(), chi.URLParam(r, "id"), req.Token)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Delete handles DELETE /api/v1/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
