package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vinylshop/vinylshop/internal/auth"
	"github.com/vinylshop/vinylshop/internal/handler/dto"
	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/service"
	"github.com/vinylshop/vinylshop/internal/store"
)

// retryAfterSeconds is advertised when the store is unavailable.
const retryAfterSeconds = 5

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON field names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errBadJSON wraps request bodies that are not valid JSON.
var errBadJSON = errors.New("invalid request body")

// decode reads a JSON body into dst and validates its tags.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return validate.Struct(dst)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain, store and decode errors to HTTP responses.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var validationErrs validator.ValidationErrors
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &validationErrs):
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:  "Request validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: fields,
		})
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
	case errors.Is(err, errBadJSON):
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
	case errors.Is(err, model.ErrInvalidEmailFormat):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
	case errors.Is(err, service.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Name must be 1-255 characters")
	case errors.Is(err, service.ErrInvalidPhone):
		writeError(w, http.StatusBadRequest, "INVALID_PHONE", "Phone must be at most 20 characters")
	case errors.Is(err, store.ErrInvalidData):
		writeError(w, http.StatusBadRequest, "INVALID_DATA", "A field value is out of range")
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "WEAK_PASSWORD", "Password must be at least 8 characters")
	case errors.Is(err, service.ErrInvalidToken):
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "Verification token does not match")
	case errors.Is(err, service.ErrWrongPassword):
		writeError(w, http.StatusForbidden, "WRONG_PASSWORD", "Current password is incorrect")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, store.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already exists")
	case errors.Is(err, service.ErrAlreadyVerified):
		writeError(w, http.StatusConflict, "ALREADY_VERIFIED", "User is already verified")
	case errors.Is(err, store.ErrStoreUnavailable):
		logger.Warn("store_unavailable", "error", err)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
