// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vinylshop/vinylshop/internal/events"
	"github.com/vinylshop/vinylshop/internal/metrics"
	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

// Service errors. Store errors (store.ErrNotFound, store.ErrDuplicateEmail,
// store.ErrInvalidData, store.ErrStoreUnavailable) and
// model.ErrInvalidEmailFormat are returned as-is and matched with errors.Is.
var (
	ErrInvalidName     = errors.New("name must be 1-255 characters")
	ErrInvalidPhone    = errors.New("phone must be at most 20 characters")
	ErrWrongPassword   = errors.New("current password is incorrect")
	ErrInvalidToken    = errors.New("invalid verification token")
	ErrAlreadyVerified = errors.New("user is already verified")
)

const (
	maxNameLength  = 255
	maxPhoneLength = 20
)

// UserCache is the read-through cache used by UserService.
// *cache.Cache implements it.
type UserCache interface {
	GetUserByID(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email model.EmailAddress) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id model.UserID, emails ...model.EmailAddress) error
}

// EventPublisher emits lifecycle events after successful writes.
// *events.Publisher implements it.
type EventPublisher interface {
	PublishAsync(event events.Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(events.Event) {}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func checkPhone(phone *string) error {
	if phone != nil && utf8.RuneCountInString(*phone) > maxPhoneLength {
		return ErrInvalidPhone
	}
	return nil
}

// instrument times a store call and counts unavailable-store failures.
type instrument struct {
	metrics metrics.Recorder
	logger  *slog.Logger
}

func (in instrument) observe(op string, start time.Time, err error) {
	in.metrics.ObserveStoreDuration(time.Since(start))
	if store.IsRetryable(err) {
		in.metrics.IncStoreError(op)
		in.logger.Warn("store unavailable", "op", op, "error", err)
	}
}

func newInstrument(recorder metrics.Recorder, logger *slog.Logger) instrument {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return instrument{metrics: recorder, logger: logger}
}
