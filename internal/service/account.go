package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/vinylshop/vinylshop/internal/events"
	"github.com/vinylshop/vinylshop/internal/metrics"
	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

// AccountService handles account lifecycle.
type AccountService struct {
	accounts store.AccountRepository
	events   EventPublisher
	instrument
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts store.AccountRepository, recorder metrics.Recorder, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts:   accounts,
		events:     noopPublisher{},
		instrument: newInstrument(recorder, logger),
	}
}

// WithEvents makes the service publish lifecycle events.
func (s *AccountService) WithEvents(p EventPublisher) *AccountService {
	if p != nil {
		s.events = p
	}
	return s
}

// OpenAccountInput defines input for opening an account.
type OpenAccountInput struct {
	Email string
	Name  string
}

// Open creates an account for an email address.
func (s *AccountService) Open(ctx context.Context, input OpenAccountInput) (*model.Account, error) {
	email, err := model.NewEmailAddress(input.Email)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}

	account := &model.Account{Email: email, Name: name}
	if err := s.save(ctx, "accounts.open", account); err != nil {
		return nil, err
	}

	s.metrics.IncAccountOpened()
	s.events.PublishAsync(events.New(events.AccountOpened, account.ID.String()))
	s.logger.Info("account opened", "account_id", account.ID.String())

	return account, nil
}

// GetByEmail returns the live account registered under raw.
func (s *AccountService) GetByEmail(ctx context.Context, raw string) (*model.Account, error) {
	email, err := model.NewEmailAddress(raw)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	account, err := s.accounts.FindByEmail(ctx, email)
	s.observe("accounts.find_by_email", start, err)
	return account, err
}

// GetByID returns the live account with the given id.
func (s *AccountService) GetByID(ctx context.Context, raw string) (*model.Account, error) {
	start := time.Now()
	account, err := s.accounts.FindByID(ctx, model.NewAccountID(raw))
	s.observe("accounts.find_by_id", start, err)
	return account, err
}

// Rename changes the account's display name.
func (s *AccountService) Rename(ctx context.Context, rawID, name string) (*model.Account, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	account, err := s.GetByID(ctx, rawID)
	if err != nil {
		return nil, err
	}
	account.Name = name

	if err := s.save(ctx, "accounts.rename", account); err != nil {
		return nil, err
	}

	s.metrics.IncAccountUpdated()
	return account, nil
}

// Close soft-deletes an account.
func (s *AccountService) Close(ctx context.Context, rawID string) error {
	start := time.Now()
	err := s.accounts.Delete(ctx, model.NewAccountID(rawID))
	s.observe("accounts.close", start, err)
	if err != nil {
		return err
	}

	s.metrics.IncAccountClosed()
	s.events.PublishAsync(events.New(events.AccountClosed, rawID))
	s.logger.Info("account closed", "account_id", rawID)
	return nil
}

func (s *AccountService) save(ctx context.Context, op string, account *model.Account) error {
	start := time.Now()
	err := s.accounts.Save(ctx, account)
	s.observe(op, start, err)
	return err
}
