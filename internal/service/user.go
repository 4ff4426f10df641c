package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vinylshop/vinylshop/internal/auth"
	"github.com/vinylshop/vinylshop/internal/cache"
	"github.com/vinylshop/vinylshop/internal/events"
	"github.com/vinylshop/vinylshop/internal/metrics"
	"github.com/vinylshop/vinylshop/internal/model"
	"github.com/vinylshop/vinylshop/internal/store"
)

// UserDeps are the collaborators of UserService. Only Users is required.
type UserDeps struct {
	Users         store.UserRepository
	Cache         UserCache
	Events        EventPublisher
	Hasher        *auth.Hasher
	Metrics       metrics.Recorder
	Logger        *slog.Logger
	DefaultRoleID int64
}

// UserService handles user registration and profile management.
type UserService struct {
	users         store.UserRepository
	cache         UserCache
	events        EventPublisher
	hasher        *auth.Hasher
	defaultRoleID int64
	instrument
}

// NewUserService creates a new UserService.
func NewUserService(d UserDeps) *UserService {
	if d.Hasher == nil {
		d.Hasher = auth.NewHasher(auth.DefaultParams)
	}
	if d.Events == nil {
		d.Events = noopPublisher{}
	}
	if d.DefaultRoleID <= 0 {
		d.DefaultRoleID = model.DefaultRoleID
	}
	return &UserService{
		users:         d.Users,
		cache:         d.Cache,
		events:        d.Events,
		hasher:        d.Hasher,
		defaultRoleID: d.DefaultRoleID,
		instrument:    newInstrument(d.Metrics, d.Logger),
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	FirstName   *string
	LastName    *string
	Phone       *string
	DateOfBirth *time.Time
}

// Register creates an unverified user with a fresh verification token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	// Input is rejected before any I/O.
	email, err := model.NewEmailAddress(input.Email)
	if err != nil {
		return nil, err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := checkPhone(input.Phone); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	token := auth.NewVerificationToken()
	user := &model.User{
		RoleID:            s.defaultRoleID,
		Name:              name,
		Email:             email,
		PasswordHash:      hash,
		FirstName:         input.FirstName,
		LastName:          input.LastName,
		Phone:             input.Phone,
		DateOfBirth:       input.DateOfBirth,
		VerificationToken: &token,
	}

	if err := s.save(ctx, "users.register", user); err != nil {
		return nil, err
	}

	s.metrics.IncUserRegistered()
	s.events.PublishAsync(events.New(events.UserRegistered, user.ID.String()))
	s.logger.Info("user registered", "user_id", user.ID.String())

	return user, nil
}

// GetByEmail returns the live user registered under raw.
func (s *UserService) GetByEmail(ctx context.Context, raw string) (*model.User, error) {
	email, err := model.NewEmailAddress(raw)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		user, err := s.cache.GetUserByEmail(ctx, email)
		if err == nil {
			s.metrics.IncUserLookup(metrics.SourceCache)
			return user, nil
		}
		s.logCacheError("get user by email", err)
	}

	start := time.Now()
	user, err := s.users.FindByEmail(ctx, email)
	s.observe("users.find_by_email", start, err)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserLookup(metrics.SourceStore)
	s.backfill(ctx, user)
	return user, nil
}

// GetByID returns the live user with the given id.
func (s *UserService) GetByID(ctx context.Context, raw string) (*model.User, error) {
	id := model.NewUserID(raw)

	if s.cache != nil {
		user, err := s.cache.GetUserByID(ctx, id)
		if err == nil {
			s.metrics.IncUserLookup(metrics.SourceCache)
			return user, nil
		}
		s.logCacheError("get user by id", err)
	}

	user, err := s.load(ctx, raw)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserLookup(metrics.SourceStore)
	s.backfill(ctx, user)
	return user, nil
}

// UpdateProfileInput defines input for updating a user's profile.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Name        *string
	Email       *string
	FirstName   *string
	LastName    *string
	Phone       *string
	DateOfBirth *time.Time
}

// UpdateProfile changes profile fields. A new email address resets the
// verification state and issues a new token.
func (s *UserService) UpdateProfile(ctx context.Context, rawID string, input UpdateProfileInput) (*model.User, error) {
	var newEmail model.EmailAddress
	if input.Email != nil {
		email, err := model.NewEmailAddress(*input.Email)
		if err != nil {
			return nil, err
		}
		newEmail = email
	}
	var newName string
	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		newName = name
	}
	if err := checkPhone(input.Phone); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	oldEmail := user.Email
	emailChanged := false

	if input.Name != nil {
		user.Name = newName
	}
	if !newEmail.IsZero() && !newEmail.Equals(user.Email) {
		token := auth.NewVerificationToken()
		user.Email = newEmail
		user.IsVerified = false
		user.VerificationToken = &token
		emailChanged = true
	}
	if input.FirstName != nil {
		user.FirstName = input.FirstName
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.DateOfBirth != nil {
		user.DateOfBirth = input.DateOfBirth
	}

	if err := s.save(ctx, "users.update", user); err != nil {
		return nil, err
	}

	s.metrics.IncUserUpdated()
	s.invalidate(ctx, user.ID, oldEmail, user.Email)
	if emailChanged {
		s.events.PublishAsync(events.New(events.UserEmailChanged, user.ID.String()))
	}

	return user, nil
}

// ChangePassword replaces the password after checking the current one.
// Outstanding reset and remember tokens are revoked.
func (s *UserService) ChangePassword(ctx context.Context, rawID, current, next string) error {
	if err := auth.CheckPasswordPolicy(next); err != nil {
		return err
	}

	user, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash unreadable", "user_id", user.ID.String(), "error", err)
		return ErrWrongPassword
	}
	if !ok {
		return ErrWrongPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.RememberToken = nil

	if err := s.save(ctx, "users.change_password", user); err != nil {
		return err
	}

	s.metrics.IncUserUpdated()
	s.invalidate(ctx, user.ID, user.Email)

	return nil
}

// Verify marks the user's email as verified when token matches.
func (s *UserService) Verify(ctx context.Context, rawID, token string) (*model.User, error) {
	user, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if user.VerificationToken == nil || !auth.TokensEqual(*user.VerificationToken, token) {
		return nil, ErrInvalidToken
	}

	user.IsVerified = true
	user.VerificationToken = nil

	if err := s.save(ctx, "users.verify", user); err != nil {
		return nil, err
	}

	s.metrics.IncUserUpdated()
	s.invalidate(ctx, user.ID, user.Email)
	s.events.PublishAsync(events.New(events.UserVerified, user.ID.String()))
	s.logger.Info("user verified", "user_id", user.ID.String())

	return user, nil
}

// Delete soft-deletes a user. The email stays reserved.
func (s *UserService) Delete(ctx context.Context, rawID string) error {
	// Load first to get the email for cache invalidation
	user, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}

	start := time.Now()
	err = s.users.Delete(ctx, user.ID)
	s.observe("users.delete", start, err)
	if err != nil {
		return err
	}

	s.metrics.IncUserDeleted()
	s.invalidate(ctx, user.ID, user.Email)
	s.events.PublishAsync(events.New(events.UserDeleted, user.ID.String()))
	s.logger.Info("user deleted", "user_id", user.ID.String())

	return nil
}

// load reads a user from the store, bypassing the cache.
func (s *UserService) load(ctx context.Context, rawID string) (*model.User, error) {
	start := time.Now()
	user, err := s.users.FindByID(ctx, model.NewUserID(rawID))
	s.observe("users.find_by_id", start, err)
	return user, err
}

func (s *UserService) save(ctx context.Context, op string, user *model.User) error {
	start := time.Now()
	err := s.users.Save(ctx, user)
	s.observe(op, start, err)
	return err
}

func (s *UserService) backfill(ctx context.Context, user *model.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logCacheError("set user", err)
	}
}

func (s *UserService) invalidate(ctx context.Context, id model.UserID, emails ...model.EmailAddress) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteUser(ctx, id, emails...); err != nil {
		// Entries expire on their own; the write already succeeded.
		s.logCacheError("delete user", err)
	}
}

func (s *UserService) logCacheError(op string, err error) {
	if errors.Is(err, cache.ErrCacheMiss) {
		return
	}
	if errors.Is(err, cache.ErrFenced) {
		s.logger.Debug("user cache refill skipped after recent write", "op", op)
		return
	}
	s.logger.Warn("user cache error", "op", op, "error", err)
}
