package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vinylshop/vinylshop/internal/model"
)

const (
	userIDKeyPrefix    = "user:id:"
	userEmailKeyPrefix = "user:email:"
	userFenceKeyPrefix = "user:fence:"
)

// setUserScript writes both user entries unless an invalidation fence is
// up for that user. Returns 1 when written, 0 when fenced.
var setUserScript = redis.NewScript(`
	local fence = KEYS[1]
	local data = ARGV[1]
	local ttl = ARGV[2]   -- milliseconds

	if redis.call('EXISTS', fence) == 1 then
		return 0
	end

	redis.call('SET', KEYS[2], data, 'PX', ttl)
	redis.call('SET', KEYS[3], data, 'PX', ttl)
	return 1
`)

// cachedUser is the Redis representation of a user.
// Unlike model.User it keeps every column.
type cachedUser struct {
	ID                 string     `json:"id"`
	RoleID             int64      `json:"role_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"password_hash"`
	FirstName          *string    `json:"first_name,omitempty"`
	LastName           *string    `json:"last_name,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty"`
	IsVerified         bool       `json:"is_verified"`
	VerificationToken  *string    `json:"verification_token,omitempty"`
	PasswordResetToken *string    `json:"password_reset_token,omitempty"`
	RememberToken      *string    `json:"remember_token,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func toCachedUser(u *model.User) cachedUser {
	return cachedUser{
		ID:                 u.ID.String(),
		RoleID:             u.RoleID,
		Name:               u.Name,
		Email:              u.Email.String(),
		PasswordHash:       u.PasswordHash,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		DateOfBirth:        u.DateOfBirth,
		IsVerified:         u.IsVerified,
		VerificationToken:  u.VerificationToken,
		PasswordResetToken: u.PasswordResetToken,
		RememberToken:      u.RememberToken,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}

func (c cachedUser) toModel() (*model.User, error) {
	email, err := model.NewEmailAddress(c.Email)
	if err != nil {
		return nil, err
	}
	return &model.User{
		ID:                 model.NewUserID(c.ID),
		RoleID:             c.RoleID,
		Name:               c.Name,
		Email:              email,
		PasswordHash:       c.PasswordHash,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Phone:              c.Phone,
		DateOfBirth:        c.DateOfBirth,
		IsVerified:         c.IsVerified,
		VerificationToken:  c.VerificationToken,
		PasswordResetToken: c.PasswordResetToken,
		RememberToken:      c.RememberToken,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}, nil
}

// hashEmail keeps raw addresses out of the key space.
func hashEmail(email model.EmailAddress) string {
	sum := sha256.Sum256([]byte(email.String()))
	return hex.EncodeToString(sum[:16])
}

func userIDKey(id model.UserID) string {
	return userIDKeyPrefix + id.String()
}

func userEmailKey(email model.EmailAddress) string {
	return userEmailKeyPrefix + hashEmail(email)
}

func userFenceKey(id model.UserID) string {
	return userFenceKeyPrefix + id.String()
}

// GetUserByID returns a cached user or ErrCacheMiss.
func (c *Cache) GetUserByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return c.getUser(ctx, userIDKey(id))
}

// GetUserByEmail returns a cached user or ErrCacheMiss.
func (c *Cache) GetUserByEmail(ctx context.Context, email model.EmailAddress) (*model.User, error) {
	user, err := c.getUser(ctx, userEmailKey(email))
	if err != nil {
		return nil, err
	}
	// Guard against a hash collision serving the wrong user.
	if !user.Email.Equals(email) {
		return nil, ErrCacheMiss
	}
	return user, nil
}

func (c *Cache) getUser(ctx context.Context, key string) (*model.User, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, ErrCacheMiss
	}

	user, err := cached.toModel()
	if err != nil {
		return nil, ErrCacheMiss
	}
	return user, nil
}

// SetUser caches a user under both its id and email keys. It returns
// ErrFenced without writing when DeleteUser ran for this user within the
// fence TTL, so a read that raced a write cannot restore the old state.
func (c *Cache) SetUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(toCachedUser(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	written, err := setUserScript.Run(ctx, c.client,
		[]string{userFenceKey(user.ID), userIDKey(user.ID), userEmailKey(user.Email)},
		data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to cache user: %w", err)
	}
	if written == 0 {
		return ErrFenced
	}
	return nil
}

// DeleteUser removes a user's entries and raises the fence that keeps
// SetUser out for the fence TTL. Pass every email the user has had since
// it was last cached.
func (c *Cache) DeleteUser(ctx context.Context, id model.UserID, emails ...model.EmailAddress) error {
	keys := make([]string, 0, len(emails)+1)
	if !id.IsZero() {
		keys = append(keys, userIDKey(id))
	}
	for _, email := range emails {
		if !email.IsZero() {
			keys = append(keys, userEmailKey(email))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	if !id.IsZero() {
		pipe.Set(ctx, userFenceKey(id), 1, c.fence)
	}
	pipe.Del(ctx, keys...)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user from cache: %w", err)
	}
	return nil
}
