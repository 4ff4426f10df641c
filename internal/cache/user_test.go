package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/vinylshop/vinylshop/internal/model"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewFromClient(client, time.Minute), mr
}

func sampleUser() *model.User {
	token := "tok"
	return &model.User{
		ID:                model.UserIDFromInt(7),
		RoleID:            model.DefaultRoleID,
		Name:              "Jo",
		Email:             model.MustEmailAddress("jo@example.com"),
		PasswordHash:      "hash",
		VerificationToken: &token,
		CreatedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNewFromClient_DefaultTTL(t *testing.T) {
	c := NewFromClient(redis.NewClient(&redis.Options{}), 0)
	require.Equal(t, DefaultTTL, c.TTL())
	_ = c.Close()
}

func TestUserCache_SetAndGet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	u := sampleUser()

	require.NoError(t, c.SetUser(ctx, u))

	byID, err := c.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Name, byID.Name)
	require.Equal(t, u.PasswordHash, byID.PasswordHash)
	require.NotNil(t, byID.VerificationToken)
	require.Equal(t, "tok", *byID.VerificationToken)
	require.True(t, byID.CreatedAt.Equal(u.CreatedAt))

	byEmail, err := c.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	require.True(t, byEmail.ID.Equals(u.ID))

	require.True(t, mr.Exists(userIDKey(u.ID)))
	require.False(t, mr.Exists(userEmailKeyPrefix+"jo@example.com"), "raw email must not be a key")
	require.Equal(t, time.Minute, mr.TTL(userIDKey(u.ID)))
}

func TestUserCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetUserByID(ctx, model.UserIDFromInt(1))
	require.True(t, errors.Is(err, ErrCacheMiss))

	_, err = c.GetUserByEmail(ctx, model.MustEmailAddress("none@example.com"))
	require.True(t, errors.Is(err, ErrCacheMiss))
}

func TestUserCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	id := model.UserIDFromInt(3)
	require.NoError(t, mr.Set(userIDKey(id), "{not json"))

	_, err := c.GetUserByID(context.Background(), id)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestUserCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	u := sampleUser()
	require.NoError(t, c.SetUser(ctx, u))

	mr.FastForward(2 * time.Minute)

	_, err := c.GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestUserCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	u := sampleUser()
	require.NoError(t, c.SetUser(ctx, u))

	require.NoError(t, c.DeleteUser(ctx, u.ID, u.Email))

	_, err := c.GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.GetUserByEmail(ctx, u.Email)
	require.ErrorIs(t, err, ErrCacheMiss)

	// Nothing to delete is not an error.
	require.NoError(t, c.DeleteUser(ctx, model.UserID{}))
}

func TestUserCache_DeleteFencesRefill(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	c.WithFenceTTL(2 * time.Second)

	stale := sampleUser()
	require.NoError(t, c.DeleteUser(ctx, stale.ID, stale.Email))
	require.True(t, mr.Exists(userFenceKey(stale.ID)))

	// A reader that loaded the user before the write lands after it.
	require.ErrorIs(t, c.SetUser(ctx, stale), ErrFenced)
	_, err := c.GetUserByID(ctx, stale.ID)
	require.ErrorIs(t, err, ErrCacheMiss)
	_, err = c.GetUserByEmail(ctx, stale.Email)
	require.ErrorIs(t, err, ErrCacheMiss)

	// Other users are not held back.
	other := sampleUser()
	other.ID = model.UserIDFromInt(8)
	other.Email = model.MustEmailAddress("other@example.com")
	require.NoError(t, c.SetUser(ctx, other))

	mr.FastForward(3 * time.Second)
	require.False(t, mr.Exists(userFenceKey(stale.ID)))
	require.NoError(t, c.SetUser(ctx, stale))
	_, err = c.GetUserByID(ctx, stale.ID)
	require.NoError(t, err)
}

func TestUserCache_FenceTTL(t *testing.T) {
	c, _ := newTestCache(t)
	require.Equal(t, DefaultFenceTTL, c.FenceTTL())
	require.Equal(t, time.Second, c.WithFenceTTL(time.Second).FenceTTL())
	require.Equal(t, time.Second, c.WithFenceTTL(0).FenceTTL())
}

func TestUserCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.GetUserByID(context.Background(), model.UserIDFromInt(1))
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrCacheMiss))
	require.Error(t, c.Ping(context.Background()))
}

func TestHashEmail(t *testing.T) {
	a := hashEmail(model.MustEmailAddress("a@example.com"))
	b := hashEmail(model.MustEmailAddress("b@example.com"))
	require.Len(t, a, 32)
	require.NotEqual(t, a, b)
	require.Equal(t, a, hashEmail(model.MustEmailAddress("a@example.com")))
}
