package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinylshop/vinylshop/internal/auth"
	"github.com/vinylshop/vinylshop/internal/events"
	"github.com/vinylshop/vinylshop/internal/store/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) PublishAsync(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func TestUserService_PublishesLifecycleEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewUserService(UserDeps{
		Users:  memory.NewUsers(),
		Events: pub,
		Hasher: auth.NewHasher(auth.Params{Time: 1, Memory: 1024, Threads: 1}),
		Logger: quietLogger,
	})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Name: "Jo", Email: "jo@example.com", Password: "password123"})
	require.NoError(t, err)

	// Name-only update does not emit.
	name := "Jo Doe"
	_, err = svc.UpdateProfile(ctx, u.ID.String(), UpdateProfileInput{Name: &name})
	require.NoError(t, err)

	email := "jo.doe@example.com"
	u, err = svc.UpdateProfile(ctx, u.ID.String(), UpdateProfileInput{Email: &email})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, u.ID.String(), *u.VerificationToken)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID.String()))

	require.Equal(t, []events.Type{
		events.UserRegistered,
		events.UserEmailChanged,
		events.UserVerified,
		events.UserDeleted,
	}, pub.types())
	for _, e := range pub.events {
		require.Equal(t, u.ID.String(), e.SubjectID)
		require.NotZero(t, e.OccurredAt)
	}
}

func TestUserService_NoEventOnFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewUserService(UserDeps{
		Users:  unavailableUsers{},
		Events: pub,
		Hasher: auth.NewHasher(auth.Params{Time: 1, Memory: 1024, Threads: 1}),
		Logger: quietLogger,
	})

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Jo", Email: "jo@example.com", Password: "password123"})
	require.Error(t, err)
	require.Empty(t, pub.types())
}

func TestAccountService_PublishesLifecycleEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewAccountService(memory.NewAccounts(), nil, quietLogger).WithEvents(pub)
	ctx := context.Background()

	a, err := svc.Open(ctx, OpenAccountInput{Email: "shop@example.com", Name: "Main"})
	require.NoError(t, err)
	_, err = svc.Rename(ctx, a.ID.String(), "Other")
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx, a.ID.String()))

	// Closing twice fails and stays silent.
	require.Error(t, svc.Close(ctx, a.ID.String()))

	require.Equal(t, []events.Type{events.AccountOpened, events.AccountClosed}, pub.types())
}
