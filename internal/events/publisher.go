// Package events publishes user and account lifecycle events to a Redis
// stream for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vinylshop/vinylshop/internal/metrics"
)

const (
	// StreamKey is the Redis stream for lifecycle events.
	StreamKey = "stream:user_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// Type names a lifecycle event.
type Type string

const (
	UserRegistered   Type = "user.registered"
	UserEmailChanged Type = "user.email_changed"
	UserVerified     Type = "user.verified"
	UserDeleted      Type = "user.deleted"
	AccountOpened    Type = "account.opened"
	AccountClosed    Type = "account.closed"
)

// Event is the stream payload. It carries ids only, never addresses.
type Event struct {
	Type       Type   `json:"type"`
	SubjectID  string `json:"sid"`
	OccurredAt int64  `json:"t"` // Unix milliseconds
}

// New builds an event stamped with the current time.
func New(t Type, subjectID string) Event {
	return Event{Type: t, SubjectID: subjectID, OccurredAt: time.Now().UnixMilli()}
}

// Publisher enqueues lifecycle events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously and returns its
// stream id.
func (p *Publisher) Publish(ctx context.Context, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":    string(event.Type),
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishAsync publishes without blocking the caller. Failures are logged
// and counted, never returned.
func (p *Publisher) PublishAsync(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish event",
				"type", event.Type,
				"subject_id", event.SubjectID,
				"error", err,
			)
			p.metrics.IncEventPublished("dropped")
			return
		}

		p.logger.Debug("event published",
			"type", event.Type,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished("success")
	}()
}

// Decode parses a stream message back into an Event.
func Decode(msg redis.XMessage) (Event, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return Event{}, fmt.Errorf("message %s: missing payload", msg.ID)
	}
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return Event{}, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	return event, nil
}
