// Package events broadcasts round-lifecycle events to subscribers. Delivery
// is at-most-once: a failed publish is logged and dropped, and clients
// reconcile by polling the current-round endpoint.
package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
)

// envelope is the wire format published to subscribers.
type envelope struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	RoundID   string         `json:"round_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"created_at"`
}

func toEnvelope(event *domain.Event) envelope {
	return envelope{
		ID:        event.ID,
		Type:      event.Type,
		RoundID:   event.RoundID,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// RedisPublisher implements usecase.EventPublisher over Redis pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewRedisPublisher creates a new RedisPublisher on the given channel.
func NewRedisPublisher(client *redis.Client, channel string, logger zerolog.Logger, m *metrics.Metrics) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logger,
		metrics: m,
	}
}

// Publish broadcasts the event to every subscriber on the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(toEnvelope(event))
	if err != nil {
		return err
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		if p.metrics != nil {
			p.metrics.EventErrors.Inc()
		}
		return err
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("round_id", event.RoundID).
		Msg("event published")

	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	}

	return nil
}

// LogPublisher implements usecase.EventPublisher by logging events. Used
// when no Redis is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("round_id", event.RoundID).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
