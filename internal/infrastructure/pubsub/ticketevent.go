package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/archy/internal/domain/archive"
	"github.com/orris-inc/archy/internal/shared/logger"
)

const (
	ticketArchivedChannel = "archy:ticket:archived"

	EventTypeTicketArchived = "ticket.archived"
)

// TicketEventEnvelope wraps an archive event with a unique id for consumers
// that need to drop duplicates.
type TicketEventEnvelope struct {
	EventID    string                      `json:"event_id"`
	Type       string                      `json:"type"`
	OccurredAt int64                       `json:"occurred_at"`
	Payload    archive.TicketArchivedEvent `json:"payload"`
}

// TicketEventHandler is a callback function for handling archive events
type TicketEventHandler func(ctx context.Context, envelope TicketEventEnvelope)

// RedisTicketEventBus publishes and consumes archive events over Redis Pub/Sub.
type RedisTicketEventBus struct {
	client *redis.Client
	logger logger.Interface
}

func NewRedisTicketEventBus(client *redis.Client, logger logger.Interface) *RedisTicketEventBus {
	return &RedisTicketEventBus{
		client: client,
		logger: logger,
	}
}

func NewTicketEventEnvelope(event archive.TicketArchivedEvent) TicketEventEnvelope {
	return TicketEventEnvelope{
		EventID:    uuid.NewString(),
		Type:       EventTypeTicketArchived,
		OccurredAt: time.Now().Unix(),
		Payload:    event,
	}
}

func (b *RedisTicketEventBus) PublishTicketArchived(ctx context.Context, event archive.TicketArchivedEvent) error {
	envelope := NewTicketEventEnvelope(event)

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, ticketArchivedChannel, data).Err(); err != nil {
		b.logger.Errorw("failed to publish ticket archived event",
			"event_id", envelope.EventID,
			"metadata_id", event.MetadataID,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("ticket archived event published",
		"event_id", envelope.EventID,
		"metadata_id", event.MetadataID,
		"channel_id", event.ChannelID,
	)
	return nil
}

// Subscribe blocks until ctx is done, calling handler for each decoded event.
func (b *RedisTicketEventBus) Subscribe(ctx context.Context, handler TicketEventHandler) error {
	sub := b.client.Subscribe(ctx, ticketArchivedChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Infow("subscribed to ticket events", "channel", ticketArchivedChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			b.logger.Infow("ticket event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				b.logger.Warnw("ticket event channel closed")
				return nil
			}

			envelope, err := DecodeTicketEvent([]byte(msg.Payload))
			if err != nil {
				b.logger.Warnw("failed to decode ticket event",
					"payload", msg.Payload,
					"error", err,
				)
				continue
			}
			handler(ctx, envelope)
		}
	}
}

func DecodeTicketEvent(data []byte) (TicketEventEnvelope, error) {
	var envelope TicketEventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return TicketEventEnvelope{}, fmt.Errorf("failed to unmarshal ticket event: %w", err)
	}
	if envelope.Type != EventTypeTicketArchived {
		return TicketEventEnvelope{}, fmt.Errorf("unexpected event type %q", envelope.Type)
	}
	return envelope, nil
}
