package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"casasapi/src/domain"
	"casasapi/src/infra/kafka"
)

// AssetDestroyer é satisfeito pelo cliente do Cloudinary.
type AssetDestroyer interface {
	Destroy(ctx context.Context, publicID string) error
}

type MessageConsumer interface {
	Consume(ctx context.Context, handler kafka.Handler, topic string) error
}

// MediaOrphansConsumer remove do Cloudinary os uploads de lotes que falharam.
type MediaOrphansConsumer struct {
	logger         *slog.Logger
	destroyer      AssetDestroyer
	destroyTimeout time.Duration
}

func NewMediaOrphansConsumer(
	logger *slog.Logger,
	destroyer AssetDestroyer,
	destroyTimeout time.Duration,
) *MediaOrphansConsumer {
	return &MediaOrphansConsumer{
		logger:         logger,
		destroyer:      destroyer,
		destroyTimeout: destroyTimeout,
	}
}

func (c *MediaOrphansConsumer) Start(ctx context.Context, consumer MessageConsumer, topic string) error {
	c.logger.Info("Starting media orphans consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return consumer.Consume(ctx, handler, topic)
}

// HandleMessages ignora eventos de outros tipos. Um erro faz o mesmo lote ser
// reenviado até ser aceito; Destroy é idempotente.
func (c *MediaOrphansConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	for _, msg := range messages {
		if eventType, ok := msg.Headers["event_type"]; ok && eventType != domain.EventMediaOrphaned {
			continue
		}

		var event domain.DomainEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// mensagem malformada nunca vai passar, não trava a partição
			c.logger.Error("Failed to unmarshal event, skipping", "error", err, "key", msg.Key)
			continue
		}
		if event.EventType != domain.EventMediaOrphaned {
			continue
		}

		for _, publicID := range event.Data.PublicIDs {
			if err := c.destroy(ctx, publicID); err != nil {
				c.logger.Error("Failed to destroy orphan upload", "public_id", publicID, "event_id", event.EventID, "error", err)
				return fmt.Errorf("MediaOrphansConsumer.HandleMessages - event %s: %w", event.EventID, err)
			}
			c.logger.Info("Orphan upload destroyed", "public_id", publicID, "event_id", event.EventID)
		}
	}

	return nil
}

func (c *MediaOrphansConsumer) destroy(ctx context.Context, publicID string) error {
	destroyCtx, cancel := context.WithTimeout(ctx, c.destroyTimeout)
	defer cancel()

	return c.destroyer.Destroy(destroyCtx, publicID)
}
