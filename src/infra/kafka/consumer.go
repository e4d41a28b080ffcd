package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

type Handler func(messages []Message) error

type KafkaConsumer struct {
	logger    *slog.Logger
	consumer  sarama.ConsumerGroup
	batchSize int
}

func NewKafkaConsumer(logger *slog.Logger, brokers []string, groupID string, batchSize int) (*KafkaConsumer, error) {
	consumer, err := sarama.NewConsumerGroup(brokers, groupID, newConfig(batchSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	logger.Info("Kafka consumer initialized", "group_id", groupID, "batch_size", batchSize)

	return &KafkaConsumer{
		logger:    logger,
		consumer:  consumer,
		batchSize: batchSize,
	}, nil
}

// Consume bloqueia até ctx ser cancelado, reconectando após erros.
func (k *KafkaConsumer) Consume(ctx context.Context, handler Handler, topic string) error {
	consumerHandler := newConsumerGroupHandler(k.logger, handler, k.batchSize)

	for {
		select {
		case <-ctx.Done():
			k.logger.Info("Kafka consumer context cancelled")
			return nil
		default:
			if err := k.consumer.Consume(ctx, []string{topic}, consumerHandler); err != nil {
				k.logger.Error("Error consuming from topic", "topic", topic, "error", err)
				time.Sleep(5 * time.Second)
				continue
			}
		}
	}
}

func (k *KafkaConsumer) Close() error {
	if err := k.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close consumer: %w", err)
	}
	return nil
}

const (
	defaultBatchTimeout    = 2 * time.Second
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultMaxRetryBackoff = 30 * time.Second
)

// consumerGroupHandler implementa sarama.ConsumerGroupHandler.
// Um lote só é marcado depois que o handler aceita; enquanto falha, o mesmo lote é
// reenviado com backoff e nenhuma mensagem posterior da partição é processada.
type consumerGroupHandler struct {
	logger          *slog.Logger
	handler         Handler
	batchSize       int
	batchTimeout    time.Duration
	retryBackoff    time.Duration
	maxRetryBackoff time.Duration
}

func newConsumerGroupHandler(logger *slog.Logger, handler Handler, batchSize int) *consumerGroupHandler {
	return &consumerGroupHandler{
		logger:          logger,
		handler:         handler,
		batchSize:       batchSize,
		batchTimeout:    defaultBatchTimeout,
		retryBackoff:    defaultRetryBackoff,
		maxRetryBackoff: defaultMaxRetryBackoff,
	}
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim devolve erro quando a sessão termina com um lote não processado;
// o sarama encerra a sessão e o grupo retoma do último offset commitado, que é anterior ao lote.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	messages := make([]Message, 0, h.batchSize)
	timer := time.NewTimer(h.batchTimeout)
	defer timer.Stop()

	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return h.processBatch(session, messages)
			}

			messages = append(messages, Message{
				Key:      string(message.Key),
				Value:    message.Value,
				Headers:  fromRecordHeaders(message.Headers),
				internal: message,
			})

			if len(messages) >= h.batchSize {
				if err := h.processBatch(session, messages); err != nil {
					return err
				}
				messages = messages[:0]
				timer.Reset(h.batchTimeout)
			}

		case <-timer.C:
			if err := h.processBatch(session, messages); err != nil {
				return err
			}
			messages = messages[:0]
			timer.Reset(h.batchTimeout)

		case <-session.Context().Done():
			return h.processBatch(session, messages)
		}
	}
}

func (h *consumerGroupHandler) processBatch(session sarama.ConsumerGroupSession, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}

	backoff := h.retryBackoff
	for attempt := 1; ; attempt++ {
		err := h.handler(messages)
		if err == nil {
			break
		}

		h.logger.Error("Handler error for batch", "messages", len(messages), "attempt", attempt, "retry_in", backoff, "error", err)

		retry := time.NewTimer(backoff)
		select {
		case <-session.Context().Done():
			retry.Stop()
			return fmt.Errorf("consumerGroupHandler.processBatch - %d messages left unmarked: %w", len(messages), err)
		case <-retry.C:
		}
		backoff = min(backoff*2, h.maxRetryBackoff)
	}

	for _, msg := range messages {
		if msg.internal != nil {
			session.MarkMessage(msg.internal, "")
		}
	}

	h.logger.Debug("Processed batch", "messages", len(messages))
	return nil
}
