package kafka

import (
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

func NewConsumerGroupHandler(logger *slog.Logger, handler Handler, batchSize int, backoff time.Duration) sarama.ConsumerGroupHandler {
	h := newConsumerGroupHandler(logger, handler, batchSize)
	h.retryBackoff = backoff
	h.maxRetryBackoff = backoff
	return h
}
