package kafka

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

type KafkaProducer struct {
	logger   *slog.Logger
	producer sarama.SyncProducer
}

func NewKafkaProducer(logger *slog.Logger, brokers []string) (*KafkaProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, newConfig(1))
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	logger.Info("Kafka producer initialized", "brokers", brokers)

	return &KafkaProducer{
		logger:   logger,
		producer: producer,
	}, nil
}

// Send publica o lote de uma vez. Qualquer falha parcial é devolvida como erro.
func (k *KafkaProducer) Send(messages []Message, topic string) error {
	if len(messages) == 0 {
		return nil
	}

	kafkaMessages := make([]*sarama.ProducerMessage, len(messages))
	for i, msg := range messages {
		kafkaMessages[i] = &sarama.ProducerMessage{
			Topic:   topic,
			Key:     sarama.StringEncoder(msg.Key),
			Value:   sarama.ByteEncoder(msg.Value),
			Headers: toRecordHeaders(msg.Headers),
		}
	}

	if err := k.producer.SendMessages(kafkaMessages); err != nil {
		var producerErrors sarama.ProducerErrors
		if errors.As(err, &producerErrors) {
			k.logger.Error("Batch completed with errors", "failed", len(producerErrors), "total", len(messages), "topic", topic)
			return fmt.Errorf("batch send failed: %d/%d messages failed: %w", len(producerErrors), len(messages), err)
		}
		return fmt.Errorf("batch send failed: %w", err)
	}

	k.logger.Debug("Batch sent", "messages", len(messages), "topic", topic)
	return nil
}

func (k *KafkaProducer) Close() error {
	if err := k.producer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
