package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"casasapi/src/domain"
	"casasapi/src/infra/kafka"

	"github.com/google/uuid"
)

const sourceService = "casas-api"

// MessageSender é satisfeito por *kafka.KafkaProducer.
type MessageSender interface {
	Send(messages []kafka.Message, topic string) error
}

type DomainEventPublisher struct {
	logger *slog.Logger
	sender MessageSender
	topic  string
}

// sender nil desliga a publicação: os eventos só são logados.
func NewDomainEventPublisher(
	logger *slog.Logger,
	sender MessageSender,
	topic string,
) *DomainEventPublisher {
	return &DomainEventPublisher{
		logger: logger,
		sender: sender,
		topic:  topic,
	}
}

func NewDomainEvent(eventType string, data domain.EventData) domain.DomainEvent {
	return domain.DomainEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
		Data:       data,
	}
}

// PublishDomainEvents publica um lote de eventos no tópico configurado.
func (p *DomainEventPublisher) PublishDomainEvents(ctx context.Context, events []domain.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	if p.sender == nil {
		for _, event := range events {
			p.logger.Debug("Kafka disabled, skipping domain event", "event_id", event.EventID, "event_type", event.EventType)
		}
		return nil
	}

	kafkaMessages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		eventBytes, err := json.Marshal(event)
		if err != nil {
			p.logger.Error("Failed to marshal domain event", "error", err, "event_id", event.EventID)
			continue
		}

		kafkaMessages = append(kafkaMessages, kafka.Message{
			Key:     messageKey(event),
			Value:   eventBytes,
			Headers: eventHeaders(event),
		})
	}

	if err := p.sender.Send(kafkaMessages, p.topic); err != nil {
		p.logger.Error("Failed to publish domain events to Kafka",
			"error", err,
			"topic", p.topic,
			"events_count", len(kafkaMessages))
		return fmt.Errorf("DomainEventPublisher.PublishDomainEvents - topic %s: %w", p.topic, err)
	}

	p.logger.Info("Published domain events", "topic", p.topic, "events_count", len(kafkaMessages))
	return nil
}

func (p *DomainEventPublisher) PublishSingleEvent(ctx context.Context, event domain.DomainEvent) error {
	return p.PublishDomainEvents(ctx, []domain.DomainEvent{event})
}

// ReportOrphans publica media.orphaned para a limpeza assíncrona.
func (p *DomainEventPublisher) ReportOrphans(ctx context.Context, folder string, publicIDs []string) error {
	return p.PublishSingleEvent(ctx, NewDomainEvent(domain.EventMediaOrphaned, domain.EventData{
		Folder:    folder,
		PublicIDs: publicIDs,
	}))
}

// eventos da mesma propriedade caem na mesma partição
func messageKey(event domain.DomainEvent) string {
	if event.Data.PropiedadID != 0 {
		return strconv.FormatInt(event.Data.PropiedadID, 10)
	}
	return event.EventID
}

func eventHeaders(event domain.DomainEvent) map[string]string {
	return map[string]string{
		"event_type":     event.EventType,
		"event_id":       event.EventID,
		"source_service": sourceService,
		"schema_version": "v1",
	}
}
