package propiedades

import (
	"context"
	"log/slog"

	"casasapi/src/domain"
	"casasapi/src/repositories"
	"casasapi/src/services/validation"
)

type EventPublisher interface {
	PublishSingleEvent(ctx context.Context, event domain.DomainEvent) error
}

type PropiedadesService struct {
	logger    *slog.Logger
	store     repositories.PropiedadStore
	pipeline  *validation.Pipeline
	publisher EventPublisher
}

func NewPropiedadesService(
	logger *slog.Logger,
	store repositories.PropiedadStore,
	pipeline *validation.Pipeline,
	publisher EventPublisher,
) *PropiedadesService {
	return &PropiedadesService{
		logger:    logger,
		store:     store,
		pipeline:  pipeline,
		publisher: publisher,
	}
}

// publish não falha a operação: o registro já foi gravado.
func (s *PropiedadesService) publish(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSingleEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish propiedad event", "event_type", event.EventType, "propiedad_id", event.Data.PropiedadID, "error", err)
	}
}
