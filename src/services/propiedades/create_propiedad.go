package propiedades

import (
	"context"
	"fmt"

	"casasapi/src/domain"
	"casasapi/src/services/events"
	"casasapi/src/services/validation"
)

type Created struct {
	ID       int64
	Warnings []string
}

func (s *PropiedadesService) Create(ctx context.Context, candidate validation.Candidate) (Created, error) {
	result, err := s.pipeline.Validate(candidate)
	if err != nil {
		s.logger.Info("Propiedad rejected", "error", err)
		return Created{}, err
	}

	for _, warning := range result.Warnings {
		s.logger.Warn("Propiedad accepted with warning", "titulo", result.Propiedad.Titulo, "warning", warning)
	}

	id, err := s.store.Create(ctx, result.Propiedad)
	if err != nil {
		return Created{}, fmt.Errorf("PropiedadesService.Create - %w", err)
	}

	s.logger.Info("Propiedad created", "id", id)
	s.publish(ctx, events.NewDomainEvent(domain.EventPropiedadCreated, domain.EventData{
		PropiedadID: id,
		Titulo:      result.Propiedad.Titulo,
	}))

	return Created{ID: id, Warnings: result.Warnings}, nil
}
