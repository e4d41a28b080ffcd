package propiedades

import (
	"context"
	"fmt"

	"casasapi/src/domain"
	"casasapi/src/services/events"
	"casasapi/src/services/validation"
)

// Update substitui o registro inteiro. Um id inexistente não é erro, apenas um aviso no log.
func (s *PropiedadesService) Update(ctx context.Context, id int64, candidate validation.Candidate) ([]string, error) {
	result, err := s.pipeline.Validate(candidate)
	if err != nil {
		s.logger.Info("Propiedad update rejected", "id", id, "error", err)
		return nil, err
	}

	propiedad := result.Propiedad
	propiedad.ID = id

	found, err := s.store.Update(ctx, propiedad)
	if err != nil {
		return nil, fmt.Errorf("PropiedadesService.Update - %w", err)
	}

	if !found {
		s.logger.Warn("Update for unknown propiedad", "id", id)
		return result.Warnings, nil
	}

	s.logger.Info("Propiedad updated", "id", id)
	s.publish(ctx, events.NewDomainEvent(domain.EventPropiedadUpdated, domain.EventData{
		PropiedadID: id,
		Titulo:      propiedad.Titulo,
	}))

	return result.Warnings, nil
}
