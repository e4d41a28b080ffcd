package propiedades

import (
	"context"
	"fmt"

	"casasapi/src/domain"
	"casasapi/src/services/events"
)

// Delete é incondicional: apagar um id inexistente também é sucesso.
func (s *PropiedadesService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("PropiedadesService.Delete - %w", err)
	}

	s.logger.Info("Propiedad deleted", "id", id)
	s.publish(ctx, events.NewDomainEvent(domain.EventPropiedadDeleted, domain.EventData{PropiedadID: id}))
	return nil
}
