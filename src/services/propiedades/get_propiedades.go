package propiedades

import (
	"context"
	"fmt"

	"casasapi/src/domain/entities"
)

func (s *PropiedadesService) GetAll(ctx context.Context) ([]entities.Propiedad, error) {
	propiedades, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("PropiedadesService.GetAll - %w", err)
	}
	return propiedades, nil
}

func (s *PropiedadesService) GetByID(ctx context.Context, id int64) (entities.Propiedad, error) {
	propiedad, err := s.store.FindByID(ctx, id)
	if err != nil {
		return entities.Propiedad{}, fmt.Errorf("PropiedadesService.GetByID - %w", err)
	}
	return propiedad, nil
}
