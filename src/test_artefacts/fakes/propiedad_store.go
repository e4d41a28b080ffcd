package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"casasapi/src/domain"
	"casasapi/src/domain/entities"
	"casasapi/src/repositories"
)

// PropiedadStore guarda as linhas já codificadas, como o PostgreSQL guardaria,
// para que leituras passem pelo mesmo decode do repositório real.
type PropiedadStore struct {
	mu     sync.Mutex
	rows   map[int64]repositories.PropiedadRow
	nextID int64
	Err    error

	// AfterRead roda depois que FindAll/FindByID tiraram o snapshot e antes de retornarem.
	AfterRead func()
}

func NewPropiedadStore() *PropiedadStore {
	return &PropiedadStore{rows: map[int64]repositories.PropiedadRow{}, nextID: 1}
}

// PutRow grava uma linha crua, útil para simular dados legados.
func (s *PropiedadStore) PutRow(row repositories.PropiedadRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.ID] = row
	if row.ID >= s.nextID {
		s.nextID = row.ID + 1
	}
}

func (s *PropiedadStore) Row(id int64) (repositories.PropiedadRow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	return row, ok
}

func (s *PropiedadStore) Create(_ context.Context, propiedad entities.Propiedad) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, domain.NewStorageError("fakes.PropiedadStore.Create", s.Err)
	}

	now := time.Now().UTC()
	propiedad.ID = s.nextID
	propiedad.CreatedAt = now
	propiedad.UpdatedAt = now
	s.rows[propiedad.ID] = repositories.EncodeRow(propiedad)
	s.nextID++
	return propiedad.ID, nil
}

func (s *PropiedadStore) Update(_ context.Context, propiedad entities.Propiedad) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, domain.NewStorageError("fakes.PropiedadStore.Update", s.Err)
	}

	current, ok := s.rows[propiedad.ID]
	if !ok {
		return false, nil
	}
	propiedad.CreatedAt = current.CreatedAt
	propiedad.UpdatedAt = time.Now().UTC()
	s.rows[propiedad.ID] = repositories.EncodeRow(propiedad)
	return true, nil
}

func (s *PropiedadStore) FindByID(_ context.Context, id int64) (entities.Propiedad, error) {
	propiedad, err := s.findByID(id)
	if s.AfterRead != nil {
		s.AfterRead()
	}
	return propiedad, err
}

func (s *PropiedadStore) findByID(id int64) (entities.Propiedad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return entities.Propiedad{}, domain.NewStorageError("fakes.PropiedadStore.FindByID", s.Err)
	}

	row, ok := s.rows[id]
	if !ok {
		return entities.Propiedad{}, fmt.Errorf("fakes.PropiedadStore.FindByID - id %d: %w", id, domain.ErrPropiedadNotFound)
	}
	return repositories.DecodeRow(row), nil
}

func (s *PropiedadStore) FindAll(_ context.Context) ([]entities.Propiedad, error) {
	propiedades, err := s.findAll()
	if s.AfterRead != nil {
		s.AfterRead()
	}
	return propiedades, err
}

func (s *PropiedadStore) findAll() ([]entities.Propiedad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, domain.NewStorageError("fakes.PropiedadStore.FindAll", s.Err)
	}

	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })

	propiedades := make([]entities.Propiedad, 0, len(ids))
	for _, id := range ids {
		propiedades = append(propiedades, repositories.DecodeRow(s.rows[id]))
	}
	return propiedades, nil
}

func (s *PropiedadStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return domain.NewStorageError("fakes.PropiedadStore.Delete", s.Err)
	}
	delete(s.rows, id)
	return nil
}
