package fakes

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"casasapi/src/migrations"
)

type memTable struct {
	columns []string
	rows    []map[string]any
}

// MigrationStore é um migrations.Store em memória. FailOn injeta erro num método.
type MigrationStore struct {
	mu       sync.Mutex
	tables   map[string]*memTable
	failures map[string]error
	Calls    []string
}

func NewMigrationStore() *MigrationStore {
	return &MigrationStore{
		tables:   map[string]*memTable{},
		failures: map[string]error{},
	}
}

func (s *MigrationStore) WithTable(name string, columns []string, rows ...map[string]any) *MigrationStore {
	s.tables[name] = &memTable{columns: slices.Clone(columns), rows: rows}
	return s
}

func (s *MigrationStore) FailOn(method string, err error) *MigrationStore {
	s.failures[method] = err
	return s
}

func (s *MigrationStore) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

func (s *MigrationStore) HasTable(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[name]
	return ok
}

func (s *MigrationStore) Rows(table string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		return nil
	}
	return t.rows
}

func (s *MigrationStore) call(method string) error {
	s.Calls = append(s.Calls, method)
	return s.failures[method]
}

func (s *MigrationStore) TableExists(_ context.Context, table string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("TableExists"); err != nil {
		return false, err
	}
	_, ok := s.tables[table]
	return ok, nil
}

func (s *MigrationStore) CreateTable(_ context.Context, table string, columns []migrations.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("CreateTable"); err != nil {
		return err
	}
	if _, ok := s.tables[table]; ok {
		return nil
	}

	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Name)
	}
	s.tables[table] = &memTable{columns: names}
	return nil
}

func (s *MigrationStore) Columns(_ context.Context, table string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("Columns"); err != nil {
		return nil, err
	}
	t, ok := s.tables[table]
	if !ok {
		return []string{}, nil
	}
	return slices.Clone(t.columns), nil
}

func (s *MigrationStore) RenameColumn(_ context.Context, table string, from string, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("RenameColumn"); err != nil {
		return err
	}
	t, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}

	i := slices.Index(t.columns, from)
	if i < 0 {
		return fmt.Errorf("column %s does not exist", from)
	}
	t.columns[i] = to
	for _, row := range t.rows {
		if v, ok := row[from]; ok {
			row[to] = v
			delete(row, from)
		}
	}
	return nil
}

func (s *MigrationStore) AddColumn(_ context.Context, table string, column migrations.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AddColumn"); err != nil {
		return err
	}
	t, ok := s.tables[table]
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}
	if !slices.Contains(t.columns, column.Name) {
		t.columns = append(t.columns, column.Name)
	}
	return nil
}

func (s *MigrationStore) DropTable(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("DropTable"); err != nil {
		return err
	}
	delete(s.tables, table)
	return nil
}

func (s *MigrationStore) CopyRows(_ context.Context, from string, to string, columns []migrations.Column) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("CopyRows"); err != nil {
		return 0, err
	}
	src, ok := s.tables[from]
	if !ok {
		return 0, fmt.Errorf("table %s does not exist", from)
	}
	dst, ok := s.tables[to]
	if !ok {
		return 0, fmt.Errorf("table %s does not exist", to)
	}

	for _, row := range src.rows {
		copied := map[string]any{}
		for _, column := range columns {
			copied[column.Name] = row[column.Name]
		}
		dst.rows = append(dst.rows, copied)
	}
	return int64(len(src.rows)), nil
}

func (s *MigrationStore) CountRows(_ context.Context, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("CountRows"); err != nil {
		return 0, err
	}
	t, ok := s.tables[table]
	if !ok {
		return 0, fmt.Errorf("table %s does not exist", table)
	}
	return int64(len(t.rows)), nil
}

func (s *MigrationStore) SwapTables(_ context.Context, original string, shadow string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("SwapTables"); err != nil {
		return err
	}
	t, ok := s.tables[shadow]
	if !ok {
		return fmt.Errorf("table %s does not exist", shadow)
	}
	s.tables[original] = t
	delete(s.tables, shadow)
	return nil
}
