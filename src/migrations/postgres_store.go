package migrations

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"casasapi/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`, table).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("PostgresStore.TableExists - %s: %w", table, err)
	}
	return exists, nil
}

func (s *PostgresStore) CreateTable(ctx context.Context, table string, columns []Column) error {
	definitions := make([]string, 0, len(columns))
	for _, column := range columns {
		definitions = append(definitions, postgres.QuoteIdent(column.Name)+" "+column.Definition())
	}

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", postgres.QuoteIdent(table), strings.Join(definitions, ",\n\t"))
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("PostgresStore.CreateTable - %s: %w", table, err)
	}
	return nil
}

func (s *PostgresStore) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.Columns - %s: %w", table, err)
	}

	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("PostgresStore.Columns - %s: %w", table, err)
	}
	return columns, nil
}

func (s *PostgresStore) RenameColumn(ctx context.Context, table string, from string, to string) error {
	query := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s",
		postgres.QuoteIdent(table), postgres.QuoteIdent(from), postgres.QuoteIdent(to))
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("PostgresStore.RenameColumn - %s.%s: %w", table, from, err)
	}
	return nil
}

func (s *PostgresStore) AddColumn(ctx context.Context, table string, column Column) error {
	// NOT NULL sem default falharia numa tabela com linhas
	if column.NotNull && column.Default == "" {
		column.NotNull = false
	}

	query := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		postgres.QuoteIdent(table), postgres.QuoteIdent(column.Name), column.Definition())
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("PostgresStore.AddColumn - %s.%s: %w", table, column.Name, err)
	}
	return nil
}

func (s *PostgresStore) DropTable(ctx context.Context, table string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", postgres.QuoteIdent(table))); err != nil {
		return fmt.Errorf("PostgresStore.DropTable - %s: %w", table, err)
	}
	return nil
}

// CopyRows converte cada valor para o tipo da coluna de destino. Quando id é copiado,
// a sequence da tabela de destino é reposicionada depois do maior id.
func (s *PostgresStore) CopyRows(ctx context.Context, from string, to string, columns []Column) (int64, error) {
	if len(columns) == 0 {
		return 0, nil
	}

	names := make([]string, 0, len(columns))
	values := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, postgres.QuoteIdent(column.Name))
		values = append(values, copyExpression(column))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("PostgresStore.CopyRows - begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		postgres.QuoteIdent(to), strings.Join(names, ", "), strings.Join(values, ", "), postgres.QuoteIdent(from))

	tag, err := tx.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("PostgresStore.CopyRows - %s -> %s: %w", from, to, err)
	}

	if slices.ContainsFunc(columns, func(c Column) bool { return c.Name == "id" }) {
		reseed := fmt.Sprintf(
			"SELECT setval(pg_get_serial_sequence($1, 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
			postgres.QuoteIdent(to))
		if _, err := tx.Exec(ctx, reseed, postgres.QuoteIdent(to)); err != nil {
			return 0, fmt.Errorf("PostgresStore.CopyRows - reseed %s: %w", to, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("PostgresStore.CopyRows - commit: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CountRows(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", postgres.QuoteIdent(table))).Scan(&count); err != nil {
		return 0, fmt.Errorf("PostgresStore.CountRows - %s: %w", table, err)
	}
	return count, nil
}

func (s *PostgresStore) SwapTables(ctx context.Context, original string, shadow string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("PostgresStore.SwapTables - begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf("DROP TABLE %s", postgres.QuoteIdent(original))); err != nil {
		return fmt.Errorf("PostgresStore.SwapTables - drop %s: %w", original, err)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s",
		postgres.QuoteIdent(shadow), postgres.QuoteIdent(original))); err != nil {
		return fmt.Errorf("PostgresStore.SwapTables - rename %s: %w", shadow, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("PostgresStore.SwapTables - commit: %w", err)
	}
	return nil
}

func copyExpression(column Column) string {
	source := postgres.QuoteIdent(column.Name)

	var value string
	if strings.EqualFold(column.CastType(), "TEXT") {
		value = fmt.Sprintf("CAST(%s AS TEXT)", source)
	} else {
		// texto vazio em colunas numéricas legadas vira NULL e depois default
		value = fmt.Sprintf("CAST(NULLIF(TRIM(CAST(%s AS TEXT)), '') AS %s)", source, column.CastType())
	}

	fallback := column.Default
	if fallback == "" && column.NotNull && strings.EqualFold(column.Type, "TEXT") {
		fallback = "''"
	}
	if fallback == "" {
		return value
	}
	return fmt.Sprintf("COALESCE(%s, %s)", value, fallback)
}
