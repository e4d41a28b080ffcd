package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SelectColumnText lê uma coluna como texto, ordenado por id.
func (ts TestSeeder) SelectColumnText(ctx context.Context, table string, column string) ([]string, error) {
	query := fmt.Sprintf("SELECT COALESCE(CAST(%s AS TEXT), '') FROM %s ORDER BY id",
		pgx.Identifier{column}.Sanitize(), pgx.Identifier{table}.Sanitize())

	rows, err := ts.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// SelectColumns devolve as colunas físicas da tabela na ordem de criação.
func (ts TestSeeder) SelectColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := ts.pool.Query(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[string])
}
