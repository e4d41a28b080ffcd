package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TestSeeder struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) TestSeeder {
	return TestSeeder{pool: pool}
}

func (ts TestSeeder) TruncateTables(ctx context.Context, tables ...string) {
	for _, table := range tables {
		_, err := ts.pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", pgx.Identifier{table}.Sanitize()))
		if err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", table, err))
		}
	}
}

// DropTables remove as tabelas e qualquer shadow deixada por uma migração.
func (ts TestSeeder) DropTables(ctx context.Context, tables ...string) {
	for _, table := range tables {
		for _, name := range []string{table, table + "_shadow"} {
			_, err := ts.pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{name}.Sanitize()))
			if err != nil {
				panic(fmt.Sprintf("Failed to drop %s: %v", name, err))
			}
		}
	}
}
