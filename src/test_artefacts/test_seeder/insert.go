package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// LegacyPropiedad é uma linha no layout antigo, com coordenadas e detalles.
type LegacyPropiedad struct {
	ID          int64
	Titulo      string
	Categoria   string
	Precio      string
	Rating      float64
	Galeria     string
	Coordenadas string
	Detalles    string
	Huespedes   int
}

// CreateLegacyTable cria a tabela no layout da primeira versão do schema.
func (ts TestSeeder) CreateLegacyTable(ctx context.Context, table string) {
	query := fmt.Sprintf(`
		CREATE TABLE %s (
			id BIGSERIAL PRIMARY KEY,
			titulo TEXT NOT NULL,
			categoria TEXT NOT NULL,
			precio TEXT,
			rating REAL DEFAULT 5.0,
			img TEXT,
			galeria TEXT,
			ubicacion TEXT,
			coordenadas TEXT,
			detalles TEXT,
			descripcion TEXT,
			huespedes INTEGER,
			dormitorios INTEGER,
			banios INTEGER,
			amenidades TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`, pgx.Identifier{table}.Sanitize())

	if _, err := ts.pool.Exec(ctx, query); err != nil {
		panic(fmt.Sprintf("Seeder.CreateLegacyTable failed: %v", err))
	}
}

// InsertLegacyPropiedad grava a linha preservando o id informado.
func (ts TestSeeder) InsertLegacyPropiedad(ctx context.Context, table string, row LegacyPropiedad) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, titulo, categoria, precio, rating, galeria, coordenadas, detalles, huespedes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, pgx.Identifier{table}.Sanitize())

	_, err := ts.pool.Exec(ctx, query,
		row.ID,
		row.Titulo,
		row.Categoria,
		row.Precio,
		row.Rating,
		row.Galeria,
		row.Coordenadas,
		row.Detalles,
		row.Huespedes,
	)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertLegacyPropiedad failed: %v", err))
	}
}
