package repositories

import (
	"context"
	"fmt"

	"casasapi/src/domain"
	"casasapi/src/domain/entities"
	"casasapi/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectColumns = `
	id, titulo, categoria, COALESCE(precio, ''), rating, COALESCE(img, ''),
	COALESCE(galeria, ''), COALESCE(ubicacion, ''), COALESCE(mapa_embed, ''), COALESCE(descripcion, ''),
	COALESCE(huespedes, 0), COALESCE(dormitorios, 0), COALESCE(banios, 0), COALESCE(amenidades, ''),
	COALESCE(created_at, NOW()), COALESCE(updated_at, NOW())`

// PropiedadRepository lê da réplica e escreve no primário; os dois pools podem ser o mesmo.
type PropiedadRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
	table     string
}

func NewPropiedadRepository(readPool *pgxpool.Pool, writePool *pgxpool.Pool, table string) *PropiedadRepository {
	return &PropiedadRepository{readPool: readPool, writePool: writePool, table: postgres.QuoteIdent(table)}
}

func (r *PropiedadRepository) Create(ctx context.Context, propiedad entities.Propiedad) (int64, error) {
	row := EncodeRow(propiedad)

	query := fmt.Sprintf(`
		INSERT INTO %s (
			titulo, categoria, precio, rating, img, galeria,
			ubicacion, mapa_embed, descripcion, huespedes,
			dormitorios, banios, amenidades
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`, r.table)

	var id int64
	err := r.writePool.QueryRow(ctx, query,
		row.Titulo, row.Categoria, row.Precio, row.Rating, row.Img, row.Galeria,
		row.Ubicacion, row.MapaEmbed, row.Descripcion, row.Huespedes,
		row.Dormitorios, row.Banios, row.Amenidades,
	).Scan(&id)
	if err != nil {
		return 0, domain.NewStorageError("PropiedadRepository.Create", err)
	}

	return id, nil
}

// Update substitui o registro inteiro. Retorna false quando o id não existe.
func (r *PropiedadRepository) Update(ctx context.Context, propiedad entities.Propiedad) (bool, error) {
	row := EncodeRow(propiedad)

	query := fmt.Sprintf(`
		UPDATE %s SET
			titulo = $1, categoria = $2, precio = $3, rating = $4, img = $5,
			galeria = $6, ubicacion = $7, mapa_embed = $8, descripcion = $9,
			huespedes = $10, dormitorios = $11, banios = $12, amenidades = $13,
			updated_at = NOW()
		WHERE id = $14`, r.table)

	tag, err := r.writePool.Exec(ctx, query,
		row.Titulo, row.Categoria, row.Precio, row.Rating, row.Img,
		row.Galeria, row.Ubicacion, row.MapaEmbed, row.Descripcion,
		row.Huespedes, row.Dormitorios, row.Banios, row.Amenidades,
		row.ID,
	)
	if err != nil {
		return false, domain.NewStorageError("PropiedadRepository.Update", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PropiedadRepository) FindByID(ctx context.Context, id int64) (entities.Propiedad, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns, r.table)

	row, err := scanRow(r.readPool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Propiedad{}, fmt.Errorf("PropiedadRepository.FindByID - id %d: %w", id, domain.ErrPropiedadNotFound)
		}
		return entities.Propiedad{}, domain.NewStorageError("PropiedadRepository.FindByID", err)
	}

	return DecodeRow(row), nil
}

// FindAll devolve todas as propriedades, mais recentes primeiro.
func (r *PropiedadRepository) FindAll(ctx context.Context) ([]entities.Propiedad, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id DESC`, selectColumns, r.table)

	rows, err := r.readPool.Query(ctx, query)
	if err != nil {
		return nil, domain.NewStorageError("PropiedadRepository.FindAll", err)
	}
	defer rows.Close()

	propiedades := make([]entities.Propiedad, 0)
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, domain.NewStorageError("PropiedadRepository.FindAll - scan", err)
		}
		propiedades = append(propiedades, DecodeRow(row))
	}

	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("PropiedadRepository.FindAll - rows", err)
	}

	return propiedades, nil
}

func (r *PropiedadRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	if _, err := r.writePool.Exec(ctx, query, id); err != nil {
		return domain.NewStorageError("PropiedadRepository.Delete", err)
	}

	return nil
}

func scanRow(row pgx.Row) (PropiedadRow, error) {
	var out PropiedadRow
	err := row.Scan(
		&out.ID, &out.Titulo, &out.Categoria, &out.Precio, &out.Rating, &out.Img,
		&out.Galeria, &out.Ubicacion, &out.MapaEmbed, &out.Descripcion,
		&out.Huespedes, &out.Dormitorios, &out.Banios, &out.Amenidades,
		&out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}
