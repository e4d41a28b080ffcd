//go:build datagen_propiedades
// +build datagen_propiedades

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"casasapi/src/domain/entities"
	"casasapi/src/helper/env"
	"casasapi/src/infra/postgres"
	"casasapi/src/migrations"
	"casasapi/src/repositories"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	amenidadesPool = []string{"WiFi", "Cocina", "Alberca", "Estacionamiento", "Aire acondicionado", "Chimenea", "Terraza", "Jacuzzi", "Lavadora", "Vista al mar"}
	tipos          = map[entities.Categoria][]string{
		entities.CategoriaPlaya:  {"Casa", "Villa", "Bungalow"},
		entities.CategoriaBosque: {"Cabaña", "Chalet", "Refugio"},
		entities.CategoriaCiudad: {"Loft", "Departamento", "Estudio"},
	}
	copyColumns = []string{
		"titulo", "categoria", "precio", "rating", "img", "galeria",
		"ubicacion", "mapa_embed", "descripcion", "huespedes",
		"dormitorios", "banios", "amenidades",
	}
)

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_HOST")
	dbPort := env.GetString("DB_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, 4)
}

func main() {
	count := flag.Int("count", 200, "Número de propriedades a gerar")
	bulkSize := flag.Int("bulk-size", 100, "Linhas por COPY")
	table := flag.String("table", env.GetString("DB_TABLE", "propiedades"), "Tabela destino")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := migrations.NewPropiedadesEngine(logger, migrations.NewPostgresStore(db), *table).Run(ctx); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	startTime := time.Now()
	inserted := 0

	for inserted < *count {
		if ctx.Err() != nil {
			fmt.Println("\n🛑 Shutdown signal received, stopping...")
			break
		}

		batch := min(*bulkSize, *count-inserted)
		rows := make([][]any, 0, batch)
		for range batch {
			rows = append(rows, toCopyRow(generateFakePropiedad()))
		}

		n, err := db.CopyFrom(ctx, pgx.Identifier{*table}, copyColumns, pgx.CopyFromRows(rows))
		if err != nil {
			log.Fatalf("❌ Failed to copy batch: %v", err)
		}
		inserted += int(n)
		fmt.Printf("📊 Inserted: %d/%d\n", inserted, *count)
	}

	fmt.Printf("\n🏁 Seeding finished! %d propiedades in %v\n", inserted, time.Since(startTime).Round(time.Millisecond))
}

func generateFakePropiedad() entities.Propiedad {
	categoria := entities.Categorias[rand.IntN(len(entities.Categorias))]
	tipo := tipos[categoria][rand.IntN(len(tipos[categoria]))]
	address := faker.GetRealAddress()

	galeria := make([]string, rand.IntN(6))
	for i := range galeria {
		galeria[i] = fakeImageURL()
	}

	amenidades := make([]string, 0, 4)
	for _, i := range rand.Perm(len(amenidadesPool))[:rand.IntN(5)] {
		amenidades = append(amenidades, amenidadesPool[i])
	}

	dormitorios := 1 + rand.IntN(5)

	return entities.Propiedad{
		Titulo:      fmt.Sprintf("%s %s %s", tipo, strings.Title(faker.Word()), faker.LastName()), //nolint:staticcheck
		Categoria:   categoria,
		Precio:      fmt.Sprintf("%d,%03d", 1+rand.IntN(9), rand.IntN(1000)),
		Rating:      float64(30+rand.IntN(21)) / 10,
		Img:         fakeImageURL(),
		Galeria:     galeria,
		Ubicacion:   fmt.Sprintf("%s, %s", address.City, address.State),
		Descripcion: faker.Paragraph(),
		Huespedes:   dormitorios * 2,
		Dormitorios: dormitorios,
		Banios:      1 + rand.IntN(dormitorios),
		Amenidades:  amenidades,
	}
}

func fakeImageURL() string {
	return fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/casas-ernestina/%s.jpg", faker.UUIDDigit())
}

func toCopyRow(p entities.Propiedad) []any {
	row := repositories.EncodeRow(p)
	return []any{
		row.Titulo, row.Categoria, row.Precio, row.Rating, row.Img, row.Galeria,
		row.Ubicacion, row.MapaEmbed, row.Descripcion, row.Huespedes,
		row.Dormitorios, row.Banios, row.Amenidades,
	}
}
