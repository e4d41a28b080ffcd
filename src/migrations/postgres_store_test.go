package migrations_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"casasapi/src/helper/env"
	"casasapi/src/infra/postgres"
	"casasapi/src/migrations"
	"casasapi/src/test_artefacts/test_seeder"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ = Describe("PostgresStore", func() {
	const legacyTable = "propiedades_migration_test"

	var (
		pool       *pgxpool.Pool
		testSeeder test_seeder.TestSeeder
		engine     *migrations.Engine
		ctx        context.Context
		err        error
	)

	BeforeEach(func() {
		if os.Getenv("TEST_DB_HOST") == "" {
			Skip("TEST_DB_HOST not set")
		}
		ctx = context.Background()

		pool, err = postgres.NewPostgresClient(
			env.MustGetString("TEST_DB_HOST"),
			env.GetString("TEST_DB_PORT", "5432"),
			env.MustGetString("TEST_DB_NAME"),
			env.MustGetString("TEST_DB_USER"),
			env.MustGetString("TEST_DB_PASSWORD"),
			env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 5),
		)
		if err != nil {
			panic(err)
		}

		testSeeder = test_seeder.New(pool)
		testSeeder.DropTables(ctx, legacyTable)

		engine = migrations.NewPropiedadesEngine(slog.New(slog.DiscardHandler), migrations.NewPostgresStore(pool), legacyTable)
	})

	AfterEach(func() {
		if pool != nil {
			testSeeder.DropTables(ctx, legacyTable)
			pool.Close()
		}
	})

	Context("when migrating the legacy layout", func() {
		It("keeps ids and values and continues the id sequence", func() {
			// ARRANGE
			testSeeder.CreateLegacyTable(ctx, legacyTable)
			testSeeder.InsertLegacyPropiedad(ctx, legacyTable, test_seeder.LegacyPropiedad{
				ID: 3, Titulo: "Casa del Mar", Categoria: "Playa", Precio: "$120", Rating: 4.5,
				Galeria: `["https://a/1.jpg"]`, Coordenadas: "https://www.google.com/maps/embed?pb=1",
				Detalles: "obsoleto", Huespedes: 4,
			})
			testSeeder.InsertLegacyPropiedad(ctx, legacyTable, test_seeder.LegacyPropiedad{
				ID: 9, Titulo: "Cabaña", Categoria: "Bosque", Rating: 5, Huespedes: 2,
			})

			// ACT
			err := engine.Run(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())

			columns, err := testSeeder.SelectColumns(ctx, legacyTable)
			Expect(err).NotTo(HaveOccurred())
			Expect(columns).To(Equal(targetNames()))

			ids, _ := testSeeder.SelectColumnText(ctx, legacyTable, "id")
			Expect(ids).To(Equal([]string{"3", "9"}))

			embeds, _ := testSeeder.SelectColumnText(ctx, legacyTable, "mapa_embed")
			Expect(embeds).To(Equal([]string{"https://www.google.com/maps/embed?pb=1", ""}))

			ratings, _ := testSeeder.SelectColumnText(ctx, legacyTable, "rating")
			Expect(ratings).To(Equal([]string{"4.5", "5"}))

			var nextID int64
			err = pool.QueryRow(ctx, `INSERT INTO `+postgres.QuoteIdent(legacyTable)+` (titulo, categoria) VALUES ('x', 'Ciudad') RETURNING id`).Scan(&nextID)
			Expect(err).NotTo(HaveOccurred())
			Expect(nextID).To(BeNumerically(">", 9))

			// ACT
			err = engine.Run(ctx)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
