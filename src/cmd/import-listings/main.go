package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"casasapi/src/helper/config"
	"casasapi/src/helper/env"
	"casasapi/src/infra/postgres"
	"casasapi/src/migrations"
	"casasapi/src/repositories"
	"casasapi/src/services/events"
	"casasapi/src/services/propiedades"
	"casasapi/src/services/validation"

	"github.com/joho/godotenv"
)

func main() {
	source := flag.String("source", env.GetString("IMPORT_SOURCE_URL"), "URL base da instância de origem")
	dryRun := flag.Bool("dry-run", false, "Só valida, não grava")
	timeout := flag.Duration("timeout", 30*time.Second, "Timeout da leitura da origem")
	flag.Parse()

	if *source == "" {
		log.Fatal("-source ou IMPORT_SOURCE_URL é obrigatório")
	}

	_ = godotenv.Load()

	cfg, err := config.Load(env.GetString("CONFIG_FILE", config.DefaultPath))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "casas-import-listings")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	listings, err := NewSourceClient(*source, *timeout).FetchCandidates(ctx)
	if err != nil {
		log.Fatalf("Failed to read source: %v", err)
	}
	logger.Info("Listings found", "source", *source, "count", len(listings))

	if len(listings) == 0 {
		return
	}

	pipeline := validation.NewPipeline(validation.NewEmbedPolicy(cfg.MapaEmbed.AllowedHosts))

	if *dryRun {
		report := Import(ctx, logger, pipelineOnly{pipeline}, listings)
		logger.Info("Dry run finished", "valid", report.Imported, "rejected", report.Rejected)
		return
	}

	db := cfg.Database
	pool, err := postgres.NewPostgresClient(db.Host, db.Port, db.Name, db.User, db.Password, db.MaxConnections)
	if err != nil {
		log.Fatalf("Failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.NewPropiedadesEngine(logger, migrations.NewPostgresStore(pool), db.Table).Run(ctx); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	service := propiedades.NewPropiedadesService(
		logger,
		repositories.NewPropiedadRepository(pool, pool, db.Table),
		pipeline,
		events.NewDomainEventPublisher(logger, nil, cfg.Kafka.EventsTopic),
	)

	report := Import(ctx, logger, service, listings)
	logger.Info("Import finished", "imported", report.Imported, "rejected", report.Rejected, "failed", report.Failed)

	if report.Failed > 0 {
		os.Exit(1)
	}
}

type Creator interface {
	Create(ctx context.Context, candidate validation.Candidate) (propiedades.Created, error)
}

type Report struct {
	Imported int
	Rejected int
	Failed   int
}

// Import grava do mais antigo para o mais novo, preservando a ordem relativa dos ids.
// Anúncios inválidos são pulados; falhas de armazenamento são contadas e seguem.
func Import(ctx context.Context, logger *slog.Logger, creator Creator, listings []validation.Candidate) Report {
	var report Report

	for _, candidate := range slices.Backward(listings) {
		if ctx.Err() != nil {
			break
		}

		created, err := creator.Create(ctx, candidate)
		if err != nil {
			var validationErr *validation.Error
			if errors.As(err, &validationErr) {
				logger.Warn("Listing rejected", "titulo", candidate.Titulo, "campo", validationErr.Field, "motivo", validationErr.Reason)
				report.Rejected++
				continue
			}

			logger.Error("Failed to import listing", "titulo", candidate.Titulo, "error", err)
			report.Failed++
			continue
		}

		if len(created.Warnings) > 0 {
			logger.Warn("Listing imported with warnings", "id", created.ID, "advertencias", created.Warnings)
		}
		report.Imported++
	}

	return report
}

type pipelineOnly struct {
	pipeline *validation.Pipeline
}

func (p pipelineOnly) Create(_ context.Context, candidate validation.Candidate) (propiedades.Created, error) {
	result, err := p.pipeline.Validate(candidate)
	if err != nil {
		return propiedades.Created{}, err
	}
	return propiedades.Created{Warnings: result.Warnings}, nil
}
