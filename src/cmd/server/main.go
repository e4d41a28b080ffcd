package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	apihttp "casasapi/src/adapters/http"
	"casasapi/src/helper/config"
	"casasapi/src/helper/env"
	"casasapi/src/infra/cloudinary"
	"casasapi/src/infra/kafka"
	"casasapi/src/infra/postgres"
	"casasapi/src/infra/redis"
	"casasapi/src/migrations"
	"casasapi/src/repositories"
	"casasapi/src/services/events"
	"casasapi/src/services/media"
	"casasapi/src/services/propiedades"
	"casasapi/src/services/validation"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const localCacheTTL = 5 * time.Second

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting casas API with Uber Fx...")

	if env.GetString("APP_ENV") != "production" {
		// .env é opcional em desenvolvimento
		_ = godotenv.Load()
	}

	app := fx.New(
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),

		// Providers
		fx.Provide(
			newConfig,
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newEventPublisher,
			newCloudinaryClient,
			newPropiedadRepository,
			newCachedPropiedadRepository,
			newValidationPipeline,
			newOrchestrator,
			newPropiedadesService,
			newServer,
		),

		// Invocations
		fx.Invoke(runSchemaMigrations),
		fx.Invoke(registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newConfig() (*config.Config, error) {
	return config.Load(env.GetString("CONFIG_FILE", config.DefaultPath))
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level

	switch cfg.App.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("service", cfg.App.Name)
	slog.SetDefault(logger)
	return logger
}

func newReadWriteClient(lc fx.Lifecycle, logger *slog.Logger, cfg *config.Config) (*postgres.ReadWriteClient, error) {
	db := cfg.Database
	if db.Host == "" || db.Name == "" || db.User == "" {
		return nil, errors.New("DB_HOST, DB_NAME and DB_USER must be set")
	}

	client, err := postgres.NewReadWriteClient(db.Host, db.ReadHost, db.Port, db.Name, db.User, db.Password, db.MaxConnections)
	if err != nil {
		return nil, err
	}
	logger.Info("Postgres connected", "read_replica", client.HasReplica())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

// newRedisClient devolve nil quando REDIS_HOSTS não está definido; o cache fica só local.
func newRedisClient(lc fx.Lifecycle, logger *slog.Logger, cfg *config.Config) *redis.RedisClient {
	if len(cfg.Redis.Hosts) == 0 {
		logger.Info("Redis not configured, using local cache only")
		return nil
	}

	client := redis.NewRedisClient(cfg.Redis.Hosts, cfg.Redis.PoolSize, cfg.Redis.TTL()).WithPrefix(cfg.App.Name)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.HealthCheck(ctx); err != nil {
				logger.Warn("Redis health check failed, cache reads will fall back to postgres", "error", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func newEventPublisher(lc fx.Lifecycle, logger *slog.Logger, cfg *config.Config) (*events.DomainEventPublisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("Kafka not configured, domain events will only be logged")
		return events.NewDomainEventPublisher(logger, nil, cfg.Kafka.EventsTopic), nil
	}

	producer, err := kafka.NewKafkaProducer(logger, cfg.Kafka.Brokers)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return producer.Close()
		},
	})
	return events.NewDomainEventPublisher(logger, producer, cfg.Kafka.EventsTopic), nil
}

func newCloudinaryClient(cfg *config.Config) (*cloudinary.CloudinaryClient, error) {
	c := cfg.Cloudinary
	return cloudinary.NewCloudinaryClient(c.CloudName, c.APIKey, c.APISecret)
}

func newPropiedadRepository(client *postgres.ReadWriteClient, cfg *config.Config) *repositories.PropiedadRepository {
	return repositories.NewPropiedadRepository(client.GetReadPool(), client.GetWritePool(), cfg.Database.Table)
}

func newCachedPropiedadRepository(
	logger *slog.Logger,
	propiedadRepository *repositories.PropiedadRepository,
	redisClient *redis.RedisClient,
) *repositories.CachedPropiedadRepository {
	return repositories.NewCachedPropiedadRepository(logger, propiedadRepository, redisClient, localCacheTTL)
}

func newValidationPipeline(cfg *config.Config) *validation.Pipeline {
	return validation.NewPipeline(validation.NewEmbedPolicy(cfg.MapaEmbed.AllowedHosts))
}

func newOrchestrator(
	logger *slog.Logger,
	cfg *config.Config,
	cloudinaryClient *cloudinary.CloudinaryClient,
	publisher *events.DomainEventPublisher,
) *media.Orchestrator {
	policy := media.Policy{
		MaxFileSize:   cfg.Upload.MaxFileSize(),
		AllowedTypes:  cfg.Upload.AllowedTypes,
		MaxBatch:      cfg.Upload.MaxBatch,
		Timeout:       cfg.Upload.Timeout(),
		Folder:        cfg.Upload.Folder,
		GalleryFolder: cfg.Upload.GalleryFolder,
	}
	return media.NewOrchestrator(logger, cloudinaryClient, publisher, policy)
}

func newPropiedadesService(
	logger *slog.Logger,
	cachedRepository *repositories.CachedPropiedadRepository,
	pipeline *validation.Pipeline,
	publisher *events.DomainEventPublisher,
) *propiedades.PropiedadesService {
	return propiedades.NewPropiedadesService(logger, cachedRepository, pipeline, publisher)
}

func newServer(
	logger *slog.Logger,
	cfg *config.Config,
	propiedadesService *propiedades.PropiedadesService,
	orchestrator *media.Orchestrator,
) *apihttp.Server {
	return apihttp.NewServer(logger, cfg.App.Port, cfg.IsDevelopment(), propiedadesService, orchestrator)
}

// runSchemaMigrations roda antes do servidor aceitar conexões; falha aborta o start.
func runSchemaMigrations(lc fx.Lifecycle, logger *slog.Logger, client *postgres.ReadWriteClient, cfg *config.Config) {
	engine := migrations.NewPropiedadesEngine(logger, migrations.NewPostgresStore(client.GetWritePool()), cfg.Database.Table)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := engine.Run(ctx); err != nil {
				var migrationErr *migrations.MigrationError
				if errors.As(err, &migrationErr) {
					logger.Error("Schema migration failed", "step", migrationErr.Step, "error", migrationErr.Err)
				}
				return err
			}
			return nil
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, logger *slog.Logger, srv *apihttp.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", "error", err)
				return err
			}
			logger.Info("Server exited gracefully")
			return nil
		},
	})
}
