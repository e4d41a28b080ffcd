package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casasapi/src/adapters/kafka/consumers"
	"casasapi/src/helper/config"
	"casasapi/src/helper/env"
	"casasapi/src/infra/cloudinary"
	"casasapi/src/infra/kafka"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting media janitor with Uber Fx...")

	if env.GetString("APP_ENV") != "production" {
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
			newKafkaConsumer,
			newCloudinaryClient,
			newMediaOrphansConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start media janitor: %v", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down media janitor...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Media janitor shutdown complete")
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
	logger := slog.New(h).With("service", "casas-media-janitor")
	slog.SetDefault(logger)
	return logger
}

func newKafkaConsumer(logger *slog.Logger, cfg *config.Config) (*kafka.KafkaConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS must be set")
	}
	return kafka.NewKafkaConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.JanitorGroupID, cfg.Kafka.BatchSize)
}

func newCloudinaryClient(cfg *config.Config) (*cloudinary.CloudinaryClient, error) {
	c := cfg.Cloudinary
	return cloudinary.NewCloudinaryClient(c.CloudName, c.APIKey, c.APISecret)
}

func newMediaOrphansConsumer(
	logger *slog.Logger,
	cfg *config.Config,
	cloudinaryClient *cloudinary.CloudinaryClient,
) *consumers.MediaOrphansConsumer {
	return consumers.NewMediaOrphansConsumer(logger, cloudinaryClient, cfg.Upload.Timeout())
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	cfg *config.Config,
	kafkaConsumer *kafka.KafkaConsumer,
	orphansConsumer *consumers.MediaOrphansConsumer,
) {
	// o ctx do OnStart expira junto com o timeout de start do fx
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				if err := orphansConsumer.Start(runCtx, kafkaConsumer, cfg.Kafka.EventsTopic); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Consumer failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()

			select {
			case <-done:
			case <-ctx.Done():
				logger.Warn("Consumer did not stop in time")
			}

			logger.Info("Shutting down Kafka consumer...")
			if err := kafkaConsumer.Close(); err != nil {
				logger.Error("Failed to close Kafka consumer", "error", err)
				return err
			}
			logger.Info("Kafka consumer shut down gracefully")
			return nil
		},
	})
}
