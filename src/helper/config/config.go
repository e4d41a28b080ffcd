package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"casasapi/src/helper/env"

	"gopkg.in/yaml.v2"
)

const DefaultPath = "configs/app.yaml"

type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Upload    UploadConfig    `yaml:"upload"`
	MapaEmbed MapaEmbedConfig `yaml:"mapa_embed"`

	// Credenciais vêm apenas do ambiente.
	Cloudinary CloudinaryConfig `yaml:"-"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Env      string `yaml:"env"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	ReadHost       string `yaml:"read_host"`
	Port           string `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"-"`
	MaxConnections int    `yaml:"max_connections"`
	Table          string `yaml:"table"`
}

type RedisConfig struct {
	Hosts      []string `yaml:"hosts"`
	PoolSize   int      `yaml:"pool_size"`
	TTLSeconds int      `yaml:"ttl_seconds"`
}

type KafkaConfig struct {
	Brokers        []string `yaml:"brokers"`
	EventsTopic    string   `yaml:"events_topic"`
	JanitorGroupID string   `yaml:"janitor_group_id"`
	BatchSize      int      `yaml:"batch_size"`
}

type UploadConfig struct {
	MaxFileSizeMB  int      `yaml:"max_file_size_mb"`
	AllowedTypes   []string `yaml:"allowed_types"`
	MaxBatch       int      `yaml:"max_batch"`
	Folder         string   `yaml:"folder"`
	GalleryFolder  string   `yaml:"gallery_folder"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

type MapaEmbedConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts"`
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (u UploadConfig) MaxFileSize() int64 {
	return int64(u.MaxFileSizeMB) * 1024 * 1024
}

func (u UploadConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

func (r RedisConfig) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// Defaults devolve a configuração usada quando nem arquivo nem ambiente definem um valor.
func Defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:     "casas-api",
			Env:      "production",
			Port:     5000,
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Port:           "5432",
			MaxConnections: 25,
			Table:          "propiedades",
		},
		Redis: RedisConfig{
			PoolSize:   20,
			TTLSeconds: 120,
		},
		Kafka: KafkaConfig{
			EventsTopic:    "propiedades.events",
			JanitorGroupID: "casas-media-janitor",
			BatchSize:      50,
		},
		Upload: UploadConfig{
			MaxFileSizeMB:  10,
			AllowedTypes:   []string{"image/jpeg", "image/png", "image/webp", "image/gif", "image/avif"},
			MaxBatch:       10,
			Folder:         "casas-ernestina",
			GalleryFolder:  "casas-ernestina/gallery",
			TimeoutSeconds: 30,
		},
		MapaEmbed: MapaEmbedConfig{
			AllowedHosts: []string{"google.com", "maps.google.com", "www.google.com", "openstreetmap.org"},
		},
	}
}

// Load lê o YAML em path (ausente é aceito) e aplica as variáveis de ambiente por cima.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	yamlFile, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("config.Load - failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
			return nil, fmt.Errorf("config.Load - failed to parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.App.Env = env.GetString("APP_ENV", cfg.App.Env)
	cfg.App.Port = env.GetInt("PORT", cfg.App.Port)
	cfg.App.LogLevel = env.GetString("LOG_LEVEL", cfg.App.LogLevel)

	cfg.Database.Host = env.GetString("DB_HOST", cfg.Database.Host)
	cfg.Database.ReadHost = env.GetString("DB_READ_HOST", cfg.Database.ReadHost)
	cfg.Database.Port = env.GetString("DB_PORT", cfg.Database.Port)
	cfg.Database.Name = env.GetString("DB_NAME", cfg.Database.Name)
	cfg.Database.User = env.GetString("DB_USER", cfg.Database.User)
	cfg.Database.Password = env.GetString("DB_PASSWORD")
	cfg.Database.MaxConnections = env.GetInt("DB_MAX_POOL_CONNECTIONS", cfg.Database.MaxConnections)

	cfg.Redis.Hosts = env.GetList("REDIS_HOSTS", cfg.Redis.Hosts...)
	cfg.Redis.PoolSize = env.GetInt("REDIS_POOL_SIZE", cfg.Redis.PoolSize)
	cfg.Redis.TTLSeconds = env.GetInt("REDIS_DEFAULT_TTL_SECONDS", cfg.Redis.TTLSeconds)

	cfg.Kafka.Brokers = env.GetList("KAFKA_BROKERS", cfg.Kafka.Brokers...)
	cfg.Kafka.EventsTopic = env.GetString("KAFKA_EVENTS_TOPIC", cfg.Kafka.EventsTopic)
	cfg.Kafka.JanitorGroupID = env.GetString("KAFKA_JANITOR_GROUP_ID", cfg.Kafka.JanitorGroupID)
	cfg.Kafka.BatchSize = env.GetInt("KAFKA_BATCH_SIZE", cfg.Kafka.BatchSize)

	cfg.Upload.MaxFileSizeMB = env.GetInt("UPLOAD_MAX_FILE_SIZE_MB", cfg.Upload.MaxFileSizeMB)
	cfg.Upload.TimeoutSeconds = env.GetInt("UPLOAD_TIMEOUT_SECONDS", cfg.Upload.TimeoutSeconds)
	cfg.Upload.Folder = env.GetString("CLOUDINARY_FOLDER", cfg.Upload.Folder)
	cfg.Upload.GalleryFolder = env.GetString("CLOUDINARY_GALLERY_FOLDER", cfg.Upload.GalleryFolder)

	cfg.MapaEmbed.AllowedHosts = env.GetList("MAPA_EMBED_HOSTS", cfg.MapaEmbed.AllowedHosts...)

	cfg.Cloudinary = CloudinaryConfig{
		CloudName: env.GetString("CLOUDINARY_CLOUD_NAME"),
		APIKey:    env.GetString("CLOUDINARY_API_KEY"),
		APISecret: env.GetString("CLOUDINARY_API_SECRET"),
	}
}
