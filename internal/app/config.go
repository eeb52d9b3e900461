package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/foodtuck/internal/messaging/kafka"
)

// Драйверы хранилища корзин.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
	StorageDriverFile     = "file"
)

// Переменные окружения, переопределяющие конфигурацию.
const (
	EnvConfigPath = "FOODTUCK_CONFIG"

	envGRPCAddr                    = "FOODTUCK_GRPC_ADDR"
	envMetricsAddr                 = "FOODTUCK_METRICS_ADDR"
	envLogLevel                    = "FOODTUCK_LOG_LEVEL"
	envLogFormat                   = "FOODTUCK_LOG_FORMAT"
	envStorageDriver               = "FOODTUCK_STORAGE_DRIVER"
	envPostgresDSN                 = "FOODTUCK_POSTGRES_DSN"
	envPostgresAutoMigrate         = "FOODTUCK_POSTGRES_AUTO_MIGRATE"
	envSQLitePath                  = "FOODTUCK_SQLITE_PATH"
	envFileDir                     = "FOODTUCK_FILE_DIR"
	envCatalogSeedPath             = "FOODTUCK_CATALOG_SEED"
	envKafkaBrokers                = "FOODTUCK_KAFKA_BROKERS"
	envKafkaClientID               = "FOODTUCK_KAFKA_CLIENT_ID"
	envKafkaCartEventsTopic        = "FOODTUCK_KAFKA_CART_EVENTS_TOPIC"
	envKafkaCatalogTopic           = "FOODTUCK_KAFKA_CATALOG_TOPIC"
	envKafkaConsumerGroup          = "FOODTUCK_KAFKA_CONSUMER_GROUP"
	envOutboxPollInterval          = "FOODTUCK_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize             = "FOODTUCK_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts           = "FOODTUCK_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay            = "FOODTUCK_OUTBOX_RETRY_DELAY"
	envIdempotencyTTL              = "FOODTUCK_IDEMPOTENCY_TTL"
	envIdempotencyCleanupInterval  = "FOODTUCK_IDEMPOTENCY_CLEANUP_INTERVAL"
	envIdempotencyCleanupBatchSize = "FOODTUCK_IDEMPOTENCY_CLEANUP_BATCH_SIZE"
	envCartPersistTimeout          = "FOODTUCK_CART_PERSIST_TIMEOUT"
	envCartIdleTTL                 = "FOODTUCK_CART_IDLE_TTL"
	envCartEvictInterval           = "FOODTUCK_CART_EVICT_INTERVAL"
)

// Config описывает настройки запуска сервиса корзины.
type Config struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`

	StorageDriver       string        `yaml:"storage_driver"`
	PostgresDSN         string        `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool          `yaml:"postgres_auto_migrate"`
	SQLitePath          string        `yaml:"sqlite_path"`
	FileDir             string        `yaml:"file_dir"`
	CartPersistTimeout  time.Duration `yaml:"cart_persist_timeout"`
	CartIdleTTL         time.Duration `yaml:"cart_idle_ttl"`
	CartEvictInterval   time.Duration `yaml:"cart_evict_interval"`

	CatalogSeedPath string `yaml:"catalog_seed_path"`

	KafkaBrokers         []string `yaml:"kafka_brokers"`
	KafkaClientID        string   `yaml:"kafka_client_id"`
	KafkaCartEventsTopic string   `yaml:"kafka_cart_events_topic"`
	KafkaCatalogTopic    string   `yaml:"kafka_catalog_topic"`
	KafkaConsumerGroup   string   `yaml:"kafka_consumer_group"`

	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchSize    int           `yaml:"outbox_batch_size"`
	OutboxMaxAttempts  int           `yaml:"outbox_max_attempts"`
	OutboxRetryDelay   time.Duration `yaml:"outbox_retry_delay"`

	IdempotencyTTL              time.Duration `yaml:"idempotency_ttl"`
	IdempotencyCleanupInterval  time.Duration `yaml:"idempotency_cleanup_interval"`
	IdempotencyCleanupBatchSize int           `yaml:"idempotency_cleanup_batch_size"`
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		GRPCAddr:    ":50051",
		MetricsAddr: ":9090",
		LogLevel:    "info",
		LogFormat:   "text",

		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SQLitePath:          "foodtuck-carts.db",
		FileDir:             "carts",
		CartPersistTimeout:  2 * time.Second,
		CartIdleTTL:         30 * time.Minute,
		CartEvictInterval:   time.Minute,

		CatalogSeedPath: "configs/catalog.yaml",

		KafkaClientID:        "foodtuck-cart-service",
		KafkaCartEventsTopic: kafka.TopicCartEvents,
		KafkaCatalogTopic:    kafka.TopicCatalogUpdates,
		KafkaConsumerGroup:   "foodtuck-cart-service",

		OutboxPollInterval: time.Second,
		OutboxBatchSize:    100,
		OutboxMaxAttempts:  3,
		OutboxRetryDelay:   100 * time.Millisecond,

		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

// KafkaEnabled сообщает, заданы ли брокеры Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres storage driver requires %s", envPostgresDSN)
		}
	case StorageDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlite storage driver requires %s", envSQLitePath)
		}
	case StorageDriverFile:
		if strings.TrimSpace(c.FileDir) == "" {
			return fmt.Errorf("file storage driver requires %s", envFileDir)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	if c.GRPCAddr == "" {
		return fmt.Errorf("grpc address is required")
	}
	return nil
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл
// из FOODTUCK_CONFIG (если задан), затем переменные окружения.
// Некорректные значения окружения пропускаются и возвращаются как предупреждения.
func LoadConfig() (Config, []string, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		fromFile, err := ReadConfigFile(path, cfg)
		if err != nil {
			return Config{}, nil, err
		}
		cfg = fromFile
	}

	cfg, warnings := ApplyEnv(cfg, os.LookupEnv)
	return cfg, warnings, nil
}

// ReadConfigFile накладывает YAML-файл на base; отсутствующие ключи сохраняют значения base.
func ReadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.StorageDriver = normalizeDriver(cfg.StorageDriver)
	return cfg, nil
}

// ApplyEnv переопределяет поля cfg значениями окружения из lookup.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, []string) {
	var warnings []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = parsed
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || parsed < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: invalid non-negative integer %q", key, v))
			return
		}
		*dst = parsed
	}
	duration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || parsed < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: invalid duration %q", key, v))
			return
		}
		*dst = parsed
	}

	str(envGRPCAddr, &cfg.GRPCAddr)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envLogLevel, &cfg.LogLevel)
	str(envLogFormat, &cfg.LogFormat)
	str(envStorageDriver, &cfg.StorageDriver)
	str(envPostgresDSN, &cfg.PostgresDSN)
	boolean(envPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	str(envSQLitePath, &cfg.SQLitePath)
	str(envFileDir, &cfg.FileDir)
	duration(envCartPersistTimeout, &cfg.CartPersistTimeout)
	duration(envCartIdleTTL, &cfg.CartIdleTTL)
	duration(envCartEvictInterval, &cfg.CartEvictInterval)
	str(envCatalogSeedPath, &cfg.CatalogSeedPath)

	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = splitList(v)
	}
	str(envKafkaClientID, &cfg.KafkaClientID)
	str(envKafkaCartEventsTopic, &cfg.KafkaCartEventsTopic)
	str(envKafkaCatalogTopic, &cfg.KafkaCatalogTopic)
	str(envKafkaConsumerGroup, &cfg.KafkaConsumerGroup)

	duration(envOutboxPollInterval, &cfg.OutboxPollInterval)
	integer(envOutboxBatchSize, &cfg.OutboxBatchSize)
	integer(envOutboxMaxAttempts, &cfg.OutboxMaxAttempts)
	duration(envOutboxRetryDelay, &cfg.OutboxRetryDelay)

	duration(envIdempotencyTTL, &cfg.IdempotencyTTL)
	duration(envIdempotencyCleanupInterval, &cfg.IdempotencyCleanupInterval)
	integer(envIdempotencyCleanupBatchSize, &cfg.IdempotencyCleanupBatchSize)

	cfg.StorageDriver = normalizeDriver(cfg.StorageDriver)
	return cfg, warnings
}

func normalizeDriver(driver string) string {
	return strings.ToLower(strings.TrimSpace(driver))
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
