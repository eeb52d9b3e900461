package app

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/health"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/file"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/memory"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/postgres"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/sqlite"
)

// runtimeDependencies — хранилища, выбранные драйвером из конфигурации.
type runtimeDependencies struct {
	cartStorage     domain.CartStorage
	users           domain.UserRepository
	outboxRepo      domain.OutboxRepository
	idempotencyRepo domain.IdempotencyRepository

	// storagePinger проверяет хранилище корзин; nil для memory.
	storagePinger health.Pinger
	closeFn       func() error
}

func (d *runtimeDependencies) close(logger *log.Entry) {
	if d == nil || d.closeFn == nil {
		return
	}
	if err := d.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}

// initRuntimeDependencies открывает хранилища для cfg.StorageDriver.
// sqlite и file хранят только снимки корзин; пользователи, outbox и
// idempotency-ключи для них остаются в памяти.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	inMemory := func() *runtimeDependencies {
		return &runtimeDependencies{
			cartStorage:     memory.NewCartStorage(),
			users:           memory.NewUserRepository(),
			outboxRepo:      memory.NewOutboxRepository(),
			idempotencyRepo: memory.NewIdempotencyRepository(),
		}
	}

	switch normalizeDriver(cfg.StorageDriver) {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return inMemory(), nil

	case StorageDriverPostgres:
		dsn := strings.TrimSpace(cfg.PostgresDSN)
		if dsn == "" {
			return nil, fmt.Errorf("postgres storage driver requires %s", envPostgresDSN)
		}

		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply postgres migrations: %w", err)
			}
			status, err := store.Status(ctx)
			if err == nil {
				logger.WithFields(log.Fields{
					"schema_version": status.Version,
					"applied":        status.Applied,
				}).Info("postgres migrations applied")
			}
		}

		logger.Info("using postgres storage")
		return &runtimeDependencies{
			cartStorage:     postgres.NewCartStorage(store),
			users:           postgres.NewUserRepository(store),
			outboxRepo:      postgres.NewOutboxRepository(store),
			idempotencyRepo: postgres.NewIdempotencyRepository(store),
			storagePinger:   store,
			closeFn:         store.Close,
		}, nil

	case StorageDriverSQLite:
		storage, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite cart storage: %w", err)
		}

		deps := inMemory()
		deps.cartStorage = storage
		deps.storagePinger = storage
		deps.closeFn = storage.Close
		logger.WithField("path", storage.Path()).Info("using sqlite cart storage")
		return deps, nil

	case StorageDriverFile:
		storage, err := file.NewCartStorage(cfg.FileDir)
		if err != nil {
			return nil, fmt.Errorf("open file cart storage: %w", err)
		}

		deps := inMemory()
		deps.cartStorage = storage
		deps.storagePinger = storage
		logger.WithField("dir", storage.Dir()).Info("using file cart storage")
		return deps, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
