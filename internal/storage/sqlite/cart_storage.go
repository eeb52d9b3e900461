// Package sqlite хранит снимки корзины в локальном файле SQLite:
// долговременный слот одного устройства для cartctl и драйвера storage=sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	schema = `
CREATE TABLE IF NOT EXISTS cart_slots (
    storage_key TEXT PRIMARY KEY,
    items TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`
)

// CartStorage — key-value слот корзины поверх SQLite.
type CartStorage struct {
	db   *sql.DB
	path string
}

// Open открывает (или создаёт) базу по path и гарантирует схему.
func Open(ctx context.Context, path string) (*CartStorage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// Один writer: SQLite сериализует запись на уровне файла.
	db.SetMaxOpenConns(1)

	initCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	for _, stmt := range []string{`PRAGMA busy_timeout = 5000`, `PRAGMA journal_mode = WAL`, schema} {
		if _, err := db.ExecContext(initCtx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}

	return &CartStorage{db: db, path: path}, nil
}

// Path возвращает путь к файлу базы.
func (s *CartStorage) Path() string {
	return s.path
}

// Load читает снимок по ключу.
func (s *CartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrCartKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var items string
	err := s.db.QueryRowContext(ctx, `SELECT items FROM cart_slots WHERE storage_key = ?`, key).Scan(&items)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCartSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart slot %s: %w", key, err)
	}
	return []byte(items), nil
}

// Save перезаписывает снимок.
func (s *CartStorage) Save(ctx context.Context, key string, snapshot []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrCartKeyRequired
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_slots (storage_key, items, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at
	`, key, string(snapshot), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save cart slot %s: %w", key, err)
	}
	return nil
}

// Delete удаляет снимок.
func (s *CartStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_slots WHERE storage_key = ?`, strings.TrimSpace(key)); err != nil {
		return fmt.Errorf("delete cart slot %s: %w", key, err)
	}
	return nil
}

// Ping проверяет доступность базы.
func (s *CartStorage) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("sqlite storage is not initialized")
	}
	return s.db.PingContext(ctx)
}

// Close закрывает базу.
func (s *CartStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ domain.CartStorage = (*CartStorage)(nil)
