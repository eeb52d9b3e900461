package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// CartStorage хранит снимки корзин в таблице cart_snapshots (JSONB).
type CartStorage struct {
	db *sql.DB
}

// NewCartStorage создаёт PostgreSQL-реализацию domain.CartStorage.
func NewCartStorage(store *Store) *CartStorage {
	return &CartStorage{db: store.DB()}
}

// Load читает снимок по ключу.
func (s *CartStorage) Load(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrCartKeyRequired
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	var items []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT items FROM cart_snapshots WHERE storage_key = $1`, key,
	).Scan(&items)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCartSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot %s: %w", key, err)
	}
	return items, nil
}

// Save перезаписывает снимок (upsert по ключу).
func (s *CartStorage) Save(ctx context.Context, key string, snapshot []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrCartKeyRequired
	}

	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_snapshots (storage_key, items, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (storage_key) DO UPDATE
		SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at
	`, key, string(snapshot)); err != nil {
		return fmt.Errorf("save cart snapshot %s: %w", key, err)
	}
	return nil
}

// Delete удаляет снимок.
func (s *CartStorage) Delete(ctx context.Context, key string) error {
	ctx, cancel := withOpTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cart_snapshots WHERE storage_key = $1`, strings.TrimSpace(key),
	); err != nil {
		return fmt.Errorf("delete cart snapshot %s: %w", key, err)
	}
	return nil
}

var _ domain.CartStorage = (*CartStorage)(nil)
