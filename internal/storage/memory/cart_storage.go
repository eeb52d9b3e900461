package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// CartStorage — in-memory key-value слот для снимков корзин.
type CartStorage struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewCartStorage создаёт пустое in-memory хранилище корзин.
func NewCartStorage() *CartStorage {
	return &CartStorage{slots: make(map[string][]byte)}
}

// Load возвращает копию снимка по ключу.
func (s *CartStorage) Load(_ context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrCartKeyRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.slots[key]
	if !ok {
		return nil, domain.ErrCartSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

// Save перезаписывает слот копией snapshot.
func (s *CartStorage) Save(_ context.Context, key string, snapshot []byte) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrCartKeyRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.slots[key] = append([]byte(nil), snapshot...)
	return nil
}

// Delete удаляет слот.
func (s *CartStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.slots, strings.TrimSpace(key))
	return nil
}

// Len возвращает число сохранённых слотов.
func (s *CartStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

var _ domain.CartStorage = (*CartStorage)(nil)
