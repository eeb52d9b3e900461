package cart

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/metrics"
)

// Registry держит по одной корзине на сессию (контекст браузера).
// Глобальный мьютекс защищает только карту; чтение слота идёт под мьютексом
// конкретной корзины, поэтому медленное хранилище не блокирует другие сессии.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*registryEntry
	storage domain.CartStorage
	options []Option
	metrics *metrics.CartMetrics
	logger  *log.Entry
}

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// NewRegistry создаёт реестр корзин поверх общего хранилища.
// options применяются к каждой создаваемой корзине.
func NewRegistry(storage domain.CartStorage, logger *log.Entry, m *metrics.CartMetrics, options ...Option) *Registry {
	if logger == nil {
		logger = log.WithField("component", "cart-registry")
	}

	opts := make([]Option, 0, len(options)+2)
	opts = append(opts, WithLogger(logger), WithMetrics(m))
	opts = append(opts, options...)

	return &Registry{
		stores:  make(map[string]*registryEntry),
		storage: storage,
		options: opts,
		metrics: m,
		logger:  logger,
	}
}

// StorageKey возвращает ключ слота для сессии.
func StorageKey(sessionID string) string {
	return DefaultStorageKey + ":" + sessionID
}

// Get возвращает корзину сессии. Слот читается при первом обращении и
// перечитывается, пока предыдущие попытки упирались в недоступное хранилище.
func (r *Registry) Get(ctx context.Context, sessionID string) (*Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrSessionRequired
	}

	store := r.lookup(sessionID)
	store.EnsureHydrated(ctx)
	return store, nil
}

func (r *Registry) lookup(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if entry, ok := r.stores[sessionID]; ok {
		entry.lastUsed = now
		return entry.store
	}

	store := NewStore(StorageKey(sessionID), r.storage, r.options...)
	r.stores[sessionID] = &registryEntry{store: store, lastUsed: now}
	r.metrics.RecordCartOpened()
	return store
}

// Forget выгружает корзину сессии из памяти; снимок в хранилище остаётся.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[sessionID]; !ok {
		return
	}
	delete(r.stores, sessionID)
	r.metrics.RecordCartClosed()
}

// EvictIdle выгружает корзины, к которым не обращались с момента before.
// Корзины без хранилища и корзины с незаписанными изменениями остаются в памяти.
func (r *Registry) EvictIdle(before time.Time) int {
	if r.storage == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for sessionID, entry := range r.stores {
		if !entry.lastUsed.Before(before) || !entry.store.Synced() {
			continue
		}
		delete(r.stores, sessionID)
		r.metrics.RecordCartEvicted()
		evicted++
	}
	return evicted
}

// Len возвращает число корзин в памяти.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
