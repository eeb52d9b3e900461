// Package cart реализует корзину покупателя: упорядоченный набор позиций
// с производными итогами и сохранением снимка в key-value слот.
package cart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/metrics"
)

const (
	// DefaultStorageKey — фиксированный ключ слота для корзины одного устройства.
	DefaultStorageKey = "foodtuck-cart"

	// MaxTotalItems — предел суммы количеств в корзине (int32 в gRPC API).
	MaxTotalItems = math.MaxInt32

	defaultPersistTimeout = 2 * time.Second
)

// Имена операций для метрик и логов.
const (
	OpAdd       = "add"
	OpRemove    = "remove"
	OpIncrement = "increment"
	OpDecrement = "decrement"
	OpClear     = "clear"
)

// StoreOptions задаёт параметры Store.
type StoreOptions struct {
	Logger         *log.Entry
	EventSink      domain.CartEventSink
	Metrics        *metrics.CartMetrics
	PersistTimeout time.Duration
	MaxTotalItems  int
	Now            func() time.Time
}

// Option настраивает Store.
type Option func(*StoreOptions)

// WithLogger задаёт logger корзины.
func WithLogger(logger *log.Entry) Option {
	return func(opts *StoreOptions) {
		opts.Logger = logger
	}
}

// WithEventSink задаёт получателя событий корзины.
func WithEventSink(sink domain.CartEventSink) Option {
	return func(opts *StoreOptions) {
		opts.EventSink = sink
	}
}

// WithMetrics задаёт метрики корзины.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(opts *StoreOptions) {
		opts.Metrics = m
	}
}

// WithPersistTimeout ограничивает время записи снимка.
func WithPersistTimeout(timeout time.Duration) Option {
	return func(opts *StoreOptions) {
		opts.PersistTimeout = timeout
	}
}

// WithMaxTotalItems ограничивает сумму количеств в корзине (не больше MaxTotalItems).
func WithMaxTotalItems(limit int) Option {
	return func(opts *StoreOptions) {
		opts.MaxTotalItems = limit
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(now func() time.Time) Option {
	return func(opts *StoreOptions) {
		opts.Now = now
	}
}

// Snapshot — согласованное состояние корзины на момент операции.
type Snapshot struct {
	Items      []domain.CartItem
	TotalItems int
	TotalPrice decimal.Decimal
	// Persisted — последнее состояние записано в хранилище.
	Persisted bool
}

// Store владеет одной корзиной. Мутации сериализуются мьютексом и
// применяются в порядке поступления; ошибки хранилища не прерывают мутацию.
//
// Пока слот не прочитан (hydrated == false), снимок не записывается: мутации
// копятся в pending и переигрываются поверх снимка, когда чтение удастся.
type Store struct {
	mu sync.Mutex

	key     string
	storage domain.CartStorage
	items   []domain.CartItem

	hydrated bool
	pending  []mutation
	loadErr  error

	persistErr     error
	persistTimeout time.Duration
	maxTotalItems  int
	// synced — состояние в памяти совпадает со слотом; читается без мьютекса.
	synced atomic.Bool

	sink    domain.CartEventSink
	metrics *metrics.CartMetrics
	logger  *log.Entry
	now     func() time.Time
}

// change описывает эффективную мутацию для событий и метрик.
type change struct {
	op        string
	eventType domain.CartEventType
	itemID    string
	quantity  int
}

// mutation применяет операцию к позициям. nil change — no-op.
type mutation func(items []domain.CartItem) ([]domain.CartItem, *change, error)

// NewStore создаёт пустую корзину, привязанную к слоту key.
// storage == nil означает корзину только в памяти. Слот читается при первой
// мутации или явным Hydrate/EnsureHydrated.
func NewStore(key string, storage domain.CartStorage, options ...Option) *Store {
	opts := StoreOptions{PersistTimeout: defaultPersistTimeout, MaxTotalItems: MaxTotalItems}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-store")
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.MaxTotalItems <= 0 || opts.MaxTotalItems > MaxTotalItems {
		opts.MaxTotalItems = MaxTotalItems
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		key:            key,
		storage:        storage,
		items:          []domain.CartItem{},
		hydrated:       storage == nil,
		persistTimeout: opts.PersistTimeout,
		maxTotalItems:  opts.MaxTotalItems,
		sink:           opts.EventSink,
		metrics:        opts.Metrics,
		logger:         logger.WithField("cart_key", key),
		now:            opts.Now,
	}
	s.synced.Store(storage == nil)
	return s
}

// Key возвращает ключ слота хранилища.
func (s *Store) Key() string {
	return s.key
}

// Hydrate перечитывает корзину из слота. Отсутствующий слот даёт пустую
// корзину; повреждённый слот логируется, корзина остаётся пустой и будет
// перезаписана следующей мутацией. Недоступное хранилище оставляет корзину
// непрочитанной: запись снимка откладывается до успешного чтения.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage == nil {
		return
	}
	s.loadLocked(ctx)
}

// EnsureHydrated читает слот, только если он ещё не был прочитан.
func (s *Store) EnsureHydrated(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hydrated {
		return
	}
	s.loadLocked(ctx)
}

// Hydrated сообщает, прочитан ли слот.
func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Synced сообщает, что в памяти нет изменений, не записанных в слот.
func (s *Store) Synced() bool {
	return s.synced.Load()
}

// loadLocked читает слот и переигрывает отложенные мутации поверх снимка.
func (s *Store) loadLocked(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.persistTimeout)
	defer cancel()

	var loaded []domain.CartItem
	data, err := s.storage.Load(loadCtx, s.key)
	switch {
	case errors.Is(err, domain.ErrCartSnapshotNotFound):
		loaded = []domain.CartItem{}
		s.persistErr = nil
		s.metrics.RecordHydrate("empty")
	case err != nil:
		s.logger.WithError(err).Warn("cart storage unavailable, keeping cart in memory until the slot can be read")
		if !s.hydrated {
			s.loadErr = err
			s.persistErr = fmt.Errorf("cart slot not loaded: %w", err)
			s.synced.Store(false)
		}
		s.metrics.RecordHydrate("unavailable")
		return
	default:
		items, decodeErr := Decode(data)
		if decodeErr != nil {
			s.logger.WithError(decodeErr).Warn("cart snapshot is corrupted, starting with empty cart")
			loaded = []domain.CartItem{}
			s.persistErr = decodeErr
			s.metrics.RecordHydrate("corrupted")
		} else {
			loaded = items
			s.persistErr = nil
			s.metrics.RecordHydrate("restored")
			s.logger.WithField("items", len(items)).Debug("cart restored from storage")
		}
	}

	pending := s.pending
	s.items = loaded
	s.pending = nil
	s.loadErr = nil
	s.hydrated = true

	if len(pending) == 0 {
		s.synced.Store(s.persistErr == nil)
		return
	}

	for _, m := range pending {
		if next, ch, err := m(s.items); err == nil && ch != nil {
			s.items = next
		}
	}
	s.logger.WithField("replayed", len(pending)).Info("cart mutations made while storage was unavailable replayed over stored snapshot")
	s.persistLocked(ctx)
}

// AddToCart добавляет позицию. Если позиция с тем же ID уже есть,
// её количество увеличивается, а name/price/image остаются прежними.
// Позиция без ID или с количеством меньше 1 игнорируется, как и добавление,
// выводящее корзину за MaxTotalItems.
func (s *Store) AddToCart(ctx context.Context, item domain.CartItem) Snapshot {
	snap, _ := s.TryAddToCart(ctx, item)
	return snap
}

// TryAddToCart — AddToCart, сообщающий об отказе по лимиту
// ошибкой domain.ErrCartQuantityLimit.
func (s *Store) TryAddToCart(ctx context.Context, item domain.CartItem) (Snapshot, error) {
	return s.mutate(ctx, s.addItem(item))
}

// RemoveFromCart удаляет позицию; отсутствующий id — no-op без записи.
func (s *Store) RemoveFromCart(ctx context.Context, id string) Snapshot {
	snap, _ := s.mutate(ctx, removeItem(id))
	return snap
}

// IncrementQuantity увеличивает количество позиции на 1.
func (s *Store) IncrementQuantity(ctx context.Context, id string) Snapshot {
	snap, _ := s.TryIncrementQuantity(ctx, id)
	return snap
}

// TryIncrementQuantity — IncrementQuantity с ошибкой при достижении лимита.
func (s *Store) TryIncrementQuantity(ctx context.Context, id string) (Snapshot, error) {
	return s.mutate(ctx, s.incrementItem(id))
}

// DecrementQuantity уменьшает количество на 1; позиция с количеством 1 удаляется.
func (s *Store) DecrementQuantity(ctx context.Context, id string) Snapshot {
	snap, _ := s.mutate(ctx, decrementItem(id))
	return snap
}

// ClearCart очищает корзину и сохраняет пустой снимок.
func (s *Store) ClearCart(ctx context.Context) Snapshot {
	snap, _ := s.mutate(ctx, clearItems)
	return snap
}

func (s *Store) mutate(ctx context.Context, m mutation) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hydrated {
		s.loadLocked(ctx)
	}

	next, ch, err := m(s.items)
	if err != nil {
		return s.snapshotLocked(), err
	}
	if ch == nil {
		return s.snapshotLocked(), nil
	}

	s.items = next
	if !s.hydrated {
		s.pending = append(s.pending, m)
	}
	s.commitLocked(ctx, *ch)
	return s.snapshotLocked(), nil
}

func (s *Store) addItem(item domain.CartItem) mutation {
	limit := s.maxTotalItems
	return func(items []domain.CartItem) ([]domain.CartItem, *change, error) {
		if item.ID == "" || item.Quantity < 1 {
			return items, nil, nil
		}
		if item.Quantity > limit-totalItems(items) {
			return items, nil, domain.ErrCartQuantityLimit
		}

		if idx := indexOf(items, item.ID); idx >= 0 {
			items[idx].Quantity += item.Quantity
			return items, &change{OpAdd, domain.CartEventItemAdded, item.ID, items[idx].Quantity}, nil
		}
		return append(items, item), &change{OpAdd, domain.CartEventItemAdded, item.ID, item.Quantity}, nil
	}
}

func removeItem(id string) mutation {
	return func(items []domain.CartItem) ([]domain.CartItem, *change, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, nil, nil
		}
		return deleteAt(items, idx), &change{OpRemove, domain.CartEventItemRemoved, id, 0}, nil
	}
}

func (s *Store) incrementItem(id string) mutation {
	limit := s.maxTotalItems
	return func(items []domain.CartItem) ([]domain.CartItem, *change, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, nil, nil
		}
		if totalItems(items) >= limit {
			return items, nil, domain.ErrCartQuantityLimit
		}
		items[idx].Quantity++
		return items, &change{OpIncrement, domain.CartEventQuantityChanged, id, items[idx].Quantity}, nil
	}
}

func decrementItem(id string) mutation {
	return func(items []domain.CartItem) ([]domain.CartItem, *change, error) {
		idx := indexOf(items, id)
		if idx < 0 {
			return items, nil, nil
		}
		if items[idx].Quantity <= 1 {
			return deleteAt(items, idx), &change{OpDecrement, domain.CartEventItemRemoved, id, 0}, nil
		}
		items[idx].Quantity--
		return items, &change{OpDecrement, domain.CartEventQuantityChanged, id, items[idx].Quantity}, nil
	}
}

func clearItems([]domain.CartItem) ([]domain.CartItem, *change, error) {
	return []domain.CartItem{}, &change{OpClear, domain.CartEventCleared, "", 0}, nil
}

// TotalItems возвращает сумму количеств по всем позициям.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice возвращает сумму price × quantity по всем позициям.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// Items возвращает копию позиций в порядке добавления.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Snapshot возвращает текущее состояние корзины.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// PersistErr возвращает последнюю ошибку чтения или записи слота
// (nil после успешной записи).
func (s *Store) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

func indexOf(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func deleteAt(items []domain.CartItem, idx int) []domain.CartItem {
	return append(items[:idx], items[idx+1:]...)
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Items:      cloneItems(s.items),
		TotalItems: totalItems(s.items),
		TotalPrice: totalPrice(s.items),
		Persisted:  s.storage != nil && s.persistErr == nil,
	}
}

// commitLocked сохраняет снимок и публикует событие после эффективной мутации.
func (s *Store) commitLocked(ctx context.Context, ch change) {
	s.metrics.RecordMutation(ch.op)
	s.persistLocked(ctx)

	total := totalPrice(s.items)
	value, _ := total.Float64()
	s.metrics.RecordCartValue(value)

	if s.sink == nil {
		return
	}

	event := domain.CartEvent{
		Type:       ch.eventType,
		CartKey:    s.key,
		ItemID:     ch.itemID,
		Quantity:   ch.quantity,
		TotalItems: totalItems(s.items),
		TotalPrice: total,
		OccurredAt: s.now().UTC(),
	}
	if err := s.sink.Record(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": ch.eventType,
			"item_id":    ch.itemID,
		}).Warn("failed to record cart event")
		return
	}
	s.metrics.RecordCartEvent()
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.storage == nil {
		return
	}
	if !s.hydrated {
		// Запись непрочитанного слота затёрла бы сохранённую корзину.
		s.persistErr = fmt.Errorf("cart slot not loaded: %w", s.loadErr)
		s.synced.Store(false)
		s.metrics.RecordPersistFailure()
		return
	}

	data, err := Encode(s.items)
	if err != nil {
		s.persistErr = err
		s.synced.Store(false)
		s.metrics.RecordPersistFailure()
		s.logger.WithError(err).Warn("failed to encode cart snapshot")
		return
	}

	// Запись не должна обрываться вместе с RPC, который её вызвал.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.persistTimeout)
	defer cancel()

	started := time.Now()
	err = s.storage.Save(saveCtx, s.key, data)
	s.metrics.RecordPersistDuration(time.Since(started))
	if err != nil {
		s.persistErr = err
		s.synced.Store(false)
		s.metrics.RecordPersistFailure()
		s.logger.WithError(err).Warn("failed to persist cart snapshot, keeping cart in memory")
		return
	}
	s.persistErr = nil
	s.synced.Store(true)
}

func totalItems(items []domain.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func totalPrice(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
