package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/metrics"
)

type fakeStorage struct {
	mu      sync.Mutex
	slots   map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{slots: make(map[string][]byte)}
}

func (f *fakeStorage) Load(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	data, ok := f.slots[key]
	if !ok {
		return nil, domain.ErrCartSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeStorage) Save(_ context.Context, key string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.slots[key] = append([]byte(nil), snapshot...)
	return nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, key)
	return nil
}

func (f *fakeStorage) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.CartEvent
	err    error
}

func (r *recordingSink) Record(_ context.Context, event domain.CartEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func pizza(quantity int) domain.CartItem {
	return domain.CartItem{ID: "p1", Name: "Pizza", Price: decimal.RequireFromString("9.5"), Image: "/p1.png", Quantity: quantity}
}

func soda(quantity int) domain.CartItem {
	return domain.CartItem{ID: "p2", Name: "Soda", Price: decimal.RequireFromString("1.5"), Image: "/p2.png", Quantity: quantity}
}

func requirePrice(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "total price %s, want %s", got, want)
}

func TestStore_PizzaSodaScenario(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, newFakeStorage())

	store.AddToCart(ctx, pizza(2))
	store.AddToCart(ctx, soda(1))
	require.Equal(t, 3, store.TotalItems())
	requirePrice(t, "20.5", store.TotalPrice())

	store.DecrementQuantity(ctx, "p1")
	require.Equal(t, 2, store.TotalItems())
	requirePrice(t, "11.0", store.TotalPrice())

	store.RemoveFromCart(ctx, "p2")
	require.Equal(t, 1, store.TotalItems())
	requirePrice(t, "9.5", store.TotalPrice())
}

func TestStore_AddDistinctItems(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, nil)

	quantities := []int{1, 4, 2, 7}
	want := 0
	for i, q := range quantities {
		store.AddToCart(ctx, domain.CartItem{ID: string(rune('a' + i)), Price: decimal.NewFromInt(1), Quantity: q})
		want += q
	}

	require.Equal(t, want, store.TotalItems())
	require.Len(t, store.Items(), len(quantities))
}

func TestStore_AddMergesDuplicateID(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, nil)

	store.AddToCart(ctx, pizza(2))
	renamed := pizza(3)
	renamed.Name = "Pizza XL"
	renamed.Price = decimal.NewFromInt(100)
	snap := store.AddToCart(ctx, renamed)

	require.Len(t, snap.Items, 1)
	require.Equal(t, 5, snap.Items[0].Quantity)
	require.Equal(t, "Pizza", snap.Items[0].Name)
	requirePrice(t, "47.5", snap.TotalPrice)
}

func TestStore_AddIgnoresNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	store := NewStore(DefaultStorageKey, storage)

	store.AddToCart(ctx, pizza(0))
	store.AddToCart(ctx, pizza(-2))

	require.Empty(t, store.Items())
	require.Zero(t, storage.saveCount())
}

func TestStore_DecrementQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("above one", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, nil)
		store.AddToCart(ctx, pizza(3))

		before := store.TotalItems()
		store.DecrementQuantity(ctx, "p1")

		require.Equal(t, before-1, store.TotalItems())
		require.Equal(t, 2, store.Items()[0].Quantity)
	})

	t.Run("at one removes item", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, nil)
		store.AddToCart(ctx, pizza(1))
		store.AddToCart(ctx, soda(1))

		store.DecrementQuantity(ctx, "p1")

		items := store.Items()
		require.Len(t, items, 1)
		require.Equal(t, "p2", items[0].ID)
	})

	t.Run("absent id", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, nil)
		store.AddToCart(ctx, pizza(1))

		store.DecrementQuantity(ctx, "missing")
		require.Equal(t, 1, store.TotalItems())
	})
}

func TestStore_IncrementQuantity(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, nil)
	store.AddToCart(ctx, soda(1))

	store.IncrementQuantity(ctx, "p2")
	store.IncrementQuantity(ctx, "missing")

	require.Equal(t, 2, store.TotalItems())
	requirePrice(t, "3", store.TotalPrice())
}

func TestStore_RemoveAbsentIsNoop(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	sink := &recordingSink{}
	store := NewStore(DefaultStorageKey, storage, WithEventSink(sink))
	store.AddToCart(ctx, pizza(2))

	before := store.Items()
	savesBefore := storage.saveCount()

	store.RemoveFromCart(ctx, "missing")

	require.Empty(t, cmp.Diff(before, store.Items()))
	require.Equal(t, savesBefore, storage.saveCount())
	require.Len(t, sink.events, 1)
}

func TestStore_ClearCart(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	store := NewStore(DefaultStorageKey, storage)
	store.AddToCart(ctx, pizza(2))
	store.AddToCart(ctx, soda(1))

	snap := store.ClearCart(ctx)

	require.Empty(t, snap.Items)
	require.Zero(t, store.TotalItems())
	require.True(t, store.TotalPrice().IsZero())
	require.Equal(t, "[]", string(storage.slots[DefaultStorageKey]))
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()

	first := NewStore(DefaultStorageKey, storage)
	first.AddToCart(ctx, soda(3))
	first.AddToCart(ctx, pizza(2))
	first.AddToCart(ctx, domain.CartItem{ID: "p3", Name: "Café crème", Price: decimal.RequireFromString("0.10"), Image: "", Quantity: 1})

	second := NewStore(DefaultStorageKey, storage)
	second.Hydrate(ctx)

	if diff := cmp.Diff(first.Items(), second.Items()); diff != "" {
		t.Fatalf("rehydrated cart mismatch (-want +got):\n%s", diff)
	}
	require.True(t, first.TotalPrice().Equal(second.TotalPrice()))
}

func TestStore_HydrateFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("missing slot", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, newFakeStorage())
		store.Hydrate(ctx)
		require.Empty(t, store.Items())
		require.NoError(t, store.PersistErr())
	})

	t.Run("corrupted slot", func(t *testing.T) {
		storage := newFakeStorage()
		storage.slots[DefaultStorageKey] = []byte("{not json")
		store := NewStore(DefaultStorageKey, storage)

		store.Hydrate(ctx)
		require.Empty(t, store.Items())
		require.False(t, store.Snapshot().Persisted)
		require.ErrorIs(t, store.PersistErr(), domain.ErrCartSnapshotCorrupted)
		require.False(t, store.Synced())

		snap := store.AddToCart(ctx, pizza(1))
		require.Equal(t, 1, snap.TotalItems)
		require.True(t, snap.Persisted)
		require.NoError(t, store.PersistErr())
	})

	t.Run("unavailable storage", func(t *testing.T) {
		storage := newFakeStorage()
		storage.loadErr = errors.New("disk offline")
		store := NewStore(DefaultStorageKey, storage)

		store.Hydrate(ctx)
		require.Empty(t, store.Items())
		require.Error(t, store.PersistErr())
		require.False(t, store.Hydrated())
		require.False(t, store.Snapshot().Persisted)
	})
}

func TestStore_UnavailableStorageDoesNotOverwriteSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	stored, err := Encode([]domain.CartItem{pizza(2)})
	require.NoError(t, err)
	storage.slots[DefaultStorageKey] = stored
	storage.loadErr = errors.New("disk offline")

	store := NewStore(DefaultStorageKey, storage)
	store.Hydrate(ctx)

	snap := store.AddToCart(ctx, soda(1))
	require.Equal(t, 1, snap.TotalItems)
	require.False(t, snap.Persisted)
	require.ErrorContains(t, store.PersistErr(), "disk offline")
	require.Zero(t, storage.saveCount())
	require.Equal(t, stored, storage.slots[DefaultStorageKey])

	storage.mu.Lock()
	storage.loadErr = nil
	storage.mu.Unlock()

	snap = store.IncrementQuantity(ctx, "p2")
	require.True(t, snap.Persisted)
	require.True(t, store.Hydrated())
	require.True(t, store.Synced())

	want := []domain.CartItem{pizza(2), soda(2)}
	if diff := cmp.Diff(want, snap.Items); diff != "" {
		t.Fatalf("cart after recovery mismatch (-want +got):\n%s", diff)
	}
	restored, err := Decode(storage.slots[DefaultStorageKey])
	require.NoError(t, err)
	if diff := cmp.Diff(want, restored); diff != "" {
		t.Fatalf("stored snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_EnsureHydratedReplaysPendingMutations(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	stored, err := Encode([]domain.CartItem{soda(3)})
	require.NoError(t, err)
	storage.slots[DefaultStorageKey] = stored
	storage.loadErr = errors.New("timeout")

	store := NewStore(DefaultStorageKey, storage)
	store.AddToCart(ctx, pizza(1))
	store.IncrementQuantity(ctx, "p1")
	require.False(t, store.Hydrated())

	storage.mu.Lock()
	storage.loadErr = nil
	storage.mu.Unlock()

	store.EnsureHydrated(ctx)
	require.True(t, store.Hydrated())
	require.True(t, store.Snapshot().Persisted)

	restored, err := Decode(storage.slots[DefaultStorageKey])
	require.NoError(t, err)
	if diff := cmp.Diff([]domain.CartItem{soda(3), pizza(2)}, restored); diff != "" {
		t.Fatalf("stored snapshot mismatch (-want +got):\n%s", diff)
	}

	// Повторный вызов не перечитывает слот.
	storage.mu.Lock()
	storage.slots[DefaultStorageKey] = []byte("[]")
	storage.mu.Unlock()
	store.EnsureHydrated(ctx)
	require.Equal(t, 5, store.TotalItems())
}

func TestStore_QuantityLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("add beyond limit is rejected", func(t *testing.T) {
		storage := newFakeStorage()
		store := NewStore(DefaultStorageKey, storage, WithMaxTotalItems(5))

		_, err := store.TryAddToCart(ctx, pizza(3))
		require.NoError(t, err)
		snap, err := store.TryAddToCart(ctx, soda(3))
		require.ErrorIs(t, err, domain.ErrCartQuantityLimit)
		require.Equal(t, 3, snap.TotalItems)
		require.Equal(t, 1, storage.saveCount())

		snap, err = store.TryAddToCart(ctx, soda(2))
		require.NoError(t, err)
		require.Equal(t, 5, snap.TotalItems)
	})

	t.Run("increment at limit is rejected", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, nil, WithMaxTotalItems(2))
		store.AddToCart(ctx, pizza(2))

		snap, err := store.TryIncrementQuantity(ctx, "p1")
		require.ErrorIs(t, err, domain.ErrCartQuantityLimit)
		require.Equal(t, 2, snap.TotalItems)

		// Отсутствующая позиция остаётся no-op даже на лимите.
		_, err = store.TryIncrementQuantity(ctx, "missing")
		require.NoError(t, err)
	})

	t.Run("default limit fits int32", func(t *testing.T) {
		store := NewStore(DefaultStorageKey, nil)

		snap := store.AddToCart(ctx, pizza(MaxTotalItems))
		require.Equal(t, MaxTotalItems, snap.TotalItems)

		snap = store.AddToCart(ctx, pizza(MaxTotalItems))
		require.Equal(t, MaxTotalItems, snap.TotalItems)
		require.True(t, snap.TotalPrice.IsPositive())
	})
}

func TestStore_AddIgnoresEmptyID(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	store := NewStore(DefaultStorageKey, storage)

	anonymous := pizza(2)
	anonymous.ID = ""
	snap := store.AddToCart(ctx, anonymous)

	require.Empty(t, snap.Items)
	require.Zero(t, storage.saveCount())

	store.AddToCart(ctx, soda(1))
	reloaded := NewStore(DefaultStorageKey, storage)
	reloaded.Hydrate(ctx)
	require.NoError(t, reloaded.PersistErr())
	require.Equal(t, 1, reloaded.TotalItems())
}

func TestStore_PersistFailureKeepsWorkingInMemory(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	storage.saveErr = errors.New("quota exceeded")
	m := metrics.NewCartMetricsWithRegisterer(prometheus.NewRegistry())
	store := NewStore(DefaultStorageKey, storage, WithMetrics(m))

	snap := store.AddToCart(ctx, pizza(2))

	require.Equal(t, 2, snap.TotalItems)
	require.False(t, snap.Persisted)
	require.ErrorContains(t, store.PersistErr(), "quota exceeded")

	storage.mu.Lock()
	storage.saveErr = nil
	storage.mu.Unlock()

	snap = store.IncrementQuantity(ctx, "p1")
	require.True(t, snap.Persisted)
	require.NoError(t, store.PersistErr())

	restored, err := Decode(storage.slots[DefaultStorageKey])
	require.NoError(t, err)
	require.Equal(t, 3, restored[0].Quantity)
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, nil)
	store.AddToCart(ctx, pizza(1))

	items := store.Items()
	items[0].Quantity = 99
	items[0].Name = "hacked"

	require.Equal(t, 1, store.Items()[0].Quantity)
	require.Equal(t, "Pizza", store.Items()[0].Name)
}

func TestStore_EmitsEvents(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := NewStore("foodtuck-cart:s1", nil, WithEventSink(sink), WithClock(func() time.Time { return now }))

	store.AddToCart(ctx, pizza(2))
	store.IncrementQuantity(ctx, "p1")
	store.DecrementQuantity(ctx, "p1")
	store.RemoveFromCart(ctx, "p1")
	store.ClearCart(ctx)

	types := make([]domain.CartEventType, 0, len(sink.events))
	for _, e := range sink.events {
		types = append(types, e.Type)
		require.Equal(t, "foodtuck-cart:s1", e.CartKey)
		require.Equal(t, now, e.OccurredAt)
	}
	require.Equal(t, []domain.CartEventType{
		domain.CartEventItemAdded,
		domain.CartEventQuantityChanged,
		domain.CartEventQuantityChanged,
		domain.CartEventItemRemoved,
		domain.CartEventCleared,
	}, types)
	require.Equal(t, 3, sink.events[1].Quantity)
	requirePrice(t, "28.5", sink.events[1].TotalPrice)
}

func TestStore_EventSinkFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("outbox down")}
	store := NewStore(DefaultStorageKey, nil, WithEventSink(sink))

	snap := store.AddToCart(ctx, pizza(1))
	require.Equal(t, 1, snap.TotalItems)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	store := NewStore(DefaultStorageKey, newFakeStorage())

	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				store.AddToCart(ctx, soda(1))
			}
		}()
	}
	wg.Wait()

	items := store.Items()
	require.Len(t, items, 1)
	require.Equal(t, workers*perWorker, items[0].Quantity)
}
