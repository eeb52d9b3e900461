package cart

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	defaultEvictionInterval = time.Minute
	defaultIdleTTL          = 30 * time.Minute
)

// EvictionOptions задаёт параметры EvictionWorker.
type EvictionOptions struct {
	Logger   *log.Entry
	Interval time.Duration
	IdleTTL  time.Duration
	Now      func() time.Time
}

// EvictionOption настраивает EvictionWorker.
type EvictionOption func(*EvictionOptions)

// WithEvictionLogger задаёт logger воркера.
func WithEvictionLogger(logger *log.Entry) EvictionOption {
	return func(opts *EvictionOptions) {
		opts.Logger = logger
	}
}

// WithEvictionInterval задаёт интервал между проходами.
func WithEvictionInterval(interval time.Duration) EvictionOption {
	return func(opts *EvictionOptions) {
		opts.Interval = interval
	}
}

// WithIdleTTL задаёт время простоя, после которого корзина выгружается.
func WithIdleTTL(ttl time.Duration) EvictionOption {
	return func(opts *EvictionOptions) {
		opts.IdleTTL = ttl
	}
}

// WithEvictionClock подменяет источник времени.
func WithEvictionClock(now func() time.Time) EvictionOption {
	return func(opts *EvictionOptions) {
		opts.Now = now
	}
}

// EvictionWorker периодически выгружает из реестра простаивающие корзины.
// Снимки остаются в хранилище и читаются заново при следующем обращении.
type EvictionWorker struct {
	registry *Registry
	logger   *log.Entry
	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

// NewEvictionWorker создаёт воркер выгрузки корзин.
func NewEvictionWorker(registry *Registry, options ...EvictionOption) *EvictionWorker {
	opts := EvictionOptions{
		Interval: defaultEvictionInterval,
		IdleTTL:  defaultIdleTTL,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "cart-eviction-worker")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultEvictionInterval
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &EvictionWorker{
		registry: registry,
		logger:   logger,
		interval: opts.Interval,
		idleTTL:  opts.IdleTTL,
		now:      opts.Now,
	}
}

// Run выгружает простаивающие корзины каждые interval до отмены ctx.
func (w *EvictionWorker) Run(ctx context.Context) {
	if w.registry == nil {
		w.logger.Warn("cart eviction worker is disabled: registry is nil")
		return
	}

	w.EvictOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.EvictOnce()
		}
	}
}

// EvictOnce выполняет один проход и возвращает число выгруженных корзин.
func (w *EvictionWorker) EvictOnce() int {
	evicted := w.registry.EvictIdle(w.now().Add(-w.idleTTL))
	if evicted > 0 {
		w.logger.WithFields(log.Fields{
			"evicted": evicted,
			"active":  w.registry.Len(),
		}).Info("idle carts evicted")
	}
	return evicted
}
