package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики операций с корзинами.
type CartMetrics struct {
	// Мутации корзины по типу операции
	mutations *prometheus.CounterVec

	// Персистентность снимков
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
	hydrations      *prometheus.CounterVec

	// Состояние корзин
	activeCarts prometheus.Gauge
	evictions   prometheus.Counter
	cartValue   prometheus.Histogram

	cartEvents prometheus.Counter
}

// NewCartMetrics создаёт метрики корзины в DefaultRegisterer.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в указанном registerer (удобно для тестов).
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodtuck_cart_mutations_total",
			Help: "Total number of effective cart mutations grouped by operation",
		}, []string{"op"}),
		persistFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodtuck_cart_persist_failures_total",
			Help: "Total number of failed cart snapshot writes",
		}),
		persistDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "foodtuck_cart_persist_duration_seconds",
			Help:    "Duration of cart snapshot writes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		hydrations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodtuck_cart_hydrations_total",
			Help: "Total number of cart rehydrations grouped by result",
		}, []string{"result"}),
		activeCarts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "foodtuck_active_carts",
			Help: "Number of carts currently held in memory",
		}),
		evictions: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodtuck_cart_evictions_total",
			Help: "Total number of idle carts unloaded from memory",
		}),
		cartValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "foodtuck_cart_value_usd",
			Help:    "Cart total price observed after each mutation",
			Buckets: []float64{0, 5, 10, 20, 50, 100, 200, 500},
		}),
		cartEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodtuck_cart_events_total",
			Help: "Total number of cart events handed to the event sink",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMutation увеличивает счётчик мутаций для операции op.
func (m *CartMetrics) RecordMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(op).Inc()
}

// RecordPersistFailure увеличивает счётчик неудачных записей снимка.
func (m *CartMetrics) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// RecordPersistDuration записывает время записи снимка.
func (m *CartMetrics) RecordPersistDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(duration.Seconds())
}

// RecordHydrate фиксирует результат восстановления корзины: restored, empty, corrupted, unavailable.
func (m *CartMetrics) RecordHydrate(result string) {
	if m == nil {
		return
	}
	m.hydrations.WithLabelValues(result).Inc()
}

// RecordCartOpened увеличивает количество корзин в памяти.
func (m *CartMetrics) RecordCartOpened() {
	if m == nil {
		return
	}
	m.activeCarts.Inc()
}

// RecordCartClosed уменьшает количество корзин в памяти.
func (m *CartMetrics) RecordCartClosed() {
	if m == nil {
		return
	}
	m.activeCarts.Dec()
}

// RecordCartEvicted учитывает выгрузку простаивающей корзины.
func (m *CartMetrics) RecordCartEvicted() {
	if m == nil {
		return
	}
	m.evictions.Inc()
	m.activeCarts.Dec()
}

// RecordCartValue записывает сумму корзины после мутации.
func (m *CartMetrics) RecordCartValue(value float64) {
	if m == nil {
		return
	}
	m.cartValue.Observe(value)
}

// RecordCartEvent увеличивает счётчик событий корзины.
func (m *CartMetrics) RecordCartEvent() {
	if m == nil {
		return
	}
	m.cartEvents.Inc()
}
