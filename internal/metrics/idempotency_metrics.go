package metrics

import "github.com/prometheus/client_golang/prometheus"

// IdempotencyMetrics описывает работу с idempotency-ключами.
type IdempotencyMetrics struct {
	requests        *prometheus.CounterVec
	cleanupRuns     *prometheus.CounterVec
	cleanupDeleted  prometheus.Counter
	lastCleanupSize prometheus.Gauge
}

// NewIdempotencyMetrics создаёт метрики в DefaultRegisterer.
func NewIdempotencyMetrics() *IdempotencyMetrics {
	return NewIdempotencyMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewIdempotencyMetricsWithRegisterer создаёт метрики в указанном registerer.
func NewIdempotencyMetricsWithRegisterer(registerer prometheus.Registerer) *IdempotencyMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &IdempotencyMetrics{
		requests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodtuck_idempotency_requests_total",
			Help: "Idempotent requests grouped by outcome (executed, replayed, conflict, in_progress).",
		}, []string{"outcome"}),
		cleanupRuns: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "foodtuck_idempotency_cleanup_runs_total",
			Help: "Total number of idempotency cleanup runs grouped by result.",
		}, []string{"result"}),
		cleanupDeleted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "foodtuck_idempotency_cleanup_deleted_total",
			Help: "Total number of deleted expired idempotency records.",
		}),
		lastCleanupSize: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "foodtuck_idempotency_cleanup_last_deleted",
			Help: "Number of deleted records during the last cleanup run.",
		}),
	}
}

// RecordRequest фиксирует исход idempotent-запроса.
func (m *IdempotencyMetrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// RecordCleanupRun фиксирует результат cleanup-цикла (ok, error).
func (m *IdempotencyMetrics) RecordCleanupRun(result string, deleted int) {
	if m == nil {
		return
	}
	m.cleanupRuns.WithLabelValues(result).Inc()
	if result == "ok" {
		m.lastCleanupSize.Set(float64(deleted))
	}
}

// AddCleanupDeleted увеличивает счётчик удалённых записей.
func (m *IdempotencyMetrics) AddCleanupDeleted(deleted int) {
	if m == nil || deleted <= 0 {
		return
	}
	m.cleanupDeleted.Add(float64(deleted))
}
