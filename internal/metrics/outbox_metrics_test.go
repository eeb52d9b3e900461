package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestOutboxMetrics(t *testing.T) {
	metrics := NewOutboxMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordPublish("sent")
	metrics.RecordPublish("sent")
	metrics.RecordPublish("retry_error")

	if got := counterValue(t, metrics.publishAttempts.WithLabelValues("sent")); got != 2 {
		t.Errorf("expected 2 sent attempts, got %v", got)
	}
	if got := counterValue(t, metrics.publishAttempts.WithLabelValues("retry_error")); got != 1 {
		t.Errorf("expected 1 retry error, got %v", got)
	}

	metrics.SetBacklog(4, 3*time.Second)
	if got := gaugeValue(t, metrics.pendingRecords); got != 4 {
		t.Errorf("expected 4 pending records, got %v", got)
	}
	if got := gaugeValue(t, metrics.oldestPendingAge); got != 3 {
		t.Errorf("expected oldest age 3s, got %v", got)
	}

	metrics.SetBacklog(0, -time.Second)
	if got := gaugeValue(t, metrics.oldestPendingAge); got != 0 {
		t.Errorf("negative age must be clamped, got %v", got)
	}
}

func TestNilOutboxMetricsIsNoop(t *testing.T) {
	var metrics *OutboxMetrics
	metrics.RecordPublish("sent")
	metrics.SetBacklog(1, time.Second)
}

func gaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()

	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.Gauge.GetValue()
}

func TestIdempotencyMetrics(t *testing.T) {
	metrics := NewIdempotencyMetricsWithRegisterer(prometheus.NewRegistry())

	metrics.RecordRequest("replayed")
	metrics.RecordCleanupRun("ok", 7)
	metrics.RecordCleanupRun("error", 0)
	metrics.AddCleanupDeleted(7)
	metrics.AddCleanupDeleted(-1)

	if got := counterValue(t, metrics.requests.WithLabelValues("replayed")); got != 1 {
		t.Errorf("expected 1 replayed request, got %v", got)
	}
	if got := counterValue(t, metrics.cleanupRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed cleanup run, got %v", got)
	}
	if got := gaugeValue(t, metrics.lastCleanupSize); got != 7 {
		t.Errorf("error run must not reset last cleanup size, got %v", got)
	}
	if got := counterValue(t, metrics.cleanupDeleted); got != 7 {
		t.Errorf("expected 7 deleted, got %v", got)
	}

	var nilMetrics *IdempotencyMetrics
	nilMetrics.RecordRequest("executed")
	nilMetrics.RecordCleanupRun("ok", 1)
	nilMetrics.AddCleanupDeleted(1)
}
