package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/metrics"
)

const defaultKeyTTL = 24 * time.Hour

// Исходы idempotent-запроса для метрик.
const (
	OutcomeExecuted   = "executed"
	OutcomeReplayed   = "replayed"
	OutcomeConflict   = "conflict"
	OutcomeInProgress = "in_progress"
)

// ReplayedError — сохранённая ошибка первого выполнения запроса.
type ReplayedError struct {
	StatusCode int
	Message    string
}

func (e *ReplayedError) Error() string {
	return e.Message
}

// Result — ответ, выданный Guard.
type Result struct {
	Body     []byte
	Replayed bool
}

// GuardOptions задаёт параметры Guard.
type GuardOptions struct {
	Logger  *log.Entry
	TTL     time.Duration
	Metrics *metrics.IdempotencyMetrics
	Now     func() time.Time
}

// GuardOption настраивает Guard.
type GuardOption func(*GuardOptions)

// WithGuardLogger задаёт logger.
func WithGuardLogger(logger *log.Entry) GuardOption {
	return func(opts *GuardOptions) {
		opts.Logger = logger
	}
}

// WithTTL задаёт время жизни ключа.
func WithTTL(ttl time.Duration) GuardOption {
	return func(opts *GuardOptions) {
		opts.TTL = ttl
	}
}

// WithGuardMetrics задаёт метрики.
func WithGuardMetrics(m *metrics.IdempotencyMetrics) GuardOption {
	return func(opts *GuardOptions) {
		opts.Metrics = m
	}
}

// WithGuardClock подменяет источник времени.
func WithGuardClock(now func() time.Time) GuardOption {
	return func(opts *GuardOptions) {
		opts.Now = now
	}
}

// Guard выполняет запрос не более одного раза на ключ: повтор с тем же
// телом получает сохранённый ответ, с другим телом — ErrIdempotencyHashMismatch.
type Guard struct {
	repo    domain.IdempotencyRepository
	ttl     time.Duration
	metrics *metrics.IdempotencyMetrics
	logger  *log.Entry
	now     func() time.Time
}

// NewGuard создаёт Guard поверх репозитория ключей.
func NewGuard(repo domain.IdempotencyRepository, options ...GuardOption) *Guard {
	opts := GuardOptions{TTL: defaultKeyTTL}
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "idempotency-guard")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultKeyTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Guard{
		repo:    repo,
		ttl:     opts.TTL,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		now:     opts.Now,
	}
}

// RequestHash возвращает sha256 от частей запроса, разделённых нулевым байтом.
func RequestHash(parts ...[]byte) string {
	h := sha256.New()
	for i, part := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Do выполняет exec под ключом key. codeOf переводит ошибку exec в код,
// который сохраняется и отдаётся при повторе в виде ReplayedError.
func (g *Guard) Do(key, requestHash string, exec func() ([]byte, error), codeOf func(error) int) (Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Result{}, domain.ErrIdempotencyKeyRequired
	}

	record, err := g.repo.CreateProcessing(key, requestHash, g.now().UTC().Add(g.ttl))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		g.metrics.RecordRequest(OutcomeConflict)
		return Result{}, err
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		return g.replay(record)
	default:
		return Result{}, fmt.Errorf("reserve idempotency key: %w", err)
	}

	body, execErr := exec()
	if execErr != nil {
		code := codeOf(execErr)
		if markErr := g.repo.MarkFailed(key, []byte(execErr.Error()), code); markErr != nil {
			g.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotent failure")
		}
		g.metrics.RecordRequest(OutcomeExecuted)
		return Result{}, execErr
	}

	if markErr := g.repo.MarkDone(key, body, 0); markErr != nil {
		g.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotent response")
	}
	g.metrics.RecordRequest(OutcomeExecuted)
	return Result{Body: body}, nil
}

func (g *Guard) replay(record domain.IdempotencyRecord) (Result, error) {
	switch record.Status {
	case domain.IdempotencyStatusDone:
		g.metrics.RecordRequest(OutcomeReplayed)
		return Result{Body: record.ResponseBody, Replayed: true}, nil
	case domain.IdempotencyStatusFailed:
		g.metrics.RecordRequest(OutcomeReplayed)
		return Result{Replayed: true}, &ReplayedError{
			StatusCode: record.StatusCode,
			Message:    string(record.ResponseBody),
		}
	default:
		g.metrics.RecordRequest(OutcomeInProgress)
		return Result{}, domain.ErrIdempotencyRequestInProgress
	}
}
