package domain

import (
	"context"
	"time"
)

// CartStorage — key-value слот, в котором хранится снимок корзины.
// Реализации не интерпретируют содержимое: это закодированный список позиций.
type CartStorage interface {
	// Load возвращает снимок по ключу или ErrCartSnapshotNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save полностью перезаписывает слот.
	Save(ctx context.Context, key string, snapshot []byte) error
	// Delete удаляет слот; отсутствие слота ошибкой не считается.
	Delete(ctx context.Context, key string) error
}

// CartEventSink получает события об изменениях корзины.
type CartEventSink interface {
	Record(ctx context.Context, event CartEvent) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, statusCode int) error
	MarkFailed(key string, responseBody []byte, statusCode int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// UserRepository хранит учётные записи покупателей.
type UserRepository interface {
	// Create сохраняет пользователя; дубликат email → ErrUserAlreadyExists.
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
