package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// Topics для Kafka
const (
	TopicCartEvents      = "foodtuck.cart.events"
	TopicCatalogUpdates  = "foodtuck.catalog.updates"
	TopicDeadLetterQueue = "foodtuck.dlq"
)

// Kafka headers
const (
	HeaderRetryCount = "x-retry-count"
	HeaderEventType  = "x-event-type"
)

// Envelope — формат сообщения, которое outbox публикует в Kafka.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope оборачивает outbox-сообщение.
func NewEnvelope(msg domain.OutboxMessage, publishedAt time.Time) Envelope {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		PublishedAt:   publishedAt.UTC(),
	}
}

// ParseEnvelope разбирает Envelope из сообщения.
func ParseEnvelope(message *sarama.ConsumerMessage) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(message.Value, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}
	return env, nil
}

// ParseCartEvent достаёт событие корзины из Envelope.
func ParseCartEvent(message *sarama.ConsumerMessage) (domain.CartEvent, error) {
	env, err := ParseEnvelope(message)
	if err != nil {
		return domain.CartEvent{}, err
	}
	var event domain.CartEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return domain.CartEvent{}, fmt.Errorf("failed to unmarshal cart event: %w", err)
	}
	return event, nil
}

// DeadLetter — сообщение, которое не удалось обработать.
type DeadLetter struct {
	OriginalTopic     string    `json:"original_topic"`
	OriginalPartition int32     `json:"original_partition"`
	OriginalOffset    int64     `json:"original_offset"`
	OriginalKey       string    `json:"original_key"`
	OriginalValue     string    `json:"original_value"`
	ErrorMessage      string    `json:"error_message"`
	RetryCount        int       `json:"retry_count"`
	FailedAt          time.Time `json:"failed_at"`
}
