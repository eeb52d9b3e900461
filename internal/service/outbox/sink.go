package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// AggregateCart — тип агрегата для событий корзины.
const AggregateCart = "cart"

// CartEventSink ставит события корзины в outbox; Worker публикует их позже.
type CartEventSink struct {
	repo domain.OutboxRepository
}

// NewCartEventSink создаёт sink поверх outbox-репозитория.
func NewCartEventSink(repo domain.OutboxRepository) *CartEventSink {
	return &CartEventSink{repo: repo}
}

// Record сериализует событие и сохраняет его со статусом pending.
func (s *CartEventSink) Record(_ context.Context, event domain.CartEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}

	_, err = s.repo.Enqueue(domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: AggregateCart,
		AggregateID:   event.CartKey,
		EventType:     string(event.Type),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("enqueue cart event: %w", err)
	}
	return nil
}

var _ domain.CartEventSink = (*CartEventSink)(nil)
