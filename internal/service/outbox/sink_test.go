package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/memory"
)

func TestCartEventSink_Record(t *testing.T) {
	repo := memory.NewOutboxRepository()
	sink := NewCartEventSink(repo)

	event := domain.CartEvent{
		Type:       domain.CartEventItemAdded,
		CartKey:    "foodtuck-cart:s-1",
		ItemID:     "pizza",
		Quantity:   2,
		TotalItems: 2,
		TotalPrice: decimal.RequireFromString("19"),
		OccurredAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, sink.Record(context.Background(), event))

	pending, err := repo.PullPending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	msg := pending[0]
	require.NotEmpty(t, msg.ID)
	require.Equal(t, AggregateCart, msg.AggregateType)
	require.Equal(t, "foodtuck-cart:s-1", msg.AggregateID)
	require.Equal(t, "cart.item_added", msg.EventType)

	var decoded domain.CartEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	require.Equal(t, "pizza", decoded.ItemID)
	require.True(t, decoded.TotalPrice.Equal(event.TotalPrice))
}

type failingOutboxRepo struct {
	stubOutboxRepo
}

func (failingOutboxRepo) Enqueue(domain.OutboxMessage) (domain.OutboxMessage, error) {
	return domain.OutboxMessage{}, errors.New("disk full")
}

func TestCartEventSink_EnqueueError(t *testing.T) {
	sink := NewCartEventSink(&failingOutboxRepo{})
	err := sink.Record(context.Background(), domain.CartEvent{Type: domain.CartEventCleared})
	require.ErrorContains(t, err, "disk full")
}
