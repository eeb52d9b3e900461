package cart

import (
	"encoding/json"
	"fmt"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// Encode сериализует позиции корзины в JSON-массив в порядке добавления.
// Цена кодируется десятичной строкой, чтобы не терять точность.
func Encode(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return data, nil
}

// Decode восстанавливает позиции из снимка. Снимок, нарушающий
// инварианты корзины (пустой id, дубликаты, quantity < 1), считается повреждённым.
func Decode(data []byte) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCartSnapshotCorrupted, err)
	}

	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: item %d has empty id", domain.ErrCartSnapshotCorrupted, i)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: item %q has quantity %d", domain.ErrCartSnapshotCorrupted, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", domain.ErrCartSnapshotCorrupted, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}
