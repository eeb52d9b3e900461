package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem представляет одну позицию корзины (line item).
type CartItem struct {
	// ID — стабильный идентификатор товара, уникален в пределах корзины.
	ID string `json:"id"`
	// Name фиксируется в момент добавления и не синхронизируется с каталогом.
	Name string `json:"name"`
	// Price — цена за единицу на момент добавления.
	Price decimal.Decimal `json:"price"`
	// Image — URL изображения на момент добавления.
	Image string `json:"image"`
	// Quantity всегда >= 1: позиция с нулевым количеством удаляется.
	Quantity int `json:"quantity"`
}

// Subtotal возвращает price × quantity для позиции.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartEventType описывает тип изменения корзины.
type CartEventType string

const (
	// CartEventItemAdded — позиция добавлена или её количество увеличено через addToCart.
	CartEventItemAdded CartEventType = "cart.item_added"
	// CartEventItemRemoved — позиция удалена из корзины.
	CartEventItemRemoved CartEventType = "cart.item_removed"
	// CartEventQuantityChanged — количество изменено на ±1.
	CartEventQuantityChanged CartEventType = "cart.quantity_changed"
	// CartEventCleared — корзина очищена.
	CartEventCleared CartEventType = "cart.cleared"
)

// CartEvent фиксирует результат мутации корзины для внешних потребителей.
type CartEvent struct {
	Type       CartEventType   `json:"type"`
	CartKey    string          `json:"cart_key"`
	ItemID     string          `json:"item_id,omitempty"`
	Quantity   int             `json:"quantity"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}
