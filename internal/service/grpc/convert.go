package grpcsvc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/foodtuck/internal/cart"
	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	foodtuckv1 "github.com/vladislavdragonenkov/foodtuck/proto/foodtuck/v1"
)

func toProtoCart(snapshot cart.Snapshot) *foodtuckv1.Cart {
	items := make([]*foodtuckv1.CartItem, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		items = append(items, &foodtuckv1.CartItem{
			Id:       item.ID,
			Name:     item.Name,
			Price:    item.Price.String(),
			Image:    item.Image,
			Quantity: int32(item.Quantity), //nolint:gosec // bounded by cart.MaxTotalItems.
			Subtotal: item.Subtotal().String(),
		})
	}
	return &foodtuckv1.Cart{
		Items:      items,
		TotalItems: int32(snapshot.TotalItems), //nolint:gosec // see above.
		TotalPrice: snapshot.TotalPrice.String(),
		Persisted:  snapshot.Persisted,
	}
}

// toDomainItem проверяет позицию из запроса. Quantity < 1 допускается:
// такую позицию корзина проигнорирует.
func toDomainItem(item *foodtuckv1.CartItem) (domain.CartItem, error) {
	if item == nil {
		return domain.CartItem{}, fmt.Errorf("item is required")
	}
	id := strings.TrimSpace(item.Id)
	if id == "" {
		return domain.CartItem{}, fmt.Errorf("item.id is required")
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(item.Price); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("item.price %q is not a decimal", item.Price)
		}
		price = parsed
	}
	if price.IsNegative() {
		return domain.CartItem{}, fmt.Errorf("item.price must be >= 0")
	}

	return domain.CartItem{
		ID:       id,
		Name:     item.Name,
		Price:    price,
		Image:    item.Image,
		Quantity: int(item.Quantity),
	}, nil
}

func toProtoProduct(p domain.Product) *foodtuckv1.Product {
	return &foodtuckv1.Product{
		Id:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		Category:    p.CategoryName(),
		Rating:      p.Rating,
		Images:      append([]string(nil), p.Images...),
	}
}

func toProtoChef(c domain.Chef) *foodtuckv1.Chef {
	return &foodtuckv1.Chef{
		Id:          c.ID,
		Name:        c.Name,
		Position:    c.Position,
		Experience:  int32(c.Experience), //nolint:gosec // years of experience.
		Specialty:   c.Specialty,
		Image:       c.Image,
		Description: c.Description,
		Available:   c.Available,
	}
}
