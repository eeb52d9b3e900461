package domain

import "github.com/shopspring/decimal"

// Product — запись каталога (меню/магазин), получаемая из контент-репозитория.
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating,omitempty"`
	Images      []string        `json:"images,omitempty"`
}

// CategoryName возвращает категорию или "Uncategorized", если она не задана.
func (p Product) CategoryName() string {
	if p.Category == "" {
		return "Uncategorized"
	}
	return p.Category
}

// PrimaryImage возвращает первое изображение товара или fallback.
func (p Product) PrimaryImage(fallback string) string {
	if len(p.Images) == 0 || p.Images[0] == "" {
		return fallback
	}
	return p.Images[0]
}

// DefaultProductImage подставляется, если у товара нет изображений.
const DefaultProductImage = "/default-image.png"

// ToCartItem фиксирует товар как позицию корзины: name, price и image
// копируются на момент добавления.
func (p Product) ToCartItem(quantity int) CartItem {
	return CartItem{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.PrimaryImage(DefaultProductImage),
		Quantity: quantity,
	}
}

// Chef описывает повара для страницы "Our Chef".
type Chef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Position    string `json:"position,omitempty"`
	Experience  int    `json:"experience,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
	Available   bool   `json:"available"`
}
