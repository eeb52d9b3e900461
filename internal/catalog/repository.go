// Package catalog — read model каталога витрины: товары меню/магазина и повара.
// Заполняется из YAML-сида и обновляется событиями из Kafka.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// Repository — доступ к каталогу только на чтение.
type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (domain.Product, error)
	ListChefs(ctx context.Context) ([]domain.Chef, error)
}

// MemoryRepository хранит каталог в памяти.
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	slugs    map[string]string
	chefs    []domain.Chef
}

// NewMemoryRepository создаёт каталог с начальными данными.
func NewMemoryRepository(products []domain.Product, chefs []domain.Chef) *MemoryRepository {
	r := &MemoryRepository{
		products: make(map[string]domain.Product, len(products)),
		slugs:    make(map[string]string, len(products)),
		chefs:    append([]domain.Chef(nil), chefs...),
	}
	for _, p := range products {
		r.upsertLocked(p)
	}
	return r
}

// ListProducts возвращает товары, отсортированные по имени.
func (r *MemoryRepository) ListProducts(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// GetProduct ищет товар по ID.
func (r *MemoryRepository) GetProduct(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[strings.TrimSpace(id)]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

// GetProductBySlug ищет товар по slug страницы товара.
func (r *MemoryRepository) GetProductBySlug(ctx context.Context, slug string) (domain.Product, error) {
	r.mu.RLock()
	id, ok := r.slugs[strings.TrimSpace(slug)]
	r.mu.RUnlock()
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return r.GetProduct(ctx, id)
}

// ListChefs возвращает поваров в порядке сида.
func (r *MemoryRepository) ListChefs(_ context.Context) ([]domain.Chef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Chef(nil), r.chefs...), nil
}

// Upsert добавляет или заменяет товар.
func (r *MemoryRepository) Upsert(p domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(p)
}

// Delete удаляет товар; отсутствие товара не ошибка.
func (r *MemoryRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.products[id]; ok {
		delete(r.slugs, p.Slug)
		delete(r.products, id)
	}
}

func (r *MemoryRepository) upsertLocked(p domain.Product) {
	if old, ok := r.products[p.ID]; ok && old.Slug != p.Slug {
		delete(r.slugs, old.Slug)
	}
	r.products[p.ID] = cloneProduct(p)
	if p.Slug != "" {
		r.slugs[p.Slug] = p.ID
	}
}

func cloneProduct(p domain.Product) domain.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

var _ Repository = (*MemoryRepository)(nil)
