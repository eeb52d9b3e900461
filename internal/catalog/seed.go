package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// Seed — содержимое YAML-файла каталога.
type Seed struct {
	Products []ProductRecord `yaml:"products"`
	Chefs    []ChefRecord    `yaml:"chefs"`
}

// ProductRecord — товар в сиде; цена задаётся строкой, чтобы не терять точность.
type ProductRecord struct {
	ID          string   `yaml:"id" json:"id"`
	Slug        string   `yaml:"slug" json:"slug"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Category    string   `yaml:"category" json:"category,omitempty"`
	Price       string   `yaml:"price" json:"price"`
	Rating      float64  `yaml:"rating" json:"rating,omitempty"`
	Images      []string `yaml:"images" json:"images,omitempty"`
}

// ChefRecord — повар в сиде.
type ChefRecord struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Position    string `yaml:"position"`
	Experience  int    `yaml:"experience"`
	Specialty   string `yaml:"specialty"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
}

// LoadSeed читает YAML-файл каталога.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read catalog seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed разбирает YAML каталога.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse catalog seed: %w", err)
	}
	return seed, nil
}

// Build превращает сид в доменные записи.
func (s Seed) Build() ([]domain.Product, []domain.Chef, error) {
	products := make([]domain.Product, 0, len(s.Products))
	for _, rec := range s.Products {
		p, err := rec.ToProduct()
		if err != nil {
			return nil, nil, err
		}
		products = append(products, p)
	}

	chefs := make([]domain.Chef, 0, len(s.Chefs))
	for _, rec := range s.Chefs {
		chefs = append(chefs, domain.Chef{
			ID:          rec.ID,
			Name:        rec.Name,
			Position:    rec.Position,
			Experience:  rec.Experience,
			Specialty:   rec.Specialty,
			Image:       rec.Image,
			Description: rec.Description,
			Available:   rec.Available,
		})
	}
	return products, chefs, nil
}

// ToProduct валидирует запись и переводит её в domain.Product.
// Пустая цена трактуется как 0.
func (rec ProductRecord) ToProduct() (domain.Product, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return domain.Product{}, fmt.Errorf("catalog product %q: id is required", rec.Name)
	}

	price := decimal.Zero
	if raw := strings.TrimSpace(rec.Price); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("catalog product %s: parse price %q: %w", id, rec.Price, err)
		}
		if parsed.IsNegative() {
			return domain.Product{}, fmt.Errorf("catalog product %s: negative price %s", id, parsed)
		}
		price = parsed
	}

	return domain.Product{
		ID:          id,
		Slug:        strings.TrimSpace(rec.Slug),
		Name:        rec.Name,
		Description: rec.Description,
		Category:    rec.Category,
		Price:       price,
		Rating:      rec.Rating,
		Images:      append([]string(nil), rec.Images...),
	}, nil
}

// NewMemoryRepositoryFromFile загружает сид и создаёт каталог.
func NewMemoryRepositoryFromFile(path string) (*MemoryRepository, error) {
	seed, err := LoadSeed(path)
	if err != nil {
		return nil, err
	}
	products, chefs, err := seed.Build()
	if err != nil {
		return nil, err
	}
	return NewMemoryRepository(products, chefs), nil
}
