package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

func TestCartStorage_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	storage := NewCartStorage()

	if _, err := storage.Load(ctx, "foodtuck-cart"); !errors.Is(err, domain.ErrCartSnapshotNotFound) {
		t.Fatalf("expected ErrCartSnapshotNotFound, got %v", err)
	}

	snapshot := []byte(`[{"id":"p1","quantity":1}]`)
	if err := storage.Save(ctx, "foodtuck-cart", snapshot); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	snapshot[0] = 'X'

	got, err := storage.Load(ctx, "foodtuck-cart")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(got) != `[{"id":"p1","quantity":1}]` {
		t.Fatalf("unexpected snapshot %s", got)
	}

	if err := storage.Delete(ctx, "foodtuck-cart"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := storage.Delete(ctx, "foodtuck-cart"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if storage.Len() != 0 {
		t.Fatalf("expected no slots, got %d", storage.Len())
	}
}

func TestCartStorage_RequiresKey(t *testing.T) {
	storage := NewCartStorage()

	if err := storage.Save(context.Background(), " ", []byte("[]")); !errors.Is(err, domain.ErrCartKeyRequired) {
		t.Fatalf("expected ErrCartKeyRequired, got %v", err)
	}
	if _, err := storage.Load(context.Background(), ""); !errors.Is(err, domain.ErrCartKeyRequired) {
		t.Fatalf("expected ErrCartKeyRequired, got %v", err)
	}
}
