package postgres

import (
	"context"
	"testing"
	"time"
)

func TestMigrator_PostgresLifecycle(t *testing.T) {
	store := openRawPostgresStoreForIntegrationTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := store.MigrateDown(ctx, 100); err != nil {
		t.Fatalf("migrate down reset: %v", err)
	}
	requireMigrationStatus(t, store, 0, 0, 4)

	if err := store.MigrateUp(ctx, 2); err != nil {
		t.Fatalf("migrate up 2: %v", err)
	}
	requireMigrationStatus(t, store, 2, 2, 2)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up all: %v", err)
	}
	requireMigrationStatus(t, store, 4, 4, 0)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("idempotent migrate up: %v", err)
	}
	requireMigrationStatus(t, store, 4, 4, 0)

	if err := store.MigrateDown(ctx, 1); err != nil {
		t.Fatalf("migrate down 1: %v", err)
	}
	requireMigrationStatus(t, store, 3, 3, 1)

	if err := store.MigrateUp(ctx, 0); err != nil {
		t.Fatalf("migrate up restore: %v", err)
	}
}

func requireMigrationStatus(t *testing.T, store *Store, version int64, applied, pending int) {
	t.Helper()

	status, err := store.Status(context.Background())
	if err != nil {
		t.Fatalf("migration status: %v", err)
	}
	if status.Version != version || status.Applied != applied || status.Pending != pending {
		t.Fatalf("unexpected status %+v, want version=%d applied=%d pending=%d", status, version, applied, pending)
	}
}
