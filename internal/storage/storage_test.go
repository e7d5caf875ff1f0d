package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
)

func newMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func exerciseTagLifecycle(t *testing.T, store TagStore) {
	ctx := context.Background()

	if err := store.SetTag(ctx, "x", "hello"); err != nil {
		t.Fatalf("set tag: %v", err)
	}
	got, err := store.GetTag(ctx, "x")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if got.Contents != "hello" {
		t.Fatalf("expected hello, got %q", got.Contents)
	}

	if err := store.SetTag(ctx, "x", "world"); err != nil {
		t.Fatalf("overwrite tag: %v", err)
	}
	got, err = store.GetTag(ctx, "x")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}
	if got.Contents != "world" {
		t.Fatalf("expected world, got %q", got.Contents)
	}

	if err := store.DeleteTag(ctx, "x"); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	if _, err := store.GetTag(ctx, "x"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound after delete, got %v", err)
	}
	if err := store.DeleteTag(ctx, "x"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound deleting twice, got %v", err)
	}
}

func TestTagLifecycle(t *testing.T) {
	exerciseTagLifecycle(t, newMemoryStore(t))
}

func TestTagNamesAreCaseSensitive(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	if err := store.SetTag(ctx, "Rules", "be nice"); err != nil {
		t.Fatalf("set tag: %v", err)
	}
	if _, err := store.GetTag(ctx, "rules"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected lowercase lookup to miss, got %v", err)
	}
}

func TestMigrateTwice(t *testing.T) {
	store := newMemoryStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestConcurrentSetTag(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.SetTag(ctx, "race", fmt.Sprintf("v%d", i))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent set: %v", err)
		}
	}
	if _, err := store.GetTag(ctx, "race"); err != nil {
		t.Fatalf("get after concurrent set: %v", err)
	}
}

func TestOpenSQLite(t *testing.T) {
	store, err := Open(context.Background(), "", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*Store); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}

func TestPostgresTagLifecycle(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	store, err := Open(context.Background(), url, "")
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer store.Close()
	exerciseTagLifecycle(t, store)
}
