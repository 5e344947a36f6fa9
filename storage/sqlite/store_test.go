package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/sitebook/storage"
)

func TestStoreSetGetRemove(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "sitebook.sqlite"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if _, err := store.GetItem(ctx, "doc"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.SetItem(ctx, "doc", []byte("v1")); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if err := store.SetItem(ctx, "doc", []byte("v2")); err != nil {
		t.Fatalf("overwrite item: %v", err)
	}
	got, err := store.GetItem(ctx, "doc")
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected v2, got %q", got)
	}
	if err := store.RemoveItem(ctx, "doc"); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if _, err := store.GetItem(ctx, "doc"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after remove, got %v", err)
	}
}

func TestStoreRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
