package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/sitebook/storage"
)

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ctx := context.Background()

	if err := store.SetItem(ctx, "doc", []byte("a long first value")); err != nil {
		t.Fatalf("set item: %v", err)
	}
	if err := store.SetItem(ctx, "doc", []byte("short")); err != nil {
		t.Fatalf("overwrite item: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "doc.json"))
	if err != nil {
		t.Fatalf("read item file: %v", err)
	}
	if string(got) != "short" {
		t.Fatalf("expected the file to be truncated, got %q", got)
	}

	if err := store.RemoveItem(ctx, "doc"); err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if _, err := store.GetItem(ctx, "doc"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreRejectsPathKeys(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	for _, key := range []string{"../escape", "a/b", "..", ""} {
		if err := store.SetItem(context.Background(), key, nil); err == nil {
			t.Errorf("expected an error for key %q", key)
		}
	}
}
