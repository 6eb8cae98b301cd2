package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestFSStore(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create fs store: %v", err)
	}
	runStoreTests(t, store)
}

func TestInstrumentedStore(t *testing.T) {
	runStoreTests(t, NewInstrumentedStore(NewMemoryStore()))
}

func runStoreTests(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("basic CRUD", func(t *testing.T) {
		testBasicCRUD(t, ctx, store)
	})
	t.Run("overwrite", func(t *testing.T) {
		testOverwrite(t, ctx, store)
	})
	t.Run("list operations", func(t *testing.T) {
		testListOperations(t, ctx, store)
	})
	t.Run("missing keys", func(t *testing.T) {
		testMissingKeys(t, ctx, store)
	})
}

func testBasicCRUD(t *testing.T, ctx context.Context, store Store) {
	key := "datasets/basic.csv"
	content := []byte("1;2\n3;4\n")

	info, err := store.Put(ctx, key, bytes.NewReader(content), int64(len(content)), &PutOptions{ContentType: "text/csv"})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size mismatch: got %d, want %d", info.Size, len(content))
	}
	if info.ETag == "" {
		t.Error("ETag should not be empty")
	}

	head, err := store.Head(ctx, key)
	if err != nil {
		t.Fatalf("Head failed: %v", err)
	}
	if head.Size != info.Size {
		t.Errorf("head size = %d, want %d", head.Size, info.Size)
	}

	reader, getInfo, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("content = %q, want %q", data, content)
	}
	if getInfo.Key != key {
		t.Errorf("key = %q, want %q", getInfo.Key, key)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Head(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head after delete: got %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("second Delete should be a no-op, got %v", err)
	}
}

func testOverwrite(t *testing.T, ctx context.Context, store Store) {
	key := "reports/overwrite.json"
	if _, err := store.Put(ctx, key, bytes.NewReader([]byte("first")), 5, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, key, bytes.NewReader([]byte("second!")), 7, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reader, info, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()
	data, _ := io.ReadAll(reader)
	if string(data) != "second!" {
		t.Errorf("content = %q, want %q", data, "second!")
	}
	if info.Size != 7 {
		t.Errorf("size = %d, want 7", info.Size)
	}
}

func testListOperations(t *testing.T, ctx context.Context, store Store) {
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("list/item-%d.csv", i)
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), 1, nil); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}
	if _, err := store.Put(ctx, "other/item.csv", bytes.NewReader([]byte("x")), 1, nil); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, err := store.List(ctx, &ListOptions{Prefix: "list/"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(result.Objects) != 5 {
		t.Fatalf("got %d objects, want 5", len(result.Objects))
	}
	for i, obj := range result.Objects {
		want := fmt.Sprintf("list/item-%d.csv", i)
		if obj.Key != want {
			t.Errorf("object %d key = %q, want %q", i, obj.Key, want)
		}
	}

	page, err := store.List(ctx, &ListOptions{Prefix: "list/", MaxKeys: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !page.IsTruncated || len(page.Objects) != 2 {
		t.Fatalf("expected truncated page of 2, got %d truncated=%v", len(page.Objects), page.IsTruncated)
	}
	if page.NextMarker != "list/item-1.csv" {
		t.Errorf("next marker = %q", page.NextMarker)
	}

	rest, err := store.List(ctx, &ListOptions{Prefix: "list/", Marker: page.NextMarker})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rest.Objects) != 3 || rest.IsTruncated {
		t.Errorf("expected final page of 3, got %d truncated=%v", len(rest.Objects), rest.IsTruncated)
	}
}

func testMissingKeys(t *testing.T, ctx context.Context, store Store) {
	if _, _, err := store.Get(ctx, "does/not/exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: got %v, want ErrNotFound", err)
	}
	if _, err := store.Head(ctx, "does/not/exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head: got %v, want ErrNotFound", err)
	}
	if _, err := store.Put(ctx, "", bytes.NewReader(nil), 0, nil); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Put empty key: got %v, want ErrInvalidKey", err)
	}
}

func TestFSStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"../outside.csv", "a/../../outside.csv", "/etc/passwd"} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), 1, nil); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Put(%q): got %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestFSStoreReadsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.csv")
	if err := os.WriteFile(path, []byte("0;0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// An unrooted store resolves keys as plain paths.
	store, err := NewFSStore("")
	if err != nil {
		t.Fatal(err)
	}
	reader, info, err := store.Get(context.Background(), path)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer reader.Close()
	if info.Size != 4 {
		t.Errorf("size = %d, want 4", info.Size)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default fs", cfg: Config{RootPath: t.TempDir()}},
		{name: "memory", cfg: Config{Type: "memory"}},
		{name: "s3 without bucket", cfg: Config{Type: "s3", Endpoint: "localhost:9000"}, wantErr: true},
		{name: "unknown", cfg: Config{Type: "gcs"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if _, ok := store.(*InstrumentedStore); !ok {
				t.Errorf("store is %T, want *InstrumentedStore", store)
			}
		})
	}
}
