package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/agentbook/store"
)

func writeTestFile(t *testing.T, root, key, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestFileStore_List_EmptyDir(t *testing.T) {
	s := store.NewFileStore(t.TempDir())

	keys, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() returned %d keys, want 0", len(keys))
	}
}

func TestFileStore_List_MissingRoot(t *testing.T) {
	s := store.NewFileStore(filepath.Join(t.TempDir(), "nonexistent"))

	keys, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() returned %d keys, want 0", len(keys))
	}
}

func TestFileStore_List_SkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, store.KeyMemory, "{}")
	writeTestFile(t, root, ".hidden", "secret")

	s := store.NewFileStore(root)
	keys, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 1 || keys[0] != store.KeyMemory {
		t.Errorf("List() = %v, want [%s]", keys, store.KeyMemory)
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.SaveOne(ctx, s, store.KeyPersonality, []byte("name: Agent")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}

	data, err := store.LoadOne(ctx, s, store.KeyPersonality)
	if err != nil {
		t.Fatalf("LoadOne() error = %v", err)
	}
	if string(data) != "name: Agent" {
		t.Errorf("LoadOne() = %q, want %q", data, "name: Agent")
	}
}

func TestFileStore_Save_Overwrites(t *testing.T) {
	s := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.SaveOne(ctx, s, store.KeyMemory, []byte("v1")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}
	if err := store.SaveOne(ctx, s, store.KeyMemory, []byte("v2")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}

	data, err := store.LoadOne(ctx, s, store.KeyMemory)
	if err != nil {
		t.Fatalf("LoadOne() error = %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("LoadOne() = %q, want %q", data, "v2")
	}
}

func TestFileStore_Save_LeavesNoTempFiles(t *testing.T) {
	root := t.TempDir()
	s := store.NewFileStore(root)
	if err := store.SaveOne(context.Background(), s, store.KeyHistory, []byte("[]")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("root has %d entries after save, want 1", len(entries))
	}
}

func TestFileStore_Load_MissingKey(t *testing.T) {
	s := store.NewFileStore(t.TempDir())

	_, err := s.Load(context.Background(), "absent.json")
	if !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("Load() error = %v, want ErrKeyNotFound", err)
	}
}

func TestFileStore_LoadOne_MissingKeyIsNil(t *testing.T) {
	s := store.NewFileStore(t.TempDir())

	data, err := store.LoadOne(context.Background(), s, "absent.json")
	if err != nil {
		t.Fatalf("LoadOne() error = %v, want nil for missing key", err)
	}
	if data != nil {
		t.Errorf("LoadOne() = %q, want nil", data)
	}
}

func TestFileStore_Delete(t *testing.T) {
	s := store.NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.SaveOne(ctx, s, "nested/doc.json", []byte("{}")); err != nil {
		t.Fatalf("SaveOne() error = %v", err)
	}
	if err := s.Delete(ctx, "nested/doc.json"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	keys, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() = %v after delete, want empty", keys)
	}
}

func TestFileStore_Delete_MissingKeyIgnored(t *testing.T) {
	s := store.NewFileStore(t.TempDir())
	if err := s.Delete(context.Background(), "absent.json"); err != nil {
		t.Errorf("Delete() error = %v, want nil for missing key", err)
	}
}
