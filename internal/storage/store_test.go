package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, cleanup
}

func TestStore_PutAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.Put("greeting", "hello"); err != nil {
		t.Fatalf("failed to put: %v", err)
	}

	value, ok, err := store.Get("greeting")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to be present")
	}
	if value != "hello" {
		t.Errorf("expected value hello, got %s", value)
	}
}

func TestStore_Get_Absent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	value, ok, err := store.Get("non-existent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected absent key to report ok=false")
	}
	if value != "" {
		t.Errorf("expected empty value, got %q", value)
	}
}

func TestStore_PutOverwrites(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	for _, v := range []string{"one", "two", ""} {
		if err := store.Put("k", v); err != nil {
			t.Fatalf("failed to put %q: %v", v, err)
		}
	}

	value, ok, err := store.Get("k")
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !ok {
		t.Error("empty string value should still be present")
	}
	if value != "" {
		t.Errorf("expected empty value, got %q", value)
	}
}

func TestStore_Delete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.Put("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("k"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, ok, _ := store.Get("k"); ok {
		t.Error("expected key to be gone after delete")
	}

	// Deleting an absent key is not an error.
	if err := store.Delete("k"); err != nil {
		t.Errorf("unexpected error deleting absent key: %v", err)
	}
}

func TestStore_Keys(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	for _, k := range []string{"b", "a", "c"} {
		if err := store.Put(k, k); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("failed to list keys: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(keys))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d: expected %s, got %s", i, want[i], keys[i])
		}
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "store-reopen-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	entries := []WatchedEntry{{
		ID:             "tt1375666",
		Title:          "Inception",
		Year:           "2010",
		ExternalRating: 8.8,
		RuntimeMinutes: 148,
		UserRating:     9,
	}}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	if putErr := store.Put(WatchedKey, string(data)); putErr != nil {
		t.Fatal(putErr)
	}
	if closeErr := store.Close(); closeErr != nil {
		t.Fatal(closeErr)
	}

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get(WatchedKey)
	if err != nil || !ok {
		t.Fatalf("expected watched key after reopen, ok=%v err=%v", ok, err)
	}

	var loaded []WatchedEntry
	if err := json.Unmarshal([]byte(value), &loaded); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(loaded) != 1 || loaded[0] != entries[0] {
		t.Errorf("expected %+v, got %+v", entries, loaded)
	}
}

func TestWatchedEntry_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(WatchedEntry{ID: "tt1", RuntimeMinutes: 90})
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{"imdbID", "title", "year", "poster", "imdbRating", "runtime", "userRating"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected field %s in %s", field, data)
		}
	}
}

func TestStore_ClosedOperations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.Get("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Get, got %v", err)
	}
	if err := store.Put("k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Put, got %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
}
