package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathHandler_ExpandAndValidatePath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	ph := NewSecurePathHandler()

	got, err := ph.ExpandAndValidatePath("~/.popcorn/popcorn.db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(homeDir, ".popcorn", "popcorn.db")
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	tmp := filepath.Join(os.TempDir(), "popcorn-test.db")
	if _, err := ph.ExpandAndValidatePath(tmp); err != nil {
		t.Errorf("temp dir path should be allowed: %v", err)
	}

	rejected := []string{
		"",
		"/etc/passwd",
		"~/.popcorn/../.ssh/id_rsa",
		"~other/file",
		"/tmp/with\x00null",
		"/tmp/bell\x07",
	}
	for _, p := range rejected {
		if _, err := ph.ExpandAndValidatePath(p); err == nil {
			t.Errorf("expected %q to be rejected", p)
		}
	}
}

func TestPathHandler_SiblingPrefixNotAllowed(t *testing.T) {
	base := t.TempDir()
	ph := &PathHandler{AllowedBaseDirs: []string{filepath.Join(base, "data")}}

	if _, err := ph.ExpandAndValidatePath(filepath.Join(base, "data", "db")); err != nil {
		t.Errorf("path inside base should be allowed: %v", err)
	}
	if _, err := ph.ExpandAndValidatePath(filepath.Join(base, "database", "db")); err == nil {
		t.Error("sibling directory sharing a prefix should be rejected")
	}
}

func TestPathHandler_GetSecureDBPath(t *testing.T) {
	dir := t.TempDir()
	ph := NewPermissivePathHandler()

	dbPath := filepath.Join(dir, "nested", "popcorn.db")
	got, err := ph.GetSecureDBPath(dbPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != dbPath {
		t.Errorf("got %s, want %s", got, dbPath)
	}
	if info, err := os.Stat(filepath.Join(dir, "nested")); err != nil || !info.IsDir() {
		t.Error("expected parent directory to be created")
	}

	if _, err := ph.GetSecureDBPath(dir); err == nil {
		t.Error("expected error when db path is a directory")
	}
}

func TestPathHandler_GetSecureIndexPath(t *testing.T) {
	dir := t.TempDir()
	ph := NewPermissivePathHandler()

	indexPath := filepath.Join(dir, "watched.bleve")
	got, err := ph.GetSecureIndexPath(indexPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != indexPath {
		t.Errorf("got %s, want %s", got, indexPath)
	}

	file := filepath.Join(dir, "plain-file")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ph.GetSecureIndexPath(file); err == nil {
		t.Error("expected error when index path is a file")
	}
}

func TestIsPathSafe(t *testing.T) {
	tests := map[string]bool{
		"/home/user/.popcorn/popcorn.db": true,
		"relative/path":                  true,
		"../escape":                      false,
		"a/..":                           false,
		"win\\..\\escape":                false,
		"nul\x00byte":                    false,
		strings.Repeat("a", 5000):        false,
	}
	for path, want := range tests {
		if got := IsPathSafe(path); got != want {
			t.Errorf("IsPathSafe(%.20q) = %v, want %v", path, got, want)
		}
	}
}
