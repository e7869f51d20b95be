package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathHandler resolves the on-disk locations popcorn writes to.
type PathHandler struct {
	// AllowedBaseDirs restricts paths to these roots. Empty allows any.
	AllowedBaseDirs []string
	MaxPathLength   int
}

// NewSecurePathHandler limits writes to the popcorn data and config
// directories plus the system temp dir.
func NewSecurePathHandler() *PathHandler {
	homeDir, _ := os.UserHomeDir()
	return &PathHandler{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".popcorn"),
			filepath.Join(homeDir, ".config", "popcorn"),
			os.TempDir(),
		},
		MaxPathLength: 4096,
	}
}

func NewPermissivePathHandler() *PathHandler {
	return &PathHandler{MaxPathLength: 4096}
}

// ExpandAndValidatePath expands ~, makes the path absolute and checks it
// against the allowed roots.
func (ph *PathHandler) ExpandAndValidatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if ph.MaxPathLength > 0 && len(path) > ph.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", ph.MaxPathLength)
	}
	if !IsPathSafe(path) {
		return "", fmt.Errorf("path contains unsafe sequences")
	}
	for _, r := range path {
		if r < 32 && r != '\t' {
			return "", fmt.Errorf("path contains control characters")
		}
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	} else if strings.HasPrefix(path, "~") {
		return "", fmt.Errorf("invalid tilde usage")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot make path absolute: %w", err)
	}

	if err := ph.withinBaseDirs(abs); err != nil {
		return "", err
	}
	return abs, nil
}

func (ph *PathHandler) withinBaseDirs(abs string) error {
	if len(ph.AllowedBaseDirs) == 0 {
		return nil
	}
	for _, base := range ph.AllowedBaseDirs {
		absBase, err := filepath.Abs(base)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("path not within allowed directories: %v", ph.AllowedBaseDirs)
}

// GetSecureDBPath validates the database file path and creates its parent
// directory. An empty path selects ~/.popcorn/popcorn.db.
func (ph *PathHandler) GetSecureDBPath(userPath string) (string, error) {
	if userPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".popcorn", "popcorn.db")
	}

	path, err := ph.ExpandAndValidatePath(userPath)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	return path, nil
}

// GetSecureIndexPath validates the watched search index directory. The
// directory itself is left for bleve to create.
func (ph *PathHandler) GetSecureIndexPath(userPath string) (string, error) {
	if userPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		userPath = filepath.Join(homeDir, ".popcorn", "watched.bleve")
	}

	path, err := ph.ExpandAndValidatePath(userPath)
	if err != nil {
		return "", err
	}
	if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
		return "", fmt.Errorf("path exists but is not a directory: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating index parent directory: %w", err)
	}
	return path, nil
}

// IsPathSafe performs a quick safety check on a path without full validation
func IsPathSafe(path string) bool {
	if strings.Contains(path, "\x00") {
		return false
	}
	if strings.Contains(path, "../") || strings.Contains(path, "..\\") || strings.HasSuffix(path, "/..") {
		return false
	}
	return len(path) <= 4096
}
