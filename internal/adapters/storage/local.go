// Package storage persists uploaded receipt files and generated layouts on
// the local filesystem.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	portssvc "github.com/mbco-platform/netcash-backend/internal/core/ports/services"
)

// LocalStore writes files under a base directory, one subdirectory per
// operation. Returned references are paths relative to the base directory so
// the directory can be relocated without rewriting stored rows.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a new LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

var _ portssvc.FileStore = (*LocalStore)(nil)

func (s *LocalStore) Save(_ context.Context, operationID, filename string, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, operationID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create operation directory: %w", err)
	}

	// A random prefix keeps repeated uploads of the same filename distinct.
	name := uuid.NewString()[:8] + "_" + sanitizeFilename(filename)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filepath.Join(operationID, name), nil
}

func (s *LocalStore) Load(_ context.Context, ref string) ([]byte, error) {
	path := filepath.Join(s.baseDir, filepath.Clean(ref))
	if !strings.HasPrefix(path, filepath.Clean(s.baseDir)+string(os.PathSeparator)) {
		return nil, fmt.Errorf("file reference escapes the storage root: %s", ref)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", ref, err)
	}
	return data, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
