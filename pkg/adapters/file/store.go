// Package file persists blobs and serves definitions from a local
// directory tree. The blob store is the durable content-addressed
// backend; the registry side loads operator-edited definition files
// into memory snapshots with optional hot reload.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// tmpPrefix marks in-flight writes so listings can skip them.
const tmpPrefix = ".tmp-"

// Store implements ports.BlobStore on the local filesystem. Payloads are
// sharded into two-character prefix directories so large stores never
// produce one flat directory.
type Store struct {
	root string
}

var _ ports.BlobStore = (*Store)(nil)

// NewStore creates a blob store rooted at the given directory.
// If root is empty, it defaults to ".sluice/blobs".
func NewStore(root string) *Store {
	if root == "" {
		root = filepath.Join(".sluice", "blobs")
	}
	return &Store{root: root}
}

// path maps an identifier to its sharded location. Identifiers too short
// to shard land in a catch-all directory.
func (s *Store) path(id string) string {
	shard := "_"
	if len(id) >= 2 {
		shard = id[:2]
	}
	return filepath.Join(s.root, shard, id)
}

// Get retrieves the payload stored under id.
func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return data, nil
}

// Put stores data under id atomically: it writes to a temp file in the
// destination directory (same filesystem, so the rename is atomic),
// fsyncs, closes, and renames into place.
func (s *Store) Put(ctx context.Context, id string, data []byte) error {
	destPath := s.path(id)
	destDir := filepath.Dir(destPath)

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure blob directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(destDir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		// No-ops once the rename has happened.
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if the destination exists. Content under
	// the same id is identical by construction, so the removal window is
	// harmless there.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to replace existing blob: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to move blob into place: %w", err)
	}
	return nil
}

// Has reports whether a payload exists under id.
func (s *Store) Has(ctx context.Context, id string) (bool, error) {
	_, err := os.Stat(s.path(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat blob %s: %w", id, err)
}

// List returns all stored identifiers, sorted. In-flight temp files are
// excluded.
func (s *Store) List(ctx context.Context) ([]string, error) {
	shards, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list blob directory: %w", err)
	}

	var ids []string
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(s.root, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to list shard %s: %w", shard.Name(), err)
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), tmpPrefix) {
				continue
			}
			ids = append(ids, entry.Name())
		}
	}

	sort.Strings(ids) // Deterministic order
	return ids, nil
}
