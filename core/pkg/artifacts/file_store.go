package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileStore is a local filesystem BundleStore backend. Conditional writes
// use O_CREATE|O_EXCL so a second PutBundle for an existing key fails
// atomically instead of racing a stat-then-write.
type FileStore struct {
	baseDir string
}

// NewFileStore roots a file bundle store at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("artifacts: creating base dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.baseDir, filepath.FromSlash(key))
}

func (f *FileStore) PutBundle(ctx context.Context, bundleID string, data []byte) error {
	key := bundleKey("", bundleID)
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("artifacts: creating bundle dir: %w", err)
	}

	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("artifacts: creating bundle file: %w", err)
	}
	defer fh.Close()

	if _, err := fh.Write(data); err != nil {
		return fmt.Errorf("artifacts: writing bundle file: %w", err)
	}
	return nil
}

func (f *FileStore) GetBundle(ctx context.Context, bundleID string) ([]byte, error) {
	key := bundleKey("", bundleID)
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifacts: reading bundle file: %w", err)
	}
	return data, nil
}

func (f *FileStore) BundleExists(ctx context.Context, bundleID string) (bool, error) {
	key := bundleKey("", bundleID)
	_, err := os.Stat(f.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("artifacts: stat bundle file: %w", err)
}

func (f *FileStore) LinkRunBundle(ctx context.Context, runID, bundleID string) error {
	key := runRefKey("", runID, bundleID)
	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("artifacts: creating run ref dir: %w", err)
	}
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil // idempotent no-op
		}
		return fmt.Errorf("artifacts: creating run ref file: %w", err)
	}
	return fh.Close()
}

func (f *FileStore) ListBundlesForRun(ctx context.Context, runID string) ([]string, error) {
	dir := f.path(joinKey("runs", runID))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("artifacts: listing run refs: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".ref") {
			ids = append(ids, strings.TrimSuffix(e.Name(), ".ref"))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *FileStore) ListBundles(ctx context.Context, prefix string, limit int) ([]Meta, error) {
	dir := f.path("bundles")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("artifacts: listing bundles: %w", err)
	}
	var metas []Meta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tar.gz") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".tar.gz")
		if prefix != "" && !strings.HasPrefix(id, prefix) {
			continue
		}
		info, err := e.Info()
		size := int64(0)
		if err == nil {
			size = info.Size()
		}
		metas = append(metas, Meta{BundleID: id, Size: size})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].BundleID < metas[j].BundleID })
	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas, nil
}
