//go:build gcp

package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
)

// GCSStore is a Google Cloud Storage BundleStore backend. Conditional
// writes use DoesNotExist preconditions so a racing second writer for the
// same bundle id fails instead of overwriting.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSStoreConfig configures a GCS-backed bundle store.
type GCSStoreConfig struct {
	Bucket string
	Prefix string
}

// NewGCSStore creates a GCS-backed bundle store using application default
// credentials.
func NewGCSStore(ctx context.Context, cfg GCSStoreConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("artifacts: creating GCS client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSStore) key(k string) string {
	return joinKey(s.prefix, k)
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 412
	}
	return false
}

func (s *GCSStore) PutBundle(ctx context.Context, bundleID string, data []byte) error {
	obj := s.client.Bucket(s.bucket).Object(s.key(bundleKey("", bundleID))).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = "application/gzip"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("artifacts: gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("artifacts: gcs close failed: %w", err)
	}
	return nil
}

func (s *GCSStore) GetBundle(ctx context.Context, bundleID string) ([]byte, error) {
	obj := s.client.Bucket(s.bucket).Object(s.key(bundleKey("", bundleID)))
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("artifacts: gcs get failed for %s: %w", bundleID, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

func (s *GCSStore) BundleExists(ctx context.Context, bundleID string) (bool, error) {
	obj := s.client.Bucket(s.bucket).Object(s.key(bundleKey("", bundleID)))
	_, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("artifacts: gcs attrs error: %w", err)
	}
	return true, nil
}

func (s *GCSStore) LinkRunBundle(ctx context.Context, runID, bundleID string) error {
	obj := s.client.Bucket(s.bucket).Object(s.key(runRefKey("", runID, bundleID))).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	if _, err := w.Write(nil); err != nil {
		_ = w.Close()
		return fmt.Errorf("artifacts: gcs link write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return nil // idempotent no-op
		}
		return fmt.Errorf("artifacts: gcs link close failed: %w", err)
	}
	return nil
}

func (s *GCSStore) ListBundlesForRun(ctx context.Context, runID string) ([]string, error) {
	prefix := s.key(joinKey("runs", runID)) + "/"
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var ids []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("artifacts: gcs list failed: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if strings.HasSuffix(name, ".ref") {
			ids = append(ids, strings.TrimSuffix(name, ".ref"))
		}
	}
	return ids, nil
}

func (s *GCSStore) ListBundles(ctx context.Context, prefix string, limit int) ([]Meta, error) {
	base := s.key("bundles") + "/"
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: base + prefix})
	var metas []Meta
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("artifacts: gcs list failed: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, base)
		if !strings.HasSuffix(name, ".tar.gz") {
			continue
		}
		id := strings.TrimSuffix(name, ".tar.gz")
		metas = append(metas, Meta{BundleID: id, Size: attrs.Size})
		if limit > 0 && len(metas) >= limit {
			break
		}
	}
	return metas, nil
}

// Close releases the underlying GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
