// Package artifacts implements the Bundle Store Adapter (C5): a
// content-addressed object-store substrate for evidence bundles, with
// conditional writes and run-index references. The adapter never inspects
// bundle contents; callers that want safety run C3 verify on the result of
// Get.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrAlreadyExists is returned by Put when the key is already occupied.
// Callers treat it as a non-fatal, idempotent success.
var ErrAlreadyExists = errors.New("artifacts: bundle already exists")

// ErrNotFound is returned by Get when the bundle id is unknown.
var ErrNotFound = errors.New("artifacts: bundle not found")

// Meta describes a stored bundle without fetching its bytes.
type Meta struct {
	BundleID string
	Size     int64
	Modified string // RFC3339, empty if unknown
}

// BundleStore is the one genuine plugin interface in the core: object-store
// backends implement it, and every operation is idempotent.
//
// Key schema (fixed across all backends):
//
//	{base}/bundles/{bundle_id}.tar.gz
//	{base}/runs/{run_id}/{bundle_id}.ref
type BundleStore interface {
	PutBundle(ctx context.Context, bundleID string, data []byte) error
	GetBundle(ctx context.Context, bundleID string) ([]byte, error)
	BundleExists(ctx context.Context, bundleID string) (bool, error)
	LinkRunBundle(ctx context.Context, runID, bundleID string) error
	ListBundlesForRun(ctx context.Context, runID string) ([]string, error)
	ListBundles(ctx context.Context, prefix string, limit int) ([]Meta, error)
}

// StoreSpec is a parsed store URL: s3://bucket/prefix[?region=X],
// gs://bucket/prefix, file:///abs/path, memory://.
type StoreSpec struct {
	Scheme string
	Bucket string
	Prefix string
	Region string
}

// ParseStoreSpec parses a store URL as named in the external interfaces
// contract.
func ParseStoreSpec(raw string) (*StoreSpec, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("artifacts: invalid store spec %q: %w", raw, err)
	}

	spec := &StoreSpec{
		Scheme: u.Scheme,
		Bucket: u.Host,
		Prefix: strings.TrimPrefix(u.Path, "/"),
		Region: u.Query().Get("region"),
	}
	return spec, nil
}

// IsMemory reports whether the spec names the in-memory test backend.
func (s *StoreSpec) IsMemory() bool { return s.Scheme == "memory" }

// IsFile reports whether the spec names a local filesystem backend.
func (s *StoreSpec) IsFile() bool { return s.Scheme == "file" }

// bundleKey returns the primary object key for a bundle id.
func bundleKey(base, bundleID string) string {
	return joinKey(base, "bundles", bundleID+".tar.gz")
}

// runRefKey returns the run-index reference key for a (run_id, bundle_id) pair.
func runRefKey(base, runID, bundleID string) string {
	return joinKey(base, "runs", runID, bundleID+".ref")
}

func joinKey(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, strings.Trim(p, "/"))
		}
	}
	return strings.Join(nonEmpty, "/")
}
