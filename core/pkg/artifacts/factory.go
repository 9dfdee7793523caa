package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// NewBundleStoreFromSpec builds the BundleStore named by a StoreSpec
// (s3://, gs://, file://, memory://) as parsed by ParseStoreSpec.
func NewBundleStoreFromSpec(ctx context.Context, spec *StoreSpec) (BundleStore, error) {
	switch spec.Scheme {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		dir := spec.Bucket
		if spec.Bucket == "" && spec.Prefix != "" {
			dir = "/" + spec.Prefix // file:///abs/path form
		} else if spec.Prefix != "" {
			dir = filepath.Join(dir, spec.Prefix) // file://relative/path form
		}
		if dir == "" {
			dir = "."
		}
		return NewFileStore(dir)
	case "s3":
		return NewS3Store(ctx, S3StoreConfig{
			Bucket: spec.Bucket,
			Region: spec.Region,
			Prefix: spec.Prefix,
		})
	case "gs":
		return newGCSStoreFromSpec(ctx, spec)
	default:
		return nil, fmt.Errorf("artifacts: unsupported store scheme %q", spec.Scheme)
	}
}

// NewBundleStoreFromEnv builds a BundleStore from the ASSAY_BUNDLE_STORE
// environment variable, defaulting to a local ./data/bundles tree.
func NewBundleStoreFromEnv(ctx context.Context) (BundleStore, error) {
	raw := os.Getenv("ASSAY_BUNDLE_STORE")
	if raw == "" {
		raw = "file://data/bundles"
	}
	spec, err := ParseStoreSpec(raw)
	if err != nil {
		return nil, err
	}
	return NewBundleStoreFromSpec(ctx, spec)
}
