//go:build gcp

package artifacts

import "context"

func newGCSStoreFromSpec(ctx context.Context, spec *StoreSpec) (BundleStore, error) {
	return NewGCSStore(ctx, GCSStoreConfig{
		Bucket: spec.Bucket,
		Prefix: spec.Prefix,
	})
}
