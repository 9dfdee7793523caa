//go:build !gcp

package artifacts

import (
	"context"
	"fmt"
)

func newGCSStoreFromSpec(ctx context.Context, spec *StoreSpec) (BundleStore, error) {
	return nil, fmt.Errorf("artifacts: GCS storage is not enabled in this build (use -tags gcp)")
}
