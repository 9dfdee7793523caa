package pack

import (
	"fmt"

	"github.com/assayhq/assay/core/pkg/canonicalize"
)

// ComputeCanonicalDigest parses rawYAML under the strict subset (no
// anchors/aliases/tags/merge keys/floats/duplicate keys) and returns
// sha256:hex of its JCS bytes — the pack's canonical_digest.
func ComputeCanonicalDigest(rawYAML []byte) (string, error) {
	value, err := canonicalize.ParseStrictYAML(rawYAML)
	if err != nil {
		return "", fmt.Errorf("pack: parsing strict yaml: %w", err)
	}
	digest, err := canonicalize.CanonicalDigest(value)
	if err != nil {
		return "", fmt.Errorf("pack: computing canonical digest: %w", err)
	}
	return digest, nil
}

// canonicalJSONBytes returns the JCS bytes of rawYAML, used as the DSSE
// payload when verifying or producing a signature envelope.
func canonicalJSONBytes(rawYAML []byte) ([]byte, error) {
	value, err := canonicalize.ParseStrictYAML(rawYAML)
	if err != nil {
		return nil, fmt.Errorf("pack: parsing strict yaml: %w", err)
	}
	return canonicalize.JCS(value)
}
