package pack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCanonicalDigest_Deterministic(t *testing.T) {
	a := []byte("name: secrets-scanner\nversion: 1.0.0\ncapabilities:\n  - secrets\n")
	b := []byte("version: 1.0.0\ncapabilities:\n  - secrets\nname: secrets-scanner\n")

	digestA, err := ComputeCanonicalDigest(a)
	require.NoError(t, err)
	digestB, err := ComputeCanonicalDigest(b)
	require.NoError(t, err)

	assert.Equal(t, digestA, digestB, "key order must not affect the canonical digest")
	assert.True(t, strings.HasPrefix(digestA, "sha256:"))
}

func TestComputeCanonicalDigest_RejectsAnchors(t *testing.T) {
	raw := []byte("defaults: &d\n  timeout: 30\nother:\n  <<: *d\n")
	_, err := ComputeCanonicalDigest(raw)
	assert.Error(t, err)
}

func TestCanonicalJSONBytes_MatchesDigestInput(t *testing.T) {
	raw := []byte("name: pii-detector\nversion: 0.3.0\n")
	jcs, err := canonicalJSONBytes(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, jcs)

	digest, err := ComputeCanonicalDigest(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "sha256:"))
}
