package pack

import (
	"context"
	"fmt"
	"testing"

	"github.com/assayhq/assay/core/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	byName map[string]*Resolved
}

func (f *fakeResolver) Resolve(ctx context.Context, ref *PackRef) (*Resolved, error) {
	resolved, ok := f.byName[ref.Name]
	if !ok {
		return nil, fmt.Errorf("no such pack: %s", ref.Name)
	}
	return resolved, nil
}

func TestGenerateLockfile_BundledAndByosMix(t *testing.T) {
	pub, priv := newPackTestKey(t)
	trust := crypto.NewTrustStore()
	trust.AddKey("publisher-1", pub)

	bundledRaw := []byte("name: secrets-scanner\nversion: 1.0.0\n")
	bundledEnv, err := SignPackEnvelope(bundledRaw, "publisher-1", priv)
	require.NoError(t, err)

	byosRaw := []byte("name: pii-detector\nversion: 0.5.0\n")

	resolver := &fakeResolver{byName: map[string]*Resolved{
		"secrets-scanner": {RawYAML: bundledRaw, Envelope: bundledEnv},
		"pii-detector":    {RawYAML: byosRaw, ByosURL: "https://packs.example.com/pii-detector.yaml"},
	}}

	lock, err := GenerateLockfile(context.Background(), []string{
		"bundled:secrets-scanner",
		"https://packs.example.com/pii-detector.yaml",
	}, resolver, trust)
	require.NoError(t, err)
	require.Len(t, lock.Packs, 2)

	scanner, ok := lock.Find("secrets-scanner")
	require.True(t, ok)
	assert.Equal(t, LockSourceBundled, scanner.Source)
	require.NotNil(t, scanner.Signature)
	assert.Equal(t, "publisher-1", scanner.Signature.KeyID)
	assert.Equal(t, "Ed25519", scanner.Signature.Algorithm)

	detector, ok := lock.Find("pii-detector")
	require.True(t, ok)
	assert.Equal(t, LockSourceByos, detector.Source)
	assert.Equal(t, "https://packs.example.com/pii-detector.yaml", detector.ByosURL)
	assert.Nil(t, detector.Signature)
}

func TestGenerateLockfile_InvalidSignatureAborts(t *testing.T) {
	_, wrongPriv := newPackTestKey(t)
	trust := crypto.NewTrustStore() // key never registered

	raw := []byte("name: secrets-scanner\nversion: 1.0.0\n")
	env, err := SignPackEnvelope(raw, "publisher-1", wrongPriv)
	require.NoError(t, err)

	resolver := &fakeResolver{byName: map[string]*Resolved{
		"secrets-scanner": {RawYAML: raw, Envelope: env},
	}}

	_, err = GenerateLockfile(context.Background(), []string{"bundled:secrets-scanner"}, resolver, trust)
	assert.Error(t, err)
}

func TestGenerateLockfile_UnknownReferenceFails(t *testing.T) {
	trust := crypto.NewTrustStore()
	resolver := &fakeResolver{byName: map[string]*Resolved{}}

	_, err := GenerateLockfile(context.Background(), []string{"bundled:missing"}, resolver, trust)
	assert.Error(t, err)
}
