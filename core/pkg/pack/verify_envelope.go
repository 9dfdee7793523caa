package pack

import (
	"crypto/ed25519"
	"fmt"

	"github.com/assayhq/assay/core/pkg/crypto"
)

// VerifyPackEnvelope verifies a pack's DSSE envelope against its raw
// canonical-subset YAML source and returns the pack's canonical_digest
// on success. The envelope's payload must be the JCS bytes of rawYAML;
// VerifyDSSEEnvelope rejects any divergence before a single signature
// is checked.
func VerifyPackEnvelope(rawYAML []byte, envelope *crypto.DSSEEnvelope, trust *crypto.TrustStore) (string, error) {
	payload, err := canonicalJSONBytes(rawYAML)
	if err != nil {
		return "", err
	}

	if err := crypto.VerifyDSSEEnvelope(payload, envelope, crypto.PayloadTypePack, trust); err != nil {
		return "", err
	}

	digest, err := ComputeCanonicalDigest(rawYAML)
	if err != nil {
		return "", fmt.Errorf("pack: computing digest after verification: %w", err)
	}
	return digest, nil
}

// SignPackEnvelope produces a DSSE envelope over rawYAML's canonical
// JCS bytes, for use by pack publishers.
func SignPackEnvelope(rawYAML []byte, keyID string, priv ed25519.PrivateKey) (*crypto.DSSEEnvelope, error) {
	payload, err := canonicalJSONBytes(rawYAML)
	if err != nil {
		return nil, err
	}
	return crypto.SignEnvelope(payload, crypto.PayloadTypePack, keyID, priv), nil
}
