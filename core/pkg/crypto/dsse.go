package crypto

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strconv"
	"sync"
)

// Payload type constants for DSSE envelopes. Kept distinct per signed
// object so a valid signature over one object type can never be replayed
// as a signature over another.
const (
	PayloadTypeMandate        = "application/vnd.assay.mandate;v=1"
	PayloadTypeMandateUsed    = "application/vnd.assay.mandate-used;v=1"
	PayloadTypeMandateRevoked = "application/vnd.assay.mandate-revoked;v=1"
	PayloadTypePack           = "application/vnd.assay.pack;v=1"
)

// DSSESignature is one signature entry in a DSSE envelope.
type DSSESignature struct {
	KeyID     string `json:"keyid"`
	Signature string `json:"sig"`
}

// DSSEEnvelope is a Dead Simple Signing Envelope v1 payload wrapper.
type DSSEEnvelope struct {
	PayloadType string          `json:"payloadType"`
	Payload     string          `json:"payload"`
	Signatures  []DSSESignature `json:"signatures"`
}

// SignatureError models the closed taxonomy of DSSE verification failures:
// SignatureInvalid, KeyNotTrusted, PayloadTypeMismatch.
type SignatureError struct {
	Code    string
	Message string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeSignatureInvalid    = "SignatureInvalid"
	CodeKeyNotTrusted       = "KeyNotTrusted"
	CodePayloadTypeMismatch = "PayloadTypeMismatch"
)

func sigErr(code, format string, args ...interface{}) *SignatureError {
	return &SignatureError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// TrustStore maps key ids to Ed25519 public keys. Safe for concurrent use.
type TrustStore struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PublicKey
}

// NewTrustStore returns an empty trust store.
func NewTrustStore() *TrustStore {
	return &TrustStore{keys: make(map[string]ed25519.PublicKey)}
}

// AddKey registers a trusted public key under keyID.
func (t *TrustStore) AddKey(keyID string, pub ed25519.PublicKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.keys[keyID] = pub
}

// GetKey returns the trusted key for keyID, or KeyNotTrusted.
func (t *TrustStore) GetKey(keyID string) (ed25519.PublicKey, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	key, ok := t.keys[keyID]
	if !ok {
		return nil, sigErr(CodeKeyNotTrusted, "key id %q is not in the trust store", keyID)
	}
	return key, nil
}

// BuildPAE constructs the DSSE v1 pre-authentication encoding:
// "DSSEv1 " + len(type) + " " + type + " " + len(payload) + " " + payload.
func BuildPAE(payloadType string, payload []byte) []byte {
	var pae []byte
	pae = append(pae, "DSSEv1 "...)
	pae = append(pae, strconv.Itoa(len(payloadType))...)
	pae = append(pae, ' ')
	pae = append(pae, payloadType...)
	pae = append(pae, ' ')
	pae = append(pae, strconv.Itoa(len(payload))...)
	pae = append(pae, ' ')
	pae = append(pae, payload...)
	return pae
}

// SignEnvelope builds a single-signature DSSE envelope over canonicalBytes
// for the given payload type, keyed by keyID.
func SignEnvelope(canonicalBytes []byte, payloadType, keyID string, priv ed25519.PrivateKey) *DSSEEnvelope {
	pae := BuildPAE(payloadType, canonicalBytes)
	sig := ed25519.Sign(priv, pae)
	return &DSSEEnvelope{
		PayloadType: payloadType,
		Payload:     base64.StdEncoding.EncodeToString(canonicalBytes),
		Signatures: []DSSESignature{
			{KeyID: keyID, Signature: base64.StdEncoding.EncodeToString(sig)},
		},
	}
}

// VerifyDSSEEnvelope runs the four-step verification order from the
// payload-type check through signature acceptance, matching
// canonicalBytes (the already-canonicalized payload produced by the
// caller) against the envelope and the trust store.
//
// Order: payload_type equality, then base64/digest equality, then
// non-empty signature check, then PAE verification against each
// signature in turn, accepting the first success.
func VerifyDSSEEnvelope(canonicalBytes []byte, env *DSSEEnvelope, expectedPayloadType string, trust *TrustStore) error {
	if env.PayloadType != expectedPayloadType {
		return sigErr(CodePayloadTypeMismatch, "payload type mismatch: expected %s, got %s", expectedPayloadType, env.PayloadType)
	}

	payloadBytes, err := base64.StdEncoding.DecodeString(env.Payload)
	if err != nil {
		return sigErr(CodeSignatureInvalid, "invalid base64 payload: %v", err)
	}
	if !bytes.Equal(payloadBytes, canonicalBytes) {
		return sigErr(CodeSignatureInvalid, "envelope payload does not match canonical bytes")
	}

	if len(env.Signatures) == 0 {
		return sigErr(CodeSignatureInvalid, "no signatures in envelope")
	}

	pae := BuildPAE(env.PayloadType, payloadBytes)

	var lastErr error
	for _, sig := range env.Signatures {
		if err := verifySingleSignature(pae, sig, trust); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return sigErr(CodeSignatureInvalid, "no valid signatures")
}

func verifySingleSignature(pae []byte, sig DSSESignature, trust *TrustStore) error {
	key, err := trust.GetKey(sig.KeyID)
	if err != nil {
		return err
	}
	sigBytes, err := base64.StdEncoding.DecodeString(sig.Signature)
	if err != nil {
		return sigErr(CodeSignatureInvalid, "invalid base64 signature: %v", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return sigErr(CodeSignatureInvalid, "invalid signature size: %d", len(sigBytes))
	}
	if !ed25519.Verify(key, pae, sigBytes) {
		return sigErr(CodeSignatureInvalid, "ed25519 verification failed for key %q", sig.KeyID)
	}
	return nil
}
