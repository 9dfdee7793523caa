// Package runtime implements the Mandate Authorizer & Store (C7): a
// transactional consume-once engine enforcing scope, validity window,
// operation class, and commit-bind checks, with nonce replay protection
// and idempotent receipts keyed by tool_call_id.
package runtime

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/assayhq/assay/core/pkg/canonicalize"
)

// OperationClass orders the three effect tiers a tool call can belong to.
// Ordering matters: a mandate's kind caps the maximum class it authorizes.
type OperationClass int

const (
	OperationRead OperationClass = iota
	OperationWrite
	OperationCommit
)

// MandateKind discriminates the two mandate shapes.
type MandateKind string

const (
	MandateIntent      MandateKind = "intent"
	MandateTransaction MandateKind = "transaction"
)

// MaxOperationClass returns the highest operation class this mandate kind
// may authorize: intent caps at write, transaction caps at commit.
func (k MandateKind) MaxOperationClass() OperationClass {
	if k == MandateTransaction {
		return OperationCommit
	}
	return OperationWrite
}

// Mandate is a signed, scoped authorization for one or more tool calls.
type Mandate struct {
	MandateID      string         `json:"mandate_id"`
	MandateKind    MandateKind    `json:"mandate_kind"`
	ToolPatterns   []string       `json:"tool_patterns"`
	NotBefore      time.Time      `json:"not_before"`
	ExpiresAt      time.Time      `json:"expires_at"`
	SingleUse      bool           `json:"single_use"`
	MaxUses        *int           `json:"max_uses,omitempty"`
	Audience       string         `json:"audience"`
	Issuer         string         `json:"issuer"`
	Nonce          string         `json:"nonce,omitempty"`
	TransactionRef string         `json:"transaction_ref,omitempty"`
	CanonicalDigest string        `json:"canonical_digest"`
	KeyID          string         `json:"key_id"`
}

// ToolCall describes the call being authorized.
type ToolCall struct {
	ToolCallID        string         `json:"tool_call_id"`
	ToolName          string         `json:"tool_name"`
	OperationClass    OperationClass `json:"operation_class"`
	TransactionObject interface{}    `json:"transaction_object,omitempty"`
	SourceRunID       string         `json:"source_run_id"`
}

// AuthzConfig parameterizes validity-window skew and the expected
// audience/issuer context an authorizer enforces.
type AuthzConfig struct {
	ClockSkew        time.Duration
	ExpectedAudience string
	TrustedIssuers   []string
}

// DefaultAuthzConfig returns the documented default 30 second skew.
func DefaultAuthzConfig() AuthzConfig {
	return AuthzConfig{ClockSkew: 30 * time.Second}
}

// Receipt is the outcome of a successful authorize_and_consume call.
type Receipt struct {
	MandateID   string    `json:"mandate_id"`
	UseID       string    `json:"use_id"`
	UseCount    int       `json:"use_count"`
	ConsumedAt  time.Time `json:"consumed_at"`
	ToolCallID  string    `json:"tool_call_id"`
	WasNew      bool      `json:"was_new"`
}

// computeTransactionRef recomputes sha256:hex(jcs(txObject)) for
// commit-bind verification.
func computeTransactionRef(txObject interface{}) (string, error) {
	return canonicalize.CanonicalDigest(txObject)
}

// computeUseID derives the deterministic use-row primary key: a sha256 of
// the raw "mandate_id|tool_call_id|use_count" string, not a JCS digest —
// this is a concatenated identifier, not a canonicalized JSON value.
func computeUseID(mandateID, toolCallID string, useCount int) string {
	input := mandateID + "|" + toolCallID + "|" + strconv.Itoa(useCount)
	sum := sha256.Sum256([]byte(input))
	return canonicalize.Sha256Prefix + hex.EncodeToString(sum[:])
}
