package runtime

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/assayhq/assay/core/pkg/canonicalize"
	"github.com/assayhq/assay/core/pkg/crypto"
)

// CloudEvents types for mandate lifecycle transitions, per spec §6.
const (
	EventTypeMandateUsed    = "assay.mandate.used.v1"
	EventTypeMandateRevoked = "assay.mandate.revoked.v1"
)

// LifecycleEvent is a CloudEvents v1.0 envelope describing a mandate
// lifecycle transition. SignedEnvelope is set when an event signer is
// configured: the event's JCS-canonicalized bytes are DSSE-signed under the
// matching PayloadTypeMandateUsed/PayloadTypeMandateRevoked, kept distinct
// from PayloadTypeMandate so a mandate signature can never be replayed as a
// lifecycle-event signature or vice versa.
type LifecycleEvent struct {
	SpecVersion     string               `json:"specversion"`
	ID              string               `json:"id"`
	Type            string               `json:"type"`
	Source          string               `json:"source"`
	Time            time.Time            `json:"time"`
	DataContentType string               `json:"datacontenttype"`
	Data            json.RawMessage      `json:"data"`
	SignedEnvelope  *crypto.DSSEEnvelope `json:"signed_envelope,omitempty"`
}

// EventSink receives lifecycle events as the consume/revoke store
// transaction that produced them commits. Emit runs after the transaction
// has already committed, so a sink failure never rolls back the mandate
// state change; callers that need stronger delivery guarantees should
// queue internally and retry rather than blocking the caller.
type EventSink interface {
	Emit(ctx context.Context, event LifecycleEvent) error
}

// EventSigner optionally DSSE-signs lifecycle events before they reach the
// sink. A nil *EventSigner means events are emitted unsigned.
type EventSigner struct {
	KeyID   string
	PrivKey ed25519.PrivateKey
}

func (s *EventSigner) sign(payloadType string, data json.RawMessage) (*crypto.DSSEEnvelope, error) {
	if s == nil {
		return nil, nil
	}
	canonical, err := canonicalize.JCS(data)
	if err != nil {
		return nil, err
	}
	return crypto.SignEnvelope(canonical, payloadType, s.KeyID, s.PrivKey), nil
}

type mandateUsedEventData struct {
	MandateID  string    `json:"mandate_id"`
	UseID      string    `json:"use_id"`
	ToolCallID string    `json:"tool_call_id"`
	ConsumedAt time.Time `json:"consumed_at"`
	UseCount   int       `json:"use_count"`
}

type mandateRevokedEventData struct {
	MandateID string    `json:"mandate_id"`
	RevokedAt time.Time `json:"revoked_at"`
	Reason    string    `json:"reason,omitempty"`
	RevokedBy string    `json:"revoked_by,omitempty"`
}

func newMandateUsedEvent(source string, r *Receipt, signer *EventSigner) (LifecycleEvent, error) {
	data, err := json.Marshal(mandateUsedEventData{
		MandateID:  r.MandateID,
		UseID:      r.UseID,
		ToolCallID: r.ToolCallID,
		ConsumedAt: r.ConsumedAt,
		UseCount:   r.UseCount,
	})
	if err != nil {
		return LifecycleEvent{}, err
	}
	envelope, err := signer.sign(crypto.PayloadTypeMandateUsed, data)
	if err != nil {
		return LifecycleEvent{}, err
	}
	return LifecycleEvent{
		SpecVersion:     "1.0",
		ID:              r.UseID,
		Type:            EventTypeMandateUsed,
		Source:          source,
		Time:            r.ConsumedAt,
		DataContentType: "application/json",
		Data:            data,
		SignedEnvelope:  envelope,
	}, nil
}

func newMandateRevokedEvent(source, mandateID string, revokedAt time.Time, reason, by string, signer *EventSigner) (LifecycleEvent, error) {
	data, err := json.Marshal(mandateRevokedEventData{
		MandateID: mandateID,
		RevokedAt: revokedAt,
		Reason:    reason,
		RevokedBy: by,
	})
	if err != nil {
		return LifecycleEvent{}, err
	}
	envelope, err := signer.sign(crypto.PayloadTypeMandateRevoked, data)
	if err != nil {
		return LifecycleEvent{}, err
	}
	return LifecycleEvent{
		SpecVersion:     "1.0",
		ID:              computeRevokeEventID(mandateID, revokedAt),
		Type:            EventTypeMandateRevoked,
		Source:          source,
		Time:            revokedAt,
		DataContentType: "application/json",
		Data:            data,
		SignedEnvelope:  envelope,
	}, nil
}

// computeRevokeEventID derives a deterministic CloudEvents id so a retried
// emission for the same revocation dedupes downstream, mirroring the
// use_id convention for mandate.used events.
func computeRevokeEventID(mandateID string, revokedAt time.Time) string {
	input := mandateID + "|" + revokedAt.UTC().Format(time.RFC3339Nano)
	sum := sha256.Sum256([]byte(input))
	return canonicalize.Sha256Prefix + hex.EncodeToString(sum[:])
}
