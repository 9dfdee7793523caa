// Package bundle implements the evidence bundle engine: the deterministic
// writer (C2) and the streamed, bounded verifier (C3) for the tamper-evident
// tar.gz archive format.
package bundle

import (
	"fmt"
	"strings"
	"time"

	"github.com/assayhq/assay/core/pkg/canonicalize"
)

// Event is one immutable record of an observed action. Field names match
// the on-disk JCS-serialized JSON exactly; json tags control both the
// one-line-per-event ndjson encoding and the canonical form used for
// content_hash.
type Event struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	ID              string      `json:"id"`
	Time            string      `json:"time"` // RFC 3339 UTC
	DataContentType string      `json:"datacontenttype"`
	RunID           string      `json:"run_id"`
	Seq             uint64      `json:"seq"`
	Producer        string      `json:"producer"`
	ProducerVersion string      `json:"producer_version"`
	GitSHA          string      `json:"git_sha"`
	ContainsPII     bool        `json:"contains_pii"`
	ContainsSecrets bool        `json:"contains_secrets"`
	Subject         string      `json:"subject,omitempty"`
	PolicyID        string      `json:"policy_id,omitempty"`
	TraceParent     string      `json:"trace_parent,omitempty"`
	TraceState      string      `json:"trace_state,omitempty"`
	ContentHash     string      `json:"content_hash,omitempty"`
	Payload         interface{} `json:"payload"`
}

// ParsedTime parses the event's time field as RFC 3339.
func (e *Event) ParsedTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, e.Time)
	if err != nil {
		return time.Time{}, fmt.Errorf("event %s: invalid time %q: %w", e.ID, e.Time, err)
	}
	return t, nil
}

// ComputeContentHash returns sha256:hex(jcs(payload)) for this event's payload.
func (e *Event) ComputeContentHash() (string, error) {
	return canonicalize.CanonicalDigest(e.Payload)
}

// ExpectedID returns run_id + ":" + seq.
func (e *Event) ExpectedID() string {
	return e.RunID + ":" + formatSeq(e.Seq)
}

func formatSeq(seq uint64) string {
	return fmt.Sprintf("%d", seq)
}

// IsURI reports whether s contains a colon not at index 0, the minimal
// check the writer applies to a source field.
func IsURI(s string) bool {
	idx := strings.IndexByte(s, ':')
	return idx > 0
}

// JCSLine returns the canonical JCS bytes of the event followed by a
// trailing newline, the exact unit written per line of events.ndjson.
func JCSLine(e *Event) ([]byte, error) {
	b, err := canonicalize.JCS(e)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
