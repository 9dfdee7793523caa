// Package lint implements the rule-pack engine over a verified event
// stream (C4), plus the two-bundle subject diff and the evaluation-report
// verification that re-checks declared digests against recomputed ones.
package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/assayhq/assay/core/pkg/evidence/bundle"
)

// Severity ranks a finding.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityInfo  Severity = "info"
)

// Location pinpoints a finding within the event stream.
type Location struct {
	Seq  int `json:"seq"`
	Line int `json:"line"`
}

// Finding is one rule violation.
type Finding struct {
	RuleID      string    `json:"rule_id"`
	Severity    Severity  `json:"severity"`
	Message     string    `json:"message"`
	Location    *Location `json:"location,omitempty"`
	Fingerprint string    `json:"fingerprint"`
}

// NewFinding computes the stable fingerprint sha256("{rule_id}:{location_key}").
func NewFinding(ruleID string, sev Severity, message string, loc *Location) Finding {
	locKey := "global"
	if loc != nil {
		locKey = fmt.Sprintf("%d:%d", loc.Seq, loc.Line)
	}
	sum := sha256.Sum256([]byte(ruleID + ":" + locKey))
	return Finding{
		RuleID:      ruleID,
		Severity:    sev,
		Message:     message,
		Location:    loc,
		Fingerprint: "sha256:" + hex.EncodeToString(sum[:]),
	}
}

// Summary tallies findings by severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Report is the full lint output: proof-of-verify (the embedded manifest)
// plus findings and a summary.
type Report struct {
	BundleMeta *bundle.Manifest `json:"bundle_meta"`
	Verified   bool             `json:"verified"`
	Findings   []Finding        `json:"findings"`
	Summary    Summary          `json:"summary"`
}

// Rule inspects the full verified event stream and appends findings.
type Rule func(events []*bundle.Event) []Finding

// BuiltinRules are always applied, ahead of any enabled rule pack.
func BuiltinRules() []Rule {
	return []Rule{ruleSecretInSubject, ruleUngovernedNetworkEgress}
}

// Lint runs C3 verify (hard fail on verify failure) then applies the
// built-in rules plus any additional enabled rule packs.
func Lint(r io.Reader, limits bundle.VerifyLimits, extra ...Rule) (*Report, error) {
	vr, err := bundle.Verify(r, limits)
	if err != nil {
		return nil, fmt.Errorf("lint: verify failed: %w", err)
	}
	return LintVerified(vr, extra...), nil
}

// LintVerified runs the rule set over an already-verified bundle.
func LintVerified(vr *bundle.VerifyResult, extra ...Rule) *Report {
	var findings []Finding
	for _, rule := range BuiltinRules() {
		findings = append(findings, rule(vr.Events)...)
	}
	for _, rule := range extra {
		findings = append(findings, rule(vr.Events)...)
	}

	summary := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarn:
			summary.Warnings++
		case SeverityInfo:
			summary.Infos++
		}
	}

	return &Report{
		BundleMeta: vr.Manifest,
		Verified:   true,
		Findings:   findings,
		Summary:    summary,
	}
}

// HasFindingsAtOrAbove reports whether any finding meets the severity
// threshold, ordered Error > Warn > Info.
func (r *Report) HasFindingsAtOrAbove(threshold Severity) bool {
	for _, f := range r.Findings {
		switch threshold {
		case SeverityError:
			if f.Severity == SeverityError {
				return true
			}
		case SeverityWarn:
			if f.Severity == SeverityError || f.Severity == SeverityWarn {
				return true
			}
		case SeverityInfo:
			return true
		}
	}
	return false
}

func ruleSecretInSubject(events []*bundle.Event) []Finding {
	var out []Finding
	for i, e := range events {
		if e.ContainsSecrets && e.Subject != "" {
			out = append(out, NewFinding("secret-in-subject", SeverityError,
				fmt.Sprintf("event %d declares contains_secrets with a populated subject", i),
				&Location{Seq: i, Line: i + 1}))
		}
	}
	return out
}

func ruleUngovernedNetworkEgress(events []*bundle.Event) []Finding {
	var out []Finding
	for i, e := range events {
		if strings.Contains(e.Type, ".net.") && e.PolicyID == "" {
			out = append(out, NewFinding("ungoverned-network-egress", SeverityWarn,
				fmt.Sprintf("event %d (%s) has no policy_id", i, e.Type),
				&Location{Seq: i, Line: i + 1}))
		}
	}
	return out
}
