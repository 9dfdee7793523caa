package lint

import (
	"io"
	"sort"
	"strings"

	"github.com/assayhq/assay/core/pkg/evidence/bundle"
)

// Set is an added/removed pair of sorted subject identifiers.
type Set struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// BundleSummary is the short per-bundle header embedded in a Report.
type BundleSummary struct {
	RunID      string `json:"run_id"`
	EventCount int    `json:"event_count"`
	RunRoot    string `json:"run_root"`
}

// DiffSummary carries the scalar event-count delta.
type DiffSummary struct {
	EventCountDelta int `json:"event_count_delta"`
}

// DiffReport is the output of Diff.
type DiffReport struct {
	Baseline  BundleSummary `json:"baseline"`
	Candidate BundleSummary `json:"candidate"`
	Summary   DiffSummary   `json:"summary"`
	Network   Set           `json:"network"`
	Filesystem Set          `json:"filesystem"`
	Processes Set           `json:"processes"`
}

// Diff verifies both bundles (hard fail if either fails verify), partitions
// subjects by event-type substring (".net.", ".fs.", ".process."), and
// reports added/removed sets plus the scalar event-count delta. Identical
// verified bundles yield an empty diff.
func Diff(baseline, candidate io.Reader, limits bundle.VerifyLimits) (*DiffReport, error) {
	base, err := bundle.Verify(baseline, limits)
	if err != nil {
		return nil, err
	}
	cand, err := bundle.Verify(candidate, limits)
	if err != nil {
		return nil, err
	}
	return DiffVerified(base, cand), nil
}

// DiffVerified computes the diff between two already-verified bundles.
func DiffVerified(base, cand *bundle.VerifyResult) *DiffReport {
	baseNet, baseFS, baseProc := categorize(base.Events)
	candNet, candFS, candProc := categorize(cand.Events)

	return &DiffReport{
		Baseline:  summarize(base),
		Candidate: summarize(cand),
		Summary: DiffSummary{
			EventCountDelta: len(cand.Events) - len(base.Events),
		},
		Network:    setDiff(baseNet, candNet),
		Filesystem: setDiff(baseFS, candFS),
		Processes:  setDiff(baseProc, candProc),
	}
}

func summarize(vr *bundle.VerifyResult) BundleSummary {
	return BundleSummary{
		RunID:      vr.Manifest.RunID,
		EventCount: vr.Manifest.EventCount,
		RunRoot:    vr.Manifest.RunRoot,
	}
}

func categorize(events []*bundle.Event) (net, fs, proc map[string]struct{}) {
	net, fs, proc = map[string]struct{}{}, map[string]struct{}{}, map[string]struct{}{}
	for _, e := range events {
		if e.Subject == "" {
			continue
		}
		switch {
		case strings.Contains(e.Type, ".net.") || strings.HasSuffix(e.Type, ".net"):
			net[e.Subject] = struct{}{}
		case strings.Contains(e.Type, ".fs.") || strings.HasSuffix(e.Type, ".fs"):
			fs[e.Subject] = struct{}{}
		case strings.Contains(e.Type, ".process.") || strings.HasSuffix(e.Type, ".process"):
			proc[e.Subject] = struct{}{}
		}
	}
	return
}

func setDiff(base, cand map[string]struct{}) Set {
	var added, removed []string
	for s := range cand {
		if _, ok := base[s]; !ok {
			added = append(added, s)
		}
	}
	for s := range base {
		if _, ok := cand[s]; !ok {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	if added == nil {
		added = []string{}
	}
	if removed == nil {
		removed = []string{}
	}
	return Set{Added: added, Removed: removed}
}
