package policy

import "fmt"

// SequenceRuleKind discriminates the four sequence rule variants.
type SequenceRuleKind string

const (
	SequenceBefore             SequenceRuleKind = "before"
	SequenceMaxCalls           SequenceRuleKind = "max_calls"
	SequenceMustCallBeforeEnd  SequenceRuleKind = "must_call_before_end"
	SequenceNotAfter           SequenceRuleKind = "not_after"
)

// SequenceRule is one entry in a policy document's sequences list. Exactly
// the fields relevant to Kind are populated.
type SequenceRule struct {
	Kind SequenceRuleKind `json:"kind"`

	// Before
	First string `json:"first,omitempty"`
	Then  string `json:"then,omitempty"`

	// MaxCalls
	Tool string `json:"tool,omitempty"`
	Max  int    `json:"max,omitempty"`

	// NotAfter
	Forbidden string `json:"forbidden,omitempty"`
	After     string `json:"after,omitempty"`
}

// SequenceState is the accumulating per-episode state the rules are
// evaluated against: call counts, first-seen index per tool, and full
// ordered history.
type SequenceState struct {
	Counts         map[string]int
	FirstSeenIndex map[string]int
	History        []string
}

// NewSequenceState returns an empty episode state.
func NewSequenceState() *SequenceState {
	return &SequenceState{
		Counts:         make(map[string]int),
		FirstSeenIndex: make(map[string]int),
	}
}

// SequenceViolation names the rule that failed and why.
type SequenceViolation struct {
	Rule    SequenceRule
	Message string
}

func (v *SequenceViolation) Error() string { return v.Message }

// CheckCall evaluates rules against a proposed call to tool before it is
// recorded into state, returning the first violation (if any). It does not
// mutate state; call RecordCall after a call is actually allowed.
func (s *SequenceState) CheckCall(tool string, rules []SequenceRule) *SequenceViolation {
	for _, r := range rules {
		switch r.Kind {
		case SequenceMaxCalls:
			if r.Tool == tool && s.Counts[tool]+1 > r.Max {
				return &SequenceViolation{Rule: r, Message: fmt.Sprintf("tool %q exceeded max_calls (%d)", tool, r.Max)}
			}
		case SequenceNotAfter:
			if r.Forbidden == tool {
				if _, seen := s.FirstSeenIndex[r.After]; seen {
					return &SequenceViolation{Rule: r, Message: fmt.Sprintf("tool %q forbidden after %q", r.Forbidden, r.After)}
				}
			}
		case SequenceBefore:
			if r.Then == tool {
				if _, seen := s.FirstSeenIndex[r.First]; !seen {
					return &SequenceViolation{Rule: r, Message: fmt.Sprintf("tool %q called before required predecessor %q", r.Then, r.First)}
				}
			}
		}
	}
	return nil
}

// RecordCall updates counts, first_seen_index, and history after a call
// has been allowed to proceed.
func (s *SequenceState) RecordCall(tool string) {
	if _, seen := s.FirstSeenIndex[tool]; !seen {
		s.FirstSeenIndex[tool] = len(s.History)
	}
	s.Counts[tool]++
	s.History = append(s.History, tool)
}

// CheckEpisodeEnd evaluates MustCallBeforeEnd rules against the final
// state, returning every unmet rule as a violation.
func (s *SequenceState) CheckEpisodeEnd(rules []SequenceRule) []*SequenceViolation {
	var violations []*SequenceViolation
	for _, r := range rules {
		if r.Kind != SequenceMustCallBeforeEnd {
			continue
		}
		if _, called := s.FirstSeenIndex[r.Tool]; !called {
			violations = append(violations, &SequenceViolation{
				Rule:    r,
				Message: fmt.Sprintf("required tool %q was never called", r.Tool),
			})
		}
	}
	return violations
}
