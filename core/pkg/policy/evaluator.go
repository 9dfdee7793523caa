package policy

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// VerdictKind discriminates the three evaluation outcomes.
type VerdictKind string

const (
	VerdictAllow             VerdictKind = "allow"
	VerdictAllowWithWarning  VerdictKind = "allow_with_warning"
	VerdictDeny              VerdictKind = "deny"
)

// Verdict is the outcome of evaluating one tool call against a policy.
type Verdict struct {
	Kind     VerdictKind
	Code     string
	Reason   string
	Contract map[string]interface{} // machine-readable violation description, set on Deny
}

const (
	CodeArgSchema           = "E_ARG_SCHEMA"
	CodeToolUnconstrained   = "E_TOOL_UNCONSTRAINED"
	CodeToolDenied          = "E_TOOL_DENIED"
	CodeToolNotAllowed      = "E_TOOL_NOT_ALLOWED"
	CodeSequenceViolation   = "E_SEQUENCE_VIOLATION"
)

// Evaluator holds a loaded policy document plus its compiled, per-tool
// cached JSON Schemas, and the accumulating sequence state for one episode.
type Evaluator struct {
	mu       sync.Mutex
	doc      *Document
	compiled map[string]*jsonschema.Schema
	state    *SequenceState
}

// NewEvaluator compiles every schema in doc once and returns an Evaluator
// ready to score calls for a fresh episode.
func NewEvaluator(doc *Document) (*Evaluator, error) {
	compiled := make(map[string]*jsonschema.Schema, len(doc.Schemas))
	for tool, raw := range doc.Schemas {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		url := fmt.Sprintf("https://assay.schemas.local/policy/%s.schema.json", tool)
		if err := c.AddResource(url, strings.NewReader(string(raw))); err != nil {
			return nil, fmt.Errorf("policy: loading schema for %q: %w", tool, err)
		}
		schema, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("policy: compiling schema for %q: %w", tool, err)
		}
		compiled[tool] = schema
	}

	return &Evaluator{
		doc:      doc,
		compiled: compiled,
		state:    NewSequenceState(),
	}, nil
}

// ResetEpisode discards accumulated sequence state, starting a fresh episode.
func (e *Evaluator) ResetEpisode() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = NewSequenceState()
}

// Evaluate scores a tool call in the fixed order: deny list, allow list,
// schema validation, sequence rules, then unconstrained-tools fallback. It
// is deterministic and idempotent for identical accumulated state; a call
// that returns Allow or AllowWithWarning is recorded into sequence state,
// Deny is not.
func (e *Evaluator) Evaluate(toolName string, params map[string]interface{}) *Verdict {
	e.mu.Lock()
	defer e.mu.Unlock()

	if matchesAny(toolName, e.doc.Tools.Deny) {
		return &Verdict{
			Kind:   VerdictDeny,
			Code:   CodeToolDenied,
			Reason: fmt.Sprintf("tool %q matches deny list", toolName),
			Contract: map[string]interface{}{
				"tool": toolName, "rule": "deny_list",
			},
		}
	}

	if len(e.doc.Tools.Allow) > 0 {
		allowed := expandAliases(e.doc.Tools.Allow, e.doc.Aliases)
		if !matchesAny(toolName, allowed) {
			return &Verdict{
				Kind:   VerdictDeny,
				Code:   CodeToolNotAllowed,
				Reason: fmt.Sprintf("tool %q not in allow list", toolName),
				Contract: map[string]interface{}{
					"tool": toolName, "rule": "allow_list",
				},
			}
		}
	}

	schema, hasSchema := e.compiled[toolName]
	if hasSchema {
		if err := schema.Validate(params); err != nil {
			return &Verdict{
				Kind:   VerdictDeny,
				Code:   CodeArgSchema,
				Reason: fmt.Sprintf("tool %q argument schema violated: %v", toolName, err),
				Contract: map[string]interface{}{
					"tool":       toolName,
					"violations": err.Error(),
				},
			}
		}
	}

	if violation := e.state.CheckCall(toolName, e.doc.Sequences); violation != nil {
		return &Verdict{
			Kind:   VerdictDeny,
			Code:   CodeSequenceViolation,
			Reason: violation.Message,
			Contract: map[string]interface{}{
				"tool": toolName, "rule": violation.Rule,
			},
		}
	}

	if !hasSchema {
		switch e.doc.Enforcement.UnconstrainedTools {
		case UnconstrainedDeny:
			return &Verdict{
				Kind:   VerdictDeny,
				Code:   CodeToolUnconstrained,
				Reason: fmt.Sprintf("tool %q has no schema and unconstrained_tools=deny", toolName),
			}
		case UnconstrainedWarn:
			e.state.RecordCall(toolName)
			return &Verdict{
				Kind:   VerdictAllowWithWarning,
				Code:   CodeToolUnconstrained,
				Reason: fmt.Sprintf("tool %q has no schema", toolName),
			}
		}
	}

	e.state.RecordCall(toolName)
	return &Verdict{Kind: VerdictAllow}
}

// EndEpisode evaluates MustCallBeforeEnd rules against final state.
func (e *Evaluator) EndEpisode() []*SequenceViolation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CheckEpisodeEnd(e.doc.Sequences)
}

// matchesAny reports whether name matches any pattern in patterns, where
// "*" matches exactly one dot-delimited segment (so "fs.*" matches
// "fs.write" but not "fs.write.bulk"), and any other entry is an exact or
// substring match per the documented grammar.
func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if matchesPattern(name, p) {
			return true
		}
	}
	return false
}

func matchesPattern(name, pattern string) bool {
	if pattern == name {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return strings.Contains(name, pattern)
	}
	nameSegs := strings.Split(name, ".")
	patSegs := strings.Split(pattern, ".")
	if len(nameSegs) != len(patSegs) {
		return false
	}
	for i, seg := range patSegs {
		if seg == "*" {
			continue
		}
		if seg != nameSegs[i] {
			return false
		}
	}
	return true
}
