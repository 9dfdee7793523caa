package canonicalize

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Limits bound every strict parse. They exist to keep a hostile or malformed
// pack/policy document from blowing up memory or CPU before it is rejected.
type Limits struct {
	MaxDepth    int
	MaxKeys     int
	MaxStringLen int
	MaxInputLen int
}

// DefaultLimits mirrors the bounds named in the canonicalization contract.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:     50,
		MaxKeys:      10000,
		MaxStringLen: 1 << 20,  // 1 MiB
		MaxInputLen:  10 << 20, // 10 MiB
	}
}

// StrictError is a machine-readable rejection reason from the strict parser.
type StrictError struct {
	Reason string
}

func (e *StrictError) Error() string { return "strict yaml: " + e.Reason }

func strictErrf(format string, args ...interface{}) error {
	return &StrictError{Reason: fmt.Sprintf(format, args...)}
}

// ParseStrictYAML decodes src under the strict subset accepted for signed
// artifacts: no anchors, aliases, explicit tags, multi-document streams or
// merge keys; no duplicate keys at any depth; integers only (no floats);
// integers must fit in the JSON-safe range (±2^53); bounded nesting, key
// count, string length and input size. On success it returns a JSON Value
// tree (maps, slices, strings, json.Number-compatible int64/string, bool,
// nil) ready for JCS serialization.
func ParseStrictYAML(src []byte) (interface{}, error) {
	if len(src) > DefaultLimits().MaxInputLen {
		return nil, strictErrf("input exceeds %d bytes", DefaultLimits().MaxInputLen)
	}

	dec := yaml.NewDecoder(bytes.NewReader(src))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, strictErrf("empty document")
		}
		return nil, strictErrf("parse error: %v", err)
	}

	// Reject multi-document streams: a second Decode call must hit EOF.
	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, strictErrf("multi-document streams are not accepted")
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) != 1 {
			return nil, strictErrf("document must contain exactly one root node")
		}
		root = root.Content[0]
	}

	limits := DefaultLimits()
	return convertStrict(root, limits, 0)
}

func convertStrict(n *yaml.Node, limits Limits, depth int) (interface{}, error) {
	if depth > limits.MaxDepth {
		return nil, strictErrf("nesting exceeds max depth %d", limits.MaxDepth)
	}
	if n.Anchor != "" {
		return nil, strictErrf("anchors are not accepted (anchor %q)", n.Anchor)
	}
	if n.Kind == yaml.AliasNode {
		return nil, strictErrf("aliases are not accepted")
	}

	switch n.Kind {
	case yaml.ScalarNode:
		return convertScalar(n, limits)
	case yaml.SequenceNode:
		if err := requirePlainTag(n, "!!seq"); err != nil {
			return nil, err
		}
		out := make([]interface{}, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := convertStrict(child, limits, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		if err := requirePlainTag(n, "!!map"); err != nil {
			return nil, err
		}
		if len(n.Content)%2 != 0 {
			return nil, strictErrf("malformed mapping")
		}
		keyCount := len(n.Content) / 2
		if keyCount > limits.MaxKeys {
			return nil, strictErrf("mapping exceeds max keys %d", limits.MaxKeys)
		}
		out := make(map[string]interface{}, keyCount)
		seen := make(map[string]bool, keyCount)
		for i := 0; i < len(n.Content); i += 2 {
			keyNode := n.Content[i]
			valNode := n.Content[i+1]

			if keyNode.Tag == "!!merge" || keyNode.Value == "<<" {
				return nil, strictErrf("merge keys are not accepted")
			}
			if keyNode.Kind != yaml.ScalarNode || keyNode.Tag != "!!str" && keyNode.Tag != "" {
				// yaml.v3 resolves plain unquoted keys to !!str by default unless
				// they look like another scalar type (bool/int/null); reject those.
				if keyNode.Kind != yaml.ScalarNode {
					return nil, strictErrf("mapping keys must be scalars")
				}
			}
			key := keyNode.Value
			if seen[key] {
				return nil, strictErrf("duplicate key %q", key)
			}
			seen[key] = true

			v, err := convertStrict(valNode, limits, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, strictErrf("unsupported node kind %v", n.Kind)
	}
}

func requirePlainTag(n *yaml.Node, want string) error {
	if n.Tag != "" && n.Tag != want {
		return strictErrf("explicit tags are not accepted (got %q)", n.Tag)
	}
	return nil
}

func convertScalar(n *yaml.Node, limits Limits) (interface{}, error) {
	if n.Tag != "" {
		switch n.Tag {
		case "!!str", "!!int", "!!bool", "!!null":
			// implicit/resolved core tags are fine
		case "!!float":
			return nil, strictErrf("floating point numbers are not accepted")
		default:
			return nil, strictErrf("explicit tags are not accepted (got %q)", n.Tag)
		}
	}

	switch n.Tag {
	case "!!null":
		return nil, nil
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, strictErrf("invalid bool %q", n.Value)
		}
		return b, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, strictErrf("invalid integer %q", n.Value)
		}
		const jsonSafeMax = int64(1) << 53
		if i > jsonSafeMax || i < -jsonSafeMax {
			return nil, strictErrf("integer %d outside JSON-safe range (±2^53)", i)
		}
		return i, nil
	default:
		if err := checkStringLen(n.Value, limits); err != nil {
			return nil, err
		}
		if err := checkNoLoneSurrogate(n.Value); err != nil {
			return nil, err
		}
		return n.Value, nil
	}
}

func checkStringLen(s string, limits Limits) error {
	if len(s) > limits.MaxStringLen {
		return strictErrf("string exceeds max length %d", limits.MaxStringLen)
	}
	return nil
}

// checkNoLoneSurrogate rejects UTF-16 lone surrogate escapes that decoded
// into invalid UTF-8. Go strings are UTF-8, so a lone surrogate only arises
// from an explicit \uD800-\uDFFF escape that wasn't paired; utf8.ValidString
// already rejects those because such a code point has no UTF-8 encoding, but
// the check is spelled out for a clearer rejection reason.
func checkNoLoneSurrogate(s string) error {
	if utf8.ValidString(s) {
		return nil
	}
	for _, r := range s {
		if utf16.IsSurrogate(r) {
			return strictErrf("string contains lone surrogate")
		}
	}
	return strictErrf("string is not valid UTF-8")
}
