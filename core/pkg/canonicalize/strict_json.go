package canonicalize

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StrictJSONError mirrors StrictError but is raised by the JSON-side of the
// trust boundary (manifests, event lines, mandates, policies, packs already
// expressed as JSON). Any JSON crossing a trust boundary must go through
// this decoder; internal fixtures may use encoding/json directly.
type StrictJSONError struct {
	Reason string
}

func (e *StrictJSONError) Error() string { return "strict json: " + e.Reason }

func strictJSONErrf(format string, args ...interface{}) error {
	return &StrictJSONError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeStrictJSON parses data into a JSON Value tree, rejecting duplicate
// object keys at any depth and strings containing lone UTF-16 surrogates.
func DecodeStrictJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeStrictValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, strictJSONErrf("trailing data after top-level value")
	}
	return v, nil
}

func decodeStrictValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, strictJSONErrf("invalid json: %v", err)
	}
	return decodeStrictFromToken(dec, tok)
}

func decodeStrictFromToken(dec *json.Decoder, tok json.Token) (interface{}, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeStrictObject(dec)
		case '[':
			return decodeStrictArray(dec)
		default:
			return nil, strictJSONErrf("unexpected delimiter %q", t)
		}
	case string:
		if err := checkNoLoneSurrogate(t); err != nil {
			return nil, strictJSONErrf("string contains a lone surrogate")
		}
		return t, nil
	case json.Number:
		return t, nil
	case bool:
		return t, nil
	case nil:
		return nil, nil
	default:
		return nil, strictJSONErrf("unsupported token %v", tok)
	}
}

func decodeStrictObject(dec *json.Decoder) (interface{}, error) {
	out := make(map[string]interface{})
	seen := make(map[string]bool)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, strictJSONErrf("invalid json: %v", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, strictJSONErrf("object key is not a string")
		}
		if err := checkNoLoneSurrogate(key); err != nil {
			return nil, strictJSONErrf("object key contains a lone surrogate")
		}
		if seen[key] {
			return nil, strictJSONErrf("duplicate key %q", key)
		}
		seen[key] = true

		val, err := decodeStrictValue(dec)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	if _, err := dec.Token(); err != nil { // consume closing '}'
		return nil, strictJSONErrf("invalid json: %v", err)
	}
	return out, nil
}

func decodeStrictArray(dec *json.Decoder) (interface{}, error) {
	out := make([]interface{}, 0)
	for dec.More() {
		val, err := decodeStrictValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	if _, err := dec.Token(); err != nil { // consume closing ']'
		return nil, strictJSONErrf("invalid json: %v", err)
	}
	return out, nil
}
