package bundle

import (
	"archive/tar"
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/assayhq/assay/core/pkg/canonicalize"
)

// VerifyResult is the product of a successful C3 verification: the parsed
// manifest and the ordered, validated events it describes. Downstream
// components (C4 lint/diff/evaluation) consume this rather than re-parsing
// the archive.
type VerifyResult struct {
	Manifest *Manifest
	Events   []*Event
}

// Verify reads a .tar.gz bundle through the layered, bounded reader stack
// and checks every integrity, contract and security invariant named in the
// verifier contract. It never panics and never blocks unboundedly.
func Verify(r io.Reader, limits VerifyLimits) (*VerifyResult, error) {
	outer := newBoundedReader(r, limits.MaxBundleBytes, ClassLimits, CodeLimitBundleBytes, "bundle", limits.MaxRetries)

	gz, err := gzip.NewReader(outer)
	if err != nil {
		return nil, integrityErr("IntegrityGzipHeader", "invalid gzip stream: %v", err)
	}
	defer gz.Close()

	inner := newBoundedReader(gz, limits.MaxDecodeBytes, ClassLimits, CodeLimitDecodeBytes, "decoded bundle", limits.MaxRetries)

	tr := tar.NewReader(inner)

	var manifestBytes []byte
	var eventsBytes []byte
	seenManifest, seenEvents := false, false
	expectedOrder := []string{"manifest.json", "events.ndjson"}
	entryIndex := 0

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ve, ok := err.(*VerifyError); ok {
				return nil, ve
			}
			return nil, integrityErr("IntegrityTarStream", "reading tar stream: %v", err)
		}

		if err := checkTarPath(hdr.Name); err != nil {
			return nil, err
		}

		if entryIndex >= len(expectedOrder) {
			return nil, contractErr(CodeUnexpectedEntry, "unexpected extra tar entry %q", hdr.Name)
		}
		if hdr.Name != expectedOrder[entryIndex] {
			return nil, contractErr(CodeUnexpectedEntry, "expected entry %q at position %d, got %q", expectedOrder[entryIndex], entryIndex, hdr.Name)
		}
		entryIndex++

		switch hdr.Name {
		case "manifest.json":
			if seenManifest {
				return nil, contractErr(CodeUnexpectedEntry, "manifest.json appears more than once")
			}
			seenManifest = true
			manifestBytes, err = readCapped(tr, limits.MaxManifestBytes, ClassLimits, CodeLimitManifestSize, "manifest.json")
			if err != nil {
				return nil, err
			}
		case "events.ndjson":
			if seenEvents {
				return nil, contractErr(CodeUnexpectedEntry, "events.ndjson appears more than once")
			}
			seenEvents = true
			eventsBytes, err = readCapped(tr, limits.MaxEventsBytes, ClassLimits, CodeLimitEventsSize, "events.ndjson")
			if err != nil {
				return nil, err
			}
		}
	}

	if !seenManifest {
		return nil, contractErr(CodeMissingEntry, "missing manifest.json")
	}
	if !seenEvents {
		return nil, contractErr(CodeMissingEntry, "missing events.ndjson")
	}

	manifest, err := parseManifestStrict(manifestBytes)
	if err != nil {
		return nil, err
	}

	events, runRootHex, err := parseAndValidateEvents(eventsBytes, limits)
	if err != nil {
		return nil, err
	}

	eventsSum := sha256.Sum256(eventsBytes)
	eventsSumHex := hex.EncodeToString(eventsSum[:])

	entry, ok := manifest.Files["events.ndjson"]
	if !ok {
		return nil, contractErr(CodeMissingEntry, "manifest missing files[\"events.ndjson\"]")
	}
	if entry.SHA256 != eventsSumHex {
		return nil, integrityErr(CodeEventsDigestMismatch, "events.ndjson sha256 %s does not match manifest %s", eventsSumHex, entry.SHA256)
	}
	if entry.Bytes != int64(len(eventsBytes)) {
		return nil, integrityErr(CodeEventsLengthMismatch, "events.ndjson length %d does not match manifest %d", len(eventsBytes), entry.Bytes)
	}

	runRoot := FormatDigest(runRootHex)
	if manifest.RunRoot != runRoot {
		return nil, integrityErr(CodeRunRootMismatch, "manifest run_root %s does not match recomputed %s", manifest.RunRoot, runRoot)
	}
	if manifest.BundleID != runRoot {
		return nil, integrityErr(CodeBundleIDMismatch, "manifest bundle_id %s does not match run_root %s", manifest.BundleID, runRoot)
	}
	if manifest.EventCount != len(events) {
		return nil, integrityErr(CodeEventCountMismatch, "manifest event_count %d does not match observed %d", manifest.EventCount, len(events))
	}

	return &VerifyResult{Manifest: manifest, Events: events}, nil
}

func checkTarPath(name string) error {
	if len(name) > 256 {
		return securityErr(CodePathTooLong, "tar entry path %q exceeds 256 characters", name)
	}
	if strings.HasPrefix(name, "/") {
		return securityErr(CodeAbsolutePath, "tar entry path %q has a leading slash", name)
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return securityErr(CodePathTraversal, "tar entry path %q contains a .. segment", name)
		}
	}
	return nil
}

func readCapped(r io.Reader, limit int64, class ErrorClass, code, label string) ([]byte, error) {
	lr := newBoundedReader(r, limit, class, code, label, 16)
	data, err := io.ReadAll(lr)
	if err != nil {
		if ve, ok := err.(*VerifyError); ok {
			return nil, ve
		}
		return nil, integrityErr("IntegrityReadFailure", "reading %s: %v", label, err)
	}
	return data, nil
}

func parseManifestStrict(data []byte) (*Manifest, error) {
	v, err := canonicalize.DecodeStrictJSON(data)
	if err != nil {
		return nil, contractErr(CodeInvalidJSON, "manifest.json: %v", err)
	}
	// Round-trip through encoding/json onto the typed struct: the strict
	// decode already rejected duplicate keys and lone surrogates, so this
	// second pass is purely for field typing.
	reencoded, err := json.Marshal(v)
	if err != nil {
		return nil, contractErr(CodeInvalidJSON, "manifest.json: re-encoding failed: %v", err)
	}
	var m Manifest
	if err := json.Unmarshal(reencoded, &m); err != nil {
		return nil, contractErr(CodeInvalidJSON, "manifest.json: %v", err)
	}
	return &m, nil
}

// parseAndValidateEvents streams events.ndjson line by line, enforcing the
// per-line byte cap, max line count and JSON depth, and the sequencing
// invariants (contiguous seq, shared run_id, non-decreasing time).
func parseAndValidateEvents(data []byte, limits VerifyLimits) ([]*Event, string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), limits.MaxLineBytes+1)

	var events []*Event
	var runID, source string
	var lastTime time.Time
	h := sha256.New()

	lineNo := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		lineNo++
		if lineNo > limits.MaxLines {
			return nil, "", limitErr(CodeLimitLineCount, "event count exceeds max lines %d", limits.MaxLines)
		}
		if len(line) > limits.MaxLineBytes {
			return nil, "", limitErr(CodeLimitLineBytes, "event line %d exceeds %d bytes", lineNo, limits.MaxLineBytes)
		}

		if err := checkJSONDepth(line, limits.MaxJSONDepth); err != nil {
			return nil, "", err
		}

		v, err := canonicalize.DecodeStrictJSON(line)
		if err != nil {
			return nil, "", contractErr(CodeInvalidJSON, "event line %d: %v", lineNo, err)
		}
		reencoded, err := json.Marshal(v)
		if err != nil {
			return nil, "", contractErr(CodeInvalidJSON, "event line %d: %v", lineNo, err)
		}
		var e Event
		if err := json.Unmarshal(reencoded, &e); err != nil {
			return nil, "", contractErr(CodeInvalidJSON, "event line %d: %v", lineNo, err)
		}

		i := len(events)
		if e.Seq != uint64(i) {
			return nil, "", contractErr(CodeSequenceGap, "event %d: expected seq %d, got %d", i, i, e.Seq)
		}
		if i == 0 {
			runID, source = e.RunID, e.Source
		} else {
			if e.RunID != runID {
				return nil, "", contractErr(CodeRunIDMismatch, "event %d: run_id %q does not match %q", i, e.RunID, runID)
			}
			if e.Source != source {
				return nil, "", contractErr(CodeSourceMismatch, "event %d: source %q does not match %q", i, e.Source, source)
			}
		}

		t, err := e.ParsedTime()
		if err != nil {
			return nil, "", contractErr(CodeInvalidJSON, "event %d: %v", i, err)
		}
		if i > 0 && t.Before(lastTime) {
			return nil, "", contractErr(CodeNonMonotonicTime, "event %d: time %s precedes previous event's time", i, e.Time)
		}
		lastTime = t

		computed, err := e.ComputeContentHash()
		if err != nil {
			return nil, "", contractErr(CodeInvalidJSON, "event %d: computing content_hash: %v", i, err)
		}
		if e.ContentHash != "" && e.ContentHash != computed {
			return nil, "", integrityErr(CodeContentHashMismatch, "event %d: declared content_hash %q does not match computed %q", i, e.ContentHash, computed)
		}

		wantID := e.ExpectedID()
		if e.ID != wantID {
			return nil, "", contractErr(CodeInvalidID, "event %d: id %q does not match expected %q", i, e.ID, wantID)
		}

		h.Write([]byte(computed))
		h.Write([]byte("\n"))

		events = append(events, &e)
	}
	if err := scanner.Err(); err != nil {
		return nil, "", integrityErr("IntegrityReadFailure", "reading events.ndjson: %v", err)
	}

	return events, hex.EncodeToString(h.Sum(nil)), nil
}

func checkJSONDepth(line []byte, maxDepth int) error {
	depth := 0
	inString := false
	escaped := false
	for _, c := range line {
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
			if depth > maxDepth {
				return limitErr(CodeLimitJSONDepth, "json nesting exceeds max depth %d", maxDepth)
			}
		case '}', ']':
			depth--
		}
	}
	return nil
}
