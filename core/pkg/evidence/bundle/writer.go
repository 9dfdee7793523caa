package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/assayhq/assay/core/pkg/canonicalize"
)

// schemaVersion is the only manifest shape this writer ever emits.
const schemaVersion = 1

// FileEntry is one entry in the manifest's files map.
type FileEntry struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Bytes  int64  `json:"bytes"`
}

// Algorithms records the fixed algorithm choices baked into every bundle.
type Algorithms struct {
	Canon string `json:"canon"`
	Hash  string `json:"hash"`
	Root  string `json:"root"`
}

// Producer identifies who produced the run, copied from the first event.
type Producer struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}

// Manifest is the single manifest.json object per bundle.
type Manifest struct {
	SchemaVersion int                  `json:"schema_version"`
	BundleID      string               `json:"bundle_id"`
	Producer      Producer             `json:"producer"`
	RunID         string               `json:"run_id"`
	EventCount    int                  `json:"event_count"`
	RunRoot       string               `json:"run_root"`
	Algorithms    Algorithms           `json:"algorithms"`
	Files         map[string]FileEntry `json:"files"`
}

// Writer collects events into an internal buffer until Finish is called.
// A Writer is single-producer: owned exclusively from construction to
// Finish, after which it must be discarded.
type Writer struct {
	events []*Event
}

// NewWriter returns an empty bundle writer.
func NewWriter() *Writer {
	return &Writer{}
}

// AddEvent buffers one event. Events may be added out of seq order; Finish
// sorts by seq before validating contiguity.
func (w *Writer) AddEvent(e *Event) {
	w.events = append(w.events, e)
}

const maxEvents = 100000

// Finish normalizes and packs the buffered events into a deterministic
// tar.gz archive, returning its bytes and the manifest it embedded.
//
// Order of operations, exactly as specified:
//  1. sort events by seq
//  2. per-event validation and content_hash computation
//  3. run_root computation
//  4. manifest construction
//  5. events.ndjson emission
//  6. manifest.json emission
//  7. deterministic tar+gzip packing
func (w *Writer) Finish() ([]byte, *Manifest, error) {
	if len(w.events) == 0 {
		return nil, nil, fmt.Errorf("bundle is empty")
	}
	if len(w.events) > maxEvents {
		return nil, nil, &VerifyError{Class: ClassLimits, Code: CodeLimitLineCount, Message: fmt.Sprintf("event count %d exceeds max %d", len(w.events), maxEvents)}
	}

	sorted := make([]*Event, len(w.events))
	copy(sorted, w.events)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	first := sorted[0]
	if !IsURI(first.Source) {
		return nil, nil, fmt.Errorf("first event source %q is not a URI", first.Source)
	}
	if bytesIndexColon(first.RunID) >= 0 {
		return nil, nil, fmt.Errorf("run_id %q must not contain a colon", first.RunID)
	}

	contentHashes := make([]string, len(sorted))
	var lastTime time.Time
	for i, e := range sorted {
		if e.Seq != uint64(i) {
			return nil, nil, fmt.Errorf("seq gap: expected %d, got %d", i, e.Seq)
		}
		if e.RunID != first.RunID {
			return nil, nil, fmt.Errorf("event %d: run_id %q does not match bundle run_id %q", i, e.RunID, first.RunID)
		}
		if e.Source != first.Source {
			return nil, nil, fmt.Errorf("event %d: source %q does not match bundle source %q", i, e.Source, first.Source)
		}

		computed, err := e.ComputeContentHash()
		if err != nil {
			return nil, nil, fmt.Errorf("event %d: computing content_hash: %w", i, err)
		}
		if e.ContentHash != "" && e.ContentHash != computed {
			return nil, nil, fmt.Errorf("event %d: declared content_hash %q does not match computed %q", i, e.ContentHash, computed)
		}
		e.ContentHash = computed
		contentHashes[i] = computed

		wantID := e.ExpectedID()
		if e.ID != "" && e.ID != wantID {
			return nil, nil, fmt.Errorf("event %d: declared id %q does not match expected %q", i, e.ID, wantID)
		}
		e.ID = wantID

		t, err := e.ParsedTime()
		if err != nil {
			return nil, nil, err
		}
		if i > 0 && t.Before(lastTime) {
			return nil, nil, fmt.Errorf("event %d: time %s is before previous event's time %s", i, e.Time, lastTime.Format(time.RFC3339))
		}
		lastTime = t
	}

	runRoot := FormatDigest(computeRunRootHex(contentHashes))

	var eventsBuf bytes.Buffer
	for _, e := range sorted {
		line, err := JCSLine(e)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding event %s: %w", e.ID, err)
		}
		eventsBuf.Write(line)
	}
	eventsBytes := eventsBuf.Bytes()
	eventsSum := sha256.Sum256(eventsBytes)

	manifest := &Manifest{
		SchemaVersion: schemaVersion,
		BundleID:      runRoot,
		Producer: Producer{
			Name:    first.Producer,
			Version: first.ProducerVersion,
			GitSHA:  first.GitSHA,
		},
		RunID:      first.RunID,
		EventCount: len(sorted),
		RunRoot:    runRoot,
		Algorithms: Algorithms{
			Canon: "jcs-rfc8785",
			Hash:  "sha256",
			Root:  "sha256(content_hash_0 || \"\\n\" || content_hash_1 || \"\\n\" || ...)",
		},
		Files: map[string]FileEntry{
			"events.ndjson": {
				Path:   "events.ndjson",
				SHA256: hex.EncodeToString(eventsSum[:]),
				Bytes:  int64(len(eventsBytes)),
			},
		},
	}

	manifestBytes, err := canonicalize.JCS(manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding manifest: %w", err)
	}

	archive, err := packDeterministic(manifestBytes, eventsBytes)
	if err != nil {
		return nil, nil, err
	}

	return archive, manifest, nil
}

// FormatDigest re-exports canonicalize.FormatDigest for callers that only
// import the bundle package.
func FormatDigest(hexDigest string) string { return canonicalize.FormatDigest(hexDigest) }

func computeRunRootHex(contentHashes []string) string {
	h := sha256.New()
	for _, ch := range contentHashes {
		io.WriteString(h, ch)
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}

func bytesIndexColon(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

// packDeterministic writes manifest.json then events.ndjson into a tar
// archive with fixed header fields, gzipped at best compression with a
// deterministic gzip header.
func packDeterministic(manifestBytes, eventsBytes []byte) ([]byte, error) {
	var out bytes.Buffer

	gz, err := gzip.NewWriterLevel(&out, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	gz.Name = ""
	gz.ModTime = time.Unix(0, 0)
	gz.OS = 0xff // unknown, per RFC 1952

	tw := tar.NewWriter(gz)

	if err := addDeterministicEntry(tw, "manifest.json", manifestBytes); err != nil {
		return nil, err
	}
	if err := addDeterministicEntry(tw, "events.ndjson", eventsBytes); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip: %w", err)
	}
	return out.Bytes(), nil
}

func addDeterministicEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0644,
		Uid:      0,
		Gid:      0,
		Uname:    "assay",
		Gname:    "assay",
		Size:     int64(len(data)),
		ModTime:  time.Unix(0, 0),
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing tar body for %s: %w", name, err)
	}
	return nil
}
