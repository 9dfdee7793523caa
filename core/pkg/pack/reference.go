package pack

import (
	"fmt"
	"strings"
)

// RefKind discriminates the four ways a pack can be referenced for
// resolution: by name+version against a configured registry, by name
// against the binary's bundled packs, by filesystem path, or by a
// bring-your-own-source URL.
type RefKind string

const (
	RefRegistry RefKind = "registry"
	RefBundled  RefKind = "bundled"
	RefLocal    RefKind = "local"
	RefByos     RefKind = "byos"
)

// PackRef is a parsed pack reference string.
type PackRef struct {
	Kind    RefKind
	Name    string
	Version string // only meaningful for RefRegistry
	URL     string // only meaningful for RefByos
	Path    string // only meaningful for RefLocal
}

// ParsePackRef parses one of:
//   - "name@version"     -> RefRegistry
//   - "bundled:name"     -> RefBundled
//   - "file:./path.yaml" -> RefLocal
//   - "https://..."      -> RefByos
func ParsePackRef(raw string) (*PackRef, error) {
	if raw == "" {
		return nil, fmt.Errorf("pack: empty reference")
	}

	switch {
	case strings.HasPrefix(raw, "bundled:"):
		name := strings.TrimPrefix(raw, "bundled:")
		if name == "" {
			return nil, fmt.Errorf("pack: bundled reference missing name")
		}
		return &PackRef{Kind: RefBundled, Name: name}, nil

	case strings.HasPrefix(raw, "file:"):
		path := strings.TrimPrefix(raw, "file:")
		if path == "" {
			return nil, fmt.Errorf("pack: local reference missing path")
		}
		return &PackRef{Kind: RefLocal, Path: path, Name: stemName(path)}, nil

	case strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "http://"):
		return &PackRef{Kind: RefByos, URL: raw, Name: stemName(raw)}, nil

	default:
		name, version, ok := strings.Cut(raw, "@")
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("pack: invalid registry reference %q, want name@version", raw)
		}
		return &PackRef{Kind: RefRegistry, Name: name, Version: version}, nil
	}
}

func stemName(path string) string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".yaml")
	name = strings.TrimSuffix(name, ".yml")
	if name == "" {
		return "unknown"
	}
	return name
}
