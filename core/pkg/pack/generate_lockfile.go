package pack

import (
	"context"
	"fmt"

	"github.com/assayhq/assay/core/pkg/crypto"
)

// Resolved is what a ReferenceResolver produces for a single PackRef:
// the raw canonical-subset YAML bytes plus whatever verification
// envelope accompanied it, if any.
type Resolved struct {
	RawYAML     []byte
	RegistryURL string // set when Kind == RefRegistry and fetched from a remote registry
	ByosURL     string // set when Kind == RefByos
	Envelope    *crypto.DSSEEnvelope
}

// ReferenceResolver fetches the bytes (and optional signature) behind
// a parsed PackRef. Production callers back this with FSRegistry for
// RefBundled/RefLocal and an HTTP client for RefRegistry/RefByos.
type ReferenceResolver interface {
	Resolve(ctx context.Context, ref *PackRef) (*Resolved, error)
}

// GenerateLockfile resolves each reference string, verifies any
// attached signature against trust, and assembles a deterministic
// Lockfile. A reference whose envelope fails verification aborts the
// whole run: a lockfile is only ever produced from fully-verified
// inputs.
func GenerateLockfile(ctx context.Context, references []string, resolver ReferenceResolver, trust *crypto.TrustStore) (*Lockfile, error) {
	lock := NewLockfile()

	for _, raw := range references {
		ref, err := ParsePackRef(raw)
		if err != nil {
			return nil, fmt.Errorf("pack: parsing reference %q: %w", raw, err)
		}

		resolved, err := resolver.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("pack: resolving %q: %w", raw, err)
		}

		locked, err := lockEntry(ref, resolved, trust)
		if err != nil {
			return nil, fmt.Errorf("pack: locking %q: %w", raw, err)
		}
		lock.AddPack(locked)
	}

	return lock, nil
}

func lockEntry(ref *PackRef, resolved *Resolved, trust *crypto.TrustStore) (LockedPack, error) {
	digest, err := ComputeCanonicalDigest(resolved.RawYAML)
	if err != nil {
		return LockedPack{}, err
	}

	locked := LockedPack{
		Name:    ref.Name,
		Version: ref.Version,
		Digest:  digest,
	}

	switch ref.Kind {
	case RefBundled:
		locked.Source = LockSourceBundled
	case RefLocal:
		locked.Source = LockSourceLocal
	case RefRegistry:
		locked.Source = LockSourceRegistry
		locked.RegistryURL = resolved.RegistryURL
	case RefByos:
		locked.Source = LockSourceByos
		locked.ByosURL = resolved.ByosURL
	default:
		return LockedPack{}, fmt.Errorf("unknown reference kind %q", ref.Kind)
	}

	if resolved.Envelope != nil {
		payload, err := canonicalJSONBytes(resolved.RawYAML)
		if err != nil {
			return LockedPack{}, err
		}
		if err := crypto.VerifyDSSEEnvelope(payload, resolved.Envelope, crypto.PayloadTypePack, trust); err != nil {
			return LockedPack{}, err
		}
		if len(resolved.Envelope.Signatures) > 0 {
			locked.Signature = &LockSignature{
				Algorithm: "Ed25519",
				KeyID:     resolved.Envelope.Signatures[0].KeyID,
			}
		}
	}

	if locked.Version == "" {
		locked.Version = digest
	}

	return locked, nil
}
