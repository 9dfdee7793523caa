package pack

import "sort"

// LockSource records where a locked pack's bytes were resolved from.
type LockSource string

const (
	LockSourceLocal    LockSource = "local"
	LockSourceBundled  LockSource = "bundled"
	LockSourceRegistry LockSource = "registry"
	LockSourceByos     LockSource = "byos"
)

// LockSignature names the algorithm and key id that produced a pack's
// verified DSSE signature, recorded for audit without re-embedding the
// signature bytes themselves in the lockfile.
type LockSignature struct {
	Algorithm string `json:"algorithm"`
	KeyID     string `json:"key_id"`
}

// LockedPack is one resolved entry in a Lockfile.
type LockedPack struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Digest      string         `json:"digest"`
	Source      LockSource     `json:"source"`
	RegistryURL string         `json:"registry_url,omitempty"`
	ByosURL     string         `json:"byos_url,omitempty"`
	Signature   *LockSignature `json:"signature,omitempty"`
}

// Lockfile is an ordered, deterministic set of resolved packs.
type Lockfile struct {
	Packs []LockedPack `json:"packs"`
}

// NewLockfile returns an empty lockfile.
func NewLockfile() *Lockfile {
	return &Lockfile{Packs: []LockedPack{}}
}

// AddPack inserts or replaces the entry for locked.Name, then re-sorts by
// name so the lockfile serializes deterministically regardless of
// resolution order.
func (l *Lockfile) AddPack(locked LockedPack) {
	for i, existing := range l.Packs {
		if existing.Name == locked.Name {
			l.Packs[i] = locked
			l.sort()
			return
		}
	}
	l.Packs = append(l.Packs, locked)
	l.sort()
}

func (l *Lockfile) sort() {
	sort.Slice(l.Packs, func(i, j int) bool {
		return l.Packs[i].Name < l.Packs[j].Name
	})
}

// Find returns the locked entry for name, if present.
func (l *Lockfile) Find(name string) (LockedPack, bool) {
	for _, p := range l.Packs {
		if p.Name == name {
			return p, true
		}
	}
	return LockedPack{}, false
}
