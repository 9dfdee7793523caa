package canonicalize

import "strings"

// Sha256Prefix is the content-address scheme prefix used throughout the
// core: "sha256:" followed by 64 lowercase hex characters.
const Sha256Prefix = "sha256:"

// FormatDigest prepends the sha256 scheme prefix to a lowercase hex digest.
func FormatDigest(hexDigest string) string {
	return Sha256Prefix + hexDigest
}

// CanonicalDigest returns sha256:<hex> of the JCS encoding of v.
func CanonicalDigest(v interface{}) (string, error) {
	h, err := CanonicalHash(v)
	if err != nil {
		return "", err
	}
	return FormatDigest(h), nil
}

// TrimDigestPrefix strips a leading "sha256:" if present, returning the bare
// hex string and whether the prefix was present.
func TrimDigestPrefix(digest string) (string, bool) {
	return strings.TrimPrefix(digest, Sha256Prefix), strings.HasPrefix(digest, Sha256Prefix)
}
