package bundle

// VerifyLimits bounds every read during C3 verification, preventing
// decompression bombs and unbounded memory growth from a hostile bundle.
type VerifyLimits struct {
	MaxBundleBytes   int64
	MaxDecodeBytes   int64
	MaxManifestBytes int64
	MaxEventsBytes   int64
	MaxLineBytes     int
	MaxLines         int
	MaxJSONDepth     int
	MaxRetries       int
}

// DefaultVerifyLimits matches the defaults named in the verifier contract.
func DefaultVerifyLimits() VerifyLimits {
	return VerifyLimits{
		MaxBundleBytes:   100 << 20,   // 100 MiB
		MaxDecodeBytes:   1 << 30,     // 1 GiB
		MaxManifestBytes: 10 << 20,    // 10 MiB, generous relative to bundle cap
		MaxEventsBytes:   1 << 30,     // bounded again by MaxDecodeBytes overall
		MaxLineBytes:     1 << 20,     // 1 MiB
		MaxLines:         100000,
		MaxJSONDepth:     64,
		MaxRetries:       16,
	}
}
