package bundle

import "io"

// boundedReader counts bytes read through it and fails once the configured
// limit is exceeded, the layered defense against decompression bombs: one
// counter outside gzip (compressed bytes), one inside (decoded bytes).
type boundedReader struct {
	r         io.Reader
	limit     int64
	read      int64
	class     ErrorClass
	code      string
	label     string
	maxRetry  int
	zeroReads int
}

func newBoundedReader(r io.Reader, limit int64, class ErrorClass, code, label string, maxRetry int) *boundedReader {
	return &boundedReader{r: r, limit: limit, class: class, code: code, label: label, maxRetry: maxRetry}
}

func (b *boundedReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n == 0 && err == nil {
		// A spurious interrupt: the underlying reader returned nothing and no
		// error. Retry a bounded number of times before giving up.
		b.zeroReads++
		if b.zeroReads > b.maxRetry {
			return 0, verifyErr(ClassLimits, CodePersistentInterrupt, "%s: exceeded %d retries on spurious empty read", b.label, b.maxRetry)
		}
		return 0, nil
	}
	b.zeroReads = 0
	b.read += int64(n)
	if b.read > b.limit {
		return n, verifyErr(b.class, b.code, "%s exceeds limit of %d bytes", b.label, b.limit)
	}
	return n, err
}
