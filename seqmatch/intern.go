package seqmatch

import "github.com/zeebo/xxh3"

// InternLines maps each line to its 64-bit xxh3 fingerprint. Matching over
// fingerprints avoids keying maps by full line contents, which dominates
// block decomposition on large corpora of long lines.
func InternLines(lines []string) []uint64 {
	out := make([]uint64, len(lines))
	for i, line := range lines {
		out[i] = xxh3.HashString(line)
	}
	return out
}

// NewInterned builds a matcher over the fingerprints of a and b. Distinct
// lines with colliding fingerprints compare equal, so this path is meant for
// similarity scoring and block shape, not for rendering deltas; use a string
// matcher when the output will quote line contents.
func NewInterned(a, b []string, opts ...Option[uint64]) *Matcher[uint64] {
	return New(InternLines(a), InternLines(b), opts...)
}
