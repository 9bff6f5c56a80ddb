// Package seqmatch compares pairs of sequences of comparable elements.
//
// The basic algorithm is a little fancier than the one published in the late
// 1980's by Ratcliff and Obershelp under the name "gestalt pattern matching":
// find the longest contiguous matching subsequence that contains no "junk"
// elements, then apply the same idea recursively to the pieces to the left
// and right of that match. This does not yield minimal edit sequences, but
// does tend to yield matches that "look right" to people, and it resists
// synching up on blocks of junk lines (blank lines in ordinary text files,
// say) because junk never anchors a match.
//
// Timing: basic Ratcliff-Obershelp is cubic time worst case and quadratic
// expected case. Matcher is quadratic worst case and has expected-case
// behavior dependent on how many elements the sequences have in common;
// best case is linear.
package seqmatch

import (
	"go.uber.org/zap"
)

// OpTag identifies the kind of edit an opcode describes.
type OpTag string

const (
	OpEqual   OpTag = "equal"
	OpInsert  OpTag = "insert"
	OpDelete  OpTag = "delete"
	OpReplace OpTag = "replace"
)

// Match records a run of Size identical elements starting at offset A in the
// first sequence and offset B in the second.
type Match struct {
	A    int
	B    int
	Size int
}

// OpCode describes how to turn a[I1:I2] into b[J1:J2]. Ranges are half-open.
type OpCode struct {
	Tag OpTag
	I1  int
	I2  int
	J1  int
	J2  int
}

// Popularity filtering only kicks in once b reaches this length.
const autojunkMinLen = 200

// Option configures matcher behavior.
type Option[E comparable] func(*options[E])

type options[E comparable] struct {
	junk     func(E) bool
	autojunk bool
	logger   *zap.Logger
}

// WithJunk sets the junk predicate. Junk elements never form the core of a
// match, though a match may absorb them at its edges. A nil predicate means
// no element is junk and the predicate is never consulted.
func WithJunk[E comparable](fn func(E) bool) Option[E] {
	return func(o *options[E]) {
		o.junk = fn
	}
}

// WithoutAutoJunk disables the popular-element heuristic that treats elements
// occurring in more than 1% of a long second sequence like junk.
func WithoutAutoJunk[E comparable]() Option[E] {
	return func(o *options[E]) {
		o.autojunk = false
	}
}

// WithLogger sets the logger for debug-level diagnostics (index rebuild
// statistics). The default is a no-op logger.
func WithLogger[E comparable](logger *zap.Logger) Option[E] {
	return func(o *options[E]) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultOptions[E comparable]() *options[E] {
	return &options[E]{
		autojunk: true,
		logger:   zap.NewNop(),
	}
}

// Matcher compares two sequences a and b. It is cheapest to use when one
// sequence is compared against many others: everything derived from b is
// kept across SetSeq1 calls, so set b once and vary a.
//
// A Matcher is not safe for concurrent use. Even read-only queries memoize
// their results on first call.
type Matcher[E comparable] struct {
	a, b     []E
	junk     func(E) bool
	autojunk bool
	logger   *zap.Logger

	b2j            map[E][]int
	bJunk          map[E]struct{}
	bPopular       map[E]struct{}
	fullBCount     map[E]int
	matchingBlocks []Match
	opCodes        []OpCode
}

// New creates a matcher over the sequences a and b.
func New[E comparable](a, b []E, opts ...Option[E]) *Matcher[E] {
	o := defaultOptions[E]()
	for _, opt := range opts {
		opt(o)
	}
	m := &Matcher[E]{
		junk:     o.junk,
		autojunk: o.autojunk,
		logger:   o.logger,
	}
	m.SetSeqs(a, b)
	return m
}

// SetSeqs sets the two sequences to be compared.
func (m *Matcher[E]) SetSeqs(a, b []E) {
	m.SetSeq1(a)
	m.SetSeq2(b)
}

// SetSeq1 replaces the first sequence. Only the matching-block and opcode
// caches are invalidated; the index over b survives.
func (m *Matcher[E]) SetSeq1(a []E) {
	m.a = a
	m.matchingBlocks, m.opCodes = nil, nil
}

// SetSeq2 replaces the second sequence and rebuilds the index over b.
func (m *Matcher[E]) SetSeq2(b []E) {
	m.b = b
	m.matchingBlocks, m.opCodes = nil, nil
	m.fullBCount = nil
	m.chainB()
}

// chainB indexes b into b2j, mapping each element to the ascending list of
// positions where it occurs, with junk and popular elements purged into
// their own membership sets.
func (m *Matcher[E]) chainB() {
	b2j := make(map[E][]int, len(m.b))
	for i, elt := range m.b {
		b2j[elt] = append(b2j[elt], i)
	}

	// Purge junk elements
	junk := map[E]struct{}{}
	if m.junk != nil {
		for elt := range b2j {
			if m.junk(elt) {
				junk[elt] = struct{}{}
			}
		}
		for elt := range junk {
			delete(b2j, elt)
		}
	}

	// Purge popular elements that are not junk
	popular := map[E]struct{}{}
	n := len(m.b)
	if m.autojunk && n >= autojunkMinLen {
		ntest := n/100 + 1
		for elt, indices := range b2j {
			if len(indices) > ntest {
				popular[elt] = struct{}{}
			}
		}
		for elt := range popular {
			delete(b2j, elt)
		}
	}

	m.bJunk = junk
	m.bPopular = popular
	m.b2j = b2j

	if ce := m.logger.Check(zap.DebugLevel, "rebuilt b index"); ce != nil {
		ce.Write(
			zap.Int("len_b", n),
			zap.Int("alphabet", len(b2j)),
			zap.Int("junk", len(junk)),
			zap.Int("popular", len(popular)),
		)
	}
}

func (m *Matcher[E]) isBJunk(e E) bool {
	_, ok := m.bJunk[e]
	return ok
}

func (m *Matcher[E]) isBPopular(e E) bool {
	_, ok := m.bPopular[e]
	return ok
}
