package seqmatch

import (
	"sort"
	"time"

	"github.com/fulmenhq/fuldiff/telemetry"
	"github.com/fulmenhq/fuldiff/telemetry/metrics"
)

// FindLongestMatch finds the longest matching block in a[alo:ahi] and
// b[blo:bhi].
//
// Among all maximal blocks with no junk element in their span, the one
// returned maximizes size, then minimizes the start in a, then the start in
// b. The winner is then extended on both sides, first through equal non-junk
// elements and then through equal junk: popular elements never anchor a
// match but may be absorbed at its edges.
//
// Common prefixes and suffixes are deliberately not stripped first. For
// a = "ab", b = "acab" the right answer is the trailing "ab"; stripping
// would settle on the leading "a" and mislead the opcodes built on top.
func (m *Matcher[E]) FindLongestMatch(alo, ahi, blo, bhi int) Match {
	besti, bestj, bestsize := alo, blo, 0

	// Longest junk-free match, one rolling row of lengths at a time.
	// j2len[j] is the length of the match ending at a[i-1], b[j]. Positions
	// in b2j are ascending, so j-1 is always read from the previous row.
	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newj2len := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newj2len
	}

	// Extend the best by non-junk elements on each end
	for besti > alo && bestj > blo && !m.isBJunk(m.b[bestj-1]) &&
		m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi &&
		!m.isBJunk(m.b[bestj+bestsize]) &&
		m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	// Then absorb adjacent junk
	for besti > alo && bestj > blo && m.isBJunk(m.b[bestj-1]) &&
		m.a[besti-1] == m.b[bestj-1] {
		besti, bestj, bestsize = besti-1, bestj-1, bestsize+1
	}
	for besti+bestsize < ahi && bestj+bestsize < bhi &&
		m.isBJunk(m.b[bestj+bestsize]) &&
		m.a[besti+bestsize] == m.b[bestj+bestsize] {
		bestsize++
	}

	return Match{A: besti, B: bestj, Size: bestsize}
}

// GetMatchingBlocks returns the list of triples describing the matching
// subsequences, ascending in both coordinates, with touching triples
// collapsed and a terminating sentinel Match{len(a), len(b), 0}. The result
// is cached until either sequence changes.
//
// Decomposition runs over an explicit work queue rather than recursing;
// pathological inputs have blown host stacks under the recursive form.
func (m *Matcher[E]) GetMatchingBlocks() []Match {
	if m.matchingBlocks != nil {
		return m.matchingBlocks
	}
	start := time.Now()

	type window struct{ alo, ahi, blo, bhi int }
	queue := []window{{0, len(m.a), 0, len(m.b)}}
	var matched []Match
	for len(queue) > 0 {
		w := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		match := m.FindLongestMatch(w.alo, w.ahi, w.blo, w.bhi)
		i, j, k := match.A, match.B, match.Size
		if k > 0 {
			matched = append(matched, match)
			if w.alo < i && w.blo < j {
				queue = append(queue, window{w.alo, i, w.blo, j})
			}
			if i+k < w.ahi && j+k < w.bhi {
				queue = append(queue, window{i + k, w.ahi, j + k, w.bhi})
			}
		}
	}
	sort.Slice(matched, func(x, y int) bool {
		if matched[x].A != matched[y].A {
			return matched[x].A < matched[y].A
		}
		if matched[x].B != matched[y].B {
			return matched[x].B < matched[y].B
		}
		return matched[x].Size < matched[y].Size
	})

	// Extension can make two independently found matches abut; collapse them.
	nonAdjacent := []Match{}
	i1, j1, k1 := 0, 0, 0
	for _, b := range matched {
		if i1+k1 == b.A && j1+k1 == b.B {
			k1 += b.Size
		} else {
			if k1 > 0 {
				nonAdjacent = append(nonAdjacent, Match{i1, j1, k1})
			}
			i1, j1, k1 = b.A, b.B, b.Size
		}
	}
	if k1 > 0 {
		nonAdjacent = append(nonAdjacent, Match{i1, j1, k1})
	}
	nonAdjacent = append(nonAdjacent, Match{len(m.a), len(m.b), 0})
	m.matchingBlocks = nonAdjacent

	telemetry.EmitCounter(metrics.SeqmatchBlocksTotal, float64(len(nonAdjacent)), nil)
	telemetry.EmitHistogram(metrics.SeqmatchMatchMs, time.Since(start), nil)
	return m.matchingBlocks
}

// GetOpCodes returns the list of opcodes describing how to turn a into b.
// Opcodes tile [0,len(a)) x [0,len(b)) in lockstep: each one starts where
// its predecessor ended. The result is cached until either sequence changes.
func (m *Matcher[E]) GetOpCodes() []OpCode {
	if m.opCodes != nil {
		return m.opCodes
	}
	i, j := 0, 0
	matching := m.GetMatchingBlocks()
	opCodes := make([]OpCode, 0, len(matching))
	for _, bl := range matching {
		ai, bj, size := bl.A, bl.B, bl.Size
		var tag OpTag
		if i < ai && j < bj {
			tag = OpReplace
		} else if i < ai {
			tag = OpDelete
		} else if j < bj {
			tag = OpInsert
		}
		if tag != "" {
			opCodes = append(opCodes, OpCode{tag, i, ai, j, bj})
		}
		i, j = ai+size, bj+size
		if size > 0 {
			opCodes = append(opCodes, OpCode{OpEqual, ai, i, bj, j})
		}
	}
	m.opCodes = opCodes
	return m.opCodes
}

// GetGroupedOpCodes isolates clusters of changes into hunks, each flanked by
// up to n lines of equal context. A negative n selects the conventional 3.
//
// When there are no opcodes at all a synthetic single-element equal hunk
// over [0,1) is used as the seed; it is then dropped here, because a group
// that is one lone equal opcode is never emitted, so no groups are returned.
func (m *Matcher[E]) GetGroupedOpCodes(n int) [][]OpCode {
	if n < 0 {
		n = 3
	}
	codes := m.GetOpCodes()
	work := make([]OpCode, len(codes))
	copy(work, codes)
	if len(work) == 0 {
		work = []OpCode{{OpEqual, 0, 1, 0, 1}}
	}
	// Clip surplus leading and trailing context.
	if work[0].Tag == OpEqual {
		c := work[0]
		work[0] = OpCode{c.Tag, max(c.I1, c.I2-n), c.I2, max(c.J1, c.J2-n), c.J2}
	}
	if c := work[len(work)-1]; c.Tag == OpEqual {
		work[len(work)-1] = OpCode{c.Tag, c.I1, min(c.I2, c.I1+n), c.J1, min(c.J2, c.J1+n)}
	}

	nn := n + n
	var groups [][]OpCode
	var group []OpCode
	for _, c := range work {
		i1, j1 := c.I1, c.J1
		// An equal run wider than 2n splits hunks: end the current group
		// after n lines and resume n lines before the run ends.
		if c.Tag == OpEqual && c.I2-i1 > nn {
			group = append(group, OpCode{c.Tag, i1, min(c.I2, i1+n), j1, min(c.J2, j1+n)})
			groups = append(groups, group)
			group = nil
			i1, j1 = max(i1, c.I2-n), max(j1, c.J2-n)
		}
		group = append(group, OpCode{c.Tag, i1, c.I2, j1, c.J2})
	}
	if len(group) > 0 && !(len(group) == 1 && group[0].Tag == OpEqual) {
		groups = append(groups, group)
	}
	return groups
}

func calculateRatio(matches, length int) float64 {
	if length > 0 {
		return 2.0 * float64(matches) / float64(length)
	}
	return 1.0
}

// Ratio returns a measure of the sequences' similarity in [0, 1]:
// 2*M / T, where T is the total number of elements in both sequences and M
// is the number of matched elements. Identical sequences score 1.0.
func (m *Matcher[E]) Ratio() float64 {
	matches := 0
	for _, bl := range m.GetMatchingBlocks() {
		matches += bl.Size
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// QuickRatio returns an upper bound on Ratio relatively quickly, counting
// multiset overlap without regard to element order.
func (m *Matcher[E]) QuickRatio() float64 {
	// fullBCount is built on first use and survives SetSeq1, viewing b as a
	// multiset without disturbing the junk-filtered b2j index.
	if m.fullBCount == nil {
		m.fullBCount = make(map[E]int, len(m.b))
		for _, elt := range m.b {
			m.fullBCount[elt]++
		}
	}

	// avail[elt] is the number of times elt appears in b less the number of
	// times it has already been matched against an occurrence in a.
	avail := make(map[E]int)
	matches := 0
	for _, elt := range m.a {
		var numb int
		if n, ok := avail[elt]; ok {
			numb = n
		} else {
			numb = m.fullBCount[elt]
		}
		avail[elt] = numb - 1
		if numb > 0 {
			matches++
		}
	}
	return calculateRatio(matches, len(m.a)+len(m.b))
}

// RealQuickRatio returns an upper bound on Ratio very quickly, from the
// sequence lengths alone. RealQuickRatio >= QuickRatio >= Ratio holds on
// every input pair.
func (m *Matcher[E]) RealQuickRatio() float64 {
	la, lb := len(m.a), len(m.b)
	return calculateRatio(min(la, lb), la+lb)
}
