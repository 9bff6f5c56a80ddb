// Package textdiff produces human-readable deltas between sequences of text
// lines: Differ-style deltas with intraline change guides, POSIX unified and
// context diffs, and annotated or side-by-side renderings.
//
// Lines are compared with their terminators included; use SplitLines to
// tokenize raw text so that deltas and Restore round-trip exactly.
package textdiff

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fulmenhq/fuldiff/seqmatch"
	"github.com/fulmenhq/fuldiff/telemetry"
	"github.com/fulmenhq/fuldiff/telemetry/metrics"
)

var (
	ErrInvalidSide = errors.New("delta side must be 1 or 2")
	ErrUnknownTag  = errors.New("unknown opcode tag")
)

// DifferOption configures a Differ.
type DifferOption func(*differOptions)

type differOptions struct {
	lineJunk func(string) bool
	charJunk func(rune) bool
	logger   *zap.Logger
}

// WithLineJunk sets the predicate for lines that should not anchor the
// line-level match. There is no default; IsLineJunk is the conventional
// choice for prose and config files.
func WithLineJunk(fn func(string) bool) DifferOption {
	return func(o *differOptions) {
		o.lineJunk = fn
	}
}

// WithCharJunk sets the predicate for characters that should not anchor the
// intraline match. The default is IsCharacterJunk.
func WithCharJunk(fn func(rune) bool) DifferOption {
	return func(o *differOptions) {
		o.charJunk = fn
	}
}

// WithLogger sets the logger for debug-level diagnostics (sync pair
// selection). The default is a no-op logger.
func WithLogger(logger *zap.Logger) DifferOption {
	return func(o *differOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func defaultDifferOptions() *differOptions {
	return &differOptions{
		charJunk: IsCharacterJunk,
		logger:   zap.NewNop(),
	}
}

// Differ compares sequences of lines and emits every line of both inputs,
// prefixed with a two-character code:
//
//	"- "  line unique to the first sequence
//	"+ "  line unique to the second sequence
//	"  "  line common to both
//	"? "  guide line, not present in either input
//
// Guide lines mark intraline differences with "^" (replaced), "-" (deleted)
// and "+" (inserted) under the characters concerned. They are produced for
// replace blocks whose best line pair clears a similarity threshold; wildly
// different replace blocks are dumped plainly instead.
type Differ struct {
	lineJunk func(string) bool
	charJunk func(rune) bool
	logger   *zap.Logger
}

// NewDiffer creates a Differ.
func NewDiffer(opts ...DifferOption) *Differ {
	o := defaultDifferOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Differ{
		lineJunk: o.lineJunk,
		charJunk: o.charJunk,
		logger:   o.logger,
	}
}

// NDiff compares a and b (lists of lines) and returns the full Differ delta.
func NDiff(a, b []string, opts ...DifferOption) []string {
	return NewDiffer(opts...).Compare(a, b)
}

// Compare returns the delta between the line sequences a and b.
func (d *Differ) Compare(a, b []string) []string {
	start := time.Now()

	var matchOpts []seqmatch.Option[string]
	if d.lineJunk != nil {
		matchOpts = append(matchOpts, seqmatch.WithJunk(d.lineJunk))
	}
	cruncher := seqmatch.New(a, b, matchOpts...)

	var out []string
	for _, op := range cruncher.GetOpCodes() {
		switch op.Tag {
		case seqmatch.OpReplace:
			out = append(out, d.fancyReplace(a, op.I1, op.I2, b, op.J1, op.J2)...)
		case seqmatch.OpDelete:
			out = append(out, dump("-", a, op.I1, op.I2)...)
		case seqmatch.OpInsert:
			out = append(out, dump("+", b, op.J1, op.J2)...)
		case seqmatch.OpEqual:
			out = append(out, dump(" ", a, op.I1, op.I2)...)
		}
	}

	telemetry.EmitCounter(metrics.TextdiffCompareTotal, 1, nil)
	telemetry.EmitHistogram(metrics.TextdiffCompareMs, time.Since(start), nil)
	return out
}

func dump(tag string, x []string, lo, hi int) []string {
	out := make([]string, 0, hi-lo)
	for _, line := range x[lo:hi] {
		out = append(out, tag+" "+line)
	}
	return out
}

// plainReplace dumps a replace block without intraline analysis. The shorter
// block goes first: it keeps the reader's short-term working set small.
func (d *Differ) plainReplace(a []string, alo, ahi int, b []string, blo, bhi int) []string {
	var first, second []string
	if bhi-blo < ahi-alo {
		first = dump("+", b, blo, bhi)
		second = dump("-", a, alo, ahi)
	} else {
		first = dump("-", a, alo, ahi)
		second = dump("+", b, blo, bhi)
	}
	return append(first, second...)
}

// fancyReplace looks for the closest-matching line pair within a replace
// block, syncs the delta on that pair with intraline guides, and recurses on
// the windows before and after it.
func (d *Differ) fancyReplace(a []string, alo, ahi int, b []string, blo, bhi int) []string {
	// bestRatio starts just below cutoff so a pair at exactly the cutoff
	// still wins; identical pairs are remembered separately and never scored.
	bestRatio, cutoff := 0.74, 0.75

	var charOpts []seqmatch.Option[rune]
	if d.charJunk != nil {
		charOpts = append(charOpts, seqmatch.WithJunk(d.charJunk))
	}
	cruncher := seqmatch.New[rune](nil, nil, charOpts...)

	besti, bestj := 0, 0
	eqi, eqj := -1, -1

	// The b line is pinned in the outer loop so its index is reused across
	// every line of a.
	for j := blo; j < bhi; j++ {
		bj := b[j]
		cruncher.SetSeq2([]rune(bj))
		for i := alo; i < ahi; i++ {
			ai := a[i]
			if ai == bj {
				if eqi < 0 {
					eqi, eqj = i, j
				}
				continue
			}
			cruncher.SetSeq1([]rune(ai))
			// Three filters of increasing cost; most pairs fail an early one.
			if cruncher.RealQuickRatio() > bestRatio &&
				cruncher.QuickRatio() > bestRatio {
				if r := cruncher.Ratio(); r > bestRatio {
					bestRatio, besti, bestj = r, i, j
				}
			}
		}
	}

	if bestRatio < cutoff {
		if eqi < 0 {
			// No close pair and no identical pair: dump both blocks.
			return d.plainReplace(a, alo, ahi, b, blo, bhi)
		}
		// Sync on the identical pair instead.
		besti, bestj, bestRatio = eqi, eqj, 1.0
	} else {
		eqi = -1
	}

	if ce := d.logger.Check(zap.DebugLevel, "sync pair"); ce != nil {
		ce.Write(zap.Int("a", besti), zap.Int("b", bestj), zap.Float64("ratio", bestRatio))
	}

	out := d.fancyHelper(a, alo, besti, b, blo, bestj)

	aelt, belt := a[besti], b[bestj]
	if eqi < 0 {
		var atags, btags strings.Builder
		cruncher.SetSeqs([]rune(aelt), []rune(belt))
		for _, op := range cruncher.GetOpCodes() {
			la, lb := op.I2-op.I1, op.J2-op.J1
			switch op.Tag {
			case seqmatch.OpReplace:
				atags.WriteString(strings.Repeat("^", la))
				btags.WriteString(strings.Repeat("^", lb))
			case seqmatch.OpDelete:
				atags.WriteString(strings.Repeat("-", la))
			case seqmatch.OpInsert:
				btags.WriteString(strings.Repeat("+", lb))
			case seqmatch.OpEqual:
				atags.WriteString(strings.Repeat(" ", la))
				btags.WriteString(strings.Repeat(" ", lb))
			}
		}
		out = append(out, qformat(aelt, belt, atags.String(), btags.String())...)
	} else {
		out = append(out, "  "+aelt)
	}

	return append(out, d.fancyHelper(a, besti+1, ahi, b, bestj+1, bhi)...)
}

// fancyHelper dispatches the windows around a sync pair: replace when both
// are non-empty, a plain dump when only one side has lines.
func (d *Differ) fancyHelper(a []string, alo, ahi int, b []string, blo, bhi int) []string {
	if alo < ahi {
		if blo < bhi {
			return d.fancyReplace(a, alo, ahi, b, blo, bhi)
		}
		return dump("-", a, alo, ahi)
	}
	if blo < bhi {
		return dump("+", b, blo, bhi)
	}
	return nil
}

// qformat formats a close line pair with "? " guide lines under each side.
// Guide prefixes under a shared tab indent are replaced by tabs so the
// markers stay aligned with the text they annotate.
func qformat(aline, bline, atags, btags string) []string {
	common := min(countLeading(aline, '\t'), countLeading(bline, '\t'))
	common = min(common, countLeading(atags[:common], ' '))
	common = min(common, countLeading(btags[:common], ' '))
	atags = strings.TrimRight(atags[common:], " ")
	btags = strings.TrimRight(btags[common:], " ")

	out := []string{"- " + aline}
	if atags != "" {
		out = append(out, "? "+strings.Repeat("\t", common)+atags+"\n")
	}
	out = append(out, "+ "+bline)
	if btags != "" {
		out = append(out, "? "+strings.Repeat("\t", common)+btags+"\n")
	}
	return out
}

func countLeading(s string, ch byte) int {
	i := 0
	for i < len(s) && s[i] == ch {
		i++
	}
	return i
}

// Restore extracts one of the two compared sequences from a delta produced
// by Compare or NDiff: 1 recovers the first sequence, 2 the second.
func Restore(delta []string, which int) ([]string, error) {
	var tag string
	switch which {
	case 1:
		tag = "- "
	case 2:
		tag = "+ "
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSide, which)
	}
	var out []string
	for _, line := range delta {
		if strings.HasPrefix(line, tag) || strings.HasPrefix(line, "  ") {
			out = append(out, line[2:])
		}
	}
	return out, nil
}
