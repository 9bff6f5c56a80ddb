package textdiff

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fulmenhq/fuldiff/seqmatch"
	"github.com/fulmenhq/fuldiff/telemetry"
	"github.com/fulmenhq/fuldiff/telemetry/metrics"
)

// RenderOption configures the unified and context renderers.
type RenderOption func(*renderOptions)

type renderOptions struct {
	fromFile string
	toFile   string
	fromDate string
	toDate   string
	context  int
	lineTerm string
}

// WithFiles sets the header labels for the two inputs.
func WithFiles(from, to string) RenderOption {
	return func(o *renderOptions) {
		o.fromFile, o.toFile = from, to
	}
}

// WithDates sets the header modification-time labels, emitted after a tab.
func WithDates(from, to string) RenderOption {
	return func(o *renderOptions) {
		o.fromDate, o.toDate = from, to
	}
}

// WithContext sets the number of equal lines kept around each hunk
// (default 3).
func WithContext(n int) RenderOption {
	return func(o *renderOptions) {
		o.context = n
	}
}

// WithLineTerm sets the terminator appended to header and range lines
// (default "\n"). Content lines are emitted with whatever terminators they
// already carry, so pass "" when the inputs are terminator-free and the
// delta will be printed line by line.
func WithLineTerm(term string) RenderOption {
	return func(o *renderOptions) {
		o.lineTerm = term
	}
}

func defaultRenderOptions() *renderOptions {
	return &renderOptions{
		context:  3,
		lineTerm: "\n",
	}
}

// UnifiedDiff compares a and b (lists of lines) and returns a delta in
// unified format: a two-line header, then for each hunk an "@@" range marker
// followed by context lines prefixed " ", removals prefixed "-" and
// additions prefixed "+". The header is omitted when the inputs are equal
// and so produce no hunks.
func UnifiedDiff(a, b []string, opts ...RenderOption) ([]string, error) {
	o := defaultRenderOptions()
	for _, opt := range opts {
		opt(o)
	}
	start := time.Now()

	m := seqmatch.New(a, b)
	var out []string
	started := false
	for _, group := range m.GetGroupedOpCodes(o.context) {
		if !started {
			started = true
			fromDate, toDate := "", ""
			if o.fromDate != "" {
				fromDate = "\t" + o.fromDate
			}
			if o.toDate != "" {
				toDate = "\t" + o.toDate
			}
			out = append(out, fmt.Sprintf("--- %s%s%s", o.fromFile, fromDate, o.lineTerm))
			out = append(out, fmt.Sprintf("+++ %s%s%s", o.toFile, toDate, o.lineTerm))
		}

		first, last := group[0], group[len(group)-1]
		file1Range := formatRangeUnified(first.I1, last.I2)
		file2Range := formatRangeUnified(first.J1, last.J2)
		out = append(out, fmt.Sprintf("@@ -%s +%s @@%s", file1Range, file2Range, o.lineTerm))

		for _, c := range group {
			switch c.Tag {
			case seqmatch.OpEqual:
				for _, line := range a[c.I1:c.I2] {
					out = append(out, " "+line)
				}
			case seqmatch.OpReplace:
				for _, line := range a[c.I1:c.I2] {
					out = append(out, "-"+line)
				}
				for _, line := range b[c.J1:c.J2] {
					out = append(out, "+"+line)
				}
			case seqmatch.OpDelete:
				for _, line := range a[c.I1:c.I2] {
					out = append(out, "-"+line)
				}
			case seqmatch.OpInsert:
				for _, line := range b[c.J1:c.J2] {
					out = append(out, "+"+line)
				}
			default:
				return nil, fmt.Errorf("%w: %q", ErrUnknownTag, c.Tag)
			}
		}
	}

	telemetry.EmitCounter(metrics.TextdiffRenderTotal, 1, map[string]string{metrics.TagRenderer: "unified"})
	telemetry.EmitHistogram(metrics.TextdiffRenderMs, time.Since(start), map[string]string{metrics.TagRenderer: "unified"})
	return out, nil
}

// ContextDiff compares a and b (lists of lines) and returns a delta in
// context format: each hunk shows the affected span of a, then of b, with
// lines prefixed "  " (equal), "! " (replaced), "- " (deleted from a) and
// "+ " (added in b). A side whose span is untouched by the hunk is elided.
func ContextDiff(a, b []string, opts ...RenderOption) ([]string, error) {
	o := defaultRenderOptions()
	for _, opt := range opts {
		opt(o)
	}
	start := time.Now()

	prefix := map[seqmatch.OpTag]string{
		seqmatch.OpInsert:  "+ ",
		seqmatch.OpDelete:  "- ",
		seqmatch.OpReplace: "! ",
		seqmatch.OpEqual:   "  ",
	}

	m := seqmatch.New(a, b)
	var out []string
	started := false
	for _, group := range m.GetGroupedOpCodes(o.context) {
		if !started {
			started = true
			fromDate, toDate := "", ""
			if o.fromDate != "" {
				fromDate = "\t" + o.fromDate
			}
			if o.toDate != "" {
				toDate = "\t" + o.toDate
			}
			out = append(out, fmt.Sprintf("*** %s%s%s", o.fromFile, fromDate, o.lineTerm))
			out = append(out, fmt.Sprintf("--- %s%s%s", o.toFile, toDate, o.lineTerm))
		}

		first, last := group[0], group[len(group)-1]
		out = append(out, "***************"+o.lineTerm)
		out = append(out, fmt.Sprintf("*** %s ****%s", formatRangeContext(first.I1, last.I2), o.lineTerm))

		if anyTag(group, seqmatch.OpReplace, seqmatch.OpDelete) {
			for _, c := range group {
				if c.Tag == seqmatch.OpInsert {
					continue
				}
				p, ok := prefix[c.Tag]
				if !ok {
					return nil, fmt.Errorf("%w: %q", ErrUnknownTag, c.Tag)
				}
				for _, line := range a[c.I1:c.I2] {
					out = append(out, p+line)
				}
			}
		}

		out = append(out, fmt.Sprintf("--- %s ----%s", formatRangeContext(first.J1, last.J2), o.lineTerm))

		if anyTag(group, seqmatch.OpReplace, seqmatch.OpInsert) {
			for _, c := range group {
				if c.Tag == seqmatch.OpDelete {
					continue
				}
				p, ok := prefix[c.Tag]
				if !ok {
					return nil, fmt.Errorf("%w: %q", ErrUnknownTag, c.Tag)
				}
				for _, line := range b[c.J1:c.J2] {
					out = append(out, p+line)
				}
			}
		}
	}

	telemetry.EmitCounter(metrics.TextdiffRenderTotal, 1, map[string]string{metrics.TagRenderer: "context"})
	telemetry.EmitHistogram(metrics.TextdiffRenderMs, time.Since(start), map[string]string{metrics.TagRenderer: "context"})
	return out, nil
}

func anyTag(group []seqmatch.OpCode, tags ...seqmatch.OpTag) bool {
	for _, c := range group {
		for _, t := range tags {
			if c.Tag == t {
				return true
			}
		}
	}
	return false
}

// formatRangeUnified converts a half-open range to the unified "ed" format:
// length 1 prints the bare line number, otherwise "start,length" with a
// zero-length range anchored on the preceding line.
func formatRangeUnified(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return strconv.Itoa(beginning)
	}
	if length == 0 {
		beginning--
	}
	return strconv.Itoa(beginning) + "," + strconv.Itoa(length)
}

// formatRangeContext converts a half-open range to the context format, which
// prints an inclusive "start,end" pair.
func formatRangeContext(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 0 {
		beginning--
	}
	if length <= 1 {
		return strconv.Itoa(beginning)
	}
	return strconv.Itoa(beginning) + "," + strconv.Itoa(beginning+length-1)
}
