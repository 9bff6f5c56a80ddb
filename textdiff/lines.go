package textdiff

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/fulmenhq/fuldiff/seqmatch"
	"github.com/fulmenhq/fuldiff/telemetry"
	"github.com/fulmenhq/fuldiff/telemetry/metrics"
)

// Kind classifies a line in an annotated diff stream.
type Kind int

const (
	Shared Kind = iota
	Old
	New
)

// Line is one row of an annotated diff: the text plus its 1-based position
// in each input, zero on the side the line is absent from.
type Line struct {
	Kind      Kind
	OldNumber int
	NewNumber int
	Text      string
}

// Annotate flattens the comparison of a and b into per-line records, the
// shape review interfaces consume. Replaced blocks list the old lines before
// the new ones.
func Annotate(a, b []string) []Line {
	m := seqmatch.New(a, b)
	var out []Line
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case seqmatch.OpEqual:
			for i := op.I1; i < op.I2; i++ {
				j := i + (op.J1 - op.I1)
				out = append(out, Line{Kind: Shared, OldNumber: i + 1, NewNumber: j + 1, Text: a[i]})
			}
		case seqmatch.OpDelete:
			for i := op.I1; i < op.I2; i++ {
				out = append(out, Line{Kind: Old, OldNumber: i + 1, Text: a[i]})
			}
		case seqmatch.OpInsert:
			for j := op.J1; j < op.J2; j++ {
				out = append(out, Line{Kind: New, NewNumber: j + 1, Text: b[j]})
			}
		case seqmatch.OpReplace:
			for i := op.I1; i < op.I2; i++ {
				out = append(out, Line{Kind: Old, OldNumber: i + 1, Text: a[i]})
			}
			for j := op.J1; j < op.J2; j++ {
				out = append(out, Line{Kind: New, NewNumber: j + 1, Text: b[j]})
			}
		}
	}
	return out
}

type sideRow struct {
	leftNo  int
	rightNo int
	left    string
	right   string
	changed bool
}

func sideRows(a, b []string) []sideRow {
	m := seqmatch.New(a, b)
	var rows []sideRow
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case seqmatch.OpEqual:
			for k := 0; k < op.I2-op.I1; k++ {
				rows = append(rows, sideRow{
					leftNo: op.I1 + k + 1, rightNo: op.J1 + k + 1,
					left: a[op.I1+k], right: b[op.J1+k],
				})
			}
		case seqmatch.OpDelete:
			for i := op.I1; i < op.I2; i++ {
				rows = append(rows, sideRow{leftNo: i + 1, left: a[i], changed: true})
			}
		case seqmatch.OpInsert:
			for j := op.J1; j < op.J2; j++ {
				rows = append(rows, sideRow{rightNo: j + 1, right: b[j], changed: true})
			}
		case seqmatch.OpReplace:
			n := max(op.I2-op.I1, op.J2-op.J1)
			for k := 0; k < n; k++ {
				r := sideRow{changed: true}
				if op.I1+k < op.I2 {
					r.leftNo, r.left = op.I1+k+1, a[op.I1+k]
				}
				if op.J1+k < op.J2 {
					r.rightNo, r.right = op.J1+k+1, b[op.J1+k]
				}
				rows = append(rows, r)
			}
		}
	}
	return rows
}

// SideBySide renders a and b as two gutter-numbered columns within the given
// total display width (80 when width is not positive). The middle marker is
// "|" for changed rows, "<" and ">" for rows present on one side only.
// Cells are padded and truncated by terminal cell width, so double-width
// runes stay aligned.
func SideBySide(a, b []string, width int) []string {
	start := time.Now()
	if width <= 0 {
		width = 80
	}
	// Two 4-digit gutters, four separating spaces and the marker column.
	col := (width - 13) / 2
	if col < 8 {
		col = 8
	}

	rows := sideRows(a, b)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		marker := " "
		if r.changed {
			switch {
			case r.leftNo == 0:
				marker = ">"
			case r.rightNo == 0:
				marker = "<"
			default:
				marker = "|"
			}
		}
		out = append(out, fmt.Sprintf("%s %s %s %s %s",
			gutter(r.leftNo), cell(r.left, col), marker, gutter(r.rightNo), cell(r.right, col)))
	}

	telemetry.EmitCounter(metrics.TextdiffRenderTotal, 1, map[string]string{metrics.TagRenderer: "side_by_side"})
	telemetry.EmitHistogram(metrics.TextdiffRenderMs, time.Since(start), map[string]string{metrics.TagRenderer: "side_by_side"})
	return out
}

func gutter(n int) string {
	if n == 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", n)
}

func cell(s string, width int) string {
	s = strings.TrimRight(s, "\r\n")
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// SplitLines splits s into lines, each keeping its terminator, so that
// joined deltas and Restore round-trips reproduce s exactly.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines concatenates lines produced by SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}
