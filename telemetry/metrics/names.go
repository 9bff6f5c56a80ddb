// Package metrics defines the canonical metric names and tag keys emitted by
// fuldiff components.
package metrics

// Sequence matcher metrics
const (
	SeqmatchBlocksTotal            = "seqmatch_match_blocks_total"
	SeqmatchMatchMs                = "seqmatch_match_ms"
	SeqmatchCloseMatchQueriesTotal = "seqmatch_close_match_queries_total"
	SeqmatchCloseMatchMs           = "seqmatch_close_match_ms"
)

// Text diff metrics
const (
	TextdiffCompareTotal = "textdiff_compare_total"
	TextdiffCompareMs    = "textdiff_compare_ms"
	TextdiffRenderTotal  = "textdiff_render_total"
	TextdiffRenderMs     = "textdiff_render_ms"
)

// Units
const (
	UnitMs = "ms"
)

// Common tag keys
const (
	TagOperation = "operation"
	TagRenderer  = "renderer"
)
