package metrics

import (
	"strings"
	"testing"
)

// Metric names follow the snake_case taxonomy: counters end in _total,
// latency histograms in _ms.
func TestNamingConvention(t *testing.T) {
	counters := []string{
		SeqmatchBlocksTotal,
		SeqmatchCloseMatchQueriesTotal,
		TextdiffCompareTotal,
		TextdiffRenderTotal,
	}
	for _, name := range counters {
		if !strings.HasSuffix(name, "_total") {
			t.Errorf("counter %q should end in _total", name)
		}
	}

	histograms := []string{
		SeqmatchMatchMs,
		SeqmatchCloseMatchMs,
		TextdiffCompareMs,
		TextdiffRenderMs,
	}
	for _, name := range histograms {
		if !strings.HasSuffix(name, "_ms") {
			t.Errorf("histogram %q should end in _ms", name)
		}
	}

	for _, name := range append(counters, histograms...) {
		if name != strings.ToLower(name) {
			t.Errorf("metric %q should be lower snake_case", name)
		}
	}
}
