package seqmatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/fulmenhq/fuldiff/telemetry"
	"github.com/fulmenhq/fuldiff/telemetry/metrics"
)

var (
	ErrInvalidCount  = errors.New("result count must be positive")
	ErrInvalidCutoff = errors.New("cutoff must be in [0.0, 1.0]")
)

// GetCloseMatches returns the candidates from possibilities that look most
// like word, best first, at most n of them. Candidates scoring below cutoff
// are discarded; ties in score break toward the lexicographically larger
// candidate. Typical arguments are n=3, cutoff=0.6.
//
// word is pinned as the matcher's second sequence so its index is built once
// and every candidate only pays the cheap side of the comparison. Candidates
// are screened through RealQuickRatio and QuickRatio before the full Ratio
// is computed.
func GetCloseMatches(word string, possibilities []string, n int, cutoff float64) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	if cutoff < 0.0 || cutoff > 1.0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidCutoff, cutoff)
	}
	start := time.Now()

	m := New[rune](nil, []rune(word))
	var result []scored
	for _, x := range possibilities {
		m.SetSeq1([]rune(x))
		if m.RealQuickRatio() >= cutoff && m.QuickRatio() >= cutoff {
			if r := m.Ratio(); r >= cutoff {
				result = append(result, scored{r, x})
			}
		}
	}

	best := nLargest(n, result)
	out := make([]string, len(best))
	for i, s := range best {
		out[i] = s.value
	}

	telemetry.EmitCounter(metrics.SeqmatchCloseMatchQueriesTotal, 1, nil)
	telemetry.EmitHistogram(metrics.SeqmatchCloseMatchMs, time.Since(start), nil)
	return out, nil
}
