package seqmatch

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) []rune {
	return []rune(s)
}

func isSpace(ch rune) bool {
	return ch == ' '
}

func TestRatio(t *testing.T) {
	m := New(runes("abcd"), runes("bcde"))
	assert.Equal(t, 0.75, m.Ratio())
}

func TestRatioBoundaries(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "abcabc", "abcabc", 1.0},
		{"both-empty", "", "", 1.0},
		{"a-empty", "", "abc", 0.0},
		{"b-empty", "abc", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(runes(tt.a), runes(tt.b))
			assert.Equal(t, tt.want, m.Ratio())
		})
	}
}

func TestRatioOrdering(t *testing.T) {
	pairs := [][2]string{
		{"abcd", "bcde"},
		{"private Thread currentThread;", "private volatile Thread currentThread;"},
		{"", ""},
		{"abc", ""},
		{"aaaa", "aaab"},
		{"one two three", "three two one"},
	}
	for _, p := range pairs {
		m := New(runes(p[0]), runes(p[1]))
		ratio := m.Ratio()
		quick := m.QuickRatio()
		realQuick := m.RealQuickRatio()
		assert.GreaterOrEqual(t, realQuick, quick, "pair %q %q", p[0], p[1])
		assert.GreaterOrEqual(t, quick, ratio, "pair %q %q", p[0], p[1])
	}
}

func TestRatioSymmetric(t *testing.T) {
	ab := New(runes("qabxcd"), runes("abycdf")).Ratio()
	ba := New(runes("abycdf"), runes("qabxcd")).Ratio()
	assert.Equal(t, ab, ba)
}

func TestMatchingBlocksWithJunk(t *testing.T) {
	m := New(
		runes("private Thread currentThread;"),
		runes("private volatile Thread currentThread;"),
		WithJunk(isSpace),
	)

	want := []Match{{0, 0, 8}, {8, 17, 21}, {29, 38, 0}}
	assert.Equal(t, want, m.GetMatchingBlocks())

	wantOps := []OpCode{
		{OpEqual, 0, 8, 0, 8},
		{OpInsert, 8, 8, 8, 17},
		{OpEqual, 8, 29, 17, 38},
	}
	assert.Equal(t, wantOps, m.GetOpCodes())
	assert.InDelta(t, 0.866, m.Ratio(), 0.0005)
}

func TestGetOpCodes(t *testing.T) {
	m := New(runes("qabxcd"), runes("abycdf"))
	want := []OpCode{
		{OpDelete, 0, 1, 0, 0},
		{OpEqual, 1, 3, 0, 2},
		{OpReplace, 3, 4, 2, 3},
		{OpEqual, 4, 6, 3, 5},
		{OpInsert, 6, 6, 5, 6},
	}
	assert.Equal(t, want, m.GetOpCodes())
}

func TestFindLongestMatch(t *testing.T) {
	t.Run("junk-restricted", func(t *testing.T) {
		m := New(runes(" abcd"), runes("abcd abcd"), WithJunk(isSpace))
		assert.Equal(t, Match{1, 0, 4}, m.FindLongestMatch(0, 5, 0, 9))
	})
	t.Run("no-junk", func(t *testing.T) {
		m := New(runes(" abcd"), runes("abcd abcd"))
		assert.Equal(t, Match{0, 4, 5}, m.FindLongestMatch(0, 5, 0, 9))
	})
	t.Run("empty-windows", func(t *testing.T) {
		m := New(runes("abc"), runes("abc"))
		assert.Equal(t, Match{1, 2, 0}, m.FindLongestMatch(1, 1, 2, 2))
	})
}

// Matches must be lexicographically earliest: biggest first, then earliest
// in a, then earliest in b. Prefix stripping would get this wrong.
func TestFindLongestMatchNoPrefixStripping(t *testing.T) {
	m := New(runes("ab"), runes("acab"))
	assert.Equal(t, Match{0, 2, 2}, m.FindLongestMatch(0, 2, 0, 4))
}

func TestMatchingBlockInvariants(t *testing.T) {
	pairs := [][2]string{
		{"qabxcd", "abycdf"},
		{"private Thread currentThread;", "private volatile Thread currentThread;"},
		{"", ""},
		{"abc", ""},
		{"abcdefghijklm", "mlkjihgfedcba"},
		{"aaaaabbbbb", "bbbbbaaaaa"},
	}
	for _, p := range pairs {
		a, b := runes(p[0]), runes(p[1])
		blocks := New(a, b).GetMatchingBlocks()

		require.NotEmpty(t, blocks)
		sentinel := blocks[len(blocks)-1]
		assert.Equal(t, Match{len(a), len(b), 0}, sentinel)

		for i, bl := range blocks[:len(blocks)-1] {
			assert.Positive(t, bl.Size, "only the sentinel may be empty")
			assert.Equal(t, string(a[bl.A:bl.A+bl.Size]), string(b[bl.B:bl.B+bl.Size]),
				"block %d does not match element-wise", i)
			if i > 0 {
				prev := blocks[i-1]
				assert.Greater(t, bl.A, prev.A)
				assert.Greater(t, bl.B, prev.B)
				touching := prev.A+prev.Size == bl.A && prev.B+prev.Size == bl.B
				assert.False(t, touching, "blocks %d and %d should have been collapsed", i-1, i)
			}
		}
	}
}

func TestOpCodeInvariants(t *testing.T) {
	pairs := [][2]string{
		{"qabxcd", "abycdf"},
		{"abcd", "bcde"},
		{"", "abc"},
		{"abc", ""},
	}
	for _, p := range pairs {
		a, b := runes(p[0]), runes(p[1])
		codes := New(a, b).GetOpCodes()

		i, j := 0, 0
		for k, c := range codes {
			assert.Equal(t, i, c.I1, "opcode %d does not continue the tiling", k)
			assert.Equal(t, j, c.J1, "opcode %d does not continue the tiling", k)
			switch c.Tag {
			case OpEqual:
				assert.Equal(t, c.I2-c.I1, c.J2-c.J1)
			case OpDelete:
				assert.Equal(t, c.J1, c.J2)
			case OpInsert:
				assert.Equal(t, c.I1, c.I2)
			case OpReplace:
				assert.Greater(t, c.I2, c.I1)
				assert.Greater(t, c.J2, c.J1)
			}
			if k > 0 {
				assert.False(t, c.Tag == OpEqual && codes[k-1].Tag == OpEqual,
					"adjacent equal opcodes at %d", k)
			}
			i, j = c.I2, c.J2
		}
		assert.Equal(t, len(a), i)
		assert.Equal(t, len(b), j)
	}
}

func TestCachingAndInvalidation(t *testing.T) {
	m := New(runes("abcd"), runes("bcde"))

	first := m.GetMatchingBlocks()
	second := m.GetMatchingBlocks()
	require.NotEmpty(t, first)
	assert.Same(t, &first[0], &second[0], "second call should return the memoized slice")

	ops1 := m.GetOpCodes()
	ops2 := m.GetOpCodes()
	require.NotEmpty(t, ops1)
	assert.Same(t, &ops1[0], &ops2[0])

	// SetSeq1 drops both caches but keeps everything derived from b.
	_ = m.QuickRatio()
	b2j := m.b2j
	fullBCount := m.fullBCount
	require.NotNil(t, fullBCount)
	m.SetSeq1(runes("bcd"))
	assert.Nil(t, m.matchingBlocks)
	assert.Nil(t, m.opCodes)
	assert.Equal(t, b2j, m.b2j)
	assert.Equal(t, fullBCount, m.fullBCount)

	// SetSeq2 rebuilds the index and drops the multiset view.
	m.SetSeq2(runes("xyz"))
	assert.Nil(t, m.fullBCount)
	assert.Contains(t, m.b2j, 'x')
}

func TestGroupedOpCodesDoesNotMutateCache(t *testing.T) {
	m := New(runes("abcdefghij"), runes("abcdefghij"))
	before := append([]OpCode(nil), m.GetOpCodes()...)
	_ = m.GetGroupedOpCodes(3)
	assert.Equal(t, before, m.GetOpCodes())
}

func TestGroupedOpCodes(t *testing.T) {
	a := make([]string, 0, 39)
	for i := 1; i < 40; i++ {
		a = append(a, strconv.Itoa(i))
	}
	b := append([]string(nil), a...)
	b = append(b[:8:8], append([]string{"i"}, b[8:]...)...)
	b[20] += "x"
	b = append(b[:23:23], b[28:]...)
	b[30] += "y"

	want := [][]OpCode{
		{
			{OpEqual, 5, 8, 5, 8},
			{OpInsert, 8, 8, 8, 9},
			{OpEqual, 8, 11, 9, 12},
		},
		{
			{OpEqual, 16, 19, 17, 20},
			{OpReplace, 19, 20, 20, 21},
			{OpEqual, 20, 22, 21, 23},
			{OpDelete, 22, 27, 23, 23},
			{OpEqual, 27, 30, 23, 26},
		},
		{
			{OpEqual, 31, 34, 27, 30},
			{OpReplace, 34, 35, 30, 31},
			{OpEqual, 35, 38, 31, 34},
		},
	}
	assert.Equal(t, want, New(a, b).GetGroupedOpCodes(3))
}

// With no opcodes at all, grouping seeds a synthetic one-line equal hunk and
// then suppresses it, because a lone equal opcode never forms a group.
func TestGroupedOpCodesEmpty(t *testing.T) {
	m := New[string](nil, nil)
	assert.Empty(t, m.GetGroupedOpCodes(3))
}

func TestAutoJunkPopular(t *testing.T) {
	// 200 elements, "x" occurring 5 times: over the n/100+1 = 3 threshold.
	b := make([]string, 0, 200)
	for i := 0; i < 195; i++ {
		b = append(b, "u"+strconv.Itoa(i))
	}
	for i := 0; i < 5; i++ {
		b = append(b, "x")
	}

	m := New([]string{"x"}, b)
	assert.True(t, m.isBPopular("x"))
	assert.NotContains(t, m.b2j, "x")

	m = New([]string{"x"}, b, WithoutAutoJunk[string]())
	assert.False(t, m.isBPopular("x"))
	assert.Contains(t, m.b2j, "x")
}

func TestAutoJunkBelowThreshold(t *testing.T) {
	// 199 elements: popularity filtering must stay off.
	b := make([]string, 0, 199)
	for i := 0; i < 194; i++ {
		b = append(b, "u"+strconv.Itoa(i))
	}
	for i := 0; i < 5; i++ {
		b = append(b, "x")
	}
	m := New([]string{"x"}, b)
	assert.Contains(t, m.b2j, "x")
}

func TestJunkExtension(t *testing.T) {
	// Junk never anchors a match but equal junk is absorbed at the edges.
	m := New(runes("abc def"), runes("abc def"), WithJunk(isSpace))
	blocks := m.GetMatchingBlocks()
	want := []Match{{0, 0, 7}, {7, 7, 0}}
	assert.Equal(t, want, blocks)
	assert.Equal(t, 1.0, m.Ratio())
}

func TestQuickRatioMultiset(t *testing.T) {
	// Order is ignored: multiset overlap of "abbb" and "bbba" is total.
	m := New(runes("abbb"), runes("bbba"))
	assert.Equal(t, 1.0, m.QuickRatio())
	assert.Less(t, m.Ratio(), 1.0)
}
