package dependents

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	got := Dedupe([]RawRecord{
		{"a/b", "100"},
		{"c/d", "5"},
		{"a/b", "50"},
		{"c/d", "1.2k"},
		{"e/f", "7"},
		{"e/f", "7.0"},
	})

	assert.Equal(t, []RawRecord{
		{"a/b", "100"},
		{"c/d", "1.2k"},
		{"e/f", "7"},
	}, got, "higher count wins, first seen wins ties, first-seen key order")
}

func TestDedupe_Idempotent(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		records := randomRecords(r, 40)
		once := Dedupe(records)
		assert.Equal(t, once, Dedupe(once))
	}
}

func TestRank_Scenario(t *testing.T) {
	records := []RawRecord{
		{"a/b", "100"},
		{"a/b", "50"},
		{"c/d", "N/A"},
		{"e/f", "1.2k"},
	}

	selected, distinct, above := Rank(records, 0, 2)

	assert.Equal(t, 3, distinct)
	assert.Equal(t, 2, above)
	assert.Equal(t, []Dependent{
		{Key: "e/f", StarsText: "1.2k"},
		{Key: "a/b", StarsText: "100"},
	}, selected)
}

func TestRank_Threshold(t *testing.T) {
	records := []RawRecord{
		{"a/a", "N/A"},
		{"b/b", "0"},
		{"c/c", ""},
		{"d/d", "10"},
		{"e/e", "2k"},
	}

	tests := []struct {
		minStars  float64
		wantAbove int
	}{
		{-1, 5},
		{0, 4},
		{1, 2},
		{10, 2},
		{11, 1},
		{5000, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.minStars), func(t *testing.T) {
			selected, distinct, above := Rank(records, tt.minStars, 10)
			assert.Equal(t, 5, distinct)
			assert.Equal(t, tt.wantAbove, above)
			assert.Len(t, selected, tt.wantAbove)
		})
	}
}

func TestRank_NASortsLast(t *testing.T) {
	selected, _, _ := Rank([]RawRecord{{"x/na", "N/A"}, {"x/zero", "0"}, {"x/one", "1"}}, -1, 10)
	require.Len(t, selected, 3)
	assert.Equal(t, "x/na", selected[2].Key)
}

func TestRank_StableTies(t *testing.T) {
	records := []RawRecord{{"a/1", "5"}, {"a/2", "5"}, {"a/3", "9"}, {"a/4", "5"}}
	selected, _, _ := Rank(records, 0, 10)

	keys := make([]string, len(selected))
	for i, d := range selected {
		keys[i] = d.Key
	}
	assert.Equal(t, []string{"a/3", "a/1", "a/2", "a/4"}, keys)
}

func TestRank_TopNEdges(t *testing.T) {
	records := []RawRecord{{"a/1", "1"}, {"a/2", "2"}}

	selected, _, _ := Rank(records, 0, 0)
	assert.Empty(t, selected)

	selected, _, _ = Rank(records, 0, -3)
	assert.Empty(t, selected)

	selected, _, _ = Rank(nil, 0, 5)
	assert.Empty(t, selected)
}

func TestRank_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		records := randomRecords(r, r.Intn(80))
		topN := r.Intn(15)
		minStars := float64(r.Intn(300) - 20)

		selected, distinct, above := Rank(records, minStars, topN)

		assert.LessOrEqual(t, len(selected), topN)
		assert.LessOrEqual(t, above, distinct)
		assert.LessOrEqual(t, len(selected), above)
		for j := 1; j < len(selected); j++ {
			assert.GreaterOrEqual(t, selected[j-1].Stars(), selected[j].Stars(),
				"selection must be non-increasing")
		}
		for _, d := range selected {
			assert.GreaterOrEqual(t, d.Stars(), minStars)
		}
	}
}

func randomRecords(r *rand.Rand, n int) []RawRecord {
	texts := []string{"N/A", "", "0", "3", "12", "100", "1,234", "1.2k", "9k", "junk", "250"}
	out := make([]RawRecord, n)
	for i := range out {
		out[i] = RawRecord{
			Key:       fmt.Sprintf("owner/repo%d", r.Intn(n/2+1)),
			StarsText: texts[r.Intn(len(texts))],
		}
	}
	return out
}
