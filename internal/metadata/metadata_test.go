package metadata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/papers-extractor/internal/entity"
)

func TestNormalizeRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want entity.Metadata
	}{
		{
			name: "nil object",
			raw:  nil,
			want: entity.Metadata{Authors: []string{}},
		},
		{
			name: "comma joined authors and digit string year",
			raw: map[string]any{
				"title":   "  A Study  ",
				"authors": "Ada Lovelace, , Alan Turing",
				"year":    "1950",
			},
			want: entity.Metadata{Title: "A Study", Authors: []string{"Ada Lovelace", "Alan Turing"}, Year: entity.IntPtr(1950)},
		},
		{
			name: "number year and author objects",
			raw: map[string]any{
				"authors": []any{"A. One", map[string]any{"name": "B. Two"}, 42.0},
				"year":    json.Number("2021"),
				"journal": "Nature",
			},
			want: entity.Metadata{Authors: []string{"A. One", "B. Two"}, Journal: "Nature", Year: entity.IntPtr(2021)},
		},
		{
			name: "non digit year and non list authors",
			raw: map[string]any{
				"authors":  map[string]any{"first": "x"},
				"year":     "circa 2020",
				"abstract": nil,
			},
			want: entity.Metadata{Authors: []string{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRaw(tt.raw))
		})
	}
}

func TestMergeKeepsKnownValues(t *testing.T) {
	base := entity.Metadata{
		Title:    "Original",
		Authors:  []string{"A"},
		Journal:  "J",
		Year:     entity.IntPtr(2020),
		Abstract: "A fairly long abstract.",
	}

	got := Merge(base, entity.Metadata{})
	assert.Equal(t, Normalize(base), got)

	got = Merge(base, entity.Metadata{Title: "  ", Abstract: "short"})
	assert.Equal(t, "Original", got.Title)
	assert.Equal(t, "A fairly long abstract.", got.Abstract)
}

func TestMergeTakesNewValues(t *testing.T) {
	base := entity.Metadata{Title: "Old", Authors: []string{"A"}, Abstract: "short"}
	in := entity.Metadata{Title: "New", Authors: []string{"B", "C"}, Year: entity.IntPtr(0), Abstract: "a longer abstract"}

	got := Merge(base, in)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, []string{"B", "C"}, got.Authors)
	assert.True(t, got.HasYear())
	assert.Equal(t, 0, got.YearValue())
	assert.Equal(t, "a longer abstract", got.Abstract)
}

func TestMergeAbstractTieGoesToIncoming(t *testing.T) {
	got := Merge(entity.Metadata{Abstract: "abcd"}, entity.Metadata{Abstract: "wxyz"})
	assert.Equal(t, "wxyz", got.Abstract)

	// rune length, not bytes
	got = Merge(entity.Metadata{Abstract: "abcde"}, entity.Metadata{Abstract: "éééé"})
	assert.Equal(t, "abcde", got.Abstract)
}

func TestMergeIsMonotonic(t *testing.T) {
	steps := []entity.Metadata{
		{Title: "T"},
		{Authors: []string{"X"}},
		{},
		{Journal: "J", Abstract: strings.Repeat("a", 10)},
		{Abstract: "short"},
	}
	cur := entity.Metadata{}
	for _, s := range steps {
		next := Merge(cur, s)
		if cur.Title != "" {
			assert.NotEmpty(t, next.Title)
		}
		assert.GreaterOrEqual(t, len(next.Abstract), len(cur.Abstract))
		assert.LessOrEqual(t, len(MissingFields(next)), len(MissingFields(cur)))
		cur = next
	}
	assert.Equal(t, []string{"year"}, MissingFields(cur))
}

func TestMergeDoesNotAlias(t *testing.T) {
	in := entity.Metadata{Authors: []string{"A"}, Year: entity.IntPtr(2000)}
	got := Merge(entity.Metadata{}, in)
	in.Authors[0] = "changed"
	*in.Year = 1
	assert.Equal(t, []string{"A"}, got.Authors)
	assert.Equal(t, 2000, got.YearValue())
}

func TestMissingFields(t *testing.T) {
	full := entity.Metadata{Title: "T", Authors: []string{"A"}, Journal: "J", Year: entity.IntPtr(2001), Abstract: "x"}
	assert.Empty(t, MissingFields(full))

	noAuthors := full.Clone()
	noAuthors.Authors = nil
	assert.Equal(t, []string{"authors"}, MissingFields(noAuthors))

	assert.Equal(t, []string{"title", "authors", "journal", "year", "abstract"}, MissingFields(entity.Metadata{}))
}

func TestDeriveMissing(t *testing.T) {
	full := entity.Metadata{Title: "T", Authors: []string{"A"}, Journal: "J", Year: entity.IntPtr(2001), Abstract: "x"}
	assert.Equal(t, []string{"incomplete"}, DeriveMissing(full, false))
	assert.Empty(t, DeriveMissing(full, true))
	assert.Equal(t, []string{"year"}, DeriveMissing(entity.Metadata{Title: "T", Authors: []string{"A"}, Journal: "J", Abstract: "x"}, true))
}

func TestIsCompleteVerdict(t *testing.T) {
	for reply, want := range map[string]bool{
		"complete":                  true,
		"  Complete.\n":             true,
		"COMPLETE - all fields set": true,
		"incomplete":                false,
		"The data is complete":      false,
		"":                          false,
	} {
		assert.Equal(t, want, IsCompleteVerdict(reply), reply)
	}
}
