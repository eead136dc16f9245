package search

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAutocomplete_Contents(t *testing.T) {
	items := BuildAutocomplete(exampleSource(), 0)

	assert.True(t, sort.StringsAreSorted(items))
	for _, want := range []string{
		"floor 2", "2nd floor", "level 2", "f2", "second floor",
		"main hospital", "building main hospital", "research tower",
		"crash cart", "jane doe", "2045", "310",
	} {
		assert.Contains(t, items, want)
	}
}

func TestBuildAutocomplete_Cap(t *testing.T) {
	items := BuildAutocomplete(exampleSource(), 3)
	assert.Len(t, items, 3)
	assert.True(t, sort.StringsAreSorted(items))
}

func TestBuildAutocomplete_Empty(t *testing.T) {
	items := BuildAutocomplete(&memSource{}, 10)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestSuggest_Numeric(t *testing.T) {
	items := []string{"20", "204", "2045", "2nd floor", "floor 2", "room:204"}

	assert.Equal(t, []string{"20", "204", "2045", "2nd floor"}, Suggest(items, "2", 10))
	assert.Equal(t, []string{"20", "204"}, Suggest(items, "2", 2))
}

func TestSuggest_TextPrefixThenContains(t *testing.T) {
	items := []string{"cart", "crash cart", "office", "officer", "offsite", "post office", "the office"}

	got := Suggest(items, "off", 4)
	assert.Equal(t, []string{"office", "officer", "post office", "the office"}, got)
}

func TestSuggest_DefaultLimit(t *testing.T) {
	items := []string{}
	for i := 0; i < 20; i++ {
		items = append(items, "lab "+string(rune('a'+i)))
	}
	assert.Len(t, Suggest(items, "lab", 0), 5)
	assert.Len(t, Suggest(items, "ab", 0), 5)
}

func TestSuggest_EmptyInput(t *testing.T) {
	assert.Empty(t, Suggest([]string{"a"}, "  ", 10))
}
