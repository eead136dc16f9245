package search

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// DefaultAutocompleteLimit caps the number of autocomplete entries.
	DefaultAutocompleteLimit = 5000
	// DefaultSuggestLimit is the number of suggestions returned per input.
	DefaultSuggestLimit = 10
)

// BuildAutocomplete collects the phrases offered as completions: floor and
// building phrasings first, then each room's unified tags and number. The
// result holds at most limit entries and is sorted.
func BuildAutocomplete(src Source, limit int) []string {
	if limit <= 0 {
		limit = DefaultAutocompleteLimit
	}
	set := newTagSet()
	full := func() bool { return len(set.out) >= limit }

	rooms := src.Rooms()

	floors := newTagSet()
	buildings := newTagSet()
	for _, room := range rooms {
		if room.Floor != "" {
			floors.add(room.Floor)
		}
		if b := room.BuildingName(); b != "" {
			buildings.add(strings.ToLower(b))
		}
	}

	for _, floor := range floors.out {
		for _, form := range floorForms(floor) {
			if full() {
				break
			}
			set.add(form)
		}
	}
	for _, b := range buildings.out {
		if full() {
			break
		}
		set.add(b)
		if !full() {
			set.add("building " + b)
		}
	}

	for _, room := range rooms {
		if full() {
			break
		}
		staff := src.StaffTags(room.ID)
		for _, tag := range UnifiedTags(room, src.CustomTags(room.ID), staff) {
			if full() {
				break
			}
			set.add(tag)
		}
		if room.Number != "" && !full() {
			set.add(room.Number)
		}
	}

	items := set.out
	if items == nil {
		items = []string{}
	}
	sort.Strings(items)
	return items
}

// Suggest filters autocomplete items for the given input. Input starting with
// a digit yields prefix matches only; other input yields up to half the limit
// of prefix matches followed by substring matches.
func Suggest(items []string, input string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(input))
	if q == "" {
		return []string{}
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	out := []string{}
	if unicode.IsDigit([]rune(q)[0]) {
		for _, item := range items {
			if len(out) >= limit {
				break
			}
			if strings.HasPrefix(strings.ToLower(item), q) {
				out = append(out, item)
			}
		}
		return out
	}

	prefixLimit := (limit + 1) / 2
	containsLimit := limit - prefixLimit

	var prefix, contains []string
	for _, item := range items {
		lower := strings.ToLower(item)
		switch {
		case strings.HasPrefix(lower, q):
			if len(prefix) < prefixLimit {
				prefix = append(prefix, item)
			}
		case strings.Contains(lower, q):
			if len(contains) < containsLimit {
				contains = append(contains, item)
			}
		}
		if len(prefix) >= prefixLimit && len(contains) >= containsLimit {
			break
		}
	}
	out = append(out, prefix...)
	return append(out, contains...)
}
