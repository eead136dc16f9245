package search

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// tagSet is an insertion-ordered set of lowercase strings.
type tagSet struct {
	seen map[string]bool
	out  []string
}

func newTagSet() *tagSet {
	return &tagSet{seen: make(map[string]bool)}
}

func (s *tagSet) add(tag string) {
	if tag == "" || s.seen[tag] {
		return
	}
	s.seen[tag] = true
	s.out = append(s.out, tag)
}

// addWords adds every word of value longer than minLen runes.
func (s *tagSet) addWords(value string, minLen int, split func(rune) bool) {
	for _, w := range strings.FieldsFunc(value, split) {
		if len([]rune(w)) > minLen {
			s.add(w)
		}
	}
}

func splitSpaceHyphen(r rune) bool {
	return unicode.IsSpace(r) || r == '-'
}

func splitSpaceHyphenSlash(r rune) bool {
	return unicode.IsSpace(r) || r == '-' || r == '/'
}

// UnifiedTags expands a room and its custom and staff tags into the flat set
// of lowercase tokens general search terms are matched against.
func UnifiedTags(room models.Room, customTags []models.CustomTag, staffTags []string) []string {
	s := newTagSet()

	if room.Building != "" {
		b := strings.ToLower(room.Building)
		s.add(b)
		s.add("building:" + b)
		s.add("bldg:" + b)
		s.addWords(b, 1, splitSpaceHyphen)
	}
	if room.BuildingShort != "" && room.BuildingShort != room.Building {
		b := strings.ToLower(room.BuildingShort)
		s.add(b)
		s.add("building:" + b)
		s.addWords(b, 1, splitSpaceHyphen)
	}

	if room.Floor != "" {
		f := strings.ToLower(room.Floor)
		s.add(f)
		s.add("floor:" + f)
		s.add("f" + f)
		s.add("level:" + f)
		s.add("floor " + f)
		s.add("level " + f)
		if n, ok := room.FloorNumber(); ok {
			s.add(f + OrdinalSuffix(n) + " floor")
			if word, ok := FloorWord(n); ok {
				s.add(word + " floor")
				s.add(word + " level")
			}
		}
	}

	if room.Department != "" {
		d := strings.ToLower(room.Department)
		s.add(d)
		s.add("department:" + d)
		s.add("dept:" + d)
		s.addWords(d, 2, splitSpaceHyphenSlash)
	}

	if room.TypeFull != "" {
		t := strings.ToLower(room.TypeFull)
		s.add(t)
		s.add("type:" + t)
		s.add("room:" + t)
		s.addWords(t, 2, splitSpaceHyphenSlash)
	}

	for _, tag := range room.Tags {
		t := strings.ToLower(tag)
		s.add(t)
		s.add("category:" + t)
		s.addWords(t, 2, splitSpaceHyphen)
	}

	for _, tag := range customTags {
		name := strings.ToLower(tag.Name)
		s.add(name)
		s.add("custom:" + name)
		s.addWords(name, 1, unicode.IsSpace)
		if tag.Type != "" {
			s.add("tagtype:" + strings.ToLower(tag.Type))
		}
		if tag.Color != "" {
			s.add("color:" + strings.ToLower(tag.Color))
		}
	}

	for _, tag := range staffTags {
		name := strings.ToLower(models.StaffName(tag))
		s.add(name)
		s.add("staff:" + name)
		s.add("person:" + name)
		s.add("occupant:" + name)
		s.addWords(name, 1, unicode.IsSpace)
	}

	if room.Number != "" {
		n := strings.ToLower(room.Number)
		s.add(n)
		s.add("room:" + n)
		s.add("number:" + n)
		runes := []rune(n)
		for i := 2; i <= len(runes); i++ {
			s.add(string(runes[:i]))
		}
	}

	if s.out == nil {
		return []string{}
	}
	return s.out
}

// floorForms returns the autocomplete phrasings of a floor value.
func floorForms(floor string) []string {
	f := strings.ToLower(floor)
	forms := []string{"floor " + f}
	n, err := strconv.Atoi(f)
	if err == nil {
		forms = append(forms, f+OrdinalSuffix(n)+" floor")
	}
	forms = append(forms, "level "+f, "f"+f)
	if err == nil {
		if word, ok := FloorWord(n); ok {
			forms = append(forms, word+" floor")
		}
	}
	return forms
}
