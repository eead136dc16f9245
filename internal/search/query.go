package search

import (
	"regexp"
	"strings"
	"unicode"
)

// TermKind identifies what part of a room a term is matched against.
type TermKind int

const (
	KindGeneral TermKind = iota
	KindFloor
	KindBuilding
	KindDepartment
	KindRoomType
	KindStaff
	KindRoomNumber
)

var kindNames = map[TermKind]string{
	KindGeneral:    "general",
	KindFloor:      "floor",
	KindBuilding:   "building",
	KindDepartment: "department",
	KindRoomType:   "room_type",
	KindStaff:      "staff",
	KindRoomNumber: "room_number",
}

var kindBoosts = map[TermKind]float64{
	KindGeneral:    1.0,
	KindFloor:      2.0,
	KindBuilding:   1.5,
	KindDepartment: 1.3,
	KindRoomType:   1.3,
	KindStaff:      1.2,
	KindRoomNumber: 3.0,
}

func (k TermKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the kind by name in JSON output.
func (k TermKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Boost returns the score multiplier for the kind.
func (k TermKind) Boost() float64 {
	return kindBoosts[k]
}

// Term is one typed piece of a search query.
type Term struct {
	Kind     TermKind `json:"type"`
	Value    string   `json:"value"`
	Original string   `json:"original"`
	Boost    float64  `json:"boost"`
}

func newTerm(kind TermKind, value, original string) Term {
	return Term{Kind: kind, Value: value, Original: original, Boost: kind.Boost()}
}

// termPattern extracts one term from a regexp match. value receives the
// submatches and reports false when the match should be discarded.
type termPattern struct {
	kind  TermKind
	re    *regexp.Regexp
	value func(m []string) (string, bool)
}

func firstGroup(m []string) (string, bool) {
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// placeGroup is firstGroup for "in <x>" and "at <x>", where x made only of
// stop words ("at the") is no building.
func placeGroup(m []string) (string, bool) {
	v, ok := firstGroup(m)
	if !ok {
		return "", false
	}
	for _, w := range strings.Fields(v) {
		if !stopWords[w] {
			return v, true
		}
	}
	return "", false
}

func wordGroup(m []string) (string, bool) {
	return floorWordNumber(m[1])
}

// Text-valued keywords require a separator so that words merely starting with
// a keyword ("drywall", "typed") stay general terms.
var termPatterns = []termPattern{
	{KindFloor, regexp.MustCompile(`(?:^|\s)floor[\s\-]?(\d+)(?:\s|$)`), firstGroup},
	{KindFloor, regexp.MustCompile(`(?:^|\s)(\d+)(?:st|nd|rd|th)?\s*floor(?:\s|$)`), firstGroup},
	{KindFloor, regexp.MustCompile(`(?:^|\s)(?:level|lv)[\s\-]?(\d+)(?:\s|$)`), firstGroup},
	{KindFloor, regexp.MustCompile(`(?:^|\s)f[\s\-]?(\d+)(?:\s|$)`), firstGroup},
	{KindFloor, regexp.MustCompile(`(?:^|\s)(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth|thirteenth|fourteenth|fifteenth)\s*(?:floor|level)(?:\s|$)`), wordGroup},
	{KindBuilding, regexp.MustCompile(`(?:^|\s)(?:building|bldg)[\s\-:]+([a-z0-9\-]+)(?:\s|$)`), firstGroup},
	{KindBuilding, regexp.MustCompile(`(?:^|\s)(?:in|at)\s+([a-z0-9\-\s]+?)(?:\s+(?:building|bldg)|$)`), placeGroup},
	{KindDepartment, regexp.MustCompile(`(?:^|\s)(?:dept|department)[\s\-:]+([a-z0-9\-]+)(?:\s|$)`), firstGroup},
	{KindRoomType, regexp.MustCompile(`(?:^|\s)(?:type|room\s*type)[\s\-:]+([a-z0-9\-]+)(?:\s|$)`), firstGroup},
	{KindStaff, regexp.MustCompile(`(?:^|\s)(?:staff|person|occupant)[\s\-:]+([a-z\-\.]+)(?:\s|$)`), firstGroup},
	{KindStaff, regexp.MustCompile(`(?:^|\s)(?:dr|doctor|prof|professor)(?:\.\s*|\s+)([a-z\-\.]+)(?:\s|$)`), firstGroup},
}

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "in": true, "at": true, "on": true,
	"of": true, "for": true, "to": true, "with": true, "by": true,
}

var roomNumberRegex = regexp.MustCompile(`^\d+[a-z]?$|^[a-z]\d+$`)

// Preprocess splits a free-text query into typed terms. Structured phrases
// are extracted first, in a fixed order, each removed from the working copy
// before the next pattern runs. The remainder becomes room number or general
// terms.
func Preprocess(query string) []Term {
	work := strings.ToLower(strings.TrimSpace(query))
	terms := []Term{}
	if work == "" {
		return terms
	}

	for _, p := range termPatterns {
		for {
			loc := p.re.FindStringSubmatchIndex(work)
			if loc == nil {
				break
			}
			m := make([]string, len(loc)/2)
			for i := range m {
				if loc[2*i] >= 0 {
					m[i] = work[loc[2*i]:loc[2*i+1]]
				}
			}
			if value, ok := p.value(m); ok {
				terms = append(terms, newTerm(p.kind, value, strings.TrimSpace(m[0])))
			}
			work = work[:loc[0]] + " " + work[loc[1]:]
		}
	}

	words := strings.FieldsFunc(work, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, word := range words {
		if stopWords[word] {
			continue
		}
		kind := KindGeneral
		if roomNumberRegex.MatchString(word) {
			kind = KindRoomNumber
		}
		terms = append(terms, newTerm(kind, word, word))
	}

	return terms
}
