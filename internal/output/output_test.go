package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/search"
)

func sampleResult() *search.Result {
	return &search.Result{
		Room: models.Room{
			ID:         2,
			Number:     "204",
			Floor:      "2",
			Building:   "MAIN",
			Department: "Family Medicine",
			TypeFull:   "Exam Room",
			Tags:       []string{"Exam", "Clinical"},
		},
		Score: 7.5,
		Matches: []search.TermMatch{
			{Term: search.Term{Kind: search.KindFloor, Value: "2"}, Score: 2},
			{Term: search.Term{Kind: search.KindGeneral, Value: "exam"}, Score: 1},
		},
	}
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestFormatResult_Normal(t *testing.T) {
	f := NewFormatter(FormatNormal)
	f.Query = "floor 2 exam"

	line := f.FormatResult(sampleResult(), 0)

	assert.Equal(t, "[1] 204  MAIN / floor 2  Exam Room (Family Medicine) [7.50]", line)
}

func TestFormatResult_NormalWithoutQueryOmitsScore(t *testing.T) {
	f := NewFormatter(FormatNormal)

	line := f.FormatResult(sampleResult(), 4)

	assert.True(t, strings.HasPrefix(line, "[5] 204"))
	assert.NotContains(t, line, "[7.50]")
}

func TestFormatResult_Verbose(t *testing.T) {
	f := NewFormatter(FormatVerbose)
	f.Query = "floor 2 exam"

	out := f.FormatResult(sampleResult(), 0)

	assert.Contains(t, out, "[1] Room 204 (id 2)")
	assert.Contains(t, out, "Location: MAIN / floor 2")
	assert.Contains(t, out, "Reasons: on floor 2, tagged \"exam\"")
	assert.Contains(t, out, "Tags: Exam, Clinical")
}

func TestFormatResult_JSONIsEmpty(t *testing.T) {
	assert.Empty(t, NewFormatter(FormatJSON).FormatResult(sampleResult(), 0))
}

func TestFormatSummary(t *testing.T) {
	testCases := []struct {
		name     string
		mode     FormatMode
		query    string
		summary  Summary
		expected string
	}{
		{"middle page", FormatNormal, "exam", Summary{Page: 2, PerPage: 10, TotalPages: 3, TotalResults: 23}, "Showing 11-20 of 23 rooms (page 2/3)"},
		{"last partial page", FormatNormal, "exam", Summary{Page: 3, PerPage: 10, TotalPages: 3, TotalResults: 23}, "Showing 21-23 of 23 rooms (page 3/3)"},
		{"all results", FormatNormal, "", Summary{Page: 1, PerPage: 0, TotalPages: 1, TotalResults: 4}, "Showing 1-4 of 4 rooms"},
		{"verbose timing", FormatVerbose, "exam", Summary{Page: 1, PerPage: 10, TotalPages: 1, TotalResults: 2, SearchTimeMs: 3}, "Showing 1-2 of 2 rooms in 3ms"},
		{"no match", FormatNormal, "zzz", Summary{}, `No rooms match "zzz"`},
		{"empty directory", FormatNormal, "", Summary{}, "No rooms loaded"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFormatter(tc.mode)
			f.Query = tc.query
			assert.Equal(t, tc.expected, f.FormatSummary(tc.summary))
		})
	}
}

func TestPreviewTags_Truncates(t *testing.T) {
	tags := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	assert.Equal(t, "a, b, c, d, e, f, g, h, +2 more", previewTags(tags))
}

// =============================================================================
// Reason Tests
// =============================================================================

func TestMatchReasons_PerKind(t *testing.T) {
	testCases := []struct {
		kind     search.TermKind
		value    string
		expected string
	}{
		{search.KindFloor, "3", "on floor 3"},
		{search.KindBuilding, "main", `in building "main"`},
		{search.KindDepartment, "research", `department matches "research"`},
		{search.KindRoomType, "lab", `room type matches "lab"`},
		{search.KindStaff, "jane", `staff "jane"`},
		{search.KindRoomNumber, "204", "room number 204"},
		{search.KindRoomNumber, "20", "room number contains 20"},
		{search.KindGeneral, "sink", `tagged "sink"`},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			r := sampleResult()
			r.Matches = []search.TermMatch{{Term: search.Term{Kind: tc.kind, Value: tc.value}}}
			assert.Equal(t, []string{tc.expected}, MatchReasons(r))
		})
	}
}

func TestMatchReasons_Capped(t *testing.T) {
	r := sampleResult()
	r.Matches = nil
	for i := 0; i < MaxReasons+3; i++ {
		r.Matches = append(r.Matches, search.TermMatch{Term: search.Term{Kind: search.KindGeneral, Value: "x"}})
	}
	assert.Len(t, MatchReasons(r), MaxReasons)
}

func TestMatchReasons_NoTerms(t *testing.T) {
	r := sampleResult()
	r.Matches = nil
	assert.Empty(t, MatchReasons(r))
}
