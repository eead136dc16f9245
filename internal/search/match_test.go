package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roomdir-dev/roomdir/internal/models"
)

func TestMatchTerm_AllKinds(t *testing.T) {
	room := models.Room{
		Number:        "204",
		Floor:         "2",
		Building:      "Main Hospital",
		BuildingShort: "MAIN",
		Department:    "Family Medicine",
		TypeFull:      "Exam Room",
	}
	staff := []string{"Staff: Jane Doe", "Staff: John Roe"}
	unified := UnifiedTags(room, nil, staff)

	tests := []struct {
		name  string
		term  Term
		match bool
		score float64
	}{
		{"floor exact", newTerm(KindFloor, "2", "floor 2"), true, 10},
		{"floor miss", newTerm(KindFloor, "3", "floor 3"), false, 0},
		{"building exact", newTerm(KindBuilding, "main hospital", "in main hospital"), true, 10},
		{"building contains", newTerm(KindBuilding, "hosp", "bldg: hosp"), true, 7},
		{"building contains word", newTerm(KindBuilding, "main", "bldg: main"), true, 7},
		{"building miss", newTerm(KindBuilding, "tower", "bldg: tower"), false, 0},
		{"department exact", newTerm(KindDepartment, "family medicine", ""), true, 10},
		{"department contains", newTerm(KindDepartment, "family", ""), true, 6},
		{"type contains", newTerm(KindRoomType, "exam", ""), true, 6},
		{"type miss", newTerm(KindRoomType, "office", ""), false, 0},
		{"room number exact", newTerm(KindRoomNumber, "204", "204"), true, 15},
		{"room number contains", newTerm(KindRoomNumber, "20", "20"), true, 8},
		{"room number miss", newTerm(KindRoomNumber, "999", "999"), false, 0},
		{"staff exact", newTerm(KindStaff, "jane doe", ""), true, 10},
		{"staff contains", newTerm(KindStaff, "roe", ""), true, 6},
		{"staff miss", newTerm(KindStaff, "smith", ""), false, 0},
		{"general exact", newTerm(KindGeneral, "exam", "exam"), true, 8},
		{"general contains", newTerm(KindGeneral, "edic", "edic"), true, 4},
		{"general prefix", newTerm(KindGeneral, "ja", "ja"), true, 3},
		{"general miss", newTerm(KindGeneral, "zebra", "zebra"), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MatchTerm(tt.term, room, unified, staff)
			assert.Equal(t, tt.match, m.Matched)
			assert.Equal(t, tt.score, m.Score)
		})
	}
}

func TestMatchTerm_MissingFields(t *testing.T) {
	room := models.Room{Number: "1"}
	for _, kind := range []TermKind{KindFloor, KindBuilding, KindDepartment, KindRoomType, KindStaff} {
		m := MatchTerm(newTerm(kind, "x", "x"), room, nil, nil)
		assert.False(t, m.Matched, kind.String())
	}
}

func TestMatchTerm_UnknownKind(t *testing.T) {
	m := MatchTerm(Term{Kind: TermKind(42), Value: "x"}, models.Room{}, []string{"x"}, nil)
	assert.False(t, m.Matched)
}

func TestMatchTerm_BuildingShortFallback(t *testing.T) {
	room := models.Room{Number: "1", Building: "Main Hospital", BuildingShort: "MHC"}

	m := MatchTerm(newTerm(KindBuilding, "mhc", "bldg: mhc"), room, nil, nil)
	assert.True(t, m.Matched)
	assert.Equal(t, 10.0, m.Score)
}
