package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Query Preprocessing Tests
// ============================================================================

func TestPreprocess_Empty(t *testing.T) {
	for _, q := range []string{"", "   ", "the and of", " , ,", "at the", "in the", "the and at by"} {
		terms := Preprocess(q)
		if len(terms) != 0 {
			t.Errorf("Preprocess(%q) = %v, expected no terms", q, terms)
		}
	}
}

func TestPreprocess_FloorForms(t *testing.T) {
	for _, q := range []string{"floor 3", "3rd floor", "level 3", "third floor", "lv3", "f3", "floor-3", "Third Level"} {
		t.Run(q, func(t *testing.T) {
			terms := Preprocess(q)
			require.Len(t, terms, 1)
			assert.Equal(t, KindFloor, terms[0].Kind)
			assert.Equal(t, "3", terms[0].Value)
			assert.Equal(t, 2.0, terms[0].Boost)
		})
	}
}

func TestPreprocess_RoomNumberAndGeneral(t *testing.T) {
	terms := Preprocess("Exam 204, b12 lab")
	require.Len(t, terms, 4)

	assert.Equal(t, Term{Kind: KindGeneral, Value: "exam", Original: "exam", Boost: 1}, terms[0])
	assert.Equal(t, KindRoomNumber, terms[1].Kind)
	assert.Equal(t, "204", terms[1].Value)
	assert.Equal(t, 3.0, terms[1].Boost)
	assert.Equal(t, KindRoomNumber, terms[2].Kind)
	assert.Equal(t, "b12", terms[2].Value)
	assert.Equal(t, KindGeneral, terms[3].Kind)
}

func TestPreprocess_RoomNumberWithSuffix(t *testing.T) {
	terms := Preprocess("204a")
	require.Len(t, terms, 1)
	assert.Equal(t, KindRoomNumber, terms[0].Kind)
}

func TestPreprocess_Building(t *testing.T) {
	terms := Preprocess("building: tower")
	require.Len(t, terms, 1)
	assert.Equal(t, KindBuilding, terms[0].Kind)
	assert.Equal(t, "tower", terms[0].Value)
	assert.Equal(t, 1.5, terms[0].Boost)
}

func TestPreprocess_InBuilding(t *testing.T) {
	terms := Preprocess("exam in main building")
	require.Len(t, terms, 2)
	assert.Equal(t, KindBuilding, terms[0].Kind)
	assert.Equal(t, "main", terms[0].Value)
	assert.Equal(t, KindGeneral, terms[1].Kind)
	assert.Equal(t, "exam", terms[1].Value)
}

func TestPreprocess_AtToEnd(t *testing.T) {
	terms := Preprocess("office at research tower")
	require.Len(t, terms, 2)
	assert.Equal(t, KindBuilding, terms[0].Kind)
	assert.Equal(t, "research tower", terms[0].Value)
}

func TestPreprocess_PlaceOfStopWordsIsNoBuilding(t *testing.T) {
	terms := Preprocess("exam at the")
	require.Len(t, terms, 1)
	assert.Equal(t, KindGeneral, terms[0].Kind)
	assert.Equal(t, "exam", terms[0].Value)
}

func TestPreprocess_DepartmentAndType(t *testing.T) {
	terms := Preprocess("dept: cardiology type: exam")
	require.Len(t, terms, 2)
	assert.Equal(t, KindDepartment, terms[0].Kind)
	assert.Equal(t, "cardiology", terms[0].Value)
	assert.Equal(t, KindRoomType, terms[1].Kind)
	assert.Equal(t, "exam", terms[1].Value)
	assert.Equal(t, 1.3, terms[1].Boost)
}

func TestPreprocess_Staff(t *testing.T) {
	tests := map[string]string{
		"staff: doe":       "doe",
		"person smith":     "smith",
		"dr. smith":        "smith",
		"doctor jones":     "jones",
		"professor o.neil": "o.neil",
	}
	for q, want := range tests {
		terms := Preprocess(q)
		require.Len(t, terms, 1, q)
		assert.Equal(t, KindStaff, terms[0].Kind, q)
		assert.Equal(t, want, terms[0].Value, q)
		assert.Equal(t, 1.2, terms[0].Boost, q)
	}
}

func TestPreprocess_KeywordPrefixesStayGeneral(t *testing.T) {
	terms := Preprocess("drywall typed")
	require.Len(t, terms, 2)
	assert.Equal(t, KindGeneral, terms[0].Kind)
	assert.Equal(t, "drywall", terms[0].Value)
	assert.Equal(t, KindGeneral, terms[1].Kind)
}

func TestPreprocess_RepeatedPattern(t *testing.T) {
	terms := Preprocess("floor 2 floor 3")
	require.Len(t, terms, 2)
	assert.Equal(t, "2", terms[0].Value)
	assert.Equal(t, "3", terms[1].Value)
}

func TestTermKind_String(t *testing.T) {
	assert.Equal(t, "room_number", KindRoomNumber.String())
	assert.Equal(t, "general", KindGeneral.String())
	assert.Equal(t, "unknown", TermKind(99).String())

	text, err := KindStaff.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "staff", string(text))
}

func TestOrdinalSuffix(t *testing.T) {
	tests := map[int]string{1: "st", 2: "nd", 3: "rd", 4: "th", 11: "th", 12: "th", 13: "th", 21: "st", 22: "nd", 103: "rd", 111: "th"}
	for n, want := range tests {
		if got := OrdinalSuffix(n); got != want {
			t.Errorf("OrdinalSuffix(%d) = %q, expected %q", n, got, want)
		}
	}
}

func TestFloorWord(t *testing.T) {
	w, ok := FloorWord(3)
	assert.True(t, ok)
	assert.Equal(t, "third", w)

	w, ok = FloorWord(15)
	assert.True(t, ok)
	assert.Equal(t, "fifteenth", w)

	_, ok = FloorWord(16)
	assert.False(t, ok)
	_, ok = FloorWord(0)
	assert.False(t, ok)
}
