package search

import "github.com/roomdir-dev/roomdir/internal/models"

// memSource is an in-memory Source for tests.
type memSource struct {
	rooms  []models.Room
	custom map[int][]models.CustomTag
	staff  map[int][]string
}

func (s *memSource) Rooms() []models.Room                     { return s.rooms }
func (s *memSource) CustomTags(roomID int) []models.CustomTag { return s.custom[roomID] }
func (s *memSource) StaffTags(roomID int) []string            { return s.staff[roomID] }

func exampleSource() *memSource {
	return &memSource{
		rooms: []models.Room{
			{ID: 1, RecordNumber: "9001", Number: "101", Floor: "1", Building: "Main Hospital", BuildingShort: "MAIN", Department: "Administration", TypeFull: "Office", Tags: []string{"Office"}},
			{ID: 2, RecordNumber: "9002", Number: "204", Floor: "2", Building: "Main Hospital", Department: "Family Medicine", TypeFull: "Exam Room", Tags: []string{"Clinical"}},
			{ID: 3, RecordNumber: "9003", Number: "2045", Floor: "2", Building: "Main Hospital", Department: "Facilities", TypeFull: "Office", Tags: []string{"Office"}},
			{ID: 4, RecordNumber: "9004", Number: "310", Floor: "3", Building: "Research Tower", Department: "Cancer Research", TypeFull: "Laboratory", Tags: []string{"Lab", "Research"}},
		},
		custom: map[int][]models.CustomTag{
			1: {{ID: "t1", Name: "Crash Cart", Type: "simple", Color: "red"}},
		},
		staff: map[int][]string{
			2: {"Staff: Jane Doe"},
		},
	}
}

func roomIDs(rooms []models.Room) []int {
	ids := make([]int, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
	}
	return ids
}
