// Package search implements query preprocessing, tag synthesis, matching and
// ranking over the room directory.
package search

import (
	"sort"
	"strings"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// Source provides the rooms and their tags. Implementations must return data
// that is not mutated while a search runs.
type Source interface {
	Rooms() []models.Room
	CustomTags(roomID int) []models.CustomTag
	StaffTags(roomID int) []string
}

// TermMatch records how one term scored against a result.
type TermMatch struct {
	Term  Term    `json:"term"`
	Score float64 `json:"score"`
}

// Result is a ranked room.
type Result struct {
	Room    models.Room `json:"room"`
	Score   float64     `json:"score"`
	Matches []TermMatch `json:"matches,omitempty"`
}

// Rank returns the rooms matching query, best first.
func Rank(query string, src Source) []models.Room {
	results := RankScored(query, src)
	rooms := make([]models.Room, len(results))
	for i, r := range results {
		rooms[i] = r.Room
	}
	return rooms
}

// RankScored returns the rooms matching every term of query along with their
// scores. A query without terms returns every room in directory order with a
// zero score.
func RankScored(query string, src Source) []Result {
	rooms := src.Rooms()
	terms := Preprocess(query)

	if len(terms) == 0 {
		results := make([]Result, len(rooms))
		for i, room := range rooms {
			results[i] = Result{Room: room}
		}
		return results
	}

	results := []Result{}
	for _, room := range rooms {
		if r, ok := scoreRoom(terms, room, src); ok {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func scoreRoom(terms []Term, room models.Room, src Source) (Result, bool) {
	staff := src.StaffTags(room.ID)
	unified := UnifiedTags(room, src.CustomTags(room.ID), staff)

	result := Result{Room: room, Matches: make([]TermMatch, 0, len(terms))}
	for _, term := range terms {
		m := MatchTerm(term, room, unified, staff)
		if !m.Matched {
			return Result{}, false
		}
		weighted := m.Score * term.Boost
		result.Score += weighted
		result.Matches = append(result.Matches, TermMatch{Term: term, Score: weighted})
	}

	number := strings.ToLower(room.Number)
	for _, term := range terms {
		if term.Kind == KindRoomNumber && term.Value == number {
			result.Score *= 2
			break
		}
	}
	return result, true
}
