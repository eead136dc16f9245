package search

import (
	"strings"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// Match is the outcome of matching one term against one room.
type Match struct {
	Matched bool
	Score   float64
}

var noMatch = Match{}

func scoreText(field, value string, exact, partial float64) Match {
	if field == "" {
		return noMatch
	}
	field = strings.ToLower(field)
	if field == value {
		return Match{Matched: true, Score: exact}
	}
	if strings.Contains(field, value) {
		return Match{Matched: true, Score: partial}
	}
	return noMatch
}

// MatchTerm scores a single term against a room. unified must be the room's
// UnifiedTags and staffTags its staff tags.
func MatchTerm(term Term, room models.Room, unified []string, staffTags []string) Match {
	value := strings.ToLower(term.Value)
	if value == "" {
		return noMatch
	}

	switch term.Kind {
	case KindFloor:
		if room.Floor != "" && strings.ToLower(room.Floor) == value {
			return Match{Matched: true, Score: 10}
		}
		return noMatch

	case KindBuilding:
		if m := scoreText(room.Building, value, 10, 7); m.Matched {
			return m
		}
		return scoreText(room.BuildingShort, value, 10, 7)

	case KindDepartment:
		return scoreText(room.Department, value, 10, 6)

	case KindRoomType:
		return scoreText(room.TypeFull, value, 10, 6)

	case KindRoomNumber:
		return scoreText(room.Number, value, 15, 8)

	case KindStaff:
		for _, tag := range staffTags {
			if m := scoreText(models.StaffName(tag), value, 10, 6); m.Matched {
				return m
			}
		}
		return noMatch

	case KindGeneral:
		best := noMatch
		for _, tag := range unified {
			var score float64
			switch {
			case tag == value:
				score = 8
			case len(value) >= 3 && strings.Contains(tag, value):
				score = 4
			case len(value) >= 2 && strings.HasPrefix(tag, value):
				score = 3
			}
			if score > best.Score {
				best = Match{Matched: true, Score: score}
			}
		}
		return best
	}

	return noMatch
}
