package output

import (
	"fmt"
	"strings"

	"github.com/roomdir-dev/roomdir/internal/search"
)

// MaxReasons is the maximum number of reasons to return
const MaxReasons = 5

// MatchReasons explains, one phrase per query term, why a room matched.
func MatchReasons(result *search.Result) []string {
	reasons := []string{}
	for _, m := range result.Matches {
		if len(reasons) >= MaxReasons {
			break
		}
		reasons = append(reasons, describe(m.Term, result))
	}
	return reasons
}

func describe(term search.Term, result *search.Result) string {
	switch term.Kind {
	case search.KindFloor:
		return fmt.Sprintf("on floor %s", term.Value)
	case search.KindBuilding:
		return fmt.Sprintf("in building %q", term.Value)
	case search.KindDepartment:
		return fmt.Sprintf("department matches %q", term.Value)
	case search.KindRoomType:
		return fmt.Sprintf("room type matches %q", term.Value)
	case search.KindStaff:
		return fmt.Sprintf("staff %q", term.Value)
	case search.KindRoomNumber:
		if strings.EqualFold(result.Room.Number, term.Value) {
			return fmt.Sprintf("room number %s", term.Value)
		}
		return fmt.Sprintf("room number contains %s", term.Value)
	default:
		return fmt.Sprintf("tagged %q", term.Value)
	}
}
