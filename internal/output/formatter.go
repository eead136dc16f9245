// Package output renders search results for the terminal.
package output

import (
	"fmt"
	"strings"

	"github.com/roomdir-dev/roomdir/internal/search"
)

// FormatMode specifies the output format
type FormatMode int

const (
	// FormatNormal is one line per room
	FormatNormal FormatMode = iota
	// FormatVerbose adds match reasons and tags
	FormatVerbose
	// FormatJSON outputs raw JSON
	FormatJSON
)

// maxTagPreview caps the tags listed per room in verbose mode.
const maxTagPreview = 8

// Formatter handles search result output formatting
type Formatter struct {
	Mode  FormatMode
	Query string
}

// NewFormatter creates a formatter with the specified mode
func NewFormatter(mode FormatMode) *Formatter {
	return &Formatter{Mode: mode}
}

// Summary is the paging information printed above the results.
type Summary struct {
	Page         int
	PerPage      int
	TotalPages   int
	TotalResults int
	SearchTimeMs int64
}

// FormatResult formats the result at position index (zero-based) on the page.
func (f *Formatter) FormatResult(result *search.Result, index int) string {
	switch f.Mode {
	case FormatVerbose:
		return f.formatVerbose(result, index)
	case FormatJSON:
		return ""
	default:
		return f.formatNormal(result, index)
	}
}

func (f *Formatter) formatNormal(result *search.Result, index int) string {
	// [n] number  building / floor  type (department) [score]
	var sb strings.Builder
	room := result.Room

	sb.WriteString(fmt.Sprintf("[%d] %s", index+1, room.Number))
	sb.WriteString(fmt.Sprintf("  %s", location(result)))
	if room.TypeFull != "" {
		sb.WriteString("  " + room.TypeFull)
	}
	if room.Department != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", room.Department))
	}
	if f.Query != "" {
		sb.WriteString(fmt.Sprintf(" [%.2f]", result.Score))
	}
	return sb.String()
}

func (f *Formatter) formatVerbose(result *search.Result, index int) string {
	var sb strings.Builder
	room := result.Room

	sb.WriteString(fmt.Sprintf("[%d] Room %s (id %d)\n", index+1, room.Number, room.ID))
	sb.WriteString(fmt.Sprintf("    Location: %s\n", location(result)))
	if room.TypeFull != "" {
		sb.WriteString(fmt.Sprintf("    Type: %s\n", room.TypeFull))
	}
	if room.Department != "" {
		sb.WriteString(fmt.Sprintf("    Department: %s\n", room.Department))
	}
	if f.Query != "" {
		sb.WriteString(fmt.Sprintf("    Score: %.4f\n", result.Score))
	}
	if reasons := MatchReasons(result); len(reasons) > 0 {
		sb.WriteString(fmt.Sprintf("    Reasons: %s\n", strings.Join(reasons, ", ")))
	}
	if len(room.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("    Tags: %s\n", previewTags(room.Tags)))
	}
	return sb.String()
}

// FormatSummary formats the line printed above a page of results.
func (f *Formatter) FormatSummary(s Summary) string {
	if s.TotalResults == 0 {
		if f.Query == "" {
			return "No rooms loaded"
		}
		return fmt.Sprintf("No rooms match %q", f.Query)
	}

	first, last := 1, s.TotalResults
	if s.PerPage > 0 {
		first = (s.Page-1)*s.PerPage + 1
		last = first + s.PerPage - 1
		if last > s.TotalResults {
			last = s.TotalResults
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Showing %d-%d of %d rooms", first, last, s.TotalResults))
	if s.TotalPages > 1 {
		sb.WriteString(fmt.Sprintf(" (page %d/%d)", s.Page, s.TotalPages))
	}
	if f.Mode == FormatVerbose {
		sb.WriteString(fmt.Sprintf(" in %dms", s.SearchTimeMs))
	}
	return sb.String()
}

func location(result *search.Result) string {
	room := result.Room
	b := room.BuildingName()
	if b == "" {
		b = "?"
	}
	if room.Floor == "" {
		return b
	}
	return fmt.Sprintf("%s / floor %s", b, room.Floor)
}

func previewTags(tags []string) string {
	if len(tags) <= maxTagPreview {
		return strings.Join(tags, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(tags[:maxTagPreview], ", "), len(tags)-maxTagPreview)
}
