package search

import "strings"

// Filters narrow a ranked result list.
type Filters struct {
	Building string   `json:"building,omitempty"`
	Floor    string   `json:"floor,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Building == "" && f.Floor == "" && len(f.Tags) == 0
}

// Query returns query with the tag filters appended.
func (f Filters) Query(query string) string {
	parts := make([]string, 0, len(f.Tags)+1)
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, q)
	}
	for _, tag := range f.Tags {
		if t := strings.TrimSpace(tag); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Filter ranks query with the tag filters appended, then keeps the results
// whose building and floor equal the filter values.
func Filter(query string, f Filters, src Source) []Result {
	results := RankScored(f.Query(query), src)
	if f.Building == "" && f.Floor == "" {
		return results
	}

	kept := make([]Result, 0, len(results))
	for _, r := range results {
		if f.Building != "" && r.Room.Building != f.Building {
			continue
		}
		if f.Floor != "" && r.Room.Floor != f.Floor {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
