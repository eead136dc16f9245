// Package collab shares custom tags between installations through a hosted
// PostgREST backend and its realtime channel.
package collab

import (
	"encoding/base64"
	"sort"
	"strings"
)

const DefaultProjectID = "default_project"

// ProjectID derives the shared project id from the loaded buildings, so
// installations holding the same data land in the same project.
func ProjectID(buildings []string) string {
	if len(buildings) == 0 {
		return DefaultProjectID
	}
	sorted := append([]string(nil), buildings...)
	sort.Strings(sorted)

	encoded := base64.StdEncoding.EncodeToString([]byte(strings.Join(sorted, "_")))
	if len(encoded) > 10 {
		encoded = encoded[:10]
	}
	return "project_" + encoded
}
