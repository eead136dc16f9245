package api

import (
	"time"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/db"
	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/search"
)

// =============================================================================
// Search API Types
// =============================================================================

// SearchRequest represents a search query request. A nil PerPage uses the
// configured page size; 0 returns every result.
type SearchRequest struct {
	Query    string   `json:"query"`
	Page     int      `json:"page,omitempty"`
	PerPage  *int     `json:"per_page,omitempty"`
	Building string   `json:"building,omitempty"`
	Floor    string   `json:"floor,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Filters returns the request's filters.
func (r SearchRequest) Filters() search.Filters {
	return search.Filters{Building: r.Building, Floor: r.Floor, Tags: r.Tags}
}

// SearchResponse is one page of ranked rooms.
type SearchResponse struct {
	Query        string          `json:"query"`
	Results      []search.Result `json:"results"`
	Page         int             `json:"page"`
	PerPage      int             `json:"per_page"`
	TotalPages   int             `json:"total_pages"`
	TotalResults int             `json:"total_results"`
	SearchTimeMs int64           `json:"search_time_ms"`
}

// AutocompleteResponse lists completions for a partial query.
type AutocompleteResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// =============================================================================
// Status API Types
// =============================================================================

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse represents the daemon and directory status response
type StatusResponse struct {
	Daemon    *DaemonStatus   `json:"daemon"`
	Directory *catalog.Status `json:"directory"`
}

// DaemonStatus contains information about the daemon process
type DaemonStatus struct {
	Running       bool    `json:"running"`
	PID           int     `json:"pid"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// =============================================================================
// Tag API Types
// =============================================================================

// TagsResponse lists the custom and staff tags of a room.
type TagsResponse struct {
	RoomID     int                `json:"room_id"`
	CustomTags []models.CustomTag `json:"custom_tags"`
	StaffTags  []string           `json:"staff_tags"`
}

// UnmappedResponse lists abbreviations without a label.
type UnmappedResponse struct {
	Abbreviations []db.UnmappedAbbreviation `json:"abbreviations"`
}

// =============================================================================
// Live Search Types
// =============================================================================

// LiveResponse answers the latest search request received on the live socket
// within the debounce window. Seq counts the requests received on the
// connection.
type LiveResponse struct {
	Seq uint64 `json:"seq"`
	SearchResponse
	Error *APIError `json:"error,omitempty"`
}
