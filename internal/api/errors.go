package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is the JSON body of every failed request. Suggestion tells the
// caller how to recover.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Error implements the error interface for APIError.
func (e APIError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of the error with additional details.
func (e APIError) WithDetails(details string) APIError {
	e.Details = details
	return e
}

// =============================================================================
// Request Errors
// =============================================================================

var (
	// ErrInvalidJSON is returned when the request body contains invalid JSON.
	ErrInvalidJSON = APIError{
		Code:       "INVALID_JSON",
		Message:    "Request body contains invalid JSON",
		Suggestion: "Check your JSON syntax and ensure all strings are properly quoted",
	}

	// ErrInvalidRoomID is returned when a room id in the path is not a number.
	ErrInvalidRoomID = APIError{
		Code:       "INVALID_ROOM_ID",
		Message:    "Room id must be a non-negative integer",
		Suggestion: "Use the id field of a search result",
	}

	// ErrInvalidPage is returned for a page outside the result set.
	ErrInvalidPage = APIError{
		Code:       "INVALID_PAGE",
		Message:    "Requested page does not exist",
		Suggestion: "Use a page between 1 and total_pages from the previous response",
	}
)

// =============================================================================
// Directory Errors
// =============================================================================

var (
	// ErrRoomNotFound is returned when no room has the requested id.
	ErrRoomNotFound = APIError{
		Code:       "ROOM_NOT_FOUND",
		Message:    "Room not found",
		Suggestion: "Search again; ids change when a session is imported",
	}

	// ErrTagNotFound is returned when the room has no such tag.
	ErrTagNotFound = APIError{
		Code:       "TAG_NOT_FOUND",
		Message:    "Tag not found on this room",
		Suggestion: "List the room's tags with GET /rooms/{id}/tags",
	}

	// ErrDuplicateTag is returned when the room already carries a tag of that name.
	ErrDuplicateTag = APIError{
		Code:       "DUPLICATE_TAG",
		Message:    "Room already has a tag with this name",
		Suggestion: "Tag names are compared without regard to case",
	}

	// ErrInvalidTag is returned when a tag has no name.
	ErrInvalidTag = APIError{
		Code:       "INVALID_TAG",
		Message:    "Tag name is required",
		Suggestion: `Send a body like {"name": "Crash Cart"}`,
	}

	// ErrDirectoryUnavailable is returned when the store cannot be read or written.
	ErrDirectoryUnavailable = APIError{
		Code:       "DIRECTORY_UNAVAILABLE",
		Message:    "Cannot access the room directory",
		Suggestion: "Check that .roomdir exists and is writable. Try 'rd status'",
	}
)

// =============================================================================
// HTTP Response Helpers
// =============================================================================

// WriteError writes an APIError as a JSON response with the appropriate status code.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(err)
}

// WriteBadRequest writes a 400 Bad Request response with the given error.
func WriteBadRequest(w http.ResponseWriter, err APIError) {
	WriteError(w, http.StatusBadRequest, err)
}

// WriteNotFound writes a 404 Not Found response with the given error.
func WriteNotFound(w http.ResponseWriter, err APIError) {
	WriteError(w, http.StatusNotFound, err)
}

// WriteInternalError writes a 500 Internal Server Error response with the given error.
func WriteInternalError(w http.ResponseWriter, err APIError) {
	WriteError(w, http.StatusInternalServerError, err)
}

// NewError creates a custom APIError with the given code, message, and suggestion.
func NewError(code, message, suggestion string) APIError {
	return APIError{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}
