package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// APIError Type Tests
// =============================================================================

func TestAPIError_ErrorFormat(t *testing.T) {
	testCases := []struct {
		name     string
		err      APIError
		expected string
	}{
		{
			name:     "without suggestion",
			err:      APIError{Code: "TEST_CODE", Message: "Test message"},
			expected: "TEST_CODE: Test message",
		},
		{
			name:     "with suggestion",
			err:      APIError{Code: "TEST_CODE", Message: "Test message", Suggestion: "Try this fix"},
			expected: "TEST_CODE: Test message. Try this fix",
		},
		{
			name:     "details are not part of the message",
			err:      APIError{Code: "TEST_CODE", Message: "Test message", Details: "extra"},
			expected: "TEST_CODE: Test message",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestAPIError_WithDetailsCopies(t *testing.T) {
	detailed := ErrRoomNotFound.WithDetails("room 42")

	assert.Equal(t, "room 42", detailed.Details)
	assert.Equal(t, ErrRoomNotFound.Code, detailed.Code)
	assert.Empty(t, ErrRoomNotFound.Details, "original must be unchanged")
}

func TestPredefinedErrors_HaveCodesAndSuggestions(t *testing.T) {
	all := []APIError{
		ErrInvalidJSON,
		ErrInvalidRoomID,
		ErrInvalidPage,
		ErrRoomNotFound,
		ErrTagNotFound,
		ErrDuplicateTag,
		ErrInvalidTag,
		ErrDirectoryUnavailable,
	}

	seen := make(map[string]bool)
	for _, e := range all {
		assert.NotEmpty(t, e.Code)
		assert.NotEmpty(t, e.Message, e.Code)
		assert.NotEmpty(t, e.Suggestion, e.Code)
		assert.False(t, seen[e.Code], "duplicate code %s", e.Code)
		seen[e.Code] = true
	}
}

// =============================================================================
// Response Writer Tests
// =============================================================================

func TestWriteError_StatusAndBody(t *testing.T) {
	testCases := []struct {
		name   string
		write  func(http.ResponseWriter, APIError)
		status int
		err    APIError
	}{
		{"bad request", WriteBadRequest, http.StatusBadRequest, ErrInvalidJSON.WithDetails("unexpected EOF")},
		{"not found", WriteNotFound, http.StatusNotFound, ErrRoomNotFound},
		{"internal", WriteInternalError, http.StatusInternalServerError, ErrDirectoryUnavailable},
		{"conflict", func(w http.ResponseWriter, e APIError) { WriteError(w, http.StatusConflict, e) }, http.StatusConflict, ErrDuplicateTag},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.write(rr, tc.err)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var got APIError
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tc.err, got)
		})
	}
}

func TestNewError(t *testing.T) {
	err := NewError("CUSTOM", "custom message", "do something")

	assert.Equal(t, "CUSTOM", err.Code)
	assert.Equal(t, "custom message", err.Message)
	assert.Equal(t, "do something", err.Suggestion)
	assert.Empty(t, err.Details)
}
