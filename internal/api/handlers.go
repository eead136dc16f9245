package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/roomdir-dev/roomdir/internal/catalog"
	"github.com/roomdir-dev/roomdir/internal/config"
	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/logging"
	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/search"
)

// Handler handles HTTP requests for the roomdir API
type Handler struct {
	svc       *catalog.Service
	config    *config.Config
	logger    *zap.Logger
	vocab     *cache.Cache
	startTime time.Time
}

// NewHandler creates a new Handler instance
func NewHandler(svc *catalog.Service, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		svc:       svc,
		config:    cfg,
		logger:    logging.OrNop(logger),
		vocab:     cache.New(10*time.Minute, 20*time.Minute),
		startTime: time.Now(),
	}
}

// =============================================================================
// Handlers
// =============================================================================

// Health handles GET /health requests
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// Status handles GET /status requests
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		h.logger.Error("status failed", zap.Error(err))
		WriteInternalError(w, ErrDirectoryUnavailable.WithDetails(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Daemon: &DaemonStatus{
			Running:       true,
			PID:           os.Getpid(),
			UptimeSeconds: time.Since(h.startTime).Seconds(),
		},
		Directory: st,
	})
}

// Search handles POST /search requests. An empty query lists every room.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, ErrInvalidJSON.WithDetails(err.Error()))
		return
	}

	resp, apiErr := h.search(req)
	if apiErr != nil {
		WriteBadRequest(w, *apiErr)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) search(req SearchRequest) (*SearchResponse, *APIError) {
	start := time.Now()

	perPage := h.config.Search.ResultsPerPage
	if req.PerPage != nil {
		perPage = *req.PerPage
	}
	if req.Page < 0 || perPage < 0 {
		return nil, &ErrInvalidPage
	}
	page := req.Page
	if page == 0 {
		page = 1
	}

	result := h.svc.Search(req.Query, catalog.SearchOptions{
		Filters: req.Filters(),
		Page:    page,
		PerPage: perPage,
	})
	if result.TotalPages > 0 && page > result.TotalPages {
		err := ErrInvalidPage.WithDetails("total_pages is " + strconv.Itoa(result.TotalPages))
		return nil, &err
	}

	return &SearchResponse{
		Query:        req.Query,
		Results:      result.Results,
		Page:         result.Page,
		PerPage:      result.PerPage,
		TotalPages:   result.TotalPages,
		TotalResults: result.TotalItems,
		SearchTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// Autocomplete handles GET /autocomplete?q= requests. The vocabulary is
// rebuilt only when the directory changed.
func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	writeJSON(w, http.StatusOK, AutocompleteResponse{
		Query:       q,
		Suggestions: search.Suggest(h.vocabulary(), q, h.config.Search.SuggestLimit),
	})
}

func (h *Handler) vocabulary() []string {
	key := strconv.FormatUint(h.svc.Revision(), 10)
	if items, ok := h.vocab.Get(key); ok {
		return items.([]string)
	}
	items := h.svc.Autocomplete()
	h.vocab.Flush()
	h.vocab.SetDefault(key, items)
	return items
}

// Room handles GET /rooms/{id} requests
func (h *Handler) Room(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.Room(id)
	if err != nil {
		h.writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListTags handles GET /rooms/{id}/tags requests
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	detail, err := h.svc.Room(id)
	if err != nil {
		h.writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{
		RoomID:     id,
		CustomTags: detail.CustomTags,
		StaffTags:  detail.StaffTags,
	})
}

// AddTag handles POST /rooms/{id}/tags requests
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	var in models.TagInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, ErrInvalidJSON.WithDetails(err.Error()))
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		WriteBadRequest(w, ErrInvalidTag)
		return
	}

	tag, err := h.svc.AddCustomTag(r.Context(), id, in)
	if err != nil {
		h.writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// DeleteTag handles DELETE /rooms/{id}/tags/{tagID} requests. tagID may also
// be the tag name.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := roomID(w, r)
	if !ok {
		return
	}
	tag, err := h.svc.RemoveCustomTag(r.Context(), id, chi.URLParam(r, "tagID"))
	if err != nil {
		h.writeDirectoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// Unmapped handles GET /abbreviations/unmapped requests
func (h *Handler) Unmapped(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Unmapped(r.Context())
	if err != nil {
		WriteInternalError(w, ErrDirectoryUnavailable.WithDetails(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, UnmappedResponse{Abbreviations: list})
}

// =============================================================================
// Helpers
// =============================================================================

func roomID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 0 {
		WriteBadRequest(w, ErrInvalidRoomID)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, directory.ErrRoomNotFound):
		WriteNotFound(w, ErrRoomNotFound)
	case errors.Is(err, directory.ErrTagNotFound):
		WriteNotFound(w, ErrTagNotFound)
	case errors.Is(err, directory.ErrDuplicateTag):
		WriteError(w, http.StatusConflict, ErrDuplicateTag)
	case errors.Is(err, directory.ErrInvalidTag):
		WriteBadRequest(w, ErrInvalidTag)
	default:
		h.logger.Error("directory operation failed", zap.Error(err))
		WriteInternalError(w, ErrDirectoryUnavailable.WithDetails(err.Error()))
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}
