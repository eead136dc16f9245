package transfer

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/roomdir-dev/roomdir/internal/models"
	"github.com/roomdir-dev/roomdir/internal/search"
)

const (
	SessionVersion = "1.1"
	SessionType    = "um_session"

	DefaultViewMode = "desktop"
)

// ErrInvalidSession is returned for data that is not a session file.
var ErrInvalidSession = errors.New("invalid session file")

// ViewState is the presentation state carried by a session.
type ViewState struct {
	Filters        search.Filters    `json:"filters"`
	Query          string            `json:"query"`
	ResultsPerPage int               `json:"results_per_page"`
	ViewMode       string            `json:"view_mode"`
	BuildingColors map[string]string `json:"building_colors,omitempty"`
}

// Session is the decoded content of a session file.
type Session struct {
	Timestamp time.Time
	Rooms     []models.Room
	Custom    map[int][]models.CustomTag
	Staff     map[int][]string
	View      ViewState
}

type sessionEnvelope struct {
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

type sessionData struct {
	ProcessedData   []map[string]any              `json:"processedData"`
	CustomTags      map[string][]models.CustomTag `json:"customTags"`
	StaffTags       map[string][]string           `json:"staffTags"`
	BuildingColors  map[string]string             `json:"buildingColors"`
	ActiveFilters   activeFilters                 `json:"activeFilters"`
	SearchQuery     string                        `json:"searchQuery"`
	CurrentViewMode string                        `json:"currentViewMode"`
	ResultsPerPage  int                           `json:"resultsPerPage"`
}

type activeFilters struct {
	Building string   `json:"building"`
	Floor    string   `json:"floor"`
	Tags     []string `json:"tags"`
}

// rawSessionData mirrors sessionData with loosely typed entries.
type rawSessionData struct {
	ProcessedData   []map[string]json.RawMessage `json:"processedData"`
	CustomTags      map[string][]json.RawMessage `json:"customTags"`
	StaffTags       map[string][]string          `json:"staffTags"`
	BuildingColors  map[string]string            `json:"buildingColors"`
	ActiveFilters   *activeFilters               `json:"activeFilters"`
	SearchQuery     string                       `json:"searchQuery"`
	CurrentViewMode string                       `json:"currentViewMode"`
	ResultsPerPage  *int                         `json:"resultsPerPage"`
}

// SessionSource is the read side needed to export a session.
type SessionSource interface {
	Rooms() []models.Room
	AllCustomTags() map[int][]models.CustomTag
	AllStaffTags() map[int][]string
}

// ExportSession writes the complete directory and view state as a base64
// encoded session document.
func ExportSession(w io.Writer, src SessionSource, view ViewState, now time.Time) error {
	rooms := src.Rooms()
	if len(rooms) == 0 {
		return ErrNothingToExport
	}

	data := sessionData{
		ProcessedData:  make([]map[string]any, 0, len(rooms)),
		CustomTags:     map[string][]models.CustomTag{},
		StaffTags:      map[string][]string{},
		BuildingColors: view.BuildingColors,
		ActiveFilters: activeFilters{
			Building: view.Filters.Building,
			Floor:    view.Filters.Floor,
			Tags:     view.Filters.Tags,
		},
		SearchQuery:     view.Query,
		CurrentViewMode: view.ViewMode,
		ResultsPerPage:  view.ResultsPerPage,
	}
	if data.ActiveFilters.Tags == nil {
		data.ActiveFilters.Tags = []string{}
	}
	if data.CurrentViewMode == "" {
		data.CurrentViewMode = DefaultViewMode
	}
	for _, room := range rooms {
		data.ProcessedData = append(data.ProcessedData, encodeRoom(room))
	}
	for id, tags := range src.AllCustomTags() {
		data.CustomTags[strconv.Itoa(id)] = tags
	}
	for id, tags := range src.AllStaffTags() {
		data.StaffTags[strconv.Itoa(id)] = tags
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}
	doc, err := json.Marshal(sessionEnvelope{
		Version:   SessionVersion,
		Timestamp: now.UTC(),
		Type:      SessionType,
		Data:      payload,
	})
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	enc := base64.NewEncoder(base64.StdEncoding, w)
	if _, err := enc.Write(doc); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return enc.Close()
}

// ReadSession decodes a session document. Rooms without an id, or with an
// id already taken, are numbered after the highest id in the file.
func ReadSession(r io.Reader) (*Session, error) {
	encoded, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	doc, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(encoded)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	var env sessionEnvelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if env.Type != SessionType || len(env.Data) == 0 {
		return nil, ErrInvalidSession
	}

	var data rawSessionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	sess := &Session{
		Timestamp: env.Timestamp,
		Custom:    map[int][]models.CustomTag{},
		Staff:     map[int][]string{},
		View: ViewState{
			Query:          data.SearchQuery,
			ResultsPerPage: search.DefaultResultsPerPage,
			ViewMode:       DefaultViewMode,
			BuildingColors: data.BuildingColors,
		},
	}
	if data.ResultsPerPage != nil && *data.ResultsPerPage >= 0 {
		sess.View.ResultsPerPage = *data.ResultsPerPage
	}
	if data.CurrentViewMode != "" {
		sess.View.ViewMode = data.CurrentViewMode
	}
	if f := data.ActiveFilters; f != nil {
		sess.View.Filters = search.Filters{Building: f.Building, Floor: f.Floor, Tags: f.Tags}
	}

	if sess.Rooms, err = decodeRooms(data.ProcessedData); err != nil {
		return nil, err
	}

	for key, entries := range data.CustomTags {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		for _, raw := range entries {
			tag, err := decodeTag(raw, true)
			if err != nil || tag.Name == "" {
				continue
			}
			sess.Custom[id] = append(sess.Custom[id], tag)
		}
	}
	for key, tags := range data.StaffTags {
		if id, err := strconv.Atoi(key); err == nil && len(tags) > 0 {
			sess.Staff[id] = tags
		}
	}
	return sess, nil
}

func decodeRooms(objs []map[string]json.RawMessage) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(objs))
	seen := make(map[int]bool, len(objs))
	var missing []int
	maxID := -1

	for i, obj := range objs {
		room, hasID, err := decodeRoom(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: room %d: %v", ErrInvalidSession, i, err)
		}
		if !hasID || seen[room.ID] {
			missing = append(missing, len(rooms))
		} else {
			seen[room.ID] = true
			if room.ID > maxID {
				maxID = room.ID
			}
		}
		rooms = append(rooms, room)
	}

	for _, i := range missing {
		maxID++
		rooms[i].ID = maxID
	}
	return rooms, nil
}
