package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roomdir-dev/roomdir/internal/models"
)

// wireTag accepts the tag objects written by older exports, where created
// may be missing or empty.
type wireTag struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	Link          string `json:"link"`
	Contact       string `json:"contact"`
	ImageURL      string `json:"imageUrl"`
	Color         string `json:"color"`
	Created       string `json:"created"`
	Collaborative bool   `json:"collaborative"`
	CreatedBy     string `json:"created_by"`
}

// decodeTag reads a tag given either as a bare name or as an object. When
// keepIdentity is false a new id and creation time are assigned.
func decodeTag(raw json.RawMessage, keepIdentity bool) (models.CustomTag, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return models.CustomTag{}, err
		}
		return models.NewCustomTag(models.TagInput{Name: name}), nil
	}

	var w wireTag
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.CustomTag{}, err
	}
	tag := models.NewCustomTag(models.TagInput{
		Name:        w.Name,
		Type:        w.Type,
		Description: w.Description,
		Link:        w.Link,
		Contact:     w.Contact,
		ImageURL:    w.ImageURL,
		Color:       w.Color,
	})
	if keepIdentity {
		if w.ID != "" {
			tag.ID = w.ID
		}
		if created, err := time.Parse(time.RFC3339Nano, w.Created); err == nil {
			tag.Created = created
		}
		tag.Collaborative = w.Collaborative
		tag.CreatedBy = w.CreatedBy
	}
	return tag, nil
}

// flexString renders JSON scalars as strings. Spreadsheet exports carry room
// numbers and floors as numbers.
func flexString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case '{', '[':
		return "", fmt.Errorf("expected scalar, got %s", string(raw))
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10), nil
		}
		return n.String(), nil
	}
	return strings.Trim(string(raw), `"`), nil
}

// roomKeys are the room properties stored next to the raw row fields.
var roomKeys = map[string]bool{
	"id": true, "rmrecnbr": true, "rmnbr": true, "floor": true, "building": true,
	"bld_descrshort": true, "dept_descr": true, "typeFull": true, "tags": true,
}

// encodeRoom flattens a room the way session files store it: the raw row
// fields with the derived properties on top.
func encodeRoom(room models.Room) map[string]any {
	out := make(map[string]any, len(room.Fields)+len(roomKeys))
	for k, v := range room.Fields {
		out[k] = v
	}
	out["id"] = room.ID
	out["rmrecnbr"] = room.RecordNumber
	out["rmnbr"] = room.Number
	out["floor"] = room.Floor
	out["building"] = room.Building
	out["bld_descrshort"] = room.BuildingShort
	out["dept_descr"] = room.Department
	out["typeFull"] = room.TypeFull
	tags := room.Tags
	if tags == nil {
		tags = []string{}
	}
	out["tags"] = tags
	return out
}

// decodeRoom is the inverse of encodeRoom. hasID is false when the stored
// room carries no id.
func decodeRoom(obj map[string]json.RawMessage) (room models.Room, hasID bool, err error) {
	str := func(key string) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = flexString(obj[key])
		if err != nil {
			err = fmt.Errorf("field %s: %w", key, err)
		}
		return s
	}

	room.RecordNumber = str("rmrecnbr")
	room.Number = str("rmnbr")
	room.Floor = str("floor")
	room.Building = str("building")
	room.BuildingShort = str("bld_descrshort")
	room.Department = str("dept_descr")
	room.TypeFull = str("typeFull")
	if err != nil {
		return models.Room{}, false, err
	}

	if raw, ok := obj["id"]; ok && string(bytes.TrimSpace(raw)) != "null" {
		if err := json.Unmarshal(raw, &room.ID); err != nil {
			return models.Room{}, false, fmt.Errorf("field id: %w", err)
		}
		hasID = true
	}
	if raw, ok := obj["tags"]; ok && string(bytes.TrimSpace(raw)) != "null" {
		if err := json.Unmarshal(raw, &room.Tags); err != nil {
			return models.Room{}, false, fmt.Errorf("field tags: %w", err)
		}
	}
	if room.Tags == nil {
		room.Tags = []string{}
	}

	for k, raw := range obj {
		if roomKeys[k] {
			continue
		}
		if v, ferr := flexString(raw); ferr == nil {
			if room.Fields == nil {
				room.Fields = map[string]string{}
			}
			room.Fields[k] = v
		}
	}
	return room, hasID, nil
}
