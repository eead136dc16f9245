package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StaffPrefix marks a staff tag.
const StaffPrefix = "Staff: "

// Tag type and color defaults applied when a tag is created without them.
const (
	DefaultTagType  = "simple"
	DefaultTagColor = "blue"
)

// CustomTag is a user-created tag attached to a room.
type CustomTag struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	Contact       string    `json:"contact"`
	ImageURL      string    `json:"imageUrl"`
	Color         string    `json:"color"`
	Created       time.Time `json:"created"`
	IsRich        bool      `json:"isRich"`
	Collaborative bool      `json:"collaborative,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
}

// TagInput carries the user supplied fields of a new custom tag.
type TagInput struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	Contact     string `json:"contact,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Color       string `json:"color,omitempty"`
}

// NewCustomTag builds a tag with a fresh id and creation time.
func NewCustomTag(in TagInput) CustomTag {
	tag := CustomTag{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Description: strings.TrimSpace(in.Description),
		Link:        strings.TrimSpace(in.Link),
		Contact:     strings.TrimSpace(in.Contact),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Color:       in.Color,
		Created:     time.Now().UTC(),
	}
	if tag.Type == "" {
		tag.Type = DefaultTagType
	}
	if tag.Color == "" {
		tag.Color = DefaultTagColor
	}
	tag.IsRich = tag.HasDetails()
	return tag
}

// HasDetails reports whether any of the rich fields are set.
func (t *CustomTag) HasDetails() bool {
	return t.Description != "" || t.Link != "" || t.Contact != "" || t.ImageURL != ""
}

// IsValid checks if the tag has required fields
func (t *CustomTag) IsValid() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("tag name is required")
	}
	return nil
}

// StaffTag formats a person name as a staff tag.
func StaffTag(name string) string {
	return StaffPrefix + strings.TrimSpace(name)
}

// StaffName strips the staff prefix from a staff tag.
func StaffName(tag string) string {
	return strings.Replace(tag, StaffPrefix, "", 1)
}
