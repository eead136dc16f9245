package models

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownBuilding is used when a row carries no building information at all.
const UnknownBuilding = "Unknown Building"

// Room represents one row of the room directory after normalization.
type Room struct {
	// ID is assigned sequentially when the room enters the directory.
	// It is stable for the lifetime of the directory only.
	ID int `json:"id"`

	// RecordNumber is the source system record number. It is used to
	// re-identify rooms across sessions and never as a tag key.
	RecordNumber string `json:"rmrecnbr,omitempty"`

	Number        string `json:"rmnbr"`
	Floor         string `json:"floor"`
	Building      string `json:"building"`
	BuildingShort string `json:"bld_descrshort,omitempty"`
	Department    string `json:"dept_descr,omitempty"`
	TypeFull      string `json:"typeFull,omitempty"`

	// Tags are the system-derived category tags.
	Tags []string `json:"tags"`

	// Fields holds the raw row the room was built from.
	Fields map[string]string `json:"fields,omitempty"`
}

// FloorNumber parses the floor as an integer.
func (r *Room) FloorNumber() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Floor))
	if err != nil {
		return 0, false
	}
	return n, true
}

// BuildingName returns the building, falling back to the short description.
func (r *Room) BuildingName() string {
	if r.Building != "" {
		return r.Building
	}
	return r.BuildingShort
}

// Identifier returns the key used to refer to this room outside the process:
// the record number when present, otherwise the directory id.
func (r *Room) Identifier() string {
	if r.RecordNumber != "" {
		return r.RecordNumber
	}
	return strconv.Itoa(r.ID)
}

// Label returns a one-line human readable description.
func (r *Room) Label() string {
	label := r.Number
	if r.TypeFull != "" {
		label += " - " + r.TypeFull
	}
	if b := r.BuildingName(); b != "" {
		label += " (" + b + ")"
	}
	return label
}

// IsValid checks if the room has the fields every record must carry
func (r *Room) IsValid() error {
	if strings.TrimSpace(r.Number) == "" {
		return fmt.Errorf("room number is required")
	}
	if strings.TrimSpace(r.Floor) == "" {
		return fmt.Errorf("floor is required")
	}
	return nil
}
