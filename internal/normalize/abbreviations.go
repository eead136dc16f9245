// Package normalize maps source-system abbreviations onto readable labels and
// derives category tags for rooms.
package normalize

import (
	"strings"
	"sync"
)

// builtinAbbreviations is the static mapping shipped with the tool. Keys are
// the raw values found in facilities exports.
var builtinAbbreviations = map[string]string{
	"ADMIN":    "Administration",
	"ANTE":     "Anteroom",
	"BRK":      "Break Room",
	"CLASS":    "Classroom",
	"CLEAN":    "Clean Utility",
	"CONF":     "Conference Room",
	"CONS":     "Consult Room",
	"CORR":     "Corridor",
	"CT":       "CT Scan",
	"DEPT OPS": "Department Operations",
	"ELEC":     "Electrical",
	"ELEV":     "Elevator",
	"EXAM":     "Exam Room",
	"FAC":      "Facilities",
	"IMG":      "Imaging",
	"ISO":      "Isolation Room",
	"IT":       "IT Closet",
	"JAN":      "Janitor Closet",
	"KIT":      "Kitchen",
	"LAB":      "Laboratory",
	"LAB SVC":  "Lab Service",
	"LKR":      "Locker Room",
	"LNG":      "Lounge",
	"LOBBY":    "Lobby",
	"MECH":     "Mechanical",
	"MED":      "Medication Room",
	"MEN":      "Men",
	"MRI":      "MRI",
	"NS":       "Nursing Station",
	"NURS":     "Nursing Station",
	"OFF":      "Office",
	"OPEN":     "Open Office",
	"OR":       "Operating Room",
	"PAT":      "Patient Room",
	"PHARM":    "Pharmacy",
	"PRIV":     "Private",
	"PROC":     "Procedure Room",
	"PT RM":    "Patient Room",
	"RAD":      "Radiology",
	"RECP":     "Reception",
	"RES":      "Research",
	"RR":       "Restroom",
	"SHRD":     "Shared",
	"SHWR":     "Shower",
	"SOIL":     "Soiled Utility",
	"STAIR":    "Stairwell",
	"STO":      "Storage",
	"STOR":     "Storage",
	"SUP":      "Supply",
	"TEL":      "Telecom",
	"TLT":      "Toilet",
	"UNISEX":   "Unisex",
	"US":       "Ultrasound",
	"UTIL":     "Utility",
	"VEST":     "Vestibule",
	"WAIT":     "Waiting Room",
	"WKRM":     "Workroom",
	"WMN":      "Women",
	"XRAY":     "X-Ray",
}

// fullReplacements overrides the combined "type subtype" label for pairs that
// read badly when joined.
var fullReplacements = map[string]string{
	"Office Open Office": "Open Office",
	"Office Private":     "Private Office",
	"Office Shared":      "Shared Office",
	"Toilet Men":         "Men's Restroom",
	"Toilet Unisex":      "Unisex Restroom",
	"Toilet Women":       "Women's Restroom",
	"Storage Supply":     "Supply Storage",
}

// Normalizer resolves abbreviations using user overrides before the built-in
// mapping. Lookups ignore case and surrounding whitespace.
type Normalizer struct {
	mu        sync.RWMutex
	overrides map[string]string
}

// New creates a Normalizer with the given user overrides. The map is copied.
func New(overrides map[string]string) *Normalizer {
	n := &Normalizer{overrides: make(map[string]string, len(overrides))}
	for k, v := range overrides {
		n.overrides[key(k)] = v
	}
	return n
}

// SetOverride adds or replaces a user mapping.
func (n *Normalizer) SetOverride(abbr, label string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.overrides[key(abbr)] = label
}

// Overrides returns a copy of the user mappings, keys upper-cased.
func (n *Normalizer) Overrides() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[string]string, len(n.overrides))
	for k, v := range n.overrides {
		out[k] = v
	}
	return out
}

// Normalize returns the readable label for abbr. When no mapping exists the
// input is returned unchanged and, if unmapped is non-nil and the input is not
// blank, its occurrence is counted.
func (n *Normalizer) Normalize(abbr string, unmapped map[string]int) string {
	if label, ok := n.lookup(abbr); ok {
		return label
	}
	if unmapped != nil && strings.TrimSpace(abbr) != "" {
		unmapped[abbr]++
	}
	return abbr
}

func key(abbr string) string {
	return strings.ToUpper(strings.TrimSpace(abbr))
}

func (n *Normalizer) lookup(abbr string) (string, bool) {
	k := key(abbr)
	if n != nil {
		n.mu.RLock()
		label, ok := n.overrides[k]
		n.mu.RUnlock()
		if ok {
			return label, true
		}
	}
	label, ok := builtinAbbreviations[k]
	return label, ok
}

// IsKnown reports whether abbr has any mapping.
func (n *Normalizer) IsKnown(abbr string) bool {
	_, ok := n.lookup(abbr)
	return ok
}

// FullType combines a normalized type and subtype into the display label.
func FullType(roomType, subType string) string {
	full := roomType
	if subType != "" && subType != roomType {
		full = roomType + " - " + subType
	}
	if replacement, ok := fullReplacements[strings.TrimSpace(roomType+" "+subType)]; ok {
		return replacement
	}
	return full
}
