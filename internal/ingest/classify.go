package ingest

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the role a dropped file plays in an import.
type Kind int

const (
	KindUnsupported Kind = iota
	KindSession
	KindRooms
	KindOccupants
	KindTags
)

func (k Kind) String() string {
	switch k {
	case KindSession:
		return "session"
	case KindRooms:
		return "rooms"
	case KindOccupants:
		return "occupants"
	case KindTags:
		return "tags"
	}
	return "unsupported"
}

// SessionExt is the extension of exported session files.
const SessionExt = ".umsess"

// Classify decides what a file contains from its name.
func Classify(path string) Kind {
	name := strings.ToLower(filepath.Base(path))
	switch filepath.Ext(name) {
	case ".json":
		return KindTags
	case SessionExt:
		return KindSession
	case ".csv", ".xlsx":
		if strings.Contains(name, "occupant") || strings.Contains(name, "staff") {
			return KindOccupants
		}
		return KindRooms
	}
	return KindUnsupported
}

// File is a path with its classification.
type File struct {
	Path string
	Kind Kind
}

// Plan classifies paths and orders them for import: sessions, room data,
// occupants, then tag files. Unsupported files are returned separately.
func Plan(paths []string) (files []File, unsupported []string) {
	for _, p := range paths {
		kind := Classify(p)
		if kind == KindUnsupported {
			unsupported = append(unsupported, p)
			continue
		}
		files = append(files, File{Path: p, Kind: kind})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Kind < files[j].Kind
	})
	return files, unsupported
}
