// Package store persists drawing surfaces in a single JSON file and can
// mirror changes to a remote endpoint on a best-effort basis.
package store

import (
	"sort"

	"github.com/platinummonkey/inkpad/internal/ink"
)

// FileVersion is the current version of the store file format
const FileVersion = 1

// File is the on-disk layout of the store
type File struct {
	Version int `json:"version"`

	// Surfaces maps surface ID to its latest value
	Surfaces map[string]ink.Surface `json:"surfaces"`

	// Order lists surface IDs in display order
	Order []string `json:"order"`
}

// NewFile creates an empty store file
func NewFile() *File {
	return &File{
		Version:  FileVersion,
		Surfaces: make(map[string]ink.Surface),
		Order:    []string{},
	}
}

// indexOf returns the position of id in the display order, or -1
func (f *File) indexOf(id string) int {
	for i, v := range f.Order {
		if v == id {
			return i
		}
	}
	return -1
}

// repairOrder drops dangling IDs and appends surfaces missing from Order,
// oldest first with ties broken by ID
func (f *File) repairOrder() {
	seen := make(map[string]bool, len(f.Order))
	order := make([]string, 0, len(f.Surfaces))
	for _, id := range f.Order {
		if _, ok := f.Surfaces[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var missing []string
	for id := range f.Surfaces {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		a, b := f.Surfaces[missing[i]], f.Surfaces[missing[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return missing[i] < missing[j]
	})
	f.Order = append(order, missing...)
}
