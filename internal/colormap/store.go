// Package colormap holds the mutable mineral ID to display color mapping.
package colormap

import (
	"errors"
	"fmt"

	"github.com/ironsheep/minmap-viewer/internal/mapfile"
)

// ErrUnknownMineral is returned when setting a color for an ID the store was
// not initialized with.
var ErrUnknownMineral = errors.New("unknown mineral id")

// Store maps mineral IDs to colors for one loaded map.
//
// Store is not safe for concurrent use; the owning session serializes access.
type Store struct {
	gen    Generator
	colors map[int]RGB
}

// NewStore returns an empty store drawing initial colors from gen. A nil gen
// selects NewRandom.
func NewStore(gen Generator) *Store {
	if gen == nil {
		gen = NewRandom()
	}
	return &Store{gen: gen, colors: make(map[int]RGB)}
}

// Initialize replaces the whole mapping with one fresh color per mineral in
// legend order. When two names share an ID the later draw wins.
func (s *Store) Initialize(legend *mapfile.Legend) {
	colors := make(map[int]RGB, legend.Len())
	for _, m := range legend.Minerals() {
		colors[m.ID] = s.gen.Next()
	}
	s.colors = colors
}

// SetColor overwrites the color of a known mineral.
func (s *Store) SetColor(id int, c RGB) error {
	if _, ok := s.colors[id]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMineral, id)
	}
	s.colors[id] = c
	return nil
}

// Color returns the color of id.
func (s *Store) Color(id int) (RGB, bool) {
	c, ok := s.colors[id]
	return c, ok
}

// Len returns the number of mapped IDs.
func (s *Store) Len() int {
	return len(s.colors)
}

// Snapshot returns a copy of the mapping.
func (s *Store) Snapshot() map[int]RGB {
	out := make(map[int]RGB, len(s.colors))
	for id, c := range s.colors {
		out[id] = c
	}
	return out
}
