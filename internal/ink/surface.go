package ink

import (
	"time"

	"github.com/google/uuid"
)

// NewSurface creates an empty surface with a fresh ID
func NewSurface(width, height int) Surface {
	now := time.Now()
	return Surface{
		ID:        uuid.NewString(),
		Paths:     []Stroke{},
		Width:     width,
		Height:    height,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSurfaceWithBackground creates an empty surface over an imported image
func NewSurfaceWithBackground(width, height int, dataURL string) Surface {
	s := NewSurface(width, height)
	s.BackgroundImage = dataURL
	return s
}

// WithPaths returns a copy of s whose path list is a copy of paths
func (s Surface) WithPaths(paths []Stroke) Surface {
	next := s
	next.Paths = make([]Stroke, len(paths))
	copy(next.Paths, paths)
	return next
}

// AppendStroke returns a copy of s with stroke painted on top of all others
func (s Surface) AppendStroke(stroke Stroke) Surface {
	paths := make([]Stroke, 0, len(s.Paths)+1)
	paths = append(paths, s.Paths...)
	paths = append(paths, stroke)

	next := s
	next.Paths = paths
	return next
}

// WithSummary returns a copy of s carrying summary
func (s Surface) WithSummary(summary string) Surface {
	next := s
	next.Summary = summary
	return next
}

// Touch sets UpdatedAt to now
func (s *Surface) Touch() {
	s.UpdatedAt = time.Now()
}
