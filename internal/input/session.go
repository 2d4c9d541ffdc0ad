// Package input turns pointer drags into surface edits: eraser hit-testing
// against committed strokes, or capture of a new stroke with live
// incremental rendering and highlighter snapping at commit.
package input

import (
	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
	"github.com/platinummonkey/inkpad/internal/logger"
)

// Renderer paints a surface. Repaint redraws from committed state;
// DrawSegment paints only the newest piece of an active drag.
type Renderer interface {
	Repaint(s ink.Surface)
	DrawSegment(from, to geometry.Point, tool ink.ToolState)
}

// State is the drag state of a session
type State int

const (
	// StateIdle means no pointer is down
	StateIdle State = iota
	// StateDragging means a pointer went down and has not been released
	StateDragging
)

func (s State) String() string {
	if s == StateDragging {
		return "dragging"
	}
	return "idle"
}

// Config holds configuration for a session
type Config struct {
	Surface  ink.Surface
	Renderer Renderer
	Viewport Viewport

	// EraserRadius defaults to EraserRadius when zero
	EraserRadius float64

	// OnUpdate receives the full replacement surface after every commit or
	// removal. It is never called for in-progress drag state.
	OnUpdate func(ink.Surface)

	Logger *logger.Logger
}

// Session is the input state machine for one surface. It is not safe for
// concurrent use; every event for a surface must come from one goroutine.
type Session struct {
	surface  ink.Surface
	renderer Renderer
	viewport Viewport
	radius   float64
	onUpdate func(ink.Surface)
	logger   *logger.Logger

	state State
	tool  ink.ToolState
	path  []geometry.Point
}

// NewSession creates an idle session and paints the surface once
func NewSession(cfg *Config) *Session {
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	radius := cfg.EraserRadius
	if radius <= 0 {
		radius = EraserRadius
	}

	viewport := cfg.Viewport
	if viewport.BufferWidth == 0 && viewport.BufferHeight == 0 {
		viewport = IdentityViewport(cfg.Surface.Width, cfg.Surface.Height)
	}

	s := &Session{
		surface:  cfg.Surface,
		renderer: cfg.Renderer,
		viewport: viewport,
		radius:   radius,
		onUpdate: cfg.OnUpdate,
		logger:   log.WithSurfaceID(cfg.Surface.ID),
	}
	s.repaint()
	return s
}

// Surface returns the current committed surface
func (s *Session) Surface() ink.Surface {
	return s.surface
}

// SetSurface replaces the committed surface, e.g. after the host reloads
// it, and repaints. An active drag is dropped.
func (s *Session) SetSurface(surface ink.Surface) {
	s.reset()
	s.surface = surface
	s.repaint()
}

// SetViewport updates the display mapping, e.g. after a layout change
func (s *Session) SetViewport(v Viewport) {
	s.viewport = v
}

// State reports whether a drag is active
func (s *Session) State() State {
	return s.state
}

// InProgress returns a copy of the points captured by the active drag
func (s *Session) InProgress() []geometry.Point {
	out := make([]geometry.Point, len(s.path))
	copy(out, s.path)
	return out
}

// PointerDown starts a drag at a client position with a snapshot of tool.
// Changes to the host's tool state mid-drag do not affect this drag.
func (s *Session) PointerDown(clientX, clientY float64, tool ink.ToolState) {
	if s.state == StateDragging {
		// a missed up event; finish the previous drag first
		s.finish()
	}

	p := s.viewport.ToCanvas(clientX, clientY)
	s.state = StateDragging
	s.tool = tool

	if tool.Tool == ink.ToolEraser {
		s.erase(p)
		return
	}
	s.path = append(s.path[:0], p)
}

// PointerMove extends the active drag. It is ignored while idle.
func (s *Session) PointerMove(clientX, clientY float64) {
	if s.state != StateDragging {
		return
	}

	p := s.viewport.ToCanvas(clientX, clientY)
	if s.tool.Tool == ink.ToolEraser {
		s.erase(p)
		return
	}

	prev := s.path[len(s.path)-1]
	s.path = append(s.path, p)
	if s.renderer != nil {
		s.renderer.DrawSegment(prev, p, s.tool)
	}
}

// PointerUp ends the active drag, committing a stroke when one was drawn
func (s *Session) PointerUp() {
	if s.state != StateDragging {
		return
	}
	s.finish()
}

// PointerLeave ends the active drag the same way PointerUp does
func (s *Session) PointerLeave() {
	s.PointerUp()
}

func (s *Session) finish() {
	defer s.reset()

	if s.tool.Tool == ink.ToolEraser {
		return
	}
	if len(s.path) < 2 {
		s.logger.WithFields("points", len(s.path)).Debug("Discarding drag too short for a stroke")
		return
	}

	points := make([]geometry.Point, len(s.path))
	copy(points, s.path)
	if s.tool.Tool == ink.ToolHighlighter {
		points = SnapHighlighter(points)
	}

	stroke := ink.Stroke{
		Points: points,
		Color:  s.tool.Color,
		Width:  s.tool.Width,
		Kind:   s.tool.Tool.Kind(),
	}

	next := s.surface.AppendStroke(stroke)
	next.Touch()
	s.logger.WithFields("kind", stroke.Kind, "points", len(points), "paths", len(next.Paths)).Debug("Committed stroke")
	s.commit(next)
}

func (s *Session) erase(p geometry.Point) {
	kept, removed := EraseAt(s.surface.Paths, p, s.radius)
	if removed == 0 {
		return
	}

	next := s.surface.WithPaths(kept)
	next.Touch()
	s.logger.WithFields("removed", removed, "paths", len(kept)).Debug("Erased strokes")
	s.commit(next)
}

func (s *Session) commit(next ink.Surface) {
	s.surface = next
	s.repaint()
	if s.onUpdate != nil {
		s.onUpdate(next)
	}
}

func (s *Session) repaint() {
	if s.renderer != nil {
		s.renderer.Repaint(s.surface)
	}
}

func (s *Session) reset() {
	s.state = StateIdle
	s.path = s.path[:0]
}
