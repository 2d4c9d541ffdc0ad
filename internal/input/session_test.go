package input

import (
	"reflect"
	"testing"

	"github.com/platinummonkey/inkpad/internal/geometry"
	"github.com/platinummonkey/inkpad/internal/ink"
)

type recorder struct {
	repaints int
	segments [][2]geometry.Point
	last     ink.Surface
}

func (r *recorder) Repaint(s ink.Surface) {
	r.repaints++
	r.last = s
}

func (r *recorder) DrawSegment(from, to geometry.Point, _ ink.ToolState) {
	r.segments = append(r.segments, [2]geometry.Point{from, to})
}

type harness struct {
	session  *Session
	renderer *recorder
	updates  []ink.Surface
}

func newHarness(t *testing.T, surface ink.Surface) *harness {
	t.Helper()
	h := &harness{renderer: &recorder{}}
	h.session = NewSession(&Config{
		Surface:  surface,
		Renderer: h.renderer,
		OnUpdate: func(s ink.Surface) { h.updates = append(h.updates, s) },
	})
	return h
}

func (h *harness) drag(tool ink.ToolState, points ...geometry.Point) {
	h.session.PointerDown(points[0].X, points[0].Y, tool)
	for _, p := range points[1:] {
		h.session.PointerMove(p.X, p.Y)
	}
	h.session.PointerUp()
}

var (
	pen         = ink.ToolState{Tool: ink.ToolPen, Color: "#000000", Width: 3}
	highlighter = ink.ToolState{Tool: ink.ToolHighlighter, Color: "#FFFF00", Width: 16}
	eraser      = ink.ToolState{Tool: ink.ToolEraser, Color: "#000000", Width: 3}
)

func TestNewSessionPaintsOnce(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	if h.renderer.repaints != 1 {
		t.Errorf("repaints = %d, want 1", h.renderer.repaints)
	}
	if h.session.State() != StateIdle {
		t.Errorf("State() = %v, want idle", h.session.State())
	}
}

func TestPenStrokeCommittedAsCaptured(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	captured := []geometry.Point{{X: 1, Y: 1}, {X: 5, Y: 2}, {X: 5, Y: 2}, {X: 40, Y: 3}, {X: 41, Y: 90}}

	h.drag(pen, captured...)

	if len(h.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(h.updates))
	}
	paths := h.updates[0].Paths
	if len(paths) != 1 {
		t.Fatalf("paths = %d, want 1", len(paths))
	}
	want := ink.Stroke{Points: captured, Color: "#000000", Width: 3, Kind: ink.KindPen}
	if !reflect.DeepEqual(paths[0], want) {
		t.Errorf("committed = %+v, want %+v", paths[0], want)
	}
	if h.session.State() != StateIdle {
		t.Errorf("State() = %v, want idle after up", h.session.State())
	}
}

func TestMostlyHorizontalPenIsNotSnapped(t *testing.T) {
	h := newHarness(t, ink.NewSurface(300, 300))
	captured := []geometry.Point{{X: 0, Y: 100}, {X: 100, Y: 103}, {X: 200, Y: 104}}

	h.drag(pen, captured...)

	if got := h.session.Surface().Paths[0].Points; !reflect.DeepEqual(got, captured) {
		t.Errorf("points = %v, want %v", got, captured)
	}
}

func TestSinglePointDragNeverCommits(t *testing.T) {
	for _, tool := range []ink.ToolState{pen, highlighter} {
		t.Run(string(tool.Tool), func(t *testing.T) {
			h := newHarness(t, ink.NewSurface(100, 100))
			h.session.PointerDown(10, 10, tool)
			h.session.PointerUp()

			if len(h.updates) != 0 {
				t.Errorf("updates = %d, want 0", len(h.updates))
			}
			if len(h.session.Surface().Paths) != 0 {
				t.Errorf("paths = %d, want 0", len(h.session.Surface().Paths))
			}
		})
	}
}

func TestPointerLeaveCommits(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.session.PointerDown(0, 0, pen)
	h.session.PointerMove(10, 10)
	h.session.PointerLeave()

	if len(h.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(h.updates))
	}
	h.session.PointerLeave()
	if len(h.updates) != 1 {
		t.Errorf("second leave produced an update")
	}
}

func TestMoveWhileIdleIsIgnored(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.session.PointerMove(5, 5)
	h.session.PointerUp()

	if len(h.renderer.segments) != 0 || len(h.updates) != 0 {
		t.Errorf("idle events drew %d segments and %d updates", len(h.renderer.segments), len(h.updates))
	}
}

func TestIncrementalSegmentsDuringDrag(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.session.PointerDown(0, 0, pen)
	h.session.PointerMove(10, 0)
	h.session.PointerMove(10, 10)

	want := [][2]geometry.Point{
		{{X: 0, Y: 0}, {X: 10, Y: 0}},
		{{X: 10, Y: 0}, {X: 10, Y: 10}},
	}
	if !reflect.DeepEqual(h.renderer.segments, want) {
		t.Errorf("segments = %v, want %v", h.renderer.segments, want)
	}
	if len(h.updates) != 0 {
		t.Errorf("updates during drag = %d, want 0", len(h.updates))
	}
	if got := h.session.InProgress(); len(got) != 3 {
		t.Errorf("InProgress() = %v, want 3 points", got)
	}
	if h.renderer.repaints != 1 {
		t.Errorf("repaints during drag = %d, want 1", h.renderer.repaints)
	}

	h.session.PointerUp()
	if h.renderer.repaints != 2 {
		t.Errorf("repaints after commit = %d, want 2", h.renderer.repaints)
	}
	if len(h.session.InProgress()) != 0 {
		t.Errorf("in-progress path not discarded")
	}
}

func TestEraserScenario(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))

	a := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	h.drag(pen, a...)
	if len(h.session.Surface().Paths) != 1 {
		t.Fatalf("paths = %d after pen stroke, want 1", len(h.session.Surface().Paths))
	}

	h.drag(eraser, geometry.Pt(10, 5), geometry.Pt(10, 5))

	if got := h.session.Surface().Paths; len(got) != 0 {
		t.Errorf("paths = %v after erase, want []", got)
	}
	if len(h.updates) != 2 {
		t.Errorf("updates = %d, want 2 (commit + removal)", len(h.updates))
	}
	if len(h.renderer.segments) != 2 {
		t.Errorf("eraser drag drew segments: %v", h.renderer.segments)
	}
}

func TestEraserIsIdempotent(t *testing.T) {
	start := ink.NewSurface(100, 100).WithPaths([]ink.Stroke{
		{Points: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, Color: "#000000", Width: 3, Kind: ink.KindPen},
		{Points: []geometry.Point{{X: 0, Y: 80}, {X: 90, Y: 80}}, Color: "#000000", Width: 3, Kind: ink.KindPen},
	})
	h := newHarness(t, start)

	h.session.PointerDown(5, 0, eraser)
	after := h.session.Surface().Paths
	if len(after) != 1 || len(h.updates) != 1 {
		t.Fatalf("after first pass: paths = %d updates = %d, want 1 and 1", len(after), len(h.updates))
	}

	h.session.PointerMove(5, 0)
	h.session.PointerMove(5, 0)
	h.session.PointerUp()

	if len(h.updates) != 1 {
		t.Errorf("updates = %d after repeated erase, want 1", len(h.updates))
	}
	if !reflect.DeepEqual(h.session.Surface().Paths, after) {
		t.Errorf("paths changed on repeated erase")
	}
}

func TestEraserContinuousAlongDrag(t *testing.T) {
	start := ink.NewSurface(200, 200).WithPaths([]ink.Stroke{
		{Points: []geometry.Point{{X: 100, Y: 0}, {X: 100, Y: 200}}, Color: "#000000", Width: 2, Kind: ink.KindPen},
	})
	h := newHarness(t, start)

	// neither endpoint is near the stroke
	h.drag(eraser, geometry.Pt(20, 100), geometry.Pt(60, 100), geometry.Pt(100, 100), geometry.Pt(180, 100))

	if len(h.session.Surface().Paths) != 0 {
		t.Errorf("stroke crossed by the eraser drag was kept")
	}
}

func TestEraserNeverCommitsStroke(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.drag(eraser, geometry.Pt(0, 0), geometry.Pt(50, 50), geometry.Pt(90, 90))

	if len(h.updates) != 0 || len(h.session.Surface().Paths) != 0 {
		t.Errorf("eraser drag over empty surface: updates = %d paths = %d", len(h.updates), len(h.session.Surface().Paths))
	}
}

func TestHighlighterScenario(t *testing.T) {
	h := newHarness(t, ink.NewSurface(300, 300))
	h.drag(highlighter, geometry.Pt(0, 100), geometry.Pt(100, 102), geometry.Pt(200, 104))

	got := h.session.Surface().Paths[0]
	want := []geometry.Point{{X: 0, Y: 102}, {X: 200, Y: 102}}
	if !reflect.DeepEqual(got.Points, want) {
		t.Errorf("points = %v, want %v", got.Points, want)
	}
	if got.Kind != ink.KindHighlighter || got.Color != "#FFFF00" || got.Width != 16 {
		t.Errorf("stroke attributes = %+v", got)
	}
}

func TestToolSnapshotAtDragStart(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	tool := pen
	h.session.PointerDown(0, 0, tool)
	tool.Color = "#FF0000"
	tool.Tool = ink.ToolEraser
	h.session.PointerMove(50, 50)
	h.session.PointerUp()

	got := h.session.Surface().Paths
	if len(got) != 1 || got[0].Color != "#000000" || got[0].Kind != ink.KindPen {
		t.Errorf("paths = %+v, want one black pen stroke", got)
	}
}

func TestMissedPointerUpFinishesPreviousDrag(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.session.PointerDown(0, 0, pen)
	h.session.PointerMove(10, 10)
	h.session.PointerDown(50, 50, pen)
	h.session.PointerMove(60, 60)
	h.session.PointerUp()

	if got := len(h.session.Surface().Paths); got != 2 {
		t.Errorf("paths = %d, want 2", got)
	}
}

func TestCommitDoesNotMutateHostSurface(t *testing.T) {
	host := ink.NewSurface(100, 100).WithPaths([]ink.Stroke{
		{Points: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, Color: "#000000", Width: 3, Kind: ink.KindPen},
	})
	h := newHarness(t, host)

	h.drag(pen, geometry.Pt(50, 50), geometry.Pt(60, 60))
	h.drag(eraser, geometry.Pt(5, 0))

	if len(host.Paths) != 1 {
		t.Errorf("host paths = %d, want 1", len(host.Paths))
	}
	if len(h.updates) != 2 || len(h.updates[0].Paths) != 2 || len(h.updates[1].Paths) != 1 {
		t.Errorf("unexpected update sequence")
	}
}

func TestViewportScalesPointer(t *testing.T) {
	h := newHarness(t, ink.NewSurface(200, 100))
	h.session.SetViewport(Viewport{
		BufferWidth: 200, BufferHeight: 100,
		DisplayWidth: 100, DisplayHeight: 50,
		OffsetX: 10, OffsetY: 20,
	})

	h.drag(pen, geometry.Pt(10, 20), geometry.Pt(60, 45))

	want := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 50}}
	if got := h.session.Surface().Paths[0].Points; !reflect.DeepEqual(got, want) {
		t.Errorf("points = %v, want %v", got, want)
	}
}

func TestSetSurfaceDropsDrag(t *testing.T) {
	h := newHarness(t, ink.NewSurface(100, 100))
	h.session.PointerDown(0, 0, pen)
	h.session.PointerMove(10, 10)

	h.session.SetSurface(ink.NewSurface(100, 100))
	h.session.PointerUp()

	if len(h.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(h.updates))
	}
	if h.renderer.repaints != 2 {
		t.Errorf("repaints = %d, want 2", h.renderer.repaints)
	}
}

func TestSessionWithoutRenderer(t *testing.T) {
	var got ink.Surface
	s := NewSession(&Config{
		Surface:  ink.NewSurface(50, 50),
		OnUpdate: func(next ink.Surface) { got = next },
	})
	s.PointerDown(0, 0, pen)
	s.PointerMove(20, 20)
	s.PointerUp()

	if len(got.Paths) != 1 {
		t.Errorf("paths = %d, want 1", len(got.Paths))
	}
}
