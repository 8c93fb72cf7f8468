package scene

import (
	"math"

	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

// Splitter tuning. Times are milliseconds, distances source pixels.
const (
	keyClickAnchorMs = 2000
	groupGapMs       = 1500
	windowRectTolPx  = 50

	bboxPaddingPx = 80
	bboxMinSidePx = 200
	bboxAreaCap   = 0.5 // fraction of screen area
	splitGapMs    = 500
	splitDistPx   = 400
	minZoom       = 1.2
)

// ActivityPoint is the projection of one semantically meaningful event
// onto a time-and-place sample.
type ActivityPoint struct {
	T      int64
	X, Y   float64
	Window *tracking.Rect
	// FromWindow marks points synthesized at the focused window's center
	// (key presses with no recent click to anchor to).
	FromWindow bool
}

// Scene is a maximal run of related activity, with the derived camera
// framing for it.
type Scene struct {
	ID         int
	StartT     int64
	EndT       int64
	BBox       BBox
	CenterX    float64
	CenterY    float64
	ZoomLevel  float64
	Window     *tracking.Rect
	EventCount int
}

// BBox is a float bounding box over activity points.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BBox) Width() float64  { return b.MaxX - b.MinX }
func (b BBox) Height() float64 { return b.MaxY - b.MinY }
func (b BBox) Area() float64   { return b.Width() * b.Height() }

func (b *BBox) extend(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

func bboxOf(points []ActivityPoint) BBox {
	b := BBox{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		b.extend(p.X, p.Y)
	}
	return b
}

// padded grows the box by the margin, enforces the minimum side lengths,
// and clips the result to the screen.
func (b BBox) padded(screenW, screenH float64) BBox {
	out := BBox{
		MinX: b.MinX - bboxPaddingPx,
		MinY: b.MinY - bboxPaddingPx,
		MaxX: b.MaxX + bboxPaddingPx,
		MaxY: b.MaxY + bboxPaddingPx,
	}
	if out.Width() < bboxMinSidePx {
		cx := (out.MinX + out.MaxX) / 2
		out.MinX = cx - bboxMinSidePx/2
		out.MaxX = cx + bboxMinSidePx/2
	}
	if out.Height() < bboxMinSidePx {
		cy := (out.MinY + out.MaxY) / 2
		out.MinY = cy - bboxMinSidePx/2
		out.MaxY = cy + bboxMinSidePx/2
	}
	out.MinX = math.Max(out.MinX, 0)
	out.MinY = math.Max(out.MinY, 0)
	out.MaxX = math.Min(out.MaxX, screenW)
	out.MaxY = math.Min(out.MaxY, screenH)
	return out
}

// Splitter partitions activity points into scenes.
type Splitter struct {
	ScreenW float64
	ScreenH float64
	MaxZoom float64
}

// ExtractActivity projects the preprocessed event stream onto activity
// points. Key presses carry no coordinates of their own: they anchor to a
// recent click, then to the focused window's center, and are otherwise
// dropped.
func ExtractActivity(events []tracking.Event) []ActivityPoint {
	var points []ActivityPoint
	var window *tracking.Rect
	var lastClick *tracking.Event
	for i := range events {
		ev := events[i]
		switch ev.Kind {
		case tracking.KindClick, tracking.KindClickRelease, tracking.KindScroll:
			points = append(points, ActivityPoint{T: ev.T, X: ev.X, Y: ev.Y, Window: window})
			if ev.Kind == tracking.KindClick {
				c := ev
				lastClick = &c
			}
		case tracking.KindKeyPress:
			switch {
			case lastClick != nil && ev.T-lastClick.T <= keyClickAnchorMs:
				// Click-a-field-then-type: the click told us where.
				points = append(points, ActivityPoint{T: ev.T, X: lastClick.X, Y: lastClick.Y, Window: window})
			case window != nil:
				// Terminal pattern: anchor to the focused window.
				points = append(points, ActivityPoint{T: ev.T, X: window.CenterX(), Y: window.CenterY(), Window: window, FromWindow: true})
			default:
				// Nowhere to anchor the key press.
			}
		case tracking.KindWindowFocus:
			window = ev.Window
		}
	}
	return points
}

// Split partitions activity points into scenes: temporal/window grouping
// first, then spatial sub-splitting of oversized groups, then the derived
// per-scene fields. Total for any input; pathological streams degrade to
// a single all-encompassing scene.
func (s *Splitter) Split(points []ActivityPoint) []Scene {
	if len(points) == 0 {
		return nil
	}

	groups := s.groupByTimeAndWindow(points)

	var final [][]ActivityPoint
	for _, g := range groups {
		final = append(final, s.splitOversized(g)...)
	}

	scenes := make([]Scene, 0, len(final))
	for i, g := range final {
		scenes = append(scenes, s.describe(i, g))
	}
	return scenes
}

func windowChanged(a, b *tracking.Rect) bool {
	if a == nil && b == nil {
		return false
	}
	if (a == nil) != (b == nil) {
		return true
	}
	return !a.NearlyEqual(*b, windowRectTolPx)
}

func (s *Splitter) groupByTimeAndWindow(points []ActivityPoint) [][]ActivityPoint {
	var groups [][]ActivityPoint
	current := []ActivityPoint{points[0]}
	for _, p := range points[1:] {
		prev := current[len(current)-1]
		if p.T-prev.T >= groupGapMs || windowChanged(prev.Window, p.Window) {
			groups = append(groups, current)
			current = []ActivityPoint{p}
			continue
		}
		current = append(current, p)
	}
	return append(groups, current)
}

// splitOversized cuts a group whose padded box covers too much of the
// screen, at the first interior gap that is both slow and far. Recurses
// until every piece fits or no cut exists.
func (s *Splitter) splitOversized(group []ActivityPoint) [][]ActivityPoint {
	box := bboxOf(group).padded(s.ScreenW, s.ScreenH)
	if box.Area() <= bboxAreaCap*s.ScreenW*s.ScreenH {
		return [][]ActivityPoint{group}
	}
	for i := 1; i < len(group); i++ {
		prev, next := group[i-1], group[i]
		if next.T-prev.T >= splitGapMs && tracking.Distance(prev.X, prev.Y, next.X, next.Y) >= splitDistPx {
			left := s.splitOversized(group[:i])
			right := s.splitOversized(group[i:])
			return append(left, right...)
		}
	}
	// No viable cut: keep the oversized group whole.
	return [][]ActivityPoint{group}
}

func (s *Splitter) describe(id int, group []ActivityPoint) Scene {
	// The most common window rect among members wins.
	var window *tracking.Rect
	counts := make(map[tracking.Rect]int)
	best := 0
	for _, p := range group {
		if p.Window == nil {
			continue
		}
		counts[*p.Window]++
		if counts[*p.Window] > best {
			best = counts[*p.Window]
			w := *p.Window
			window = &w
		}
	}

	// A group made entirely of window-anchored key presses has no spatial
	// spread of its own; frame the window instead of the synthetic points.
	allFromWindow := true
	for _, p := range group {
		if !p.FromWindow {
			allFromWindow = false
			break
		}
	}
	var box BBox
	if allFromWindow && window != nil {
		box = BBox{
			MinX: math.Max(float64(window.X), 0),
			MinY: math.Max(float64(window.Y), 0),
			MaxX: math.Min(float64(window.X+window.W), s.ScreenW),
			MaxY: math.Min(float64(window.Y+window.H), s.ScreenH),
		}
	} else {
		box = bboxOf(group).padded(s.ScreenW, s.ScreenH)
	}
	zoom := math.Min(s.ScreenW/box.Width(), s.ScreenH/box.Height())
	zoom = math.Max(minZoom, math.Min(zoom, s.MaxZoom))

	return Scene{
		ID:         id,
		StartT:     group[0].T,
		EndT:       group[len(group)-1].T,
		BBox:       box,
		CenterX:    (box.MinX + box.MaxX) / 2,
		CenterY:    (box.MinY + box.MaxY) / 2,
		ZoomLevel:  zoom,
		Window:     window,
		EventCount: len(group),
	}
}
