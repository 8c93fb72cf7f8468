package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

func newSplitter() *Splitter {
	return &Splitter{ScreenW: 1920, ScreenH: 1080, MaxZoom: 3.0}
}

func click(t int64, x, y float64) tracking.Event {
	return tracking.Event{Kind: tracking.KindClick, T: t, X: x, Y: y, Button: "left"}
}

func key(t int64, k string) tracking.Event {
	return tracking.Event{Kind: tracking.KindKeyPress, T: t, Key: k}
}

func focus(t int64, r tracking.Rect) tracking.Event {
	return tracking.Event{Kind: tracking.KindWindowFocus, T: t, Title: "win", Window: &r}
}

func TestSplitEmptyEvents(t *testing.T) {
	s := newSplitter()
	assert.Empty(t, s.Split(ExtractActivity(nil)))
}

func TestSplitSingleClickScene(t *testing.T) {
	// One click at (500,300) on a 1920x1080 screen: padded bbox around
	// the click, zoom clamped to max.
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{click(500, 500, 300)}))
	require.Len(t, scenes, 1)

	sc := scenes[0]
	assert.Equal(t, int64(500), sc.StartT)
	assert.Equal(t, int64(500), sc.EndT)
	assert.Equal(t, 500.0, sc.CenterX)
	assert.Equal(t, 300.0, sc.CenterY)
	assert.Equal(t, 3.0, sc.ZoomLevel)
	assert.Equal(t, 1, sc.EventCount)
	// Minimum box size applies after padding.
	assert.InDelta(t, 200, sc.BBox.Width(), 1e-9)
	assert.InDelta(t, 200, sc.BBox.Height(), 1e-9)
}

func TestSplitOnTemporalGap(t *testing.T) {
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		click(0, 500, 300),
		click(400, 520, 310),
		click(3000, 1500, 800), // 2.6s later: new scene
	}))
	require.Len(t, scenes, 2)
	assert.Equal(t, int64(0), scenes[0].StartT)
	assert.Equal(t, int64(400), scenes[0].EndT)
	assert.Equal(t, 2, scenes[0].EventCount)
	assert.Equal(t, int64(3000), scenes[1].StartT)
}

func TestSplitOnWindowChange(t *testing.T) {
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		focus(0, tracking.Rect{X: 0, Y: 0, W: 900, H: 700}),
		click(100, 400, 300),
		focus(200, tracking.Rect{X: 900, Y: 0, W: 900, H: 700}),
		click(300, 1300, 300), // 200ms later but different window
	}))
	require.Len(t, scenes, 2)
}

func TestSplitToleratesWindowChrome(t *testing.T) {
	// Rect wobble under the 50px tolerance stays one scene.
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		focus(0, tracking.Rect{X: 100, Y: 100, W: 800, H: 600}),
		click(100, 400, 300),
		focus(200, tracking.Rect{X: 110, Y: 95, W: 805, H: 610}),
		click(300, 420, 310),
	}))
	require.Len(t, scenes, 1)
	assert.Equal(t, 2, scenes[0].EventCount)
}

func TestSplitOversizedGroupSpatially(t *testing.T) {
	// Two clusters far apart with a slow gap in between: the padded box
	// covers most of the screen, so the group is cut at the gap.
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		click(0, 100, 100),
		click(200, 150, 150),
		click(1000, 1700, 900), // 800ms and ~1700px from the previous
		click(1200, 1750, 950),
	}))
	require.Len(t, scenes, 2)
	assert.Equal(t, 2, scenes[0].EventCount)
	assert.Equal(t, 2, scenes[1].EventCount)
}

func TestKeyPressAnchorsToRecentClick(t *testing.T) {
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		click(0, 600, 400),
		key(500, "a"),
		key(900, "b"),
	}))
	require.Len(t, scenes, 1)
	sc := scenes[0]
	assert.Equal(t, 3, sc.EventCount)
	assert.Equal(t, 600.0, sc.CenterX)
	assert.Equal(t, 400.0, sc.CenterY)
}

func TestKeyPressAnchorsToFocusedWindow(t *testing.T) {
	// Terminal pattern: typing with no clicks frames the window.
	s := newSplitter()
	scenes := s.Split(ExtractActivity([]tracking.Event{
		focus(0, tracking.Rect{X: 100, Y: 100, W: 800, H: 600}),
		key(3000, "l"),
		key(3200, "s"),
		key(3500, "enter"),
	}))
	require.Len(t, scenes, 1)

	sc := scenes[0]
	assert.Equal(t, 500.0, sc.CenterX)
	assert.Equal(t, 400.0, sc.CenterY)
	// Window-fit zoom: min(1920/800, 1080/600).
	assert.InDelta(t, 1.8, sc.ZoomLevel, 1e-9)
}

func TestKeyPressWithoutAnchorIsDropped(t *testing.T) {
	s := newSplitter()
	assert.Empty(t, s.Split(ExtractActivity([]tracking.Event{key(100, "a")})))
}

func TestScenesAreTimeDisjointAndCoverAllPoints(t *testing.T) {
	events := []tracking.Event{
		click(0, 200, 200),
		click(2000, 1500, 800),
		click(2300, 1550, 820),
		click(9000, 300, 900),
	}
	s := newSplitter()
	points := ExtractActivity(events)
	scenes := s.Split(points)

	total := 0
	for i, sc := range scenes {
		total += sc.EventCount
		assert.LessOrEqual(t, sc.StartT, sc.EndT)
		if i > 0 {
			assert.Greater(t, sc.StartT, scenes[i-1].EndT)
		}
	}
	assert.Equal(t, len(points), total)
}

func TestZoomLevelBounds(t *testing.T) {
	// A sprawling scene still gets at least the minimum zoom.
	s := newSplitter()
	scenes := s.Split([]ActivityPoint{
		{T: 0, X: 100, Y: 100},
		{T: 100, X: 1800, Y: 980},
	})
	require.Len(t, scenes, 1)
	assert.GreaterOrEqual(t, scenes[0].ZoomLevel, 1.2)
	assert.LessOrEqual(t, scenes[0].ZoomLevel, 3.0)
}
