package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

func newPlanner() *Planner {
	return &Planner{Config: config.NewConfig(), ScreenW: 1920, ScreenH: 1080}
}

func planScenes(t *testing.T, p *Planner, events []tracking.Event, durationMs int64) []Keyframe {
	t.Helper()
	s := &Splitter{ScreenW: p.ScreenW, ScreenH: p.ScreenH, MaxZoom: p.Config.Zoom.MaxZoom}
	return p.Plan(s.Split(ExtractActivity(events)), durationMs)
}

func TestPlanEmptyScenes(t *testing.T) {
	p := newPlanner()
	assert.Empty(t, p.Plan(nil, 10000))
}

func TestPlanDisabledAutoZoom(t *testing.T) {
	p := newPlanner()
	p.Config.Zoom.Enabled = false
	kfs := planScenes(t, p, []tracking.Event{click(500, 500, 300)}, 2000)
	assert.Empty(t, kfs)
}

func TestPlanSingleClickScene(t *testing.T) {
	p := newPlanner()
	kfs := planScenes(t, p, []tracking.Event{click(500, 500, 300)}, 2000)
	require.Len(t, kfs, 1)

	kf := kfs[0]
	assert.Equal(t, int64(0), kf.T)
	assert.Equal(t, 500.0, kf.TargetX)
	assert.Equal(t, 300.0, kf.TargetY)
	assert.Equal(t, 3.0, kf.ZoomLevel)
	assert.Equal(t, TransitionSpringIn, kf.Transition)
	require.NotNil(t, kf.Hint)
	assert.InDelta(t, 0.20, kf.Hint.PanHalfLife, 1e-9)
}

func TestPlanAnticipatesNextScene(t *testing.T) {
	// Two scenes 3s apart, under the idle threshold: the second keyframe
	// fires three pan half-lives early.
	p := newPlanner()
	kfs := planScenes(t, p, []tracking.Event{
		click(0, 500, 300),
		click(3000, 1500, 800),
	}, 4000)
	require.Len(t, kfs, 2)

	assert.Equal(t, int64(0), kfs[0].T)
	assert.Equal(t, int64(2250), kfs[1].T)
	assert.Equal(t, TransitionSmooth, kfs[1].Transition)
	assert.Equal(t, 1500.0, kfs[1].TargetX)
}

func TestPlanLongIdleZoomsOutToOverview(t *testing.T) {
	// A 14.5s gap in display mode: zoom out to screen center shortly
	// after the first scene ends, then spring back in early.
	p := newPlanner()
	kfs := planScenes(t, p, []tracking.Event{
		click(500, 500, 300),
		click(15000, 1500, 800),
	}, 16000)
	require.Len(t, kfs, 3)

	assert.Equal(t, int64(0), kfs[0].T)
	assert.Equal(t, TransitionSpringIn, kfs[0].Transition)

	out := kfs[1]
	assert.Equal(t, int64(800), out.T)
	assert.Equal(t, TransitionSpringOut, out.Transition)
	assert.Equal(t, 960.0, out.TargetX)
	assert.Equal(t, 540.0, out.TargetY)
	assert.Equal(t, 1.0, out.ZoomLevel)

	in := kfs[2]
	assert.Equal(t, int64(14400), in.T)
	assert.Equal(t, TransitionSpringIn, in.Transition)
}

func TestPlanMediumIdleZoomsOutToWindow(t *testing.T) {
	// A 6s gap with a focused window: relax to the window fit, not the
	// overview.
	p := newPlanner()
	kfs := planScenes(t, p, []tracking.Event{
		focus(0, tracking.Rect{X: 100, Y: 100, W: 800, H: 600}),
		click(500, 500, 300),
		click(6500, 1500, 800),
	}, 8000)
	require.Len(t, kfs, 3)

	out := kfs[1]
	assert.Equal(t, TransitionSpringOut, out.Transition)
	assert.Equal(t, 500.0, out.TargetX)
	assert.Equal(t, 400.0, out.TargetY)
	assert.InDelta(t, 1.8, out.ZoomLevel, 1e-9)
}

func TestPlanNonDisplayModeSuppressesOverview(t *testing.T) {
	p := newPlanner()
	p.Config.Recording.Mode = config.ModeWindow
	kfs := planScenes(t, p, []tracking.Event{
		click(500, 500, 300),
		click(15000, 1500, 800),
	}, 16000)
	// No window rect and no overview allowed: no intermediate keyframe,
	// and the return is a plain smooth move.
	require.Len(t, kfs, 2)
	assert.Equal(t, TransitionSmooth, kfs[1].Transition)
}

func TestPlanTrailingIdleReturnsToOverview(t *testing.T) {
	p := newPlanner()
	kfs := planScenes(t, p, []tracking.Event{click(500, 500, 300)}, 20000)
	require.Len(t, kfs, 2)

	last := kfs[1]
	assert.Equal(t, TransitionSpringOut, last.Transition)
	assert.Equal(t, int64(800), last.T)
	assert.Equal(t, 1.0, last.ZoomLevel)
}

func TestPlanSpeedPresetScalesHalfLives(t *testing.T) {
	p := newPlanner()
	p.Config.Zoom.Speed = config.SpeedRapid
	kfs := planScenes(t, p, []tracking.Event{
		click(0, 500, 300),
		click(3000, 1500, 800),
	}, 4000)
	require.Len(t, kfs, 2)
	// Rapid halves the 0.25s smooth pan half-life: 3000 - 3*125 = 2625.
	assert.Equal(t, int64(2625), kfs[1].T)
	assert.InDelta(t, 0.125, kfs[1].Hint.PanHalfLife, 1e-9)
}

func TestPlanKeyframesMonotonic(t *testing.T) {
	p := newPlanner()
	var events []tracking.Event
	ts := []int64{0, 100, 1800, 1900, 7400, 16000, 16200, 25000}
	for i, at := range ts {
		events = append(events, click(at, float64(200+i*200), float64(150+i*100)))
	}
	kfs := planScenes(t, p, events, 30000)
	require.NotEmpty(t, kfs)
	assert.Equal(t, int64(0), kfs[0].T)
	for i := 1; i < len(kfs); i++ {
		assert.GreaterOrEqual(t, kfs[i].T, kfs[i-1].T, "keyframe %d", i)
	}
}

func TestPlanDeterministic(t *testing.T) {
	p := newPlanner()
	events := []tracking.Event{
		click(0, 500, 300),
		click(3000, 1500, 800),
		click(12000, 400, 900),
	}
	a := planScenes(t, p, events, 15000)
	b := planScenes(t, p, events, 15000)
	assert.Equal(t, a, b)
}
