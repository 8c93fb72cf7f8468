package motion

import (
	"fmt"
	"math"

	"github.com/vedantwpatil/FocusFrame/internal/scene"
)

// Rect is a viewport rectangle in source-screen pixels.
type Rect struct {
	X, Y, W, H float64
}

// TrajectoryPoint is one frame of the materialized camera path.
type TrajectoryPoint struct {
	T    int64
	Rect Rect
	Zoom float64
}

// Viewport integrates the camera: three springs (center x, center y,
// zoom) driven by the keyframe plan. State advances strictly forward;
// frames must be visited in timestamp order.
type Viewport struct {
	screenW float64
	screenH float64

	cx   Spring
	cy   Spring
	zoom Spring

	keyframes []scene.Keyframe
	cursor    int

	zoomHalfLife float64
	panHalfLife  float64
}

// NewViewport returns a viewport resting at the identity view: centered,
// zoom 1.0.
func NewViewport(screenW, screenH float64, keyframes []scene.Keyframe) *Viewport {
	return &Viewport{
		screenW:      screenW,
		screenH:      screenH,
		cx:           NewSpring(screenW / 2),
		cy:           NewSpring(screenH / 2),
		zoom:         NewSpring(1.0),
		keyframes:    keyframes,
		zoomHalfLife: 0.25,
		panHalfLife:  0.25,
	}
}

// apply adopts a keyframe: new spring targets, and its half-lives for
// every update until the next keyframe.
func (v *Viewport) apply(kf scene.Keyframe) {
	v.cx.Target = kf.TargetX
	v.cy.Target = kf.TargetY
	v.zoom.Target = kf.ZoomLevel
	if kf.Hint != nil {
		v.zoomHalfLife = kf.Hint.ZoomHalfLife
		v.panHalfLife = kf.Hint.PanHalfLife
	}
}

// Advance crosses any keyframes due at or before t, then steps the
// springs by dt seconds. Each keyframe is applied exactly once.
func (v *Viewport) Advance(t int64, dt float64) error {
	for v.cursor < len(v.keyframes) && v.keyframes[v.cursor].T <= t {
		v.apply(v.keyframes[v.cursor])
		v.cursor++
	}
	if err := v.cx.Update(v.panHalfLife, dt); err != nil {
		return fmt.Errorf("viewport center-x: %w", err)
	}
	if err := v.cy.Update(v.panHalfLife, dt); err != nil {
		return fmt.Errorf("viewport center-y: %w", err)
	}
	if err := v.zoom.Update(v.zoomHalfLife, dt); err != nil {
		return fmt.Errorf("viewport zoom: %w", err)
	}
	return nil
}

// Zoom returns the effective zoom factor, never below identity.
func (v *Viewport) Zoom() float64 {
	return math.Max(v.zoom.Position, 1.0)
}

// Rect derives the current crop rectangle, clamped inside the screen.
func (v *Viewport) Rect() Rect {
	zoom := v.Zoom()
	w := v.screenW / zoom
	h := v.screenH / zoom
	x := clamp(v.cx.Position-w/2, 0, v.screenW-w)
	y := clamp(v.cy.Position-h/2, 0, v.screenH-h)
	return Rect{X: x, Y: y, W: w, H: h}
}

// Sweep materializes the full trajectory for the given frame timestamps
// in one sequential pass, so per-frame compositing can run in parallel
// afterwards.
func (v *Viewport) Sweep(timestamps []int64) ([]TrajectoryPoint, error) {
	out := make([]TrajectoryPoint, 0, len(timestamps))
	prev := int64(0)
	for i, t := range timestamps {
		dt := float64(t-prev) / 1000
		if i == 0 {
			dt = 0
		}
		if err := v.Advance(t, dt); err != nil {
			return nil, err
		}
		out = append(out, TrajectoryPoint{T: t, Rect: v.Rect(), Zoom: v.Zoom()})
		prev = t
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}
