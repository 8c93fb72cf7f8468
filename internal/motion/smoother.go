package motion

import (
	"sort"

	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

const (
	cursorHalfLife = 0.05

	// Pre-gate thresholds: displacements and speeds below these are hand
	// tremor, not deliberate motion.
	gateDistancePx   = 2.0
	gateVelocityPxPS = 50.0
)

// SmoothCursor spring-filters the raw cursor path against its real
// timestamps. The output has the same length and timestamps as the
// input. Sub-threshold jitter is pinned to the previous point before
// filtering, which suppresses tremor without adding latency to real
// moves.
func SmoothCursor(path []tracking.CursorSample) []tracking.CursorSample {
	if len(path) == 0 {
		return nil
	}
	out := make([]tracking.CursorSample, 0, len(path))

	sx := NewSpring(path[0].X)
	sy := NewSpring(path[0].Y)
	out = append(out, path[0])

	prevRaw := path[0]
	for _, raw := range path[1:] {
		dt := float64(raw.T-prevRaw.T) / 1000
		gated := raw
		dist := tracking.Distance(prevRaw.X, prevRaw.Y, raw.X, raw.Y)
		if dt > 0 && dist < gateDistancePx && dist/dt < gateVelocityPxPS {
			gated.X, gated.Y = prevRaw.X, prevRaw.Y
		}
		sx.Target = gated.X
		sy.Target = gated.Y
		if dt > 0 {
			// Errors are impossible here: dt is positive.
			_ = sx.Update(cursorHalfLife, dt)
			_ = sy.Update(cursorHalfLife, dt)
		}
		out = append(out, tracking.CursorSample{T: raw.T, X: sx.Position, Y: sy.Position})
		prevRaw = gated
	}
	return out
}

// CursorAt samples the smoothed path at time t, interpolating linearly
// between neighbors and holding the ends. ok is false when the path is
// empty.
func CursorAt(path []tracking.CursorSample, t int64) (x, y float64, ok bool) {
	if len(path) == 0 {
		return 0, 0, false
	}
	i := sort.Search(len(path), func(i int) bool { return path[i].T > t })
	if i == 0 {
		return path[0].X, path[0].Y, true
	}
	if i == len(path) {
		last := path[len(path)-1]
		return last.X, last.Y, true
	}
	a, b := path[i-1], path[i]
	if b.T == a.T {
		return b.X, b.Y, true
	}
	f := float64(t-a.T) / float64(b.T-a.T)
	return a.X + (b.X-a.X)*f, a.Y + (b.Y-a.Y)*f, true
}
