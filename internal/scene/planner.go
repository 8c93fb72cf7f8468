package scene

import (
	"math"

	"github.com/vedantwpatil/FocusFrame/internal/config"
)

// Base half-lives in seconds, before the speed preset scales them. The
// anticipation factor of 3 half-lives lands the camera at roughly 87.5%
// convergence by the time the scene starts.
var (
	hintSpringIn    = SpringHint{ZoomHalfLife: 0.20, PanHalfLife: 0.20}
	hintSmooth      = SpringHint{ZoomHalfLife: 0.25, PanHalfLife: 0.25}
	hintMediumOut   = SpringHint{ZoomHalfLife: 0.35, PanHalfLife: 0.30}
	hintOverviewOut = SpringHint{ZoomHalfLife: 0.40, PanHalfLife: 0.35}
)

const (
	anticipationHalfLives = 3
	minKeyframeSpacingMs  = 200
	idleOutDelayMs        = 300
	zoomCollapseEps       = 0.01
	panCollapseEps        = 1.0
)

// Planner converts the scene list plus idle spans into the keyframe
// sequence the viewport integrator consumes. Because the whole event
// stream is known up front, each scene's move starts early enough that
// the camera has settled by the scene's first event.
type Planner struct {
	Config  *config.Config
	ScreenW float64
	ScreenH float64
}

func (p *Planner) scaled(h SpringHint) SpringHint {
	f := p.Config.Zoom.Speed.Factor()
	return SpringHint{ZoomHalfLife: h.ZoomHalfLife * f, PanHalfLife: h.PanHalfLife * f}
}

func (p *Planner) fullScreen() bool {
	return p.Config.Recording.Mode == config.ModeDisplay
}

// windowFitZoom frames the given window rect.
func (p *Planner) windowFitZoom(w, h float64) float64 {
	zoom := math.Min(p.ScreenW/w, p.ScreenH/h)
	return math.Max(1.0, math.Min(zoom, p.Config.Zoom.MaxZoom))
}

// Plan emits the ordered keyframe list for the scenes of one recording.
// durationMs is the total recording length, used for trailing idle.
func (p *Planner) Plan(scenes []Scene, durationMs int64) []Keyframe {
	if !p.Config.Zoom.Enabled || len(scenes) == 0 {
		return nil
	}

	var kfs []Keyframe
	lastT := int64(math.MinInt64 / 2)
	emit := func(kf Keyframe) {
		kfs = append(kfs, kf)
		lastT = kf.T
	}

	for i, sc := range scenes {
		if i == 0 {
			// The opening move always starts at zero.
			hint := p.scaled(hintSpringIn)
			emit(Keyframe{
				T: 0, TargetX: sc.CenterX, TargetY: sc.CenterY,
				ZoomLevel: sc.ZoomLevel, Transition: TransitionSpringIn, Hint: &hint,
			})
			continue
		}

		prev := scenes[i-1]
		gap := sc.StartT - prev.EndT
		idleOut := false

		switch {
		case gap >= p.Config.Zoom.OverviewIdleMs && p.fullScreen():
			hint := p.scaled(hintOverviewOut)
			emit(Keyframe{
				T:       maxI64(prev.EndT+idleOutDelayMs, lastT+minKeyframeSpacingMs),
				TargetX: p.ScreenW / 2, TargetY: p.ScreenH / 2,
				ZoomLevel: 1.0, Transition: TransitionSpringOut, Hint: &hint,
			})
			idleOut = true
		case gap >= p.Config.Zoom.ZoomOutIdleMs:
			t := maxI64(prev.EndT+idleOutDelayMs, lastT+minKeyframeSpacingMs)
			hint := p.scaled(hintMediumOut)
			if prev.Window != nil {
				emit(Keyframe{
					T:       t,
					TargetX: prev.Window.CenterX(), TargetY: prev.Window.CenterY(),
					ZoomLevel:  p.windowFitZoom(float64(prev.Window.W), float64(prev.Window.H)),
					Transition: TransitionSpringOut, Hint: &hint,
				})
				idleOut = true
			} else if p.fullScreen() {
				// No window to relax to; fall back to the overview.
				emit(Keyframe{
					T:       t,
					TargetX: p.ScreenW / 2, TargetY: p.ScreenH / 2,
					ZoomLevel: 1.0, Transition: TransitionSpringOut, Hint: &hint,
				})
				idleOut = true
			}
		}

		transition := TransitionSmooth
		hint := p.scaled(hintSmooth)
		if idleOut {
			transition = TransitionSpringIn
			hint = p.scaled(hintSpringIn)
		}
		anticipation := int64(math.Round(anticipationHalfLives * hint.PanHalfLife * 1000))
		t := maxI64(sc.StartT-anticipation, prev.EndT, lastT+minKeyframeSpacingMs)
		emit(Keyframe{
			T: t, TargetX: sc.CenterX, TargetY: sc.CenterY,
			ZoomLevel: sc.ZoomLevel, Transition: transition, Hint: &hint,
		})
	}

	// Trailing idle relaxes to the overview before the recording ends.
	last := scenes[len(scenes)-1]
	if p.fullScreen() && durationMs-last.EndT >= p.Config.Zoom.OverviewIdleMs {
		hint := p.scaled(hintOverviewOut)
		emit(Keyframe{
			T:       maxI64(last.EndT+idleOutDelayMs, lastT+minKeyframeSpacingMs),
			TargetX: p.ScreenW / 2, TargetY: p.ScreenH / 2,
			ZoomLevel: 1.0, Transition: TransitionSpringOut, Hint: &hint,
		})
	}

	return dedupe(kfs)
}

// dedupe drops keyframes crowding the previous one in favor of the
// later, then collapses consecutive keyframes whose targets are
// effectively identical. The opening keyframe is never dropped.
func dedupe(kfs []Keyframe) []Keyframe {
	if len(kfs) == 0 {
		return kfs
	}
	spaced := kfs[:1]
	for _, kf := range kfs[1:] {
		prev := spaced[len(spaced)-1]
		if kf.T-prev.T < minKeyframeSpacingMs {
			if prev.T == 0 {
				// Keep the opening keyframe; the crowding one loses.
				continue
			}
			spaced[len(spaced)-1] = kf
			continue
		}
		spaced = append(spaced, kf)
	}
	out := spaced[:1]
	for _, kf := range spaced[1:] {
		prev := out[len(out)-1]
		samePlace := math.Abs(kf.ZoomLevel-prev.ZoomLevel) < zoomCollapseEps &&
			math.Abs(kf.TargetX-prev.TargetX) < panCollapseEps &&
			math.Abs(kf.TargetY-prev.TargetY) < panCollapseEps
		if samePlace {
			continue
		}
		out = append(out, kf)
	}
	return out
}

func maxI64(vals ...int64) int64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
