package video

import (
	"math"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

// ClickRing is one expanding ring spawned by a mouse click.
type ClickRing struct {
	T    int64
	X, Y float64
}

// KeyBadge is one on-screen key label, e.g. "Ctrl+C".
type KeyBadge struct {
	T     int64
	Label string
}

// Effects holds the overlay source data for a job, extracted once from
// the event stream and queried per frame.
type Effects struct {
	cfg    *config.Config
	rings  []ClickRing
	badges []KeyBadge
}

// ExtractEffects pulls click rings and key badges out of the event
// stream, honoring the per-effect enable switches.
func ExtractEffects(cfg *config.Config, events []tracking.Event) *Effects {
	fx := &Effects{cfg: cfg}
	for _, ev := range events {
		switch ev.Kind {
		case tracking.KindClick:
			if cfg.Effects.ClickRings {
				fx.rings = append(fx.rings, ClickRing{T: ev.T, X: ev.X, Y: ev.Y})
			}
		case tracking.KindKeyPress:
			if cfg.Effects.KeyBadges && ev.IsBadgeWorthy() {
				fx.badges = append(fx.badges, KeyBadge{T: ev.T, Label: ev.BadgeLabel()})
			}
		}
	}
	return fx
}

// RingState is a ring live at a particular frame time.
type RingState struct {
	X, Y float64
	// Eased is the cubic ease-out of elapsed progress; drives the radius.
	Eased float64
	// Linear is the raw elapsed progress; drives the fade.
	Linear float64
}

// ActiveRings returns the rings alive at time t.
func (fx *Effects) ActiveRings(t int64) []RingState {
	var out []RingState
	dur := float64(fx.cfg.Effects.RingDurationMs)
	for _, r := range fx.rings {
		elapsed := float64(t - r.T)
		if elapsed < 0 || elapsed > dur {
			continue
		}
		linear := elapsed / dur
		out = append(out, RingState{
			X: r.X, Y: r.Y,
			Eased:  1 - math.Pow(1-linear, 3),
			Linear: linear,
		})
	}
	return out
}

// BadgeState is a badge live at a particular frame time.
type BadgeState struct {
	Label string
	// Alpha includes the fade-in/out envelope.
	Alpha float64
}

// badgeFadeMs is the fade-in and fade-out ramp at either end of a
// badge's life.
const badgeFadeMs = 150.0

// ActiveBadges returns the badges alive at time t, most recent last.
// Overlapping badges are resolved in favor of the most recent one so the
// label strip never stacks.
func (fx *Effects) ActiveBadges(t int64) []BadgeState {
	var out []BadgeState
	dur := float64(fx.cfg.Effects.BadgeDurationMs)
	for _, b := range fx.badges {
		elapsed := float64(t - b.T)
		if elapsed < 0 || elapsed > dur {
			continue
		}
		alpha := 1.0
		if elapsed < badgeFadeMs {
			alpha = elapsed / badgeFadeMs
		} else if remaining := dur - elapsed; remaining < badgeFadeMs {
			alpha = remaining / badgeFadeMs
		}
		out = append(out, BadgeState{Label: b.Label, Alpha: alpha})
	}
	if len(out) > 1 {
		out = out[len(out)-1:]
	}
	return out
}
