package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

func testEvents() []tracking.Event {
	return []tracking.Event{
		{Kind: tracking.KindClick, T: 1000, X: 500, Y: 300, Button: "left"},
		{Kind: tracking.KindKeyPress, T: 2000, Key: "c", Modifiers: tracking.ModCtrl},
		{Kind: tracking.KindKeyPress, T: 2100, Key: "a"}, // not badge worthy
	}
}

func TestExtractEffects(t *testing.T) {
	fx := ExtractEffects(config.NewConfig(), testEvents())
	assert.Len(t, fx.rings, 1)
	assert.Len(t, fx.badges, 1)
	assert.Equal(t, "Ctrl+C", fx.badges[0].Label)
}

func TestExtractEffectsHonorsSwitches(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Effects.ClickRings = false
	cfg.Effects.KeyBadges = false
	fx := ExtractEffects(cfg, testEvents())
	assert.Empty(t, fx.rings)
	assert.Empty(t, fx.badges)
}

func TestActiveRingsWindowAndEasing(t *testing.T) {
	fx := ExtractEffects(config.NewConfig(), testEvents())

	assert.Empty(t, fx.ActiveRings(999), "before the click")
	assert.Empty(t, fx.ActiveRings(1401), "after ring_duration_ms")

	rings := fx.ActiveRings(1200)
	require.Len(t, rings, 1)
	r := rings[0]
	assert.Equal(t, 500.0, r.X)
	assert.InDelta(t, 0.5, r.Linear, 1e-9)
	// Cubic ease-out: 1 - (1-0.5)^3.
	assert.InDelta(t, 0.875, r.Eased, 1e-9)
}

func TestActiveBadgesEnvelope(t *testing.T) {
	fx := ExtractEffects(config.NewConfig(), testEvents())

	assert.Empty(t, fx.ActiveBadges(1999))

	fadingIn := fx.ActiveBadges(2075)
	require.Len(t, fadingIn, 1)
	assert.InDelta(t, 0.5, fadingIn[0].Alpha, 1e-9)

	steady := fx.ActiveBadges(2800)
	require.Len(t, steady, 1)
	assert.Equal(t, 1.0, steady[0].Alpha)

	fadingOut := fx.ActiveBadges(3425)
	require.Len(t, fadingOut, 1)
	assert.InDelta(t, 0.5, fadingOut[0].Alpha, 1e-9)

	assert.Empty(t, fx.ActiveBadges(3501))
}

func TestActiveBadgesKeepOnlyMostRecent(t *testing.T) {
	events := []tracking.Event{
		{Kind: tracking.KindKeyPress, T: 0, Key: "c", Modifiers: tracking.ModCtrl},
		{Kind: tracking.KindKeyPress, T: 500, Key: "v", Modifiers: tracking.ModCtrl},
	}
	fx := ExtractEffects(config.NewConfig(), events)
	badges := fx.ActiveBadges(700)
	require.Len(t, badges, 1)
	assert.Equal(t, "Ctrl+V", badges[0].Label)
}
