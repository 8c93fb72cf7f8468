package video

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/motion"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

func smallConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Output.Width = 320
	cfg.Output.Height = 180
	cfg.Framing.Padding = 16
	cfg.Framing.BorderRadius = 8
	return cfg
}

func sourceFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 640, 360))
	for y := 0; y < 360; y++ {
		for x := 0; x < 640; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 64, A: 255})
		}
	}
	return img
}

func newTestCompositor(t *testing.T, cfg *config.Config) *Compositor {
	t.Helper()
	cursor := []tracking.CursorSample{{T: 0, X: 320, Y: 180}, {T: 1000, X: 400, Y: 200}}
	fx := ExtractEffects(cfg, []tracking.Event{
		{Kind: tracking.KindClick, T: 100, X: 320, Y: 180, Button: "left"},
		{Kind: tracking.KindKeyPress, T: 100, Key: "s", Modifiers: tracking.ModCtrl},
	})
	c, err := NewCompositor(cfg, 640, 360, cursor, fx)
	require.NoError(t, err)
	return c
}

func identityViewport(t int64) motion.TrajectoryPoint {
	return motion.TrajectoryPoint{T: t, Rect: motion.Rect{X: 0, Y: 0, W: 640, H: 360}, Zoom: 1.0}
}

func TestRenderFrameDimensionsAndOpacity(t *testing.T) {
	c := newTestCompositor(t, smallConfig())
	out := c.RenderFrame(sourceFrame(), identityViewport(200))

	assert.Equal(t, image.Rect(0, 0, 320, 180), out.Bounds())
	// Gradient background: every pixel is opaque.
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("pixel %d has alpha %d", i/4, out.Pix[i])
		}
	}
}

func TestRenderFrameDeterministic(t *testing.T) {
	c := newTestCompositor(t, smallConfig())
	src := sourceFrame()
	a := c.RenderFrame(src, identityViewport(200))
	b := c.RenderFrame(src, identityViewport(200))
	assert.Equal(t, a.Pix, b.Pix)
}

func TestRenderFrameTransparentBackground(t *testing.T) {
	cfg := smallConfig()
	cfg.Framing.Background = config.BackgroundTransparent
	cfg.Framing.Shadow = false
	c := newTestCompositor(t, cfg)
	out := c.RenderFrame(sourceFrame(), identityViewport(200))

	// The padding strip stays fully transparent.
	assert.Equal(t, uint8(0), out.Pix[3])
	// The content center is opaque.
	center := out.PixOffset(160, 90)
	assert.Equal(t, uint8(255), out.Pix[center+3])
}

func TestRenderFrameRoundsContentCorners(t *testing.T) {
	cfg := smallConfig()
	cfg.Framing.Background = config.BackgroundTransparent
	cfg.Framing.Shadow = false
	c := newTestCompositor(t, cfg)
	out := c.RenderFrame(sourceFrame(), identityViewport(200))

	r := c.contentRect
	// The exact content corner sits outside the rounded radius.
	corner := out.PixOffset(r.Min.X, r.Min.Y)
	assert.Equal(t, uint8(0), out.Pix[corner+3])
}

func TestRenderFrameZoomedViewport(t *testing.T) {
	c := newTestCompositor(t, smallConfig())
	// A 2x zoom onto the top-left quadrant.
	tp := motion.TrajectoryPoint{T: 200, Rect: motion.Rect{X: 0, Y: 0, W: 320, H: 180}, Zoom: 2.0}
	out := c.RenderFrame(sourceFrame(), tp)
	assert.Equal(t, image.Rect(0, 0, 320, 180), out.Bounds())
}

func TestFitRectKeepsAspect(t *testing.T) {
	r := fitRect(16.0/9, 288, 148, 320, 180)
	assert.InDelta(t, 16.0/9, float64(r.Dx())/float64(r.Dy()), 0.05)
	assert.True(t, r.In(image.Rect(0, 0, 320, 180)))
}

func TestParseHexColor(t *testing.T) {
	c, err := parseHexColor("#1e293b")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 255}, c)

	c, err = parseHexColor("#ff000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = parseHexColor("red")
	assert.Error(t, err)
	_, err = parseHexColor("#12345")
	assert.Error(t, err)
}

func TestCoverageClamps(t *testing.T) {
	assert.Equal(t, float32(1), coverage(-2))
	assert.Equal(t, float32(0), coverage(2))
	assert.InDelta(t, 0.5, float64(coverage(0)), 1e-6)
}
