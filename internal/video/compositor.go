package video

import (
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/vedantwpatil/FocusFrame/internal/config"
	"github.com/vedantwpatil/FocusFrame/internal/motion"
	"github.com/vedantwpatil/FocusFrame/internal/tracking"
)

// Overlay sizing at 1080p output; scaled with the canvas.
const (
	cursorSizePx    = 22.0
	ringMaxRadiusPx = 44.0
	ringStrokePx    = 3.0
	ringFillAlpha   = 0.15
	badgeMarginPx   = 48.0
	shadowBlurPx    = 22.0
	shadowOffsetPx  = 10.0
	shadowAlpha     = 0.45
)

var (
	ringColor    = color.RGBA{R: 255, G: 214, B: 68, A: 255}
	badgeBgCol   = color.RGBA{R: 18, G: 18, B: 22, A: 230}
	badgeTextCol = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	cursorFill   = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	cursorEdge   = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

// Compositor renders output frames: crop-and-scale of the source frame
// through the viewport, synthetic overlays, and static framing. The
// background canvas, drop shadow, and corner mask are computed once per
// job and shared read-only across workers.
type Compositor struct {
	cfg     *config.Config
	screenW float64
	screenH float64

	outW, outH  int
	contentRect image.Rectangle

	background *image.RGBA
	shadow     *image.RGBA
	cornerMask []float32
	face       font.Face

	cursorPath []tracking.CursorSample
	effects    *Effects
	scaler     draw.Scaler
}

// NewCompositor builds a compositor and its immutable caches.
func NewCompositor(cfg *config.Config, screenW, screenH int, cursorPath []tracking.CursorSample, effects *Effects) (*Compositor, error) {
	c := &Compositor{
		cfg:        cfg,
		screenW:    float64(screenW),
		screenH:    float64(screenH),
		outW:       cfg.Output.Width,
		outH:       cfg.Output.Height,
		cursorPath: cursorPath,
		effects:    effects,
		// Triangle filter: cheaper than Lanczos, and the framing hides
		// the difference.
		scaler: draw.ApproxBiLinear,
	}

	pad := cfg.Framing.Padding
	availW := c.outW - 2*pad
	availH := c.outH - 2*pad
	if availW <= 0 || availH <= 0 {
		return nil, fmt.Errorf("padding %d leaves no room at %dx%d", pad, c.outW, c.outH)
	}
	c.contentRect = fitRect(c.screenW/c.screenH, availW, availH, c.outW, c.outH)

	face, err := opentype.NewFace(mustParseFont(), &opentype.FaceOptions{
		Size: 17 * c.scale(), DPI: 72, Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build badge font face: %w", err)
	}
	c.face = face

	c.buildCornerMask()
	c.buildBackground()
	if cfg.Framing.Shadow {
		c.buildShadow()
	}
	return c, nil
}

func mustParseFont() *opentype.Font {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		// goregular is embedded; a parse failure is a build defect.
		panic(err)
	}
	return f
}

// scale converts 1080p-relative overlay sizes to this canvas.
func (c *Compositor) scale() float64 {
	return float64(c.outH) / 1080
}

// fitRect centers an aspect-fit rectangle for the source aspect ratio
// inside the padded area of the canvas.
func fitRect(aspect float64, availW, availH, outW, outH int) image.Rectangle {
	w := availW
	h := int(float64(w) / aspect)
	if h > availH {
		h = availH
		w = int(float64(h) * aspect)
	}
	x0 := (outW - w) / 2
	y0 := (outH - h) / 2
	return image.Rect(x0, y0, x0+w, y0+h)
}

func (c *Compositor) buildCornerMask() {
	r := c.contentRect
	w, h := r.Dx(), r.Dy()
	radius := float32(c.cfg.Framing.BorderRadius)
	mask := make([]float32, w*h)
	cx, cy := float32(w)/2, float32(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := sdRoundedBox(float32(x)+0.5, float32(y)+0.5, cx, cy, float32(w)/2, float32(h)/2, radius)
			mask[y*w+x] = coverage(d)
		}
	}
	c.cornerMask = mask
}

func (c *Compositor) buildBackground() {
	bg := image.NewRGBA(image.Rect(0, 0, c.outW, c.outH))
	switch c.cfg.Framing.Background {
	case config.BackgroundTransparent:
		// Leave the canvas at zero alpha.
	case config.BackgroundSolid:
		col := c.namedColor(c.cfg.Framing.ColorTop)
		stddraw.Draw(bg, bg.Bounds(), image.NewUniform(col), image.Point{}, stddraw.Src)
	case config.BackgroundGradient:
		c.fillGradient(bg)
	}
	c.background = bg
}

func (c *Compositor) namedColor(s string) color.RGBA {
	col, err := parseHexColor(s)
	if err != nil {
		log.Warn().Str("color", s).Msg("invalid background color, using black")
	}
	return col
}

// fillGradient paints a linear gradient along the configured angle.
func (c *Compositor) fillGradient(dst *image.RGBA) {
	top := c.namedColor(c.cfg.Framing.ColorTop)
	bottom := c.namedColor(c.cfg.Framing.ColorBottom)
	angle := c.cfg.Framing.GradientAngle * math.Pi / 180
	dx, dy := math.Cos(angle), math.Sin(angle)

	// Project every corner to find the gradient extent.
	minP, maxP := projExtent(dx, dy, float64(c.outW), float64(c.outH))
	span := maxP - minP
	if span <= 0 {
		span = 1
	}
	for y := 0; y < c.outH; y++ {
		for x := 0; x < c.outW; x++ {
			t := ((float64(x)*dx + float64(y)*dy) - minP) / span
			i := dst.PixOffset(x, y)
			dst.Pix[i+0] = lerp8(top.R, bottom.R, t)
			dst.Pix[i+1] = lerp8(top.G, bottom.G, t)
			dst.Pix[i+2] = lerp8(top.B, bottom.B, t)
			dst.Pix[i+3] = 255
		}
	}
}

func projExtent(dx, dy, w, h float64) (float64, float64) {
	corners := [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}}
	min, max := 0.0, 0.0
	for i, p := range corners {
		v := p[0]*dx + p[1]*dy
		if i == 0 || v < min {
			min = v
		}
		if i == 0 || v > max {
			max = v
		}
	}
	return min, max
}

func lerp8(a, b uint8, t float64) uint8 {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// buildShadow renders the rounded content silhouette, blurs it, and
// keeps the result for per-frame compositing beneath the content.
func (c *Compositor) buildShadow() {
	sc := c.scale()
	sil := image.NewRGBA(image.Rect(0, 0, c.outW, c.outH))
	r := c.contentRect
	w, h := r.Dx(), r.Dy()
	offY := int(shadowOffsetPx * sc)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := c.cornerMask[y*w+x]
			if a <= 0 {
				continue
			}
			px, py := r.Min.X+x, r.Min.Y+y+offY
			if !image.Pt(px, py).In(sil.Rect) {
				continue
			}
			i := sil.PixOffset(px, py)
			sil.Pix[i+3] = uint8(a * 255 * shadowAlpha)
		}
	}
	c.shadow = blur.Gaussian(sil, shadowBlurPx*sc)
}

// RenderFrame composites one output frame. src is the decoded source
// frame; tp is the precomputed viewport for this frame time.
func (c *Compositor) RenderFrame(src image.Image, tp motion.TrajectoryPoint) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.outW, c.outH))
	copy(out.Pix, c.background.Pix)

	if c.shadow != nil {
		stddraw.Draw(out, out.Bounds(), c.shadow, image.Point{}, stddraw.Over)
	}

	content := c.renderContent(src, tp)
	c.applyCornerMask(content)
	stddraw.Draw(out, c.contentRect, content, image.Point{}, stddraw.Over)
	return out
}

// renderContent crops the viewport out of the source frame, scales it to
// the content size, and draws the in-content overlays.
func (c *Compositor) renderContent(src image.Image, tp motion.TrajectoryPoint) *image.RGBA {
	w, h := c.contentRect.Dx(), c.contentRect.Dy()
	content := image.NewRGBA(image.Rect(0, 0, w, h))

	vp := tp.Rect
	srcRect := image.Rect(
		int(vp.X+0.5), int(vp.Y+0.5),
		int(vp.X+vp.W+0.5), int(vp.Y+vp.H+0.5),
	).Intersect(src.Bounds())
	c.scaler.Scale(content, content.Bounds(), src, srcRect, draw.Src, nil)

	// Projection from source-screen coordinates into content pixels.
	sx := float64(w) / vp.W
	sy := float64(h) / vp.H
	project := func(x, y float64) (float64, float64) {
		return (x - vp.X) * sx, (y - vp.Y) * sy
	}

	for _, ring := range c.effects.ActiveRings(tp.T) {
		rx, ry := project(ring.X, ring.Y)
		c.drawRing(content, rx, ry, ring)
	}

	if cx, cy, ok := motion.CursorAt(c.cursorPath, tp.T); ok {
		px, py := project(cx, cy)
		c.drawCursor(content, px, py)
	}

	for _, badge := range c.effects.ActiveBadges(tp.T) {
		c.drawBadge(content, badge)
	}
	return content
}

func (c *Compositor) applyCornerMask(content *image.RGBA) {
	w, h := c.contentRect.Dx(), c.contentRect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := c.cornerMask[y*w+x]
			if a >= 1 {
				continue
			}
			i := content.PixOffset(x, y)
			content.Pix[i+0] = uint8(float32(content.Pix[i+0]) * a)
			content.Pix[i+1] = uint8(float32(content.Pix[i+1]) * a)
			content.Pix[i+2] = uint8(float32(content.Pix[i+2]) * a)
			content.Pix[i+3] = uint8(float32(content.Pix[i+3]) * a)
		}
	}
}

// drawRing paints a stroked, fading ring with a faint fill.
func (c *Compositor) drawRing(dst *image.RGBA, cx, cy float64, ring RingState) {
	sc := c.scale()
	radius := float32(ringMaxRadiusPx * sc * ring.Eased)
	stroke := float32(ringStrokePx*sc) / 2
	alpha := float32(1 - ring.Linear)

	bound := int(radius + stroke + 2)
	x0, y0 := int(cx), int(cy)
	for y := y0 - bound; y <= y0+bound; y++ {
		for x := x0 - bound; x <= x0+bound; x++ {
			d := sdCircle(float32(x)+0.5, float32(y)+0.5, float32(cx), float32(cy), radius)
			// Stroke on the ring, dim fill inside it.
			edge := coverage(math32.Abs(d) - stroke)
			blendPixel(dst, x, y, ringColor, edge*alpha)
			if d < 0 {
				blendPixel(dst, x, y, ringColor, coverage(d)*alpha*ringFillAlpha)
			}
		}
	}
}

// drawCursor paints a signed-distance-field arrow with a soft shadow,
// hotspot at (hx, hy). Output size is constant regardless of zoom, so
// the cursor keeps its apparent size.
func (c *Compositor) drawCursor(dst *image.RGBA, hx, hy float64) {
	s := float32(cursorSizePx * c.scale() / 22.0)
	type tri struct{ ax, ay, bx, by, cx, cy float32 }
	// Arrow body as two triangles in hotspot-local units.
	tris := []tri{
		{0, 0, 0, 16, 11, 11},
		{4.2, 9.5, 7.2, 17.5, 10.4, 16.1},
	}
	dist := func(px, py float32) float32 {
		d := float32(1e9)
		for _, t := range tris {
			td := sdTriangle(px, py, t.ax*s, t.ay*s, t.bx*s, t.by*s, t.cx*s, t.cy*s)
			if td < d {
				d = td
			}
		}
		return d
	}

	bound := int(20*s) + 3
	x0, y0 := int(hx), int(hy)
	shadowOff := 2 * s
	for y := y0 - 2; y <= y0+bound; y++ {
		for x := x0 - 2; x <= x0+bound; x++ {
			lx := float32(x) + 0.5 - float32(hx)
			ly := float32(y) + 0.5 - float32(hy)
			// Shadow first, then outline, then fill.
			ds := dist(lx-shadowOff, ly-shadowOff)
			blendPixel(dst, x, y, color.RGBA{A: 255}, coverage(ds-1.5)*0.30)
			d := dist(lx, ly)
			blendPixel(dst, x, y, cursorEdge, coverage(d-1.2))
			blendPixel(dst, x, y, cursorFill, coverage(d))
		}
	}
}

// drawBadge paints the key label in a rounded rectangle at
// bottom-center.
func (c *Compositor) drawBadge(dst *image.RGBA, badge BadgeState) {
	sc := c.scale()
	drawer := font.Drawer{Face: c.face}
	width := drawer.MeasureString(badge.Label)
	textW := float32(width.Round())

	metrics := c.face.Metrics()
	textH := float32((metrics.Ascent + metrics.Descent).Round())
	padX := float32(16 * sc)
	padY := float32(9 * sc)

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	boxW := textW + 2*padX
	boxH := textH + 2*padY
	cx := float32(w) / 2
	cy := float32(h) - float32(badgeMarginPx*sc) - boxH/2
	radius := boxH / 2.4

	alpha := float32(badge.Alpha)
	x0, x1 := int(cx-boxW/2)-2, int(cx+boxW/2)+2
	y0, y1 := int(cy-boxH/2)-2, int(cy+boxH/2)+2
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := sdRoundedBox(float32(x)+0.5, float32(y)+0.5, cx, cy, boxW/2, boxH/2, radius)
			blendPixel(dst, x, y, badgeBgCol, coverage(d)*alpha)
		}
	}

	// Text alpha rides the badge envelope; color.RGBA is premultiplied.
	ta := uint8(float64(255) * badge.Alpha)
	tcol := color.RGBA{
		R: uint8(uint16(badgeTextCol.R) * uint16(ta) / 255),
		G: uint8(uint16(badgeTextCol.G) * uint16(ta) / 255),
		B: uint8(uint16(badgeTextCol.B) * uint16(ta) / 255),
		A: ta,
	}
	drawer = font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(tcol),
		Face: c.face,
		Dot: fixed.Point26_6{
			X: fixed.I(int(cx)) - width/2,
			Y: fixed.I(int(cy)) + metrics.Ascent/2 - metrics.Descent/2,
		},
	}
	drawer.DrawString(badge.Label)
}
