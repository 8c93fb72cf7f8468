package video

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/chewxy/math32"
)

// Signed-distance helpers for the synthetic overlays. Positive distances
// are outside the shape; coverage comes from clamping 0.5−d to [0,1],
// which gives one pixel of antialiasing at the edge.

func sdRoundedBox(px, py, cx, cy, halfW, halfH, radius float32) float32 {
	qx := math32.Abs(px-cx) - halfW + radius
	qy := math32.Abs(py-cy) - halfH + radius
	outside := math32.Hypot(math32.Max(qx, 0), math32.Max(qy, 0))
	inside := math32.Min(math32.Max(qx, qy), 0)
	return outside + inside - radius
}

func sdCircle(px, py, cx, cy, r float32) float32 {
	return math32.Hypot(px-cx, py-cy) - r
}

// sdSegment is the distance to the line segment (ax,ay)-(bx,by).
func sdSegment(px, py, ax, ay, bx, by float32) float32 {
	pax, pay := px-ax, py-ay
	bax, bay := bx-ax, by-ay
	h := (pax*bax + pay*bay) / (bax*bax + bay*bay)
	h = math32.Max(0, math32.Min(1, h))
	return math32.Hypot(pax-bax*h, pay-bay*h)
}

// sdTriangle is the signed distance to a triangle (counter-clockwise
// winding gives negative inside).
func sdTriangle(px, py, ax, ay, bx, by, cx, cy float32) float32 {
	d := math32.Min(sdSegment(px, py, ax, ay, bx, by),
		math32.Min(sdSegment(px, py, bx, by, cx, cy), sdSegment(px, py, cx, cy, ax, ay)))
	s1 := (bx-ax)*(py-ay) - (by-ay)*(px-ax)
	s2 := (cx-bx)*(py-by) - (cy-by)*(px-bx)
	s3 := (ax-cx)*(py-cy) - (ay-cy)*(px-cx)
	inside := (s1 >= 0 && s2 >= 0 && s3 >= 0) || (s1 <= 0 && s2 <= 0 && s3 <= 0)
	if inside {
		return -d
	}
	return d
}

func coverage(d float32) float32 {
	return math32.Max(0, math32.Min(1, 0.5-d))
}

// blendPixel composites src over the RGBA image at (x,y) with the given
// alpha in [0,1].
func blendPixel(img *image.RGBA, x, y int, c color.RGBA, alpha float32) {
	if alpha <= 0 || !image.Pt(x, y).In(img.Rect) {
		return
	}
	if alpha > 1 {
		alpha = 1
	}
	i := img.PixOffset(x, y)
	a := float32(c.A) / 255 * alpha
	inv := 1 - a
	img.Pix[i+0] = uint8(float32(c.R)*a + float32(img.Pix[i+0])*inv)
	img.Pix[i+1] = uint8(float32(c.G)*a + float32(img.Pix[i+1])*inv)
	img.Pix[i+2] = uint8(float32(c.B)*a + float32(img.Pix[i+2])*inv)
	outA := a + float32(img.Pix[i+3])/255*inv
	img.Pix[i+3] = uint8(outA * 255)
}

// parseHexColor parses "#rrggbb" or "#rrggbbaa". Invalid input returns
// opaque black and an error for the caller to log.
func parseHexColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' || (len(s) != 7 && len(s) != 9) {
		return color.RGBA{A: 255}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 64)
	if err != nil {
		return color.RGBA{A: 255}, fmt.Errorf("invalid color %q", s)
	}
	if len(s) == 7 {
		return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
