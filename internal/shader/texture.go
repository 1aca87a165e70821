package shader

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Texture is a read-only sampler over an 8-bit straight-alpha bitmap. It
// filters bilinearly and clamps coordinates to the edge texels.
type Texture struct {
	pix    []uint8
	stride int
	width  int
	height int
}

// NewTexture uploads img. Anything other than an NRGBA with origin (0,0) is
// converted first.
func NewTexture(img image.Image) *Texture {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return &Texture{
		pix:    nrgba.Pix,
		stride: nrgba.Stride,
		width:  nrgba.Rect.Dx(),
		height: nrgba.Rect.Dy(),
	}
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

func (t *Texture) Empty() bool {
	return t == nil || t.width == 0 || t.height == 0
}

// Texel fetches one texel with clamp-to-edge addressing.
func (t *Texture) Texel(x, y int) Color {
	x = min(max(x, 0), t.width-1)
	y = min(max(y, 0), t.height-1)
	i := y*t.stride + x*4
	p := t.pix[i : i+4 : i+4]
	return Color{
		R: float64(p[0]) / 255,
		G: float64(p[1]) / 255,
		B: float64(p[2]) / 255,
		A: float64(p[3]) / 255,
	}
}

// Sample filters the texture at a normalized coordinate. Texel centers sit
// at (i+0.5)/size.
func (t *Texture) Sample(uv Vec2) Color {
	if t.Empty() {
		return Color{}
	}
	fx := uv.X*float64(t.width) - 0.5
	fy := uv.Y*float64(t.height) - 0.5
	x0f, y0f := math.Floor(fx), math.Floor(fy)
	tx, ty := fx-x0f, fy-y0f
	x0, y0 := int(x0f), int(y0f)

	top := t.Texel(x0, y0).Mix(t.Texel(x0+1, y0), tx)
	bottom := t.Texel(x0, y0+1).Mix(t.Texel(x0+1, y0+1), tx)
	return top.Mix(bottom, ty)
}
