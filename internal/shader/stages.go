package shader

import "math"

const (
	// MosaicThreshold is the intensity at or below which mosaic passes through.
	MosaicThreshold = 0.01

	mosaicFineBlocks   = 200.0
	mosaicCoarseBlocks = 5.0
)

// Fragment carries the inputs shared by the stages of one pixel.
type Fragment struct {
	Tex *Texture
	// UV is the sampling coordinate after the mosaic remap.
	UV    Vec2
	Texel Vec2
}

// Stage is one color post-filter of the compositing pass.
type Stage func(f *Fragment, c Color) Color

// MosaicBlocks is the number of blocks across the image width for a mosaic
// intensity: 205 at 0, 5 at 1.
func MosaicBlocks(intensity float64) float64 {
	return mosaicFineBlocks*(1-intensity) + mosaicCoarseBlocks
}

// MosaicCoord snaps uv to the center of its mosaic block.
func MosaicCoord(uv Vec2, intensity, aspect float64) Vec2 {
	if intensity <= MosaicThreshold {
		return uv
	}
	blocks := MosaicBlocks(intensity)
	dx := 1 / blocks
	dy := 1 / (blocks * aspect)
	return Vec2{
		X: dx*math.Floor(uv.X/dx) + dx*0.5,
		Y: dy*math.Floor(uv.Y/dy) + dy*0.5,
	}
}

// BlurStage returns a Gaussian blur over a square of half-width
// intensity*maxRadius texels, visiting every stride-th offset. Radii under
// one texel pass the input through.
func BlurStage(intensity, maxRadius float64, stride int) Stage {
	radius := intensity * maxRadius
	if radius < 1 {
		return func(_ *Fragment, c Color) Color { return c }
	}
	if stride < 1 {
		stride = 1
	}

	sigma := radius / 2
	twoSigmaSq := 2 * sigma * sigma
	norm := 1 / (math.Pi * twoSigmaSq)
	r := int(radius)
	start := -(r / stride) * stride

	// Weights depend only on the offset, so compute them once per frame.
	type tap struct {
		x, y   float64
		weight float64
	}
	var taps []tap
	var total float64
	for x := start; x <= r; x += stride {
		for y := start; y <= r; y += stride {
			w := math.Exp(-float64(x*x+y*y)/twoSigmaSq) * norm
			taps = append(taps, tap{float64(x), float64(y), w})
			total += w
		}
	}

	return func(f *Fragment, _ Color) Color {
		var sum Color
		for _, tp := range taps {
			offset := Vec2{tp.x * f.Texel.X, tp.y * f.Texel.Y}
			sum = sum.Add(f.Tex.Sample(f.UV.Add(offset)).Scale(tp.weight))
		}
		return sum.Scale(1 / total)
	}
}

// GrayscaleStage blends toward the pixel's luma.
func GrayscaleStage(intensity float64) Stage {
	return func(_ *Fragment, c Color) Color {
		return c.Mix(Gray(c.Luma(), c.A), intensity)
	}
}

var laplacian = [3][3]float64{
	{1, 1, 1},
	{1, -8, 1},
	{1, 1, 1},
}

// EdgeDetectStage blends toward the 3x3 Laplacian of the texture around the
// fragment's sampling coordinate.
func EdgeDetectStage(intensity float64) Stage {
	return func(f *Fragment, c Color) Color {
		var lap Color
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				offset := Vec2{float64(i) * f.Texel.X, float64(j) * f.Texel.Y}
				lap = lap.Add(f.Tex.Sample(f.UV.Add(offset)).Scale(laplacian[j+1][i+1]))
			}
		}
		lap.A = c.A
		return c.Mix(lap, intensity)
	}
}

// InvertStage blends toward the component-wise complement.
func InvertStage(intensity float64) Stage {
	return func(_ *Fragment, c Color) Color {
		return c.Mix(Color{1 - c.R, 1 - c.G, 1 - c.B, c.A}, intensity)
	}
}
