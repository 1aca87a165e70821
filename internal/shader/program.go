package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"filter-forge/internal/models"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/gogpu/naga"
)

var ErrCompileFailure = errors.New("shader compile failure")

const (
	DefaultBlurMaxRadius = 15
	DefaultBlurStride    = 1

	// MaxBlurRadius bounds the O(r^2) blur kernel.
	MaxBlurRadius = 25
)

//go:embed composite.wgsl
var compositeWGSL string

// Options are the compile-time constants of the program.
type Options struct {
	BlurMaxRadius int
	BlurStride    int
}

func DefaultOptions() Options {
	return Options{BlurMaxRadius: DefaultBlurMaxRadius, BlurStride: DefaultBlurStride}
}

func (o Options) validate() error {
	if o.BlurMaxRadius < 1 || o.BlurMaxRadius > MaxBlurRadius {
		return fmt.Errorf("blur max radius %d outside [1, %d]", o.BlurMaxRadius, MaxBlurRadius)
	}
	if o.BlurStride != 1 && o.BlurStride != 2 {
		return fmt.Errorf("blur stride %d must be 1 or 2", o.BlurStride)
	}
	return nil
}

// Program is the compiled compositing pass. The WGSL module is kept as
// SPIR-V for GPU hosts; Shade and Render execute the same pass in software.
type Program struct {
	opts   Options
	spirv  []byte
}

// Compile validates opts and builds the program. All failures wrap
// ErrCompileFailure.
func Compile(opts Options) (*Program, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailure, err)
	}

	source := CompositeSource(opts)
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompileFailure, err)
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("%w: malformed SPIR-V (%d bytes)", ErrCompileFailure, len(spirv))
	}

	return &Program{opts: opts, spirv: spirv}, nil
}

// CompositeSource returns the WGSL program with opts and the software
// pass's constants substituted, so both renditions share one set of numbers.
func CompositeSource(opts Options) string {
	return strings.NewReplacer(
		"{{BLUR_MAX_RADIUS}}", wgslFloat(float64(opts.BlurMaxRadius)),
		"{{BLUR_STRIDE}}", strconv.Itoa(opts.BlurStride),
		"{{MOSAIC_THRESHOLD}}", wgslFloat(MosaicThreshold),
		"{{MOSAIC_FINE_BLOCKS}}", wgslFloat(mosaicFineBlocks),
		"{{MOSAIC_COARSE_BLOCKS}}", wgslFloat(mosaicCoarseBlocks),
		"{{LUMA_R}}", wgslFloat(LumaR),
		"{{LUMA_G}}", wgslFloat(LumaG),
		"{{LUMA_B}}", wgslFloat(LumaB),
	).Replace(compositeWGSL)
}

// wgslFloat formats v as an f32 literal; WGSL needs the decimal point.
func wgslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func (p *Program) Options() Options { return p.opts }
func (p *Program) SPIRV() []byte    { return p.spirv }

// Pipeline is the per-frame stage list. Disabled effects have no stage and
// are never evaluated.
type Pipeline struct {
	mosaic    bool
	mosaicAmt float64
	aspect    float64
	texel     Vec2
	stages    []Stage
}

// Len reports how many color stages will run per pixel.
func (pl *Pipeline) Len() int { return len(pl.stages) }

// Pipeline builds the stages for one frame's uniforms.
func (p *Program) Pipeline(u Uniforms) *Pipeline {
	pl := &Pipeline{aspect: u.Aspect(), texel: u.TexelSize()}

	for _, st := range u.Effects {
		if !st.Enabled {
			continue
		}
		switch st.Effect {
		case models.Mosaic:
			pl.mosaic = true
			pl.mosaicAmt = st.Intensity
		case models.Blur:
			pl.stages = append(pl.stages, BlurStage(st.Intensity, float64(p.opts.BlurMaxRadius), p.opts.BlurStride))
		case models.Grayscale:
			pl.stages = append(pl.stages, GrayscaleStage(st.Intensity))
		case models.EdgeDetect:
			pl.stages = append(pl.stages, EdgeDetectStage(st.Intensity))
		case models.Invert:
			pl.stages = append(pl.stages, InvertStage(st.Intensity))
		}
	}
	return pl
}

// Shade evaluates one fragment at uv.
func (pl *Pipeline) Shade(tex *Texture, uv Vec2) Color {
	if pl.mosaic {
		uv = MosaicCoord(uv, pl.mosaicAmt, pl.aspect)
	}
	f := Fragment{Tex: tex, UV: uv, Texel: pl.texel}
	c := tex.Sample(uv)
	for _, stage := range pl.stages {
		c = stage(&f, c)
	}
	return c
}

// Shade evaluates the program for a single fragment.
func (p *Program) Shade(tex *Texture, u Uniforms, uv Vec2) Color {
	return p.Pipeline(u).Shade(tex, uv)
}

// Render draws a full-screen quad over dst: every pixel of dst is shaded once
// at its center. Rows are shaded in parallel.
func (p *Program) Render(dst *image.NRGBA, tex *Texture, u Uniforms) {
	if tex.Empty() {
		return
	}
	pl := p.Pipeline(u)
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			v := (float64(y) + 0.5) / float64(h)
			for x := 0; x < w; x++ {
				c := pl.Shade(tex, Vec2{(float64(x) + 0.5) / float64(w), v}).Clamp()
				i := x * 4
				row[i+0] = toByte(c.R)
				row[i+1] = toByte(c.G)
				row[i+2] = toByte(c.B)
				row[i+3] = toByte(c.A)
			}
		}
	})
}

func toByte(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
