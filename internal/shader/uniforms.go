package shader

import (
	"encoding/binary"
	"math"

	"filter-forge/internal/models"
)

// ParamsLayout names the vec2<f32> members of the WGSL Params uniform in
// declaration order. Effect members hold (enabled, intensity).
var ParamsLayout = [...]string{"size", "mosaic", "blur", "grayscale", "edge", "invert"}

// ParamsSize is the byte size of the packed Params uniform.
const ParamsSize = len(ParamsLayout) * 8

var paramsEffects = [...]models.Effect{models.Mosaic, models.Blur, models.Grayscale, models.EdgeDetect, models.Invert}

// Uniforms are the per-frame inputs of the compositing program.
type Uniforms struct {
	Width   float64
	Height  float64
	Effects models.Snapshot
}

func UniformsFrom(snap models.Snapshot, width, height int) Uniforms {
	return Uniforms{Width: float64(width), Height: float64(height), Effects: snap}
}

func (u Uniforms) Aspect() float64 {
	if u.Height == 0 {
		return 1
	}
	return u.Width / u.Height
}

// TexelSize is one source texel in normalized units.
func (u Uniforms) TexelSize() Vec2 {
	if u.Width == 0 || u.Height == 0 {
		return Vec2{}
	}
	return Vec2{1 / u.Width, 1 / u.Height}
}

// Params packs u as the little-endian Params uniform buffer of the WGSL
// program.
func (u Uniforms) Params() []byte {
	buf := make([]byte, 0, ParamsSize)
	put := func(a, b float64) {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(a)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(b)))
	}

	put(u.Width, u.Height)
	for _, e := range paramsEffects {
		st := u.Effects.Get(e)
		enabled := 0.0
		if st.Enabled {
			enabled = 1
		}
		put(enabled, st.Intensity)
	}
	return buf
}
