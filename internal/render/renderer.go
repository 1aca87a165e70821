package render

import (
	"errors"
	"image"
	"sync"
	"time"

	"filter-forge/internal/logger"
	"filter-forge/internal/models"
	"filter-forge/internal/shader"
)

var ErrClosed = errors.New("renderer closed")

type Options struct {
	// MaxRenderDim caps the longer side of the render target; 0 disables it.
	MaxRenderDim int
	Logger       logger.Logger
}

// Renderer owns the compositing program and the source texture for the
// lifetime of the window. It is driven by one frame loop.
type Renderer struct {
	mu      sync.Mutex
	program *shader.Program
	texture *shader.Texture
	opts    Options
	logger  logger.Logger
	stats   FrameStats

	frame    *image.NRGBA
	lastSnap models.Snapshot
	lastW    int
	lastH    int
	closed   bool
}

// NewRenderer uploads source into a texture. A nil source gives an inert
// renderer that never draws.
func NewRenderer(program *shader.Program, source *models.SourceImage, opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	r := &Renderer{program: program, opts: opts, logger: log}
	if source != nil && source.Pixels != nil {
		start := time.Now()
		r.texture = shader.NewTexture(source.Pixels)
		log.Debug("texture uploaded", map[string]interface{}{
			"width":   r.texture.Width(),
			"height":  r.texture.Height(),
			"elapsed": time.Since(start).String(),
		})
	}
	return r
}

// Inert reports that there is no texture to draw.
func (r *Renderer) Inert() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texture.Empty()
}

// Frame shades one frame for the snapshot into the viewport. When neither
// input changed since the last draw the previous frame is returned and
// drawn is false.
func (r *Renderer) Frame(snap models.Snapshot, vp Viewport) (img image.Image, drawn bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, ErrClosed
	}
	r.stats.Tick(time.Now())

	if r.texture.Empty() {
		return nil, false, nil
	}
	w, h := vp.RenderSize(r.opts.MaxRenderDim)
	if w == 0 || h == 0 {
		return nil, false, nil
	}
	if r.frame != nil && w == r.lastW && h == r.lastH && snap == r.lastSnap {
		return r.frame, false, nil
	}

	start := time.Now()
	// A fresh target per draw: the previous frame may still be on screen.
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	u := shader.UniformsFrom(snap, r.texture.Width(), r.texture.Height())
	r.program.Render(dst, r.texture, u)
	elapsed := time.Since(start)
	r.stats.RecordDraw(elapsed)

	r.frame, r.lastSnap, r.lastW, r.lastH = dst, snap, w, h

	r.logger.Debug("frame drawn", map[string]interface{}{
		"width":   w,
		"height":  h,
		"active":  len(snap.Active()),
		"elapsed": elapsed.String(),
	})
	return dst, true, nil
}

func (r *Renderer) Stats() Stats {
	return r.stats.Snapshot()
}

// Close releases the texture and the last frame. Further frames fail with
// ErrClosed.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.texture = nil
	r.frame = nil
	r.logger.Info("renderer released", nil)
}
