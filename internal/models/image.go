package models

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// SourceImage is the decoded bitmap. It is immutable once loaded.
type SourceImage struct {
	Pixels     *image.NRGBA
	Width      int
	Height     int
	Channels   int
	Format     string
	Path       string
	FileSize   int64
	LoadTime   time.Time
	DecodeTime time.Duration
}

// AspectRatio is width over height, 1 for empty images.
func (s *SourceImage) AspectRatio() float64 {
	if s == nil || s.Height == 0 {
		return 1
	}
	return float64(s.Width) / float64(s.Height)
}

func (s *SourceImage) Describe() string {
	if s == nil {
		return "No image loaded"
	}
	return fmt.Sprintf("%dx%d, %d channels, %s", s.Width, s.Height, s.Channels, s.Format)
}

// ImageRepository holds the session's source image, or the reason there is none.
type ImageRepository struct {
	mu      sync.RWMutex
	source  *SourceImage
	loadErr error
}

func NewImageRepository() *ImageRepository {
	return &ImageRepository{}
}

// SetSource stores a successfully loaded image and clears any load error.
func (r *ImageRepository) SetSource(img *SourceImage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = img
	r.loadErr = nil
}

// SetLoadError records a failed load. The repository becomes inert.
func (r *ImageRepository) SetLoadError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = nil
	r.loadErr = err
}

func (r *ImageRepository) Source() *SourceImage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

func (r *ImageRepository) LoadError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadErr
}

// Inert reports that there is nothing to preview.
func (r *ImageRepository) Inert() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source == nil
}

// MemoryUsage estimates the bytes held by the decoded source.
func (r *ImageRepository) MemoryUsage() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.source == nil || r.source.Pixels == nil {
		return 0
	}
	return int64(len(r.source.Pixels.Pix))
}

// Shutdown drops the source image.
func (r *ImageRepository) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = nil
}
