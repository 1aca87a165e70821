package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filter-forge/internal/logger"
	"filter-forge/internal/models"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StdDecoder decodes every format registered with the image package.
type StdDecoder struct{}

func (StdDecoder) Name() string { return "std" }

func (StdDecoder) Decode(data []byte) (Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Decoded{}, err
	}
	channels := ChannelCount(img)
	if format == "png" {
		if n, ok := pngChannels(data, img); ok {
			channels = n
		}
	}
	return Decoded{Image: img, Channels: channels, Format: format}, nil
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// pngChannels reads the channel count from the IHDR colour type. The Go
// decoder widens gray+alpha to NRGBA, so the decoded model cannot tell.
func pngChannels(data []byte, img image.Image) (int, bool) {
	// signature(8) length(4) "IHDR"(4) width(4) height(4) depth(1) colour type(1)
	if len(data) < 26 || !bytes.Equal(data[:8], pngSignature) || string(data[12:16]) != "IHDR" {
		return 0, false
	}
	switch data[25] {
	case 0:
		return 1, true
	case 4:
		return 2, true
	case 2:
		return 3, true
	case 6:
		return 4, true
	case 3:
		return ChannelCount(img), true
	}
	return 0, false
}

// ChannelCount reports how many channels the decoded image carries.
func ChannelCount(img image.Image) int {
	switch m := img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return 1
	case *image.YCbCr, *image.CMYK:
		return 3
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return 4
			}
		}
		return 3
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

type Loader struct {
	decoders []Decoder
	logger   logger.Logger
}

// NewLoader returns a loader that tries the standard decoders first and then
// each fallback in order.
func NewLoader(log logger.Logger, fallbacks ...Decoder) *Loader {
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{
		decoders: append([]Decoder{StdDecoder{}}, fallbacks...),
		logger:   log,
	}
}

// LoadFile reads and decodes path. Every failure wraps ErrDecodeFailure.
func (l *Loader) LoadFile(ctx context.Context, path string) (*models.SourceImage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	l.logger.Debug("loading image", map[string]interface{}{"path": path})

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	return l.LoadBytes(ctx, data, path)
}

// LoadBytes decodes data; path is only used for format naming.
func (l *Loader) LoadBytes(ctx context.Context, data []byte, path string) (*models.SourceImage, error) {
	start := time.Now()

	var errs []error
	for _, dec := range l.decoders {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		decoded, err := dec.Decode(data)
		if err != nil {
			l.logger.Debug("decoder rejected image", map[string]interface{}{
				"decoder": dec.Name(),
				"error":   err.Error(),
			})
			errs = append(errs, fmt.Errorf("%s: %w", dec.Name(), err))
			continue
		}
		return l.toSource(decoded, data, path, time.Since(start))
	}

	return nil, fmt.Errorf("%w: %s: %w", ErrDecodeFailure, filepath.Base(path), errors.Join(errs...))
}

func (l *Loader) toSource(decoded Decoded, data []byte, path string, elapsed time.Duration) (*models.SourceImage, error) {
	if decoded.Channels != 3 && decoded.Channels != 4 {
		return nil, fmt.Errorf("%w: %d in %s", ErrUnsupportedChannels, decoded.Channels, filepath.Base(path))
	}

	b := decoded.Image.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image %s", ErrDecodeFailure, filepath.Base(path))
	}

	pixels, ok := decoded.Image.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		pixels = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(pixels, pixels.Bounds(), decoded.Image, b.Min, draw.Src)
	}

	format := determineFormat(strings.ToLower(filepath.Ext(path)), decoded.Format)
	src := &models.SourceImage{
		Pixels:     pixels,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Channels:   decoded.Channels,
		Format:     format,
		Path:       path,
		FileSize:   int64(len(data)),
		LoadTime:   time.Now(),
		DecodeTime: elapsed,
	}

	l.logger.Info("image loaded", map[string]interface{}{
		"width":    src.Width,
		"height":   src.Height,
		"channels": src.Channels,
		"format":   src.Format,
		"decode":   elapsed.String(),
	})

	return src, nil
}

func determineFormat(extension, detected string) string {
	if detected != "" {
		return detected
	}
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case "":
		return "unknown"
	default:
		return strings.TrimPrefix(extension, ".")
	}
}
