package pipeline

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func writeFile(t *testing.T, name string, encode func(*bytes.Buffer) error) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, encode(&buf))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func testNRGBA(alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 80), uint8(y * 120), 30, alpha})
		}
	}
	return img
}

func TestLoadFilePNG(t *testing.T) {
	path := writeFile(t, "rgba.png", func(b *bytes.Buffer) error { return png.Encode(b, testNRGBA(128)) })

	src, err := NewLoader(nil).LoadFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, src.Width)
	assert.Equal(t, 2, src.Height)
	assert.Equal(t, 4, src.Channels)
	assert.Equal(t, "png", src.Format)
	assert.Equal(t, color.NRGBA{80, 120, 30, 128}, src.Pixels.NRGBAAt(1, 1))
	assert.Positive(t, src.FileSize)
}

func TestLoadFileOpaqueFormats(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		encode func(*bytes.Buffer) error
		format string
	}{
		{"jpeg", "photo.jpg", func(b *bytes.Buffer) error { return jpeg.Encode(b, testNRGBA(255), nil) }, "jpeg"},
		{"bmp", "bitmap.bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, testNRGBA(255)) }, "bmp"},
		{"opaque png", "opaque.png", func(b *bytes.Buffer) error { return png.Encode(b, testNRGBA(255)) }, "png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.encode)

			src, err := NewLoader(nil).LoadFile(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, 3, src.Channels)
			assert.Equal(t, tt.format, src.Format)
			assert.Equal(t, image.Rect(0, 0, 3, 2), src.Pixels.Bounds())
		})
	}
}

func TestLoadFileGrayscaleUnsupported(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	path := writeFile(t, "gray.png", func(b *bytes.Buffer) error { return png.Encode(b, gray) })

	_, err := NewLoader(nil).LoadFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnsupportedChannels)
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

// buildPNG encodes 8-bit pixels with the given IHDR colour type and no
// filtering; pix holds each row's samples back to back.
func buildPNG(t *testing.T, colorType byte, w, h, samples int, pix []byte) []byte {
	t.Helper()
	require.Len(t, pix, w*h*samples)

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		out.Write(n[:])
		body := append([]byte(kind), data...)
		out.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		out.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8
	ihdr[9] = colorType
	chunk("IHDR", ihdr)

	var raw bytes.Buffer
	zw := zlib.NewWriter(&raw)
	for y := 0; y < h; y++ {
		_, err := zw.Write(append([]byte{0}, pix[y*w*samples:(y+1)*w*samples]...))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	chunk("IDAT", raw.Bytes())
	chunk("IEND", nil)
	return out.Bytes()
}

func TestLoadBytesPNGChannelsFromHeader(t *testing.T) {
	grayAlpha := buildPNG(t, 4, 2, 2, 2, []byte{10, 255, 20, 255, 30, 128, 40, 0})
	_, err := NewLoader(nil).LoadBytes(context.Background(), grayAlpha, "ga.png")
	require.ErrorIs(t, err, ErrUnsupportedChannels)
	assert.ErrorIs(t, err, ErrDecodeFailure)

	opaqueRGBA := bytes.Repeat([]byte{90, 60, 30, 255}, 4)
	src, err := NewLoader(nil).LoadBytes(context.Background(), buildPNG(t, 6, 2, 2, 4, opaqueRGBA), "rgba.png")
	require.NoError(t, err)
	assert.Equal(t, 4, src.Channels)
	assert.Equal(t, color.NRGBA{90, 60, 30, 255}, src.Pixels.NRGBAAt(1, 1))

	rgb := bytes.Repeat([]byte{90, 60, 30}, 4)
	src, err = NewLoader(nil).LoadBytes(context.Background(), buildPNG(t, 2, 2, 2, 3, rgb), "rgb.png")
	require.NoError(t, err)
	assert.Equal(t, 3, src.Channels)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := NewLoader(nil).LoadFile(context.Background(), filepath.Join(t.TempDir(), "input.jpg"))
	assert.ErrorIs(t, err, ErrDecodeFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBytesGarbage(t *testing.T) {
	_, err := NewLoader(nil).LoadBytes(context.Background(), []byte("not an image"), "x.png")
	assert.ErrorIs(t, err, ErrDecodeFailure)
}

type stubDecoder struct {
	decoded Decoded
	err     error
	calls   int
}

func (s *stubDecoder) Name() string { return "stub" }

func (s *stubDecoder) Decode([]byte) (Decoded, error) {
	s.calls++
	return s.decoded, s.err
}

func TestLoaderFallsBackInOrder(t *testing.T) {
	failing := &stubDecoder{err: errors.New("nope")}
	working := &stubDecoder{decoded: Decoded{Image: testNRGBA(255), Channels: 3, Format: "exr"}}
	unused := &stubDecoder{}

	src, err := NewLoader(nil, failing, working, unused).LoadBytes(context.Background(), []byte("raw"), "scan.exr")
	require.NoError(t, err)

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, working.calls)
	assert.Zero(t, unused.calls)
	assert.Equal(t, "exr", src.Format)
}

func TestLoaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).LoadFile(ctx, "whatever.png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChannelCount(t *testing.T) {
	opaquePalette := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Black, color.White})
	alphaPalette := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{color.Transparent, color.White})

	assert.Equal(t, 1, ChannelCount(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 3, ChannelCount(image.NewYCbCr(image.Rect(0, 0, 2, 2), image.YCbCrSubsampleRatio420)))
	assert.Equal(t, 3, ChannelCount(opaquePalette))
	assert.Equal(t, 4, ChannelCount(alphaPalette))
	assert.Equal(t, 4, ChannelCount(testNRGBA(10)))
	assert.Equal(t, 3, ChannelCount(testNRGBA(255)))
}
