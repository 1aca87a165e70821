// Package opencv decodes the formats the Go image decoders do not cover
// (JPEG 2000, OpenEXR, PFM, 16-bit TIFF variants and so on).
package opencv

import (
	"fmt"
	"image"

	"filter-forge/internal/pipeline"

	"gocv.io/x/gocv"
)

// Decoder is a pipeline.Decoder backed by cv::imdecode.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Name() string { return "opencv" }

func (d *Decoder) Decode(data []byte) (pipeline.Decoded, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return pipeline.Decoded{}, fmt.Errorf("imdecode: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return pipeline.Decoded{}, fmt.Errorf("imdecode: unrecognized image data")
	}

	channels := mat.Channels()
	if channels != 3 && channels != 4 {
		// The loader rejects these; report the count without converting.
		return pipeline.Decoded{Image: image.NewNRGBA(image.Rect(0, 0, mat.Cols(), mat.Rows())), Channels: channels, Format: "opencv"}, nil
	}

	eight, err := to8Bit(mat, channels)
	if err != nil {
		return pipeline.Decoded{}, err
	}
	defer eight.Close()

	return pipeline.Decoded{
		Image:    bgrToNRGBA(eight.ToBytes(), eight.Cols(), eight.Rows(), channels),
		Channels: channels,
		Format:   "opencv",
	}, nil
}

// to8Bit returns an 8-bit copy of mat; 16-bit and float inputs are rescaled.
func to8Bit(mat gocv.Mat, channels int) (gocv.Mat, error) {
	target := gocv.MatTypeCV8UC3
	if channels == 4 {
		target = gocv.MatTypeCV8UC4
	}

	out := gocv.NewMat()
	switch mat.Type() {
	case gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		mat.CopyTo(&out)
	case gocv.MatTypeCV16UC3, gocv.MatTypeCV16UC4:
		mat.ConvertToWithParams(&out, target, 1.0/257.0, 0)
	case gocv.MatTypeCV32FC3, gocv.MatTypeCV32FC4:
		mat.ConvertToWithParams(&out, target, 255, 0)
	default:
		out.Close()
		return gocv.Mat{}, fmt.Errorf("unsupported mat type %v", mat.Type())
	}
	return out, nil
}

// bgrToNRGBA reorders packed BGR(A) bytes into an NRGBA image.
func bgrToNRGBA(buf []byte, cols, rows, channels int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			s := (y*cols + x) * channels
			d := img.PixOffset(x, y)
			img.Pix[d+0] = buf[s+2]
			img.Pix[d+1] = buf[s+1]
			img.Pix[d+2] = buf[s+0]
			if channels == 4 {
				img.Pix[d+3] = buf[s+3]
			} else {
				img.Pix[d+3] = 0xff
			}
		}
	}
	return img
}
