package pipeline

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrDecodeFailure       = errors.New("decode failure")
	ErrUnsupportedChannels = fmt.Errorf("%w: unsupported channel count", ErrDecodeFailure)
)

// Decoded is what a Decoder hands back: the pixels plus the channel count of
// the encoded file.
type Decoded struct {
	Image    image.Image
	Channels int
	Format   string
}

// Decoder turns encoded bytes into pixels. Loaders try decoders in order.
type Decoder interface {
	Name() string
	Decode(data []byte) (Decoded, error)
}
