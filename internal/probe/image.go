// Package probe derives structural metadata from raw media bytes: image
// headers are decoded in-process, video and audio streams are interrogated
// through an ffprobe subprocess.
package probe

import (
	"bytes"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/givehub/mediakit/internal/media"
)

// Image reads dimensions from the encoded header without decoding pixel
// data, and fills the image-class metadata fields.
func Image(data []byte) (*media.Metadata, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image header: %v", media.ErrProcessing, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: image has no dimensions", media.ErrProcessing)
	}
	return &media.Metadata{
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		Aspect: float64(cfg.Width) / float64(cfg.Height),
	}, nil
}
