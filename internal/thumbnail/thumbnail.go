// Package thumbnail renders preview images bounded to a maximum box:
// fit inside, aspect preserved, never upscaled, never cropped.
package thumbnail

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/givehub/mediakit/internal/media"
)

// MimeType of every rendered thumbnail; previews are re-encoded to JPEG
// regardless of the source format.
const MimeType = "image/jpeg"

const jpegQuality = 85

// Render decodes raw image bytes, fits them inside a box-by-box bound, and
// re-encodes as JPEG. The resized raster is returned alongside the encoded
// bytes so callers can compute a blurhash without decoding twice.
func Render(data []byte, box int) ([]byte, image.Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: decode thumbnail source: %v", media.ErrProcessing, err)
	}
	fitted := imaging.Fit(src, box, box, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, nil, fmt.Errorf("%w: encode thumbnail: %v", media.ErrProcessing, err)
	}
	return buf.Bytes(), fitted, nil
}
