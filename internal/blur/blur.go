// Package blur computes the compact visual fingerprint (blurhash) clients
// use as a low-resolution placeholder while media loads.
package blur

import (
	"bytes"
	"fmt"
	"image"

	"github.com/buckket/go-blurhash"
	"github.com/disintegration/imaging"

	"github.com/givehub/mediakit/internal/media"
)

const (
	xComponents = 4
	yComponents = 3
	// rasterBox bounds the raster fed to the encoder; blurhash quality is
	// insensitive to input resolution but encode time is not.
	rasterBox = 64
)

// Encode computes the blurhash of an already-decoded image.
func Encode(img image.Image) (string, error) {
	small := imaging.Fit(img, rasterBox, rasterBox, imaging.Lanczos)
	hash, err := blurhash.Encode(xComponents, yComponents, small)
	if err != nil {
		return "", fmt.Errorf("%w: blurhash encode: %v", media.ErrProcessing, err)
	}
	return hash, nil
}

// EncodeBytes decodes raw image bytes and computes their blurhash.
func EncodeBytes(data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: decode image: %v", media.ErrProcessing, err)
	}
	return Encode(img)
}
