package blur

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/givehub/mediakit/internal/media"
)

func gradientPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeBytes(t *testing.T) {
	data := gradientPNG(t)
	hash, err := EncodeBytes(data)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	if hash == "" {
		t.Fatalf("expected non-empty blurhash")
	}
	again, err := EncodeBytes(data)
	if err != nil {
		t.Fatalf("EncodeBytes second run: %v", err)
	}
	if hash != again {
		t.Fatalf("blurhash must be deterministic: %q != %q", hash, again)
	}
}

func TestEncodeBytesRejectsGarbage(t *testing.T) {
	if _, err := EncodeBytes([]byte("nope")); !errors.Is(err, media.ErrProcessing) {
		t.Fatalf("garbage input: got %v, want ErrProcessing", err)
	}
}
