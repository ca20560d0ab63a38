package thumbnail

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	_ "image/jpeg"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(2 * x), G: uint8(3 * y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRenderBoundsToBoxPreservingAspect(t *testing.T) {
	cases := []struct {
		name         string
		srcW, srcH   int
		box          int
		wantW, wantH int
	}{
		// Smaller than the box: dimensions untouched, never upscaled.
		{"smaller than box", 50, 40, 100, 50, 40},
		{"exactly the box", 100, 100, 100, 100, 100},
		// Wide source: width hits the bound, height scales with it.
		{"wide landscape", 400, 200, 100, 100, 50},
		// Tall source: height hits the bound.
		{"tall portrait", 200, 400, 100, 50, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, img, err := Render(encodePNG(t, tc.srcW, tc.srcH), tc.box)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			b := img.Bounds()
			if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
				t.Fatalf("raster = %dx%d, want %dx%d", b.Dx(), b.Dy(), tc.wantW, tc.wantH)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode rendered bytes: %v", err)
			}
			if format != "jpeg" {
				t.Fatalf("format = %q, want jpeg", format)
			}
			if cfg.Width != tc.wantW || cfg.Height != tc.wantH {
				t.Fatalf("encoded = %dx%d, want %dx%d", cfg.Width, cfg.Height, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestRenderRejectsGarbage(t *testing.T) {
	if _, _, err := Render([]byte("not an image"), 100); err == nil {
		t.Fatalf("expected decode error for garbage input")
	}
}
