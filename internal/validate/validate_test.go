package validate

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
)

func testValidator() *Validator {
	return New(&config.Config{
		MaxImageBytes:     1024,
		MaxVideoBytes:     10240,
		MaxThumbnailBytes: 512,
	})
}

func TestFileSizeBoundary(t *testing.T) {
	v := testValidator()

	atLimit := &media.Upload{FileName: "a.jpg", MimeType: "image/jpeg", Data: make([]byte, 1024)}
	if _, err := v.File(atLimit); err != nil {
		t.Fatalf("file at exactly the ceiling must be accepted: %v", err)
	}

	over := &media.Upload{FileName: "a.jpg", MimeType: "image/jpeg", Data: make([]byte, 1025)}
	if _, err := v.File(over); !errors.Is(err, media.ErrInvalidInput) {
		t.Fatalf("one byte over the ceiling must be ErrInvalidInput, got %v", err)
	}
}

func TestVideoCeilingIsLarger(t *testing.T) {
	v := testValidator()
	upload := &media.Upload{FileName: "a.mp4", MimeType: "video/mp4", Data: make([]byte, 8000)}
	kind, err := v.File(upload)
	if err != nil {
		t.Fatalf("video under its own ceiling must pass: %v", err)
	}
	if kind != media.KindVideo {
		t.Fatalf("kind = %q, want video", kind)
	}
}

func TestFileRejectsMissingAndUnsupported(t *testing.T) {
	v := testValidator()

	if _, err := v.File(nil); !errors.Is(err, media.ErrMissingInput) {
		t.Fatalf("nil upload: got %v, want ErrMissingInput", err)
	}
	if _, err := v.File(&media.Upload{FileName: "a"}); !errors.Is(err, media.ErrMissingInput) {
		t.Fatalf("empty upload: got %v, want ErrMissingInput", err)
	}

	noMime := &media.Upload{FileName: "a.bin", Data: []byte{1, 2, 3}}
	if _, err := v.File(noMime); !errors.Is(err, media.ErrInvalidInput) {
		t.Fatalf("missing declared mime type: got %v, want ErrInvalidInput", err)
	}

	pdf := &media.Upload{FileName: "a.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}
	if _, err := v.File(pdf); !errors.Is(err, media.ErrInvalidInput) {
		t.Fatalf("unsupported mime type: got %v, want ErrInvalidInput", err)
	}
}

func TestFileClassifiesGifAsGifv(t *testing.T) {
	v := testValidator()
	gif := &media.Upload{FileName: "a.gif", MimeType: "image/gif", Data: make([]byte, 64)}
	kind, err := v.File(gif)
	if err != nil {
		t.Fatalf("gif must validate: %v", err)
	}
	if kind != media.KindGifv {
		t.Fatalf("kind = %q, want gifv", kind)
	}
}

func TestThumbnail(t *testing.T) {
	v := testValidator()

	small := &media.Upload{FileName: "t.png", MimeType: "image/png", Data: make([]byte, 512)}
	if err := v.Thumbnail(small); err != nil {
		t.Fatalf("thumbnail at ceiling must pass: %v", err)
	}

	big := &media.Upload{FileName: "t.png", MimeType: "image/png", Data: make([]byte, 513)}
	if err := v.Thumbnail(big); !errors.Is(err, media.ErrInvalidInput) {
		t.Fatalf("oversized thumbnail: got %v, want ErrInvalidInput", err)
	}

	video := &media.Upload{FileName: "t.mp4", MimeType: "video/mp4", Data: make([]byte, 64)}
	if err := v.Thumbnail(video); !errors.Is(err, media.ErrInvalidInput) {
		t.Fatalf("non-image thumbnail: got %v, want ErrInvalidInput", err)
	}
}

func TestThumbnailSniffsMissingMime(t *testing.T) {
	v := testValidator()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	upload := &media.Upload{FileName: "t", Data: buf.Bytes()}
	if err := v.Thumbnail(upload); err != nil {
		t.Fatalf("sniffed png thumbnail must pass: %v", err)
	}
	if upload.MimeType != "image/png" {
		t.Fatalf("sniffed mime = %q, want image/png", upload.MimeType)
	}
}
