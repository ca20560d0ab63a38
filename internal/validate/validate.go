// Package validate rejects bad uploads before any state is created. Checks
// are pure: mime allow-list plus per-class size ceilings, nothing touches
// disk or the database.
package validate

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
)

var supportedMimes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"image/tiff":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"video/ogg":       true,
	"audio/mpeg":      true,
	"audio/mp4":       true,
	"audio/ogg":       true,
	"audio/wav":       true,
	"audio/flac":      true,
	"audio/aac":       true,
}

// Validator enforces the upload constraints. Ceilings are distinct per
// artifact class: videos are allowed an order of magnitude more bytes than
// images and thumbnails are the tightest.
type Validator struct {
	maxImage     int64
	maxVideo     int64
	maxThumbnail int64
}

// New builds a Validator from the injected config.
func New(cfg *config.Config) *Validator {
	return &Validator{
		maxImage:     cfg.MaxImageBytes,
		maxVideo:     cfg.MaxVideoBytes,
		maxThumbnail: cfg.MaxThumbnailBytes,
	}
}

// File checks the primary upload. On success the upload's MimeType is
// normalized (sniffed from content when the declared type is absent or
// generic) and the classified kind is returned.
func (v *Validator) File(u *media.Upload) (media.Kind, error) {
	if u == nil || len(u.Data) == 0 {
		return media.KindUnknown, media.ErrMissingInput
	}
	if strings.TrimSpace(u.MimeType) == "" {
		return media.KindUnknown, fmt.Errorf("%w: no declared mime type", media.ErrInvalidInput)
	}
	mt := normalizeMime(u)
	if !supportedMimes[mt] {
		return media.KindUnknown, fmt.Errorf("%w: unsupported mime type %q", media.ErrInvalidInput, mt)
	}
	u.MimeType = mt
	kind := media.KindForMime(mt)
	ceiling := v.maxImage
	if kind == media.KindVideo || kind == media.KindGifv || kind == media.KindAudio {
		ceiling = v.maxVideo
	}
	if u.Size() > ceiling {
		return kind, fmt.Errorf("%w: file size %d exceeds limit %d", media.ErrInvalidInput, u.Size(), ceiling)
	}
	return kind, nil
}

// Thumbnail checks an optional caller-supplied thumbnail, which must be a
// static image under the thumbnail ceiling.
func (v *Validator) Thumbnail(u *media.Upload) error {
	if u == nil || len(u.Data) == 0 {
		return media.ErrMissingInput
	}
	if strings.TrimSpace(u.MimeType) == "" {
		u.MimeType = mimetype.Detect(u.Data).String()
	}
	mt := normalizeMime(u)
	if media.KindForMime(mt) != media.KindImage {
		return fmt.Errorf("%w: thumbnail must be a static image, got %q", media.ErrInvalidInput, mt)
	}
	if !supportedMimes[mt] {
		return fmt.Errorf("%w: unsupported thumbnail type %q", media.ErrInvalidInput, mt)
	}
	u.MimeType = mt
	if u.Size() > v.maxThumbnail {
		return fmt.Errorf("%w: thumbnail size %d exceeds limit %d", media.ErrInvalidInput, u.Size(), v.maxThumbnail)
	}
	return nil
}

func normalizeMime(u *media.Upload) string {
	mt := strings.ToLower(strings.TrimSpace(u.MimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	// Generic declared types get sniffed; a concrete declaration is trusted.
	if mt == "application/octet-stream" {
		mt = mimetype.Detect(u.Data).String()
		if i := strings.Index(mt, ";"); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
	}
	return mt
}
