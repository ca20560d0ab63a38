// Package storage persists original and derived media artifacts. The
// permanent tree is keyed by attachment id: <root>/<id>/original.<ext> and
// <root>/<id>/thumbnail.<ext>. Two backends share that layout: the local
// filesystem and an S3/MinIO bucket where the same paths become object
// keys. Staging for asynchronous uploads is always a local directory,
// distinct from the permanent root, so a half-processed attachment is never
// visible at its final path.
package storage

import (
	"context"
	"io"
	"strings"
)

// Artifact base names inside an attachment's directory.
const (
	OriginalBase  = "original"
	ThumbnailBase = "thumbnail"
)

// Backend writes and removes the permanent artifacts of one attachment.
// Stored paths returned by Put are relative keys ("<id>/original.jpg")
// suitable for persisting on the record.
type Backend interface {
	Put(ctx context.Context, attachmentID, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, attachmentID, name string) (io.ReadCloser, error)
	Remove(ctx context.Context, attachmentID string) error
}

var mimeExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/gif":       "gif",
	"image/webp":      "webp",
	"image/bmp":       "bmp",
	"image/tiff":      "tiff",
	"video/mp4":       "mp4",
	"video/webm":      "webm",
	"video/quicktime": "mov",
	"video/ogg":       "ogv",
	"audio/mpeg":      "mp3",
	"audio/mp4":       "m4a",
	"audio/ogg":       "ogg",
	"audio/wav":       "wav",
	"audio/flac":      "flac",
	"audio/aac":       "aac",
}

// ExtensionForMime maps a mime type to the on-disk extension, without a
// leading dot. Unknown types fall back to "bin".
func ExtensionForMime(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if ext, ok := mimeExtensions[mt]; ok {
		return ext
	}
	return "bin"
}

// ArtifactName joins a base name and a mime-derived extension with exactly
// one dot, regardless of how the extension was produced.
func ArtifactName(base, mimeType string) string {
	return base + "." + strings.TrimPrefix(ExtensionForMime(mimeType), ".")
}
