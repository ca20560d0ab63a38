// Package media contains the domain model shared across the API, the
// processing pipeline, and the background worker: the attachment record,
// its processing-state machine, media-kind classification, and the public
// response shape.
package media

import "strings"

// Kind classifies an attachment by how it is processed. Animated GIFs are
// their own kind (gifv) because they are re-encoded like short videos
// rather than handled as static images.
type Kind string

const (
	KindImage   Kind = "image"
	KindVideo   Kind = "video"
	KindGifv    Kind = "gifv"
	KindAudio   Kind = "audio"
	KindUnknown Kind = "unknown"
)

// KindForMime derives the media kind from a declared mime type.
func KindForMime(mimeType string) Kind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "image/gif":
		return KindGifv
	case strings.HasPrefix(mt, "image/"):
		return KindImage
	case strings.HasPrefix(mt, "video/"):
		return KindVideo
	case strings.HasPrefix(mt, "audio/"):
		return KindAudio
	default:
		return KindUnknown
	}
}

// Synchronous reports whether attachments of this kind are processed inline
// on the request path. Only static images qualify; everything else goes
// through the queue because transcoding cost is unbounded.
func (k Kind) Synchronous() bool {
	return k == KindImage
}
