package media

import "time"

// Metadata holds the kind-specific structural facts derived from the raw
// bytes. Images fill the dimension fields; video adds duration, frame rate,
// bitrate, and the audio channel layout; audio fills only the latter three.
// A record carries nil Metadata until processing completes.
type Metadata struct {
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Size     string  `json:"size,omitempty"`
	Aspect   float64 `json:"aspect,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
	Bitrate  int64   `json:"bitrate,omitempty"`
	Channels string  `json:"audio_channels,omitempty"`
}

// Attachment is the central record: one uploaded media object and its
// processing lifecycle. Only the pipeline creates attachments and only the
// worker (or an explicit delete) mutates them afterwards; that single-writer
// rule is what keeps the state machine race-free without row locks.
type Attachment struct {
	ID               string          `json:"id"`
	OwnerID          int64           `json:"ownerId"`
	MimeType         string          `json:"mimeType"`
	OriginalFileName string          `json:"originalFileName"`
	FileSize         int64           `json:"fileSize"`
	Kind             Kind            `json:"kind"`
	State            ProcessingState `json:"processingState"`
	Meta             *Metadata       `json:"metadata,omitempty"`
	Blurhash         string          `json:"blurhash,omitempty"`
	Description      string          `json:"description,omitempty"`
	Focus            FocusPoint      `json:"focus"`
	RemoteURL        string          `json:"remoteUrl,omitempty"`
	OriginalPath     string          `json:"-"`
	ThumbnailPath    string          `json:"-"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// HasThumbnail reports whether a thumbnail artifact exists for the record.
func (a *Attachment) HasThumbnail() bool {
	return a.ThumbnailPath != ""
}
