package media

// Response is the public attachment shape returned by the read endpoints.
// URL, preview, metadata, and blurhash stay null until the record reaches
// COMPLETE so pollers can tell a pending attachment from a finished one.
type Response struct {
	ID          string     `json:"id"`
	Type        Kind       `json:"type"`
	URL         *string    `json:"url"`
	PreviewURL  *string    `json:"preview_url"`
	RemoteURL   *string    `json:"remote_url"`
	Description *string    `json:"description"`
	Meta        *Metadata  `json:"meta"`
	Blurhash    *string    `json:"blurhash"`
	Focus       FocusPoint `json:"focus"`
}

// URLResolver turns stored artifact paths into externally reachable URLs.
// The local filesystem backend signs paths served by the API; the S3
// backend presigns object URLs.
type URLResolver interface {
	ResolveURL(attachmentID, storedPath string) string
}

// NewResponse builds the public shape for one attachment. urls may be nil,
// in which case url fields stay null regardless of state.
func NewResponse(a *Attachment, urls URLResolver) *Response {
	r := &Response{
		ID:    a.ID,
		Type:  a.Kind,
		Focus: a.Focus,
	}
	if a.Description != "" {
		r.Description = strptr(a.Description)
	}
	if a.RemoteURL != "" {
		r.RemoteURL = strptr(a.RemoteURL)
	}
	if a.State != StateComplete {
		return r
	}
	r.Meta = a.Meta
	if a.Blurhash != "" {
		r.Blurhash = strptr(a.Blurhash)
	}
	if urls == nil {
		return r
	}
	if a.OriginalPath != "" {
		r.URL = strptr(urls.ResolveURL(a.ID, a.OriginalPath))
	}
	if a.ThumbnailPath != "" {
		r.PreviewURL = strptr(urls.ResolveURL(a.ID, a.ThumbnailPath))
	}
	return r
}

func strptr(s string) *string { return &s }
