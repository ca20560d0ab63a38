package media

// Upload is one file received from a caller, fully buffered. Primary files
// must declare a mime type (only application/octet-stream is sniffed);
// thumbnails with no declared type are sniffed from the bytes.
type Upload struct {
	FileName string
	MimeType string
	Data     []byte
}

// Size returns the byte length of the upload.
func (u *Upload) Size() int64 {
	if u == nil {
		return 0
	}
	return int64(len(u.Data))
}
