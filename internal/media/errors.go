package media

import "errors"

// Sentinel errors for the conditions callers distinguish. The HTTP layer
// maps these onto status codes with errors.Is; anything else is treated as
// an internal failure.
var (
	// ErrMissingInput is returned when the upload has no primary file.
	ErrMissingInput = errors.New("media: missing file")
	// ErrMissingOwner is returned when the upload names no owning account.
	ErrMissingOwner = errors.New("media: missing owner")
	// ErrInvalidInput covers unsupported mime types and size-limit
	// violations detected before any state is created.
	ErrInvalidInput = errors.New("media: invalid input")
	// ErrNotFound is returned for reads and deletes of unknown ids.
	ErrNotFound = errors.New("media: attachment not found")
	// ErrProcessing covers decode, probe, and transcode failures.
	ErrProcessing = errors.New("media: processing failed")
	// ErrStorage covers filesystem and object-store failures.
	ErrStorage = errors.New("media: storage failure")
)
