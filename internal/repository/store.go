// Package repository persists attachment records and guards the
// processing-state machine. Writers go through the narrow transition
// methods rather than free-form updates so an illegal move (anything out of
// a terminal state) is rejected at this layer no matter who calls it.
package repository

import (
	"context"
	"errors"

	"github.com/givehub/mediakit/internal/media"
)

// ErrConflict is returned when a state transition would violate the
// machine, for example completing a record that never entered IN_PROGRESS.
var ErrConflict = errors.New("repository: invalid state transition")

// CompletionFields is everything the worker (or the synchronous path) fills
// in when processing finishes.
type CompletionFields struct {
	Meta          *media.Metadata
	Blurhash      string
	OriginalPath  string
	ThumbnailPath string
}

// Store is the record-store interface the rest of the platform reads.
// The pgx implementation is the production one; the memory implementation
// backs tests.
type Store interface {
	// Create inserts a new record in whatever state the pipeline chose:
	// COMPLETE for the synchronous path, NOT_STARTED for the asynchronous
	// one.
	Create(ctx context.Context, a *media.Attachment) error
	// Get returns a record by id or media.ErrNotFound.
	Get(ctx context.Context, id string) (*media.Attachment, error)
	// GetBatch preserves input order and leaves nil where an id is
	// unknown, so list endpoints avoid N+1 lookups without reordering.
	GetBatch(ctx context.Context, ids []string) ([]*media.Attachment, error)
	// MarkInProgress moves NOT_STARTED -> IN_PROGRESS. Re-marking an
	// IN_PROGRESS record is a no-op success so redelivered jobs can
	// resume after a worker crash.
	MarkInProgress(ctx context.Context, id string) error
	// Complete moves IN_PROGRESS -> COMPLETE and sets all derived fields.
	Complete(ctx context.Context, id string, fields CompletionFields) error
	// MarkFailed moves NOT_STARTED or IN_PROGRESS -> FAILED, clearing any
	// partial derived fields.
	MarkFailed(ctx context.Context, id string) error
	// Delete removes the record or returns media.ErrNotFound.
	Delete(ctx context.Context, id string) error
}
