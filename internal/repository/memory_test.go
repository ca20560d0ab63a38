package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/givehub/mediakit/internal/media"
)

func newAttachment(id string, state media.ProcessingState) *media.Attachment {
	return &media.Attachment{
		ID:               id,
		OwnerID:          1,
		MimeType:         "video/mp4",
		OriginalFileName: "clip.mp4",
		FileSize:         1024,
		Kind:             media.KindVideo,
		State:            state,
	}
}

func TestMemoryCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if err := store.Create(ctx, newAttachment("a1", media.StateNotStarted)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != media.StateNotStarted || got.OwnerID != 1 {
		t.Fatalf("unexpected record %+v", got)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("unknown id: got %v, want ErrNotFound", err)
	}
}

func TestMemoryGetBatchPreservesOrderWithGaps(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	for _, id := range []string{"a1", "a2"} {
		if err := store.Create(ctx, newAttachment(id, media.StateNotStarted)); err != nil {
			t.Fatalf("Create(%s): %v", id, err)
		}
	}
	out, err := store.GetBatch(ctx, []string{"a2", "missing", "a1"})
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0] == nil || out[0].ID != "a2" {
		t.Fatalf("out[0] = %+v, want a2", out[0])
	}
	if out[1] != nil {
		t.Fatalf("out[1] = %+v, want nil gap", out[1])
	}
	if out[2] == nil || out[2].ID != "a1" {
		t.Fatalf("out[2] = %+v, want a1", out[2])
	}
}

func TestMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Create(ctx, newAttachment("a1", media.StateNotStarted)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.MarkInProgress(ctx, "a1"); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	// Re-marking an in-progress record stays legal for redelivered jobs.
	if err := store.MarkInProgress(ctx, "a1"); err != nil {
		t.Fatalf("second MarkInProgress: %v", err)
	}

	fields := CompletionFields{
		Meta:          &media.Metadata{Width: 640, Height: 360, FPS: 30},
		Blurhash:      "LKO2?U%2Tw=w",
		OriginalPath:  "a1/original.mp4",
		ThumbnailPath: "a1/thumbnail.jpg",
	}
	if err := store.Complete(ctx, "a1", fields); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != media.StateComplete || got.Meta == nil || got.Meta.FPS != 30 {
		t.Fatalf("unexpected completed record %+v", got)
	}

	// Terminal states refuse further transitions.
	if err := store.MarkInProgress(ctx, "a1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("MarkInProgress on complete: got %v, want ErrConflict", err)
	}
	if err := store.MarkFailed(ctx, "a1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("MarkFailed on complete: got %v, want ErrConflict", err)
	}
}

func TestMemoryCompleteRequiresInProgress(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Create(ctx, newAttachment("a1", media.StateNotStarted)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Complete(ctx, "a1", CompletionFields{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("Complete from NOT_STARTED: got %v, want ErrConflict", err)
	}
}

func TestMemoryMarkFailedClearsDerivedFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	att := newAttachment("a1", media.StateNotStarted)
	if err := store.Create(ctx, att); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkInProgress(ctx, "a1"); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if err := store.MarkFailed(ctx, "a1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != media.StateFailed || got.Meta != nil || got.Blurhash != "" {
		t.Fatalf("failed record must carry no derived fields: %+v", got)
	}
}

func TestMemoryGetCopiesMetadata(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Create(ctx, newAttachment("a1", media.StateNotStarted)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkInProgress(ctx, "a1"); err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if err := store.Complete(ctx, "a1", CompletionFields{
		Meta: &media.Metadata{Width: 640, Height: 360},
	}); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	first, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	first.Meta.Width = 1
	first.Blurhash = "mutated"

	second, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if second.Meta.Width != 640 || second.Blurhash != "" {
		t.Fatalf("stored record leaked through returned copy: %+v", second)
	}

	batch, err := store.GetBatch(ctx, []string{"a1"})
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	batch[0].Meta.Height = 1
	third, err := store.Get(ctx, "a1")
	if err != nil {
		t.Fatalf("third Get: %v", err)
	}
	if third.Meta.Height != 360 {
		t.Fatalf("stored record leaked through batch copy: %+v", third)
	}
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	if err := store.Create(ctx, newAttachment("a1", media.StateNotStarted)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Delete(ctx, "a1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "a1"); !errors.Is(err, media.ErrNotFound) {
		t.Fatalf("second Delete: got %v, want ErrNotFound", err)
	}
}
