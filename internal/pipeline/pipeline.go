// Package pipeline is the single entry point for media ingestion. It
// validates uploads, classifies them, and routes images through the inline
// synchronous path while videos, gifvs, and audio are staged and handed to
// the background worker through the queue. Both paths share storage layout,
// validation, and response construction so the two never drift apart.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/blur"
	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/probe"
	"github.com/givehub/mediakit/internal/queue"
	"github.com/givehub/mediakit/internal/repository"
	"github.com/givehub/mediakit/internal/storage"
	"github.com/givehub/mediakit/internal/thumbnail"
	"github.com/givehub/mediakit/internal/validate"
)

// Enqueuer abstracts job submission so tests can capture payloads without
// a redis instance.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload queue.ProcessPayload) error
}

// AsynqEnqueuer submits jobs through an asynq client.
type AsynqEnqueuer struct {
	Client *asynq.Client
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, payload queue.ProcessPayload) error {
	return queue.EnqueueProcess(ctx, e.Client, payload)
}

// Pipeline orchestrates ingestion, reads, and deletion of attachments.
type Pipeline struct {
	cfg       *config.Config
	validator *validate.Validator
	store     repository.Store
	backend   storage.Backend
	staging   *storage.Staging
	enqueuer  Enqueuer
	urls      media.URLResolver
	log       zerolog.Logger
}

// New wires the pipeline together. urls may be nil, in which case url
// fields in responses stay null.
func New(cfg *config.Config, store repository.Store, backend storage.Backend, staging *storage.Staging, enqueuer Enqueuer, urls media.URLResolver, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		validator: validate.New(cfg),
		store:     store,
		backend:   backend,
		staging:   staging,
		enqueuer:  enqueuer,
		urls:      urls,
		log:       log.With().Str("component", "pipeline").Logger(),
	}
}

// SubmitRequest is one upload: the primary file, an optional thumbnail, the
// owning account, and optional caller-supplied presentation fields.
type SubmitRequest struct {
	File        *media.Upload
	Thumbnail   *media.Upload
	OwnerID     int64
	Description string
	FocusPoint  string
}

// SubmitResult reports which path handled the upload. Synchronous results
// carry a COMPLETE attachment; asynchronous ones a NOT_STARTED record the
// caller polls.
type SubmitResult struct {
	Synchronous bool
	Attachment  *media.Attachment
}

// Submit validates and dispatches one upload. Images run inline; everything
// else returns immediately after the job is enqueued.
func (p *Pipeline) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if req.File == nil || len(req.File.Data) == 0 {
		return nil, media.ErrMissingInput
	}
	if req.OwnerID <= 0 {
		return nil, media.ErrMissingOwner
	}
	kind, err := p.validator.File(req.File)
	if err != nil {
		return nil, err
	}
	if req.Thumbnail != nil {
		if err := p.validator.Thumbnail(req.Thumbnail); err != nil {
			return nil, err
		}
	}
	focus := media.ParseFocusPoint(req.FocusPoint)

	att := &media.Attachment{
		ID:               uuid.NewString(),
		OwnerID:          req.OwnerID,
		MimeType:         req.File.MimeType,
		OriginalFileName: req.File.FileName,
		FileSize:         req.File.Size(),
		Kind:             kind,
		Description:      req.Description,
		Focus:            focus,
	}

	if kind.Synchronous() {
		if err := p.processImage(ctx, att, req); err != nil {
			return nil, err
		}
		return &SubmitResult{Synchronous: true, Attachment: att}, nil
	}
	if err := p.stageAndEnqueue(ctx, att, req); err != nil {
		return nil, err
	}
	return &SubmitResult{Synchronous: false, Attachment: att}, nil
}

// processImage runs the synchronous path: store the original, render an
// optional thumbnail, derive metadata and blurhash, then create the record
// directly in COMPLETE. Any failure tears down the attachment directory and
// surfaces before a record exists.
func (p *Pipeline) processImage(ctx context.Context, att *media.Attachment, req SubmitRequest) (err error) {
	defer func() {
		if err != nil {
			if rmErr := p.backend.Remove(ctx, att.ID); rmErr != nil {
				p.log.Warn().Err(rmErr).Str("attachment_id", att.ID).Msg("cleanup after failed image processing")
			}
		}
	}()

	meta, err := probe.Image(req.File.Data)
	if err != nil {
		return err
	}

	originalName := storage.ArtifactName(storage.OriginalBase, att.MimeType)
	originalPath, err := p.backend.Put(ctx, att.ID, originalName, req.File.Data, att.MimeType)
	if err != nil {
		return err
	}
	att.OriginalPath = originalPath

	// Blurhash is computed over the thumbnail when one was supplied; the
	// downsampled raster is just as representative and much cheaper.
	hashSource := req.File.Data
	if req.Thumbnail != nil {
		thumbBytes, thumbImg, renderErr := thumbnail.Render(req.Thumbnail.Data, p.cfg.ThumbnailMaxBox)
		if renderErr != nil {
			return renderErr
		}
		thumbName := storage.ArtifactName(storage.ThumbnailBase, thumbnail.MimeType)
		thumbPath, putErr := p.backend.Put(ctx, att.ID, thumbName, thumbBytes, thumbnail.MimeType)
		if putErr != nil {
			return putErr
		}
		att.ThumbnailPath = thumbPath
		if att.Blurhash, err = blur.Encode(thumbImg); err != nil {
			return err
		}
		hashSource = nil
	}
	if hashSource != nil {
		if att.Blurhash, err = blur.EncodeBytes(hashSource); err != nil {
			return err
		}
	}

	att.Meta = meta
	att.State = media.StateComplete
	if err = p.store.Create(ctx, att); err != nil {
		return fmt.Errorf("create attachment record: %w", err)
	}
	p.log.Info().Str("attachment_id", att.ID).Str("kind", string(att.Kind)).Msg("image processed inline")
	return nil
}

// stageAndEnqueue runs the fast part of the asynchronous path: stage the
// bytes, create a NOT_STARTED record, enqueue the job. The permanent
// directory is only created later by the worker so readers never observe a
// half-populated final path.
func (p *Pipeline) stageAndEnqueue(ctx context.Context, att *media.Attachment, req SubmitRequest) error {
	originalName := storage.ArtifactName(storage.OriginalBase, att.MimeType)
	originalStaged, err := p.staging.Write(att.ID, originalName, req.File.Data)
	if err != nil {
		return err
	}
	thumbnailStaged := ""
	if req.Thumbnail != nil {
		name := storage.ArtifactName(storage.ThumbnailBase, req.Thumbnail.MimeType)
		if thumbnailStaged, err = p.staging.Write(att.ID, name, req.Thumbnail.Data); err != nil {
			p.cleanupStaging(att.ID)
			return err
		}
	}

	att.State = media.StateNotStarted
	if err := p.store.Create(ctx, att); err != nil {
		p.cleanupStaging(att.ID)
		return fmt.Errorf("create attachment record: %w", err)
	}

	payload := queue.ProcessPayload{
		AttachmentID:         att.ID,
		OriginalStagingPath:  originalStaged,
		ThumbnailStagingPath: thumbnailStaged,
		Description:          req.Description,
		FocusPoint:           att.Focus,
	}
	if err := p.enqueuer.Enqueue(ctx, payload); err != nil {
		// A record with no job would be stuck in NOT_STARTED forever, so
		// undo both sides and surface the failure.
		p.cleanupStaging(att.ID)
		if delErr := p.store.Delete(ctx, att.ID); delErr != nil && !errors.Is(delErr, media.ErrNotFound) {
			p.log.Warn().Err(delErr).Str("attachment_id", att.ID).Msg("cleanup record after enqueue failure")
		}
		return fmt.Errorf("enqueue processing job: %w", err)
	}
	p.log.Info().Str("attachment_id", att.ID).Str("kind", string(att.Kind)).Msg("queued for background processing")
	return nil
}

func (p *Pipeline) cleanupStaging(attachmentID string) {
	if err := p.staging.Remove(attachmentID); err != nil {
		p.log.Warn().Err(err).Str("attachment_id", attachmentID).Msg("cleanup staging")
	}
}

// Render builds the public response shape for an attachment the caller
// already holds, typically the one just returned by Submit.
func (p *Pipeline) Render(att *media.Attachment) *media.Response {
	return media.NewResponse(att, p.urls)
}

// GetByID returns the public response shape plus the raw processing state
// so the HTTP boundary can map the state to a status code.
func (p *Pipeline) GetByID(ctx context.Context, id string) (*media.Response, media.ProcessingState, error) {
	att, err := p.store.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return media.NewResponse(att, p.urls), att.State, nil
}

// ResponseWithState pairs the public shape with the raw state for batch
// reads.
type ResponseWithState struct {
	Response *media.Response
	State    media.ProcessingState
}

// GetByIDs preserves input order and leaves nil entries for unknown ids.
func (p *Pipeline) GetByIDs(ctx context.Context, ids []string) ([]*ResponseWithState, error) {
	atts, err := p.store.GetBatch(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*ResponseWithState, len(atts))
	for i, att := range atts {
		if att == nil {
			continue
		}
		out[i] = &ResponseWithState{Response: media.NewResponse(att, p.urls), State: att.State}
	}
	return out, nil
}

// Delete removes the stored artifacts and then the record. Referential
// integrity (no post or project still pointing at the id) is the caller's
// responsibility.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	if _, err := p.store.Get(ctx, id); err != nil {
		return err
	}
	if err := p.backend.Remove(ctx, id); err != nil {
		return err
	}
	p.cleanupStaging(id)
	return p.store.Delete(ctx, id)
}
