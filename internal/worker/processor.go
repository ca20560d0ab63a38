// Package worker consumes queued media jobs: transcode, preview extraction,
// metadata probing, blurhash, final storage writes, and the COMPLETE/FAILED
// state transition. Jobs are safe to re-run for the same attachment id;
// outputs overwrite rather than duplicate.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/blur"
	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/queue"
	"github.com/givehub/mediakit/internal/repository"
	"github.com/givehub/mediakit/internal/storage"
	"github.com/givehub/mediakit/internal/thumbnail"
)

// Processor is plugged into the asynq worker loop.
type Processor struct {
	cfg     *config.Config
	store   repository.Store
	backend storage.Backend
	staging *storage.Staging
	engine  Engine
	log     zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(cfg *config.Config, store repository.Store, backend storage.Backend, staging *storage.Staging, engine Engine, log zerolog.Logger) *Processor {
	return &Processor{
		cfg:     cfg,
		store:   store,
		backend: backend,
		staging: staging,
		engine:  engine,
		log:     log.With().Str("component", "worker").Logger(),
	}
}

// Handler registers the media processing job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ProcessMediaTask, p.handleProcess)
	return mux
}

func (p *Processor) handleProcess(ctx context.Context, task *asynq.Task) error {
	var payload queue.ProcessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	// Staging is scoped cleanup: removed whatever the outcome.
	defer func() {
		if err := p.staging.Remove(payload.AttachmentID); err != nil {
			p.log.Warn().Err(err).Str("attachment_id", payload.AttachmentID).Msg("remove staging")
		}
	}()

	att, err := p.store.Get(ctx, payload.AttachmentID)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			// Record deleted between enqueue and pickup; nothing to do.
			p.log.Warn().Str("attachment_id", payload.AttachmentID).Msg("job for unknown attachment")
			return nil
		}
		return err
	}
	if att.State.Terminal() {
		// At-least-once delivery: a redelivered job for a finished
		// attachment is a no-op.
		p.log.Debug().Str("attachment_id", att.ID).Stringer("state", att.State).Msg("attachment already terminal")
		return nil
	}

	if err := p.store.MarkInProgress(ctx, att.ID); err != nil {
		return fmt.Errorf("mark in progress: %w", err)
	}
	if err := p.process(ctx, att, payload); err != nil {
		p.log.Error().Err(err).Str("attachment_id", att.ID).Str("kind", string(att.Kind)).Msg("processing failed")
		if failErr := p.store.MarkFailed(ctx, att.ID); failErr != nil {
			p.log.Error().Err(failErr).Str("attachment_id", att.ID).Msg("mark failed")
		}
		// Best-effort removal of whatever partial artifacts got written.
		if rmErr := p.backend.Remove(ctx, att.ID); rmErr != nil {
			p.log.Warn().Err(rmErr).Str("attachment_id", att.ID).Msg("cleanup artifacts after failure")
		}
		return err
	}
	p.log.Info().Str("attachment_id", att.ID).Str("kind", string(att.Kind)).Msg("attachment processed")
	return nil
}

func (p *Processor) process(ctx context.Context, att *media.Attachment, payload queue.ProcessPayload) error {
	switch att.Kind {
	case media.KindVideo, media.KindGifv:
		return p.processVideo(ctx, att, payload)
	case media.KindAudio:
		return p.processAudio(ctx, att, payload)
	default:
		return fmt.Errorf("%w: unexpected kind %q on asynchronous path", media.ErrProcessing, att.Kind)
	}
}

// processVideo normalizes the staged bytes to h264/mp4, extracts (or takes
// the supplied) preview image, probes the normalized stream, computes the
// blurhash from the preview, and writes the final artifacts.
func (p *Processor) processVideo(ctx context.Context, att *media.Attachment, payload queue.ProcessPayload) error {
	workDir := filepath.Dir(payload.OriginalStagingPath)
	normalized := filepath.Join(workDir, "normalized.mp4")
	if err := p.engine.Transcode(ctx, payload.OriginalStagingPath, normalized, att.Kind == media.KindGifv); err != nil {
		return err
	}

	previewSource := payload.ThumbnailStagingPath
	if previewSource == "" {
		frame := filepath.Join(workDir, "frame.jpg")
		if err := p.engine.ExtractFrame(ctx, normalized, frame); err != nil {
			return err
		}
		previewSource = frame
	}
	previewData, err := os.ReadFile(previewSource)
	if err != nil {
		return fmt.Errorf("%w: read preview source: %v", media.ErrStorage, err)
	}
	thumbBytes, thumbImg, err := thumbnail.Render(previewData, p.cfg.ThumbnailMaxBox)
	if err != nil {
		return err
	}
	hash, err := blur.Encode(thumbImg)
	if err != nil {
		return err
	}

	meta, err := p.engine.Probe(ctx, normalized)
	if err != nil {
		return err
	}

	videoData, err := os.ReadFile(normalized)
	if err != nil {
		return fmt.Errorf("%w: read normalized video: %v", media.ErrStorage, err)
	}
	originalPath, err := p.backend.Put(ctx, att.ID, storage.ArtifactName(storage.OriginalBase, "video/mp4"), videoData, "video/mp4")
	if err != nil {
		return err
	}
	thumbPath, err := p.backend.Put(ctx, att.ID, storage.ArtifactName(storage.ThumbnailBase, thumbnail.MimeType), thumbBytes, thumbnail.MimeType)
	if err != nil {
		return err
	}

	return p.store.Complete(ctx, att.ID, repository.CompletionFields{
		Meta:          meta,
		Blurhash:      hash,
		OriginalPath:  originalPath,
		ThumbnailPath: thumbPath,
	})
}

// processAudio stores the original bytes untouched and probes duration,
// bitrate, and channel layout. Audio never gets a blurhash; a thumbnail
// exists only when the caller supplied one.
func (p *Processor) processAudio(ctx context.Context, att *media.Attachment, payload queue.ProcessPayload) error {
	meta, err := p.engine.Probe(ctx, payload.OriginalStagingPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(payload.OriginalStagingPath)
	if err != nil {
		return fmt.Errorf("%w: read staged audio: %v", media.ErrStorage, err)
	}
	originalPath, err := p.backend.Put(ctx, att.ID, storage.ArtifactName(storage.OriginalBase, att.MimeType), data, att.MimeType)
	if err != nil {
		return err
	}

	fields := repository.CompletionFields{Meta: meta, OriginalPath: originalPath}
	if payload.ThumbnailStagingPath != "" {
		previewData, err := os.ReadFile(payload.ThumbnailStagingPath)
		if err != nil {
			return fmt.Errorf("%w: read staged thumbnail: %v", media.ErrStorage, err)
		}
		thumbBytes, _, err := thumbnail.Render(previewData, p.cfg.ThumbnailMaxBox)
		if err != nil {
			return err
		}
		thumbPath, err := p.backend.Put(ctx, att.ID, storage.ArtifactName(storage.ThumbnailBase, thumbnail.MimeType), thumbBytes, thumbnail.MimeType)
		if err != nil {
			return err
		}
		fields.ThumbnailPath = thumbPath
	}
	return p.store.Complete(ctx, att.ID, fields)
}
