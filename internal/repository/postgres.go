package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givehub/mediakit/internal/media"
)

// Postgres wraps all SQL used by the API and the worker.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the production store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const attachmentColumns = `id, owner_id, mime_type, original_file_name, file_size, kind,
	processing_state, metadata, blurhash, description, focus_x, focus_y,
	remote_url, original_path, thumbnail_path, created_at, updated_at`

func (p *Postgres) Create(ctx context.Context, a *media.Attachment) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	metaJSON, err := marshalMeta(a.Meta)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO media_attachments (`+attachmentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, a.ID, a.OwnerID, a.MimeType, a.OriginalFileName, a.FileSize, a.Kind,
		int(a.State), metaJSON, nullable(a.Blurhash), nullable(a.Description),
		a.Focus.X, a.Focus.Y, nullable(a.RemoteURL),
		nullable(a.OriginalPath), nullable(a.ThumbnailPath), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*media.Attachment, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM media_attachments WHERE id=$1`, id)
	a, err := scanAttachment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, media.ErrNotFound
		}
		return nil, fmt.Errorf("select attachment: %w", err)
	}
	return a, nil
}

func (p *Postgres) GetBatch(ctx context.Context, ids []string) ([]*media.Attachment, error) {
	out := make([]*media.Attachment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := p.pool.Query(ctx, `SELECT `+attachmentColumns+` FROM media_attachments WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("select attachments: %w", err)
	}
	defer rows.Close()
	byID := make(map[string]*media.Attachment, len(ids))
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

func (p *Postgres) MarkInProgress(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE media_attachments
		SET processing_state=$1, updated_at=$2
		WHERE id=$3 AND processing_state IN ($4,$5)
	`, int(media.StateInProgress), time.Now().UTC(), id,
		int(media.StateNotStarted), int(media.StateInProgress))
	if err != nil {
		return fmt.Errorf("mark in progress: %w", err)
	}
	return p.checkTransition(ctx, id, tag.RowsAffected())
}

func (p *Postgres) Complete(ctx context.Context, id string, fields CompletionFields) error {
	metaJSON, err := marshalMeta(fields.Meta)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE media_attachments
		SET processing_state=$1, metadata=$2, blurhash=$3,
			original_path=$4, thumbnail_path=$5, updated_at=$6
		WHERE id=$7 AND processing_state=$8
	`, int(media.StateComplete), metaJSON, nullable(fields.Blurhash),
		nullable(fields.OriginalPath), nullable(fields.ThumbnailPath),
		time.Now().UTC(), id, int(media.StateInProgress))
	if err != nil {
		return fmt.Errorf("complete attachment: %w", err)
	}
	return p.checkTransition(ctx, id, tag.RowsAffected())
}

func (p *Postgres) MarkFailed(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE media_attachments
		SET processing_state=$1, metadata=NULL, blurhash=NULL, updated_at=$2
		WHERE id=$3 AND processing_state IN ($4,$5)
	`, int(media.StateFailed), time.Now().UTC(), id,
		int(media.StateNotStarted), int(media.StateInProgress))
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return p.checkTransition(ctx, id, tag.RowsAffected())
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM media_attachments WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return media.ErrNotFound
	}
	return nil
}

// checkTransition distinguishes "no such record" from "record exists but
// the transition is illegal" after a guarded update touched zero rows.
func (p *Postgres) checkTransition(ctx context.Context, id string, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := p.Get(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func scanAttachment(row pgx.Row) (*media.Attachment, error) {
	var (
		a         media.Attachment
		state     int
		metaJSON  []byte
		blurhash  sql.NullString
		desc      sql.NullString
		remoteURL sql.NullString
		origPath  sql.NullString
		thumbPath sql.NullString
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.MimeType, &a.OriginalFileName, &a.FileSize,
		&a.Kind, &state, &metaJSON, &blurhash, &desc, &a.Focus.X, &a.Focus.Y,
		&remoteURL, &origPath, &thumbPath, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.State = media.ProcessingState(state)
	if len(metaJSON) > 0 {
		meta := &media.Metadata{}
		if err := json.Unmarshal(metaJSON, meta); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		a.Meta = meta
	}
	a.Blurhash = blurhash.String
	a.Description = desc.String
	a.RemoteURL = remoteURL.String
	a.OriginalPath = origPath.String
	a.ThumbnailPath = thumbPath.String
	return &a, nil
}

func marshalMeta(m *media.Metadata) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return data, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
