package repository

import (
	"context"
	"sync"
	"time"

	"github.com/givehub/mediakit/internal/media"
)

// Memory is an in-process Store guarded by an RWMutex. It backs tests and
// single-node development where Postgres is overkill; the transition rules
// match the Postgres implementation exactly.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*media.Attachment
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*media.Attachment)}
}

func (m *Memory) Create(_ context.Context, a *media.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	m.records[a.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*media.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, media.ErrNotFound
	}
	return cloneAttachment(rec), nil
}

func (m *Memory) GetBatch(_ context.Context, ids []string) ([]*media.Attachment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*media.Attachment, len(ids))
	for i, id := range ids {
		if rec, ok := m.records[id]; ok {
			out[i] = cloneAttachment(rec)
		}
	}
	return out, nil
}

// cloneAttachment copies a record so callers cannot mutate stored state.
// Meta is a pointer and must be duplicated too.
func cloneAttachment(rec *media.Attachment) *media.Attachment {
	cp := *rec
	if rec.Meta != nil {
		meta := *rec.Meta
		cp.Meta = &meta
	}
	return &cp
}

func (m *Memory) MarkInProgress(_ context.Context, id string) error {
	return m.transition(id, func(rec *media.Attachment) bool {
		if rec.State != media.StateNotStarted && rec.State != media.StateInProgress {
			return false
		}
		rec.State = media.StateInProgress
		return true
	})
}

func (m *Memory) Complete(_ context.Context, id string, fields CompletionFields) error {
	return m.transition(id, func(rec *media.Attachment) bool {
		if rec.State != media.StateInProgress {
			return false
		}
		rec.State = media.StateComplete
		rec.Meta = fields.Meta
		rec.Blurhash = fields.Blurhash
		rec.OriginalPath = fields.OriginalPath
		rec.ThumbnailPath = fields.ThumbnailPath
		return true
	})
}

func (m *Memory) MarkFailed(_ context.Context, id string) error {
	return m.transition(id, func(rec *media.Attachment) bool {
		if rec.State.Terminal() {
			return false
		}
		rec.State = media.StateFailed
		rec.Meta = nil
		rec.Blurhash = ""
		return true
	})
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return media.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *Memory) transition(id string, apply func(*media.Attachment) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return media.ErrNotFound
	}
	if !apply(rec) {
		return ErrConflict
	}
	rec.UpdatedAt = time.Now().UTC()
	return nil
}
