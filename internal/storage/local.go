package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/givehub/mediakit/internal/media"
)

// Local stores artifacts under a directory tree on the local filesystem.
type Local struct {
	root string
}

// NewLocal prepares the permanent storage root.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create storage root: %v", media.ErrStorage, err)
	}
	return &Local{root: root}, nil
}

// Put writes one artifact, creating the attachment directory on first use.
func (l *Local) Put(_ context.Context, attachmentID, name string, data []byte, _ string) (string, error) {
	dir, err := l.attachmentDir(attachmentID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: create attachment dir: %v", media.ErrStorage, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("%w: write %s: %v", media.ErrStorage, name, err)
	}
	return attachmentID + "/" + name, nil
}

// Open streams a stored artifact.
func (l *Local) Open(_ context.Context, attachmentID, name string) (io.ReadCloser, error) {
	dir, err := l.attachmentDir(attachmentID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, filepath.Base(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, media.ErrNotFound
		}
		return nil, fmt.Errorf("%w: open %s: %v", media.ErrStorage, name, err)
	}
	return f, nil
}

// Remove deletes the whole attachment directory.
func (l *Local) Remove(_ context.Context, attachmentID string) error {
	dir, err := l.attachmentDir(attachmentID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: remove attachment dir: %v", media.ErrStorage, err)
	}
	return nil
}

// attachmentDir rejects ids that would escape the root.
func (l *Local) attachmentDir(attachmentID string) (string, error) {
	if attachmentID == "" || strings.ContainsAny(attachmentID, "/\\") || strings.Contains(attachmentID, "..") {
		return "", fmt.Errorf("%w: invalid attachment id %q", media.ErrStorage, attachmentID)
	}
	return filepath.Join(l.root, attachmentID), nil
}
