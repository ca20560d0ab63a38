package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/givehub/mediakit/internal/media"
)

// Staging is the durable temp area for asynchronous uploads. Files live in
// <root>/<attachmentID>/ between the upload request and the worker run; the
// worker (or the janitor, for jobs that never ran) removes them.
type Staging struct {
	root string
}

// NewStaging prepares the staging root.
func NewStaging(root string) (*Staging, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create staging root: %v", media.ErrStorage, err)
	}
	return &Staging{root: root}, nil
}

// Write stages one file and returns its absolute path, which travels in the
// queue payload to the worker.
func (s *Staging) Write(attachmentID, name string, data []byte) (string, error) {
	if attachmentID == "" || strings.ContainsAny(attachmentID, "/\\") {
		return "", fmt.Errorf("%w: invalid attachment id %q", media.ErrStorage, attachmentID)
	}
	dir := filepath.Join(s.root, attachmentID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: create staging dir: %v", media.ErrStorage, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("%w: write staged %s: %v", media.ErrStorage, name, err)
	}
	return path, nil
}

// Remove deletes an attachment's staging directory. Missing directories are
// not an error so cleanup stays idempotent.
func (s *Staging) Remove(attachmentID string) error {
	if attachmentID == "" || strings.ContainsAny(attachmentID, "/\\") {
		return fmt.Errorf("%w: invalid attachment id %q", media.ErrStorage, attachmentID)
	}
	if err := os.RemoveAll(filepath.Join(s.root, attachmentID)); err != nil {
		return fmt.Errorf("%w: remove staging dir: %v", media.ErrStorage, err)
	}
	return nil
}

// SweepOlderThan removes staging directories whose newest file is older
// than maxAge and returns how many were deleted. It covers uploads whose
// job never ran to completion, for example after a worker crash.
func (s *Staging) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("%w: read staging root: %v", media.ErrStorage, err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, e.Name())
		if newestModTime(dir).After(cutoff) {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("%w: sweep %s: %v", media.ErrStorage, e.Name(), err)
		}
		removed++
	}
	return removed, nil
}

func newestModTime(dir string) time.Time {
	newest := time.Time{}
	if info, err := os.Stat(dir); err == nil {
		newest = info.ModTime()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return newest
	}
	for _, e := range entries {
		if info, err := e.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest
}
