package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/givehub/mediakit/internal/media"
)

func writeTestPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(4 * x), G: uint8(6 * y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	path := filepath.Join(dir, "pic.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return path
}

func TestProbeFileImage(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 48, 32)
	res, err := probeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("probeFile: %v", err)
	}
	if res.Kind != media.KindImage {
		t.Fatalf("kind = %q, want image", res.Kind)
	}
	if res.MimeType != "image/png" {
		t.Fatalf("mime = %q, want image/png", res.MimeType)
	}
	if res.Meta == nil || res.Meta.Width != 48 || res.Meta.Height != 32 {
		t.Fatalf("meta = %+v, want 48x32", res.Meta)
	}
}

func TestProbeFileRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := probeFile(context.Background(), path); err == nil {
		t.Fatalf("expected error for non-media file")
	}
}

func TestHashCommand(t *testing.T) {
	path := writeTestPNG(t, t.TempDir(), 16, 16)
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"hash", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("hash: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Fatalf("hash command printed nothing")
	}
}

func TestSweepCommand(t *testing.T) {
	stagingRoot := t.TempDir()
	stale := filepath.Join(stagingRoot, "old-attachment")
	if err := os.MkdirAll(stale, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("backdate dir: %v", err)
	}
	t.Setenv("MEDIAKIT_STAGING_ROOT", stagingRoot)

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"sweep", "--max-age", "1h"})
	if err := root.Execute(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !strings.Contains(out.String(), "removed 1") {
		t.Fatalf("sweep output = %q, want removed 1", out.String())
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale staging directory must be removed")
	}
}
