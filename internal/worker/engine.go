package worker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/probe"
)

// Engine performs the heavy, subprocess-backed steps of asynchronous
// processing. It is an interface so tests can run the worker without
// ffmpeg on the machine.
type Engine interface {
	// Transcode normalizes a video (or animated GIF) into an h264/mp4
	// file at dst.
	Transcode(ctx context.Context, src, dst string, soundless bool) error
	// ExtractFrame writes the first video frame of src as a JPEG at dst.
	ExtractFrame(ctx context.Context, src, dst string) error
	// Probe reads stream metadata from a file on disk.
	Probe(ctx context.Context, path string) (*media.Metadata, error)
}

// FFmpeg is the production Engine, shelling out to ffmpeg/ffprobe.
type FFmpeg struct{}

func (FFmpeg) Transcode(ctx context.Context, src, dst string, soundless bool) error {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		// h264 requires even dimensions; yuv420p keeps players happy.
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	}
	if soundless {
		args = append(args, "-an")
	} else {
		args = append(args, "-c:a", "aac", "-b:a", "128k")
	}
	args = append(args, "-y", dst)
	return runFFmpeg(ctx, args)
}

func (FFmpeg) ExtractFrame(ctx context.Context, src, dst string) error {
	return runFFmpeg(ctx, []string{
		"-hide_banner", "-loglevel", "error",
		"-i", src,
		"-frames:v", "1",
		"-q:v", "3",
		"-y", dst,
	})
}

func (FFmpeg) Probe(ctx context.Context, path string) (*media.Metadata, error) {
	return probe.Stream(ctx, path)
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: ffmpeg: %v: %s", media.ErrProcessing, err, stderr.String())
	}
	return nil
}
