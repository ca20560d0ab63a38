// The mediakit CLI is the operator's side door: it classifies and probes
// local files the same way the ingestion pipeline would, and performs
// maintenance against a deployment (record lookup, staging sweep) without
// going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/givehub/mediakit/internal/blur"
	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/database"
	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/probe"
	"github.com/givehub/mediakit/internal/repository"
	"github.com/givehub/mediakit/internal/storage"
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mediakit: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mediakit",
		Short: "mediakit operator CLI",
		Long: `mediakit inspects local media files the way the processing pipeline would
(kind classification, metadata probe, blurhash) and performs maintenance
against a running deployment (attachment lookup, staging sweep).`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newProbeCmd(),
		newHashCmd(),
		newStatusCmd(),
		newSweepCmd(),
	)
	return cmd
}

// probeResult is the JSON printed by `mediakit probe`.
type probeResult struct {
	Path     string          `json:"path"`
	MimeType string          `json:"mime_type"`
	Kind     media.Kind      `json:"kind"`
	Meta     *media.Metadata `json:"meta"`
}

// probeFile classifies a local file by its bytes and derives the same
// metadata the pipeline would: in-process decode for images, ffprobe for
// video, gifv, and audio.
func probeFile(ctx context.Context, path string) (*probeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mt := mimetype.Detect(data).String()
	kind := media.KindForMime(mt)
	res := &probeResult{Path: path, MimeType: mt, Kind: kind}
	switch kind {
	case media.KindImage:
		res.Meta, err = probe.Image(data)
	case media.KindVideo, media.KindGifv, media.KindAudio:
		res.Meta, err = probe.Stream(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported media type %q", mt)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Classify a local file and print the metadata the pipeline would derive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := probeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <image>",
		Short: "Compute the blurhash placeholder for a local image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			hash, err := blur.EncodeBytes(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <attachment-id>",
		Short: "Print an attachment record from the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := database.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			att, err := repository.NewPostgres(pool).Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), att)
		},
	}
}

func newSweepCmd() *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove staging directories older than the configured age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if maxAge <= 0 {
				maxAge = cfg.StagingMaxAge
			}
			staging, err := storage.NewStaging(cfg.StagingRoot)
			if err != nil {
				return err
			}
			removed, err := staging.SweepOlderThan(maxAge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d stale staging directories\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Override the configured staging max age")
	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
