package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/givehub/mediakit/internal/media"
)

// ffprobeOutput mirrors the subset of `ffprobe -print_format json` we need.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	CodecType     string `json:"codec_type"`
	CodecName     string `json:"codec_name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	RFrameRate    string `json:"r_frame_rate"`
	Channels      int    `json:"channels"`
	ChannelLayout string `json:"channel_layout"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Stream interrogates a media file on disk via ffprobe and maps the result
// into the video/audio metadata fields. Audio-only files simply carry no
// video stream; that is not an error.
func Stream(ctx context.Context, path string) (*media.Metadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffprobe: %v: %s", media.ErrProcessing, err, stderr.String())
	}
	var out ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode ffprobe output: %v", media.ErrProcessing, err)
	}

	meta := &media.Metadata{}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		meta.Duration = d
	}
	if b, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
		meta.Bitrate = b
	}
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if meta.Width == 0 {
				meta.Width = s.Width
				meta.Height = s.Height
				if s.Width > 0 && s.Height > 0 {
					meta.Size = fmt.Sprintf("%dx%d", s.Width, s.Height)
					meta.Aspect = float64(s.Width) / float64(s.Height)
				}
				meta.FPS = parseRate(s.AvgFrameRate)
				if meta.FPS == 0 {
					meta.FPS = parseRate(s.RFrameRate)
				}
			}
		case "audio":
			if meta.Channels == "" {
				meta.Channels = channelLayout(s)
			}
		}
	}
	if meta.Duration == 0 && meta.Width == 0 && meta.Channels == "" {
		return nil, fmt.Errorf("%w: no usable streams in %s", media.ErrProcessing, path)
	}
	return meta, nil
}

// parseRate turns ffprobe's rational frame rates ("30000/1001") into a
// float, tolerating plain numbers and the "0/0" placeholder.
func parseRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0/0" {
		return 0
	}
	if num, den, ok := strings.Cut(raw, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

func channelLayout(s ffprobeStream) string {
	if s.ChannelLayout != "" {
		return s.ChannelLayout
	}
	switch s.Channels {
	case 0:
		return ""
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return strconv.Itoa(s.Channels) + " channels"
	}
}
