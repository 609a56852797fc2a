// Package probe wraps ffprobe/ffmpeg subprocess invocations to extract video
// metadata and generate thumbnails. All probe failures are soft: callers get
// nil metadata, not an error, because intake must not depend on ffprobe.
package probe

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	probeTimeout     = 30 * time.Second
	thumbnailTimeout = 60 * time.Second
)

// Resolution is a video frame size.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Info is the container-level metadata for a video file.
type Info struct {
	DurationSeconds *int        `json:"duration,omitempty"`
	Resolution      *Resolution `json:"resolution,omitempty"`
	FormatName      string      `json:"format_name,omitempty"`
	BitRate         string      `json:"bit_rate,omitempty"`
	VideoStreams    int         `json:"video_streams"`
	AudioStreams    int         `json:"audio_streams"`
}

// Prober runs ffprobe/ffmpeg against files on disk.
type Prober struct {
	logger *zap.Logger
}

// New creates a Prober.
func New(logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{logger: logger}
}

// Duration returns the video duration in whole seconds, or nil when ffprobe
// fails or is unavailable.
func (p *Prober) Duration(ctx context.Context, path string) *int {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		p.logger.Warn("ffprobe duration failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return parseDuration(string(out))
}

// Resolution returns the first video stream's frame size, or nil on failure.
func (p *Prober) Resolution(ctx context.Context, path string) *Resolution {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		path,
	).Output()
	if err != nil {
		p.logger.Warn("ffprobe resolution failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	return parseResolution(string(out))
}

// Inspect returns full container metadata: duration, resolution, format name,
// bit rate and stream counts. Partial results are returned on partial failure.
func (p *Prober) Inspect(ctx context.Context, path string) *Info {
	info := &Info{
		DurationSeconds: p.Duration(ctx, path),
		Resolution:      p.Resolution(ctx, path),
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	).Output()
	if err != nil {
		p.logger.Warn("ffprobe inspect failed", zap.String("path", path), zap.Error(err))
		return info
	}

	var meta struct {
		Format struct {
			FormatName string `json:"format_name"`
			BitRate    string `json:"bit_rate"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &meta); err != nil {
		p.logger.Warn("ffprobe inspect parse failed", zap.String("path", path), zap.Error(err))
		return info
	}

	info.FormatName = meta.Format.FormatName
	info.BitRate = meta.Format.BitRate
	for _, s := range meta.Streams {
		switch s.CodecType {
		case "video":
			info.VideoStreams++
		case "audio":
			info.AudioStreams++
		}
	}
	return info
}

// Thumbnail extracts a 320x240 frame at the given position (HH:MM:SS) into
// outputPath.
func (p *Prober) Thumbnail(ctx context.Context, path, outputPath, position string) error {
	if position == "" {
		position = "00:00:10"
	}
	ctx, cancel := context.WithTimeout(ctx, thumbnailTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", path,
		"-ss", position,
		"-vframes", "1",
		"-vf", "scale=320:240",
		"-y",
		outputPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		p.logger.Error("thumbnail generation failed",
			zap.String("path", path), zap.ByteString("output", out), zap.Error(err))
		return err
	}
	p.logger.Info("thumbnail generated", zap.String("output", outputPath))
	return nil
}

func parseDuration(out string) *int {
	f, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return nil
	}
	sec := int(f)
	return &sec
}

func parseResolution(out string) *Resolution {
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) < 2 {
		return nil
	}
	w, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return nil
	}
	h, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return nil
	}
	return &Resolution{Width: w, Height: h}
}
