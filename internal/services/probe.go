package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/clipshare/clipshare-backend/internal/platform/logger"
)

// ErrFileNotFound means the probe target is missing from disk; it is a
// precondition failure, distinct from ffprobe rejecting the file.
var ErrFileNotFound = errors.New("video file does not exist")

// MediaProbeService reads container and stream metadata from a file on disk
// without decoding it. The only required binary is ffprobe.
type MediaProbeService interface {
	AssertReady(ctx context.Context) error
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

type ProbeResult struct {
	Duration   float64          `json:"duration"`
	FormatName string           `json:"format,omitempty"`
	SizeBytes  int64            `json:"size_bytes,omitempty"`
	BitRate    int64            `json:"bit_rate,omitempty"`
	Video      *VideoStreamInfo `json:"video,omitempty"`
	Audio      *AudioStreamInfo `json:"audio,omitempty"`
}

type VideoStreamInfo struct {
	Codec  string   `json:"codec,omitempty"`
	Width  int      `json:"width,omitempty"`
	Height int      `json:"height,omitempty"`
	FPS    *float64 `json:"fps,omitempty"`
}

type AudioStreamInfo struct {
	Codec      string `json:"codec,omitempty"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
}

type mediaProbeService struct {
	log         *logger.Logger
	ffprobePath string
	timeout     time.Duration
}

func NewMediaProbeService(log *logger.Logger, timeout time.Duration) MediaProbeService {
	serviceLog := log.With("service", "MediaProbeService")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &mediaProbeService{
		log:         serviceLog,
		ffprobePath: "ffprobe",
		timeout:     timeout,
	}
}

func (m *mediaProbeService) AssertReady(ctx context.Context) error {
	if _, err := exec.LookPath(m.ffprobePath); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w", m.ffprobePath, err)
	}
	return nil
}

func (m *mediaProbeService) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	if path == "" {
		return nil, ErrFileNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return nil, ErrFileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, m.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		m.log.Warn("ffprobe failed", "path", path, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return decodeProbeOutput(stdout.Bytes())
}

// ffprobe emits numbers as JSON strings in the format section, so everything
// is decoded as string and converted.
type ffprobePayload struct {
	Format *struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		BitRate    string `json:"bit_rate"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

func decodeProbeOutput(data []byte) (*ProbeResult, error) {
	var payload ffprobePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if payload.Format == nil {
		return nil, errors.New("ffprobe output has no format section")
	}
	duration, err := strconv.ParseFloat(payload.Format.Duration, 64)
	if err != nil {
		return nil, fmt.Errorf("ffprobe output has no usable duration: %w", err)
	}

	result := &ProbeResult{
		Duration:   duration,
		FormatName: payload.Format.FormatName,
	}
	if n, err := strconv.ParseInt(payload.Format.Size, 10, 64); err == nil {
		result.SizeBytes = n
	}
	if n, err := strconv.ParseInt(payload.Format.BitRate, 10, 64); err == nil {
		result.BitRate = n
	}

	for _, stream := range payload.Streams {
		switch stream.CodecType {
		case "video":
			if result.Video != nil {
				continue
			}
			result.Video = &VideoStreamInfo{
				Codec:  stream.CodecName,
				Width:  stream.Width,
				Height: stream.Height,
				FPS:    parseFrameRate(stream.RFrameRate),
			}
		case "audio":
			if result.Audio != nil {
				continue
			}
			info := &AudioStreamInfo{
				Codec:    stream.CodecName,
				Channels: stream.Channels,
			}
			if sr, err := strconv.Atoi(stream.SampleRate); err == nil {
				info.SampleRate = sr
			}
			result.Audio = info
		}
	}
	return result, nil
}

// parseFrameRate converts ffprobe's rational "num/den" frame rate to a
// float. A zero or non-numeric denominator means the rate is unavailable,
// not that the file is bad.
func parseFrameRate(rate string) *float64 {
	parts := strings.Split(rate, "/")
	if len(parts) != 2 {
		return nil
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return nil
	}
	fps := num / den
	return &fps
}
