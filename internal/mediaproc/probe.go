package mediaproc

// probe.go extracts container-level metadata with ffprobe. ffprobe is the
// right tool here because pure Go demuxers only expose raw atoms/boxes;
// its JSON output covers every container format we see in the wild.

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DefaultFrameRate is used when the container carries no usable frame-rate
// field. 30 fps is the dominant rate for short-form phone video.
const DefaultFrameRate = 30.0

// VideoMetadata is the container-level description of a video. Produced
// once per run and treated as immutable by every downstream stage.
type VideoMetadata struct {
	// Duration is the total length in seconds.
	Duration float64 `json:"duration"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// FrameRate is frames per second, parsed from the container's
	// rational frame-rate field.
	FrameRate float64 `json:"fps"`

	// HasAudio reports whether the container carries an audio stream.
	HasAudio bool `json:"hasAudio"`
}

// Resolution formats the dimensions as "WxH".
func (m VideoMetadata) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// AspectRatio returns the generation-parameter aspect ratio: 9:16 for
// portrait, 16:9 otherwise.
func (m VideoMetadata) AspectRatio() string {
	if m.Height > m.Width {
		return "9:16"
	}
	return "16:9"
}

// ffprobeOutput mirrors the subset of ffprobe's JSON we consume.
type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
}

// Probe returns the metadata of the video file at path.
// Fails with *ProbeError when the file has no decodable video stream.
func Probe(ctx context.Context, path string) (VideoMetadata, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: fmt.Errorf("ffprobe not found in PATH: %w", err)}
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: fmt.Errorf("ffprobe failed: %w", err)}
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: fmt.Errorf("parse ffprobe output: %w", err)}
	}

	meta, err := metadataFromProbe(probe)
	if err != nil {
		return VideoMetadata{}, &ProbeError{Path: path, Err: err}
	}

	log.Debug().
		Float64("duration", meta.Duration).
		Str("resolution", meta.Resolution()).
		Float64("fps", meta.FrameRate).
		Bool("hasAudio", meta.HasAudio).
		Str("path", path).
		Msg("Video probed")
	return meta, nil
}

// metadataFromProbe assembles VideoMetadata from raw ffprobe JSON.
// Split out for testing without ffprobe on the machine.
func metadataFromProbe(probe ffprobeOutput) (VideoMetadata, error) {
	var meta VideoMetadata
	var videoFound bool

	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if videoFound {
				continue
			}
			videoFound = true
			meta.Width = stream.Width
			meta.Height = stream.Height
			meta.FrameRate = ParseFrameRate(stream.RFrameRate)
			if meta.Duration == 0 && stream.Duration != "" {
				meta.Duration, _ = strconv.ParseFloat(stream.Duration, 64)
			}
		case "audio":
			meta.HasAudio = true
		}
	}

	if !videoFound {
		return VideoMetadata{}, fmt.Errorf("no video stream found")
	}

	// Format-level duration is more reliable than stream-level when present.
	if probe.Format.Duration != "" {
		if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil && dur > 0 {
			meta.Duration = dur
		}
	}

	return meta, nil
}

// ParseFrameRate parses ffprobe's rational frame-rate field ("30/1",
// "30000/1001"). The ratio is evaluated explicitly: both sides parsed as
// numbers with a zero-denominator guard, never via expression evaluation.
// An unavailable or zero rate yields DefaultFrameRate.
func ParseFrameRate(value string) float64 {
	parts := strings.Split(value, "/")
	if len(parts) == 2 {
		num, errN := strconv.ParseFloat(parts[0], 64)
		den, errD := strconv.ParseFloat(parts[1], 64)
		if errN == nil && errD == nil && den != 0 && num > 0 {
			return num / den
		}
		return DefaultFrameRate
	}
	if rate, err := strconv.ParseFloat(value, 64); err == nil && rate > 0 {
		return rate
	}
	return DefaultFrameRate
}
