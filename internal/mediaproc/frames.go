package mediaproc

// frames.go extracts still frames for the analysis stages. Two sampling
// modes: uniform intervals across the whole duration, and a dense sample
// over the opening window for hook detection.

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Frame extraction parameters.
const (
	// FrameJPEGQuality is ffmpeg's -q:v for extracted frames. 2 is high
	// quality (~95% JPEG), so the vision model sees minimal artifacts.
	FrameJPEGQuality = "2"

	// VisionMaxWidth caps frame width before frames are sent to the
	// vision model. Wider frames only add tokens, not signal.
	VisionMaxWidth = 1280

	// DefaultFrameInterval is the uniform sampling interval in seconds.
	DefaultFrameInterval = 2.0

	// DefaultHookWindow is the opening-window length in seconds analyzed
	// at high density for hook detection.
	DefaultHookWindow = 3.0

	// DefaultHookStep is the sampling step inside the opening window.
	DefaultHookStep = 0.5
)

// FrameSample is one extracted still image. The bytes are consumed exactly
// once by an analysis stage and then discarded; only derived text survives
// the run.
type FrameSample struct {
	// Timestamp is the frame's position in seconds from the start.
	Timestamp float64

	// Data is the JPEG-encoded image.
	Data []byte
}

// SampleUniform extracts floor(duration/interval) frames at timestamps
// 0, interval, 2*interval, ... into dir. A video shorter than one interval
// yields an empty slice, not an error. Individual unsampleable timestamps
// are logged and skipped; *SamplingError is returned only when the file is
// fundamentally undecodable (every extraction fails).
func SampleUniform(ctx context.Context, videoPath string, meta VideoMetadata, interval float64, dir string) ([]FrameSample, error) {
	if interval <= 0 {
		return nil, &SamplingError{Path: videoPath, Err: fmt.Errorf("non-positive interval %v", interval)}
	}
	return sampleAt(ctx, videoPath, UniformTimestamps(meta.Duration, interval), dir, "frame")
}

// SampleWindow extracts frames at 0, step, 2*step, ..., windowEnd, clipped
// to the video's actual duration. Used for the dense opening-window sample.
func SampleWindow(ctx context.Context, videoPath string, meta VideoMetadata, windowEnd, step float64, dir string) ([]FrameSample, error) {
	if step <= 0 {
		return nil, &SamplingError{Path: videoPath, Err: fmt.Errorf("non-positive step %v", step)}
	}
	return sampleAt(ctx, videoPath, WindowTimestamps(meta.Duration, windowEnd, step), dir, "hook_frame")
}

// UniformTimestamps returns the uniform sampling timestamps for a video of
// the given duration: exactly floor(duration/interval) entries at
// 0, interval, 2*interval, ...
func UniformTimestamps(duration, interval float64) []float64 {
	count := int(math.Floor(duration / interval))
	if count <= 0 {
		return nil
	}
	out := make([]float64, count)
	for i := 0; i < count; i++ {
		out[i] = float64(i) * interval
	}
	return out
}

// WindowTimestamps returns 0, step, ..., windowEnd, dropping any timestamp
// past the video's duration so a short video never requests an
// out-of-range frame.
func WindowTimestamps(duration, windowEnd, step float64) []float64 {
	var out []float64
	// Epsilon absorbs float accumulation so windowEnd itself is included.
	for t := 0.0; t <= windowEnd+1e-9; t += step {
		if t <= duration {
			out = append(out, t)
		}
	}
	return out
}

// sampleAt extracts one frame per timestamp. Extraction runs one ffmpeg
// invocation per timestamp so a single bad seek point only loses that
// frame, not the whole sequence.
func sampleAt(ctx context.Context, videoPath string, timestamps []float64, dir, prefix string) ([]FrameSample, error) {
	if len(timestamps) == 0 {
		return []FrameSample{}, nil
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, &SamplingError{Path: videoPath, Err: fmt.Errorf("ffmpeg not found in PATH: %w", err)}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, &SamplingError{Path: videoPath, Err: fmt.Errorf("create frames directory: %w", err)}
	}

	samples := make([]FrameSample, 0, len(timestamps))
	for i, ts := range timestamps {
		framePath := filepath.Join(dir, fmt.Sprintf("%s_%03d.jpg", prefix, i))

		cmd := exec.CommandContext(ctx, ffmpegPath,
			"-y",
			"-ss", fmt.Sprintf("%.3f", ts),
			"-i", videoPath,
			"-frames:v", "1",
			"-q:v", FrameJPEGQuality,
			framePath,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			log.Warn().Err(err).Float64("timestamp", ts).Str("output", truncate(string(output), 300)).Msg("Frame extraction failed, skipping timestamp")
			continue
		}

		data, err := os.ReadFile(framePath)
		if err != nil || len(data) == 0 {
			log.Warn().Err(err).Float64("timestamp", ts).Msg("Extracted frame unreadable, skipping timestamp")
			continue
		}

		samples = append(samples, FrameSample{Timestamp: ts, Data: DownscaleJPEG(data, VisionMaxWidth)})
	}

	if len(samples) == 0 {
		return nil, &SamplingError{Path: videoPath, Err: fmt.Errorf("no frames could be extracted at any of %d timestamps", len(timestamps))}
	}

	log.Debug().
		Int("requested", len(timestamps)).
		Int("extracted", len(samples)).
		Str("video", filepath.Base(videoPath)).
		Msg("Frames sampled")
	return samples, nil
}
