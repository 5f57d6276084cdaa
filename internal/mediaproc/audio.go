package mediaproc

// audio.go demuxes the audio track into a standalone mp3 for transcription.

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ExtractAudio produces a compressed audio-only file next to the video
// (same base name, .mp3 extension) and returns its path.
//
// Fails with *ExtractionError wrapping ErrNoAudioStream when the source
// has no audio track; callers must treat that case as recoverable.
func ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", &ExtractionError{Path: videoPath, Err: fmt.Errorf("ffmpeg not found in PATH: %w", err)}
	}

	hasAudio, err := hasAudioStream(ctx, videoPath)
	if err != nil {
		return "", &ExtractionError{Path: videoPath, Err: err}
	}
	if !hasAudio {
		return "", &ExtractionError{Path: videoPath, Err: ErrNoAudioStream}
	}

	audioPath := strings.TrimSuffix(videoPath, ".mp4") + ".mp3"

	start := time.Now()
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		audioPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Err(err).Str("output", truncate(string(output), 500)).Msg("ffmpeg audio extraction failed")
		return "", &ExtractionError{Path: videoPath, Err: fmt.Errorf("ffmpeg: %w", err)}
	}

	log.Debug().Str("audio", audioPath).Dur("duration", time.Since(start)).Msg("Audio extracted")
	return audioPath, nil
}

// hasAudioStream checks for an audio stream with ffprobe. A missing track
// must be detected up front: ffmpeg's own error for it is indistinguishable
// from a general encode failure.
func hasAudioStream(ctx context.Context, videoPath string) (bool, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return false, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", "a",
		"-show_entries", "stream=codec_type",
		"-of", "csv=p=0",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("ffprobe audio stream check: %w", err)
	}
	return strings.Contains(string(output), "audio"), nil
}
