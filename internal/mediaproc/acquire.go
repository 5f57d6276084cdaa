package mediaproc

// acquire.go resolves a source reference (remote URL or local upload) into
// a video file inside the workspace. Remote fetches go through yt-dlp; no
// retries are attempted here because short-form video hosts rate-limit
// aggressively, so retry policy belongs to the caller.

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// downloadUserAgent is sent with every yt-dlp fetch. Some hosts serve
// degraded or blocked responses to the default yt-dlp agent string.
const downloadUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Source is a reference to a video to analyze: exactly one of URL or
// UploadPath must be set.
type Source struct {
	// URL is a remote video page URL (TikTok, Reels, Shorts).
	URL string

	// UploadPath is the path of an already-uploaded local file.
	UploadPath string
}

// Ref returns a loggable description of the source.
func (s Source) Ref() string {
	if s.URL != "" {
		return s.URL
	}
	return s.UploadPath
}

// Acquire materializes the source as a local video file at dest.
// Creates exactly one file on disk; fails with *AcquisitionError.
func Acquire(ctx context.Context, src Source, dest string) error {
	switch {
	case src.URL != "":
		return download(ctx, src.URL, dest)
	case src.UploadPath != "":
		return copyUpload(src.UploadPath, dest)
	default:
		return &AcquisitionError{Source: "(empty)", Err: fmt.Errorf("source has neither URL nor upload path")}
	}
}

// download fetches the video behind url using yt-dlp, preferring an mp4
// stream so downstream ffmpeg invocations need no remux.
func download(ctx context.Context, url, dest string) error {
	ytdlpPath, err := exec.LookPath("yt-dlp")
	if err != nil {
		return &AcquisitionError{Source: url, Err: fmt.Errorf("yt-dlp not found in PATH: %w", err)}
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, ytdlpPath,
		"-f", "best[ext=mp4]",
		"--user-agent", downloadUserAgent,
		"--no-playlist",
		"-o", dest,
		url,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Error().Err(err).Str("url", url).Str("output", truncate(string(output), 500)).Msg("yt-dlp download failed")
		return &AcquisitionError{Source: url, Err: fmt.Errorf("yt-dlp: %w", err)}
	}

	info, err := os.Stat(dest)
	if err != nil {
		return &AcquisitionError{Source: url, Err: fmt.Errorf("yt-dlp reported success but output file is missing: %w", err)}
	}

	log.Info().
		Str("url", url).
		Int64("bytes", info.Size()).
		Dur("duration", time.Since(start)).
		Msg("Video downloaded")
	return nil
}

// copyUpload copies a locally uploaded file into the workspace byte for byte.
func copyUpload(srcPath, dest string) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return &AcquisitionError{Source: srcPath, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return &AcquisitionError{Source: srcPath, Err: err}
	}
	defer out.Close()

	n, err := io.Copy(out, in)
	if err != nil {
		return &AcquisitionError{Source: srcPath, Err: fmt.Errorf("copy upload: %w", err)}
	}

	log.Info().Str("src", srcPath).Int64("bytes", n).Msg("Upload copied into workspace")
	return nil
}

// truncate shortens s for log output.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
