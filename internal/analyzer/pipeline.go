package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viralab/hookbrief/internal/mediaproc"
	"github.com/viralab/hookbrief/internal/metrics"
)

// Pipeline-level limits.
const (
	// DefaultRunTimeout bounds one whole analysis invocation.
	DefaultRunTimeout = 5 * time.Minute

	// MaxVideoDuration rejects videos too long to analyze frame by
	// frame within the run budget.
	MaxVideoDuration = 300.0
)

// ErrRunTimeout is wrapped into the error returned when the run budget
// expires before the result is assembled.
var ErrRunTimeout = errors.New("analysis run timed out")

// ErrVideoTooLong is returned after probing when the source exceeds
// MaxVideoDuration.
var ErrVideoTooLong = errors.New("video exceeds maximum duration")

// MediaProcessor is the media-extraction surface the pipeline drives.
// The default implementation shells out to ffmpeg/ffprobe/yt-dlp; tests
// substitute stubs.
type MediaProcessor interface {
	Acquire(ctx context.Context, src mediaproc.Source, dest string) error
	Probe(ctx context.Context, path string) (mediaproc.VideoMetadata, error)
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	SampleUniform(ctx context.Context, videoPath string, meta mediaproc.VideoMetadata, interval float64, dir string) ([]mediaproc.FrameSample, error)
	SampleWindow(ctx context.Context, videoPath string, meta mediaproc.VideoMetadata, windowEnd, step float64, dir string) ([]mediaproc.FrameSample, error)
}

// ffmpegMedia is the production MediaProcessor.
type ffmpegMedia struct{}

func (ffmpegMedia) Acquire(ctx context.Context, src mediaproc.Source, dest string) error {
	return mediaproc.Acquire(ctx, src, dest)
}

func (ffmpegMedia) Probe(ctx context.Context, path string) (mediaproc.VideoMetadata, error) {
	return mediaproc.Probe(ctx, path)
}

func (ffmpegMedia) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	return mediaproc.ExtractAudio(ctx, videoPath)
}

func (ffmpegMedia) SampleUniform(ctx context.Context, videoPath string, meta mediaproc.VideoMetadata, interval float64, dir string) ([]mediaproc.FrameSample, error) {
	return mediaproc.SampleUniform(ctx, videoPath, meta, interval, dir)
}

func (ffmpegMedia) SampleWindow(ctx context.Context, videoPath string, meta mediaproc.VideoMetadata, windowEnd, step float64, dir string) ([]mediaproc.FrameSample, error) {
	return mediaproc.SampleWindow(ctx, videoPath, meta, windowEnd, step, dir)
}

// RunEvent is the fire-and-forget notification emitted when a run ends,
// success or failure.
type RunEvent struct {
	RunID     string
	SourceRef string
	Status    string // "completed" or "failed"
	Result    *AnalysisResult
	Err       error
}

// Publisher consumes RunEvents. The pipeline never waits on it.
type Publisher interface {
	Publish(ctx context.Context, event RunEvent)
}

// PipelineConfig tunes one Pipeline. Zero values take documented
// defaults.
type PipelineConfig struct {
	BaseDir       string
	Timeout       time.Duration
	FrameInterval float64
	HookWindow    float64
	HookStep      float64
	Language      string
	Media         MediaProcessor
	Publisher     Publisher
}

// Pipeline orchestrates one video's full analysis: acquire, probe,
// extract, run the inference stages, and assemble the aggregate result.
// Safe for concurrent Run calls; each run owns its own workspace.
type Pipeline struct {
	client        *Client
	media         MediaProcessor
	baseDir       string
	timeout       time.Duration
	frameInterval float64
	hookWindow    float64
	hookStep      float64
	language      string
	publisher     Publisher
}

// NewPipeline builds a Pipeline around an inference client.
func NewPipeline(client *Client, cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		client:        client,
		media:         cfg.Media,
		baseDir:       cfg.BaseDir,
		timeout:       cfg.Timeout,
		frameInterval: cfg.FrameInterval,
		hookWindow:    cfg.HookWindow,
		hookStep:      cfg.HookStep,
		language:      cfg.Language,
		publisher:     cfg.Publisher,
	}
	if p.media == nil {
		p.media = ffmpegMedia{}
	}
	if p.timeout <= 0 {
		p.timeout = DefaultRunTimeout
	}
	if p.frameInterval <= 0 {
		p.frameInterval = mediaproc.DefaultFrameInterval
	}
	if p.hookWindow <= 0 {
		p.hookWindow = mediaproc.DefaultHookWindow
	}
	if p.hookStep <= 0 {
		p.hookStep = mediaproc.DefaultHookStep
	}
	return p
}

// Run analyzes one video end to end. It returns either a complete
// AnalysisResult or a typed fatal error, never a partial result:
// acquisition, probe, unrecoverable extraction, and timeout abort the
// run, while individual inference failures degrade in place. The
// workspace is removed on every path.
func (p *Pipeline) Run(ctx context.Context, src mediaproc.Source) (*AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	runStart := time.Now()

	ws, err := mediaproc.NewWorkspace(p.baseDir)
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup()

	log.Info().Str("runId", ws.RunID).Str("source", src.Ref()).Msg("Analysis run started")

	result, err := p.run(ctx, ws, src)

	status := "completed"
	if err != nil {
		status = "failed"
	}
	metrics.New("Hookbrief").
		Dimension("Operation", "analysis_run").
		Dimension("Result", status).
		Metric("RunMs", float64(time.Since(runStart).Milliseconds()), metrics.UnitMilliseconds).
		Property("runId", ws.RunID).
		Count("AnalysisRuns").
		Flush()

	p.notify(RunEvent{
		RunID:     ws.RunID,
		SourceRef: src.Ref(),
		Status:    status,
		Result:    result,
		Err:       err,
	})

	if err != nil {
		log.Error().Err(err).Str("runId", ws.RunID).Dur("duration", time.Since(runStart)).Msg("Analysis run failed")
		return nil, err
	}
	log.Info().Str("runId", ws.RunID).Dur("duration", time.Since(runStart)).Msg("Analysis run complete")
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, ws *mediaproc.Workspace, src mediaproc.Source) (*AnalysisResult, error) {
	videoPath := ws.VideoPath()
	if err := p.media.Acquire(ctx, src, videoPath); err != nil {
		return nil, p.fatal(ctx, err)
	}

	meta, err := p.media.Probe(ctx, videoPath)
	if err != nil {
		return nil, p.fatal(ctx, err)
	}
	if meta.Duration > MaxVideoDuration {
		return nil, fmt.Errorf("%w: %.1fs > %.0fs", ErrVideoTooLong, meta.Duration, MaxVideoDuration)
	}

	// Audio, uniform frames, and window frames have no mutual ordering
	// requirement, so they extract concurrently.
	var (
		wg            sync.WaitGroup
		audioPath     string
		audioErr      error
		frames        []mediaproc.FrameSample
		framesErr     error
		hookFrames    []mediaproc.FrameSample
		hookFramesErr error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		audioPath, audioErr = p.media.ExtractAudio(ctx, videoPath)
	}()
	go func() {
		defer wg.Done()
		frames, framesErr = p.media.SampleUniform(ctx, videoPath, meta, p.frameInterval, ws.FramesDir())
	}()
	go func() {
		defer wg.Done()
		hookFrames, hookFramesErr = p.media.SampleWindow(ctx, videoPath, meta, p.hookWindow, p.hookStep, ws.HookFramesDir())
	}()
	wg.Wait()

	if framesErr != nil {
		return nil, p.fatal(ctx, framesErr)
	}
	if hookFramesErr != nil {
		return nil, p.fatal(ctx, hookFramesErr)
	}
	// Missing audio degrades: the transcription field carries a marker
	// instead of text and the run continues.
	noAudio := false
	if audioErr != nil {
		if errors.Is(audioErr, mediaproc.ErrNoAudioStream) {
			noAudio = true
			log.Info().Str("runId", ws.RunID).Msg("Video has no audio stream, skipping transcription")
		} else {
			log.Warn().Err(audioErr).Str("runId", ws.RunID).Msg("Audio extraction failed, transcription degraded")
		}
	}

	for i := range frames {
		frames[i].Data = mediaproc.DownscaleJPEG(frames[i].Data, mediaproc.VisionMaxWidth)
	}
	for i := range hookFrames {
		hookFrames[i].Data = mediaproc.DownscaleJPEG(hookFrames[i].Data, mediaproc.VisionMaxWidth)
	}

	// Transcription and per-frame analysis are independent and run
	// concurrently. Hook detection needs the transcript; context
	// aggregation needs both.
	var (
		transcript string
		visual     []FrameAnalysis
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		switch {
		case noAudio:
			transcript = TranscriptionNoAudio
		case audioErr != nil:
			transcript = TranscriptionFailed
		default:
			transcript = p.client.Transcribe(ctx, audioPath, p.language)
		}
	}()
	go func() {
		defer wg.Done()
		visual = p.client.AnalyzeFrames(ctx, frames)
	}()
	wg.Wait()

	if err := runTimedOut(ctx); err != nil {
		return nil, err
	}

	hook := p.client.DetectHook(ctx, hookFrames, transcript)
	ctxAnalysis := p.client.AggregateContext(ctx, transcript, visual, meta)

	if err := runTimedOut(ctx); err != nil {
		return nil, err
	}

	patterns := AnalyzeTimingPatterns(visual)
	timeline := BuildTimeline(visual, meta.Duration)

	return &AnalysisResult{
		RunID:          ws.RunID,
		Transcription:  transcript,
		VisualAnalysis: visual,
		Context:        ctxAnalysis,
		HookAnalysis:   hook,
		TimingPatterns: patterns,
		Timeline:       timeline,
		Metadata:       meta,
	}, nil
}

// fatal prefers the timeout error when the deadline caused the stage
// failure, so callers can distinguish timeout from the stage's own
// error.
func (p *Pipeline) fatal(ctx context.Context, err error) error {
	if timeoutErr := runTimedOut(ctx); timeoutErr != nil {
		return timeoutErr
	}
	return err
}

func runTimedOut(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: budget exhausted", ErrRunTimeout)
	}
	return ctx.Err()
}

// notify emits the run event without waiting on the subscriber. Failures
// there never affect the run outcome.
func (p *Pipeline) notify(event RunEvent) {
	if p.publisher == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p.publisher.Publish(ctx, event)
	}()
}
