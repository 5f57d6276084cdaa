package analyzer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/viralab/hookbrief/internal/jsonutil"
	"github.com/viralab/hookbrief/internal/mediaproc"
)

// FrameFanOut bounds how many per-frame vision calls are in flight at
// once. Small and fixed: the provider rate-limits aggressively.
const FrameFanOut = 3

// frameFailedDescription marks a frame whose vision call failed outright.
const frameFailedDescription = "Analysis failed"

// AnalyzeFrame describes a single frame. It never returns an error: a
// failed call yields a placeholder FrameAnalysis at the same timestamp so
// one bad frame cannot abort the run.
func (c *Client) AnalyzeFrame(ctx context.Context, frame mediaproc.FrameSample) FrameAnalysis {
	prompt := fmt.Sprintf(`Analyze this video frame at timestamp %.1fs. Provide:
1. Brief description of what's happening
2. Main objects/elements visible
3. Dominant colors
4. Composition (close-up, wide shot, etc.)
5. Actions or movements

Format as JSON with keys: description, objects (array), colors (array), composition, actions (array)`, frame.Timestamp)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: frame.Data}},
			{Text: prompt},
		},
	}}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, nil)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = classifyFailure(err).String()
	}
	recordInference("frame_analysis", result, resp, elapsed).Flush()

	if err != nil {
		log.Warn().Err(err).Float64("timestamp", frame.Timestamp).Msg("Frame analysis call failed")
		return failedFrameAnalysis(frame.Timestamp)
	}
	if resp == nil {
		return failedFrameAnalysis(frame.Timestamp)
	}

	return parseFrameAnalysis(resp.Text(), frame.Timestamp)
}

// AnalyzeFrames runs AnalyzeFrame over every sample with bounded fan-out
// and returns results in ascending timestamp order regardless of
// completion order.
func (c *Client) AnalyzeFrames(ctx context.Context, frames []mediaproc.FrameSample) []FrameAnalysis {
	if len(frames) == 0 {
		return []FrameAnalysis{}
	}

	log.Info().Int("frame_count", len(frames)).Int("fan_out", FrameFanOut).Msg("Analyzing frames")

	results := make([]FrameAnalysis, len(frames))
	sem := make(chan struct{}, FrameFanOut)
	var wg sync.WaitGroup

	for i, frame := range frames {
		wg.Add(1)
		go func(i int, frame mediaproc.FrameSample) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = c.AnalyzeFrame(ctx, frame)
		}(i, frame)
	}
	wg.Wait()

	// Indexed writes already preserve input order; the sort guards
	// against callers passing unsorted samples.
	sort.Slice(results, func(a, b int) bool {
		return results[a].Timestamp < results[b].Timestamp
	})
	return results
}

// parseFrameAnalysis coerces the model's JSON reply into a fully
// populated FrameAnalysis. Missing or mistyped fields default
// independently; a completely unparseable reply degrades to the
// placeholder.
func parseFrameAnalysis(raw string, timestamp float64) FrameAnalysis {
	obj, err := jsonutil.ParseObject(raw)
	if err != nil {
		log.Warn().Err(err).Float64("timestamp", timestamp).Msg("Unparseable frame analysis response")
		return failedFrameAnalysis(timestamp)
	}
	return FrameAnalysis{
		Timestamp:   timestamp,
		Description: jsonutil.String(obj, "description", ""),
		Objects:     jsonutil.StringList(obj, "objects"),
		Colors:      jsonutil.StringList(obj, "colors"),
		Composition: jsonutil.String(obj, "composition", ""),
		Actions:     jsonutil.StringList(obj, "actions"),
	}
}

func failedFrameAnalysis(timestamp float64) FrameAnalysis {
	return FrameAnalysis{
		Timestamp:   timestamp,
		Description: frameFailedDescription,
		Objects:     []string{},
		Colors:      []string{},
		Actions:     []string{},
	}
}
