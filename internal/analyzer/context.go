package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/viralab/hookbrief/internal/jsonutil"
	"github.com/viralab/hookbrief/internal/mediaproc"
)

// Field defaults when the context response is present but incomplete.
const (
	defaultVideoType      = "unknown"
	defaultStyle          = "standard"
	defaultPacing         = "medium"
	defaultMood           = "neutral"
	defaultTargetAudience = "general"
)

// AggregateContext classifies the whole video from the transcript, the
// ordered per-frame descriptions, and the probe metadata in a single text
// call. Never returns an error: missing fields take named defaults, and
// an outright call failure yields defaults whose videoType names the
// failure kind so it reads differently from "the model didn't know".
func (c *Client) AggregateContext(ctx context.Context, transcript string, frames []FrameAnalysis, meta mediaproc.VideoMetadata) ContextAnalysis {
	var frameLines strings.Builder
	for _, f := range frames {
		fmt.Fprintf(&frameLines, "[%.1fs] %s - Objects: %s\n", f.Timestamp, f.Description, strings.Join(f.Objects, ", "))
	}

	prompt := fmt.Sprintf(`Analyze this short-form video and provide context:

Video Duration: %.1fs
Dimensions: %dx%d
FPS: %.2f

Transcription:
%s

Frame-by-frame analysis:
%s
Provide a JSON analysis with:
1. videoType: (tutorial, entertainment, storytelling, product-demo, dance, transition, etc.)
2. style: Overall visual style
3. pacing: (fast, medium, slow)
4. hooks: Array of attention-grabbing elements in first 3 seconds
5. dominantColors: Top 3-5 colors throughout video
6. mood: Overall emotional tone
7. targetAudience: Who this content is for`,
		meta.Duration, meta.Width, meta.Height, meta.FrameRate, transcript, frameLines.String())

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, nil)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = classifyFailure(err).String()
	}
	recordInference("context_aggregation", result, resp, elapsed).Flush()

	if err != nil {
		kind := classifyFailure(err)
		log.Error().Err(err).Str("owner", c.owner).Str("kind", kind.String()).Msg("Context aggregation call failed")
		return failedContextAnalysis(kind)
	}
	if resp == nil {
		return failedContextAnalysis(failureUnknown)
	}

	parsed := parseContextAnalysis(resp.Text())
	log.Info().
		Str("videoType", parsed.VideoType).
		Str("pacing", parsed.Pacing).
		Str("mood", parsed.Mood).
		Dur("duration", elapsed).
		Msg("Context aggregated")
	return parsed
}

// parseContextAnalysis defaults every field independently so the result
// is always fully populated.
func parseContextAnalysis(raw string) ContextAnalysis {
	obj, err := jsonutil.ParseObject(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unparseable context response, applying defaults")
		obj = map[string]any{}
	}
	return ContextAnalysis{
		VideoType:      jsonutil.String(obj, "videoType", defaultVideoType),
		Style:          jsonutil.String(obj, "style", defaultStyle),
		Pacing:         jsonutil.String(obj, "pacing", defaultPacing),
		Hooks:          jsonutil.StringList(obj, "hooks"),
		DominantColors: jsonutil.StringList(obj, "dominantColors"),
		Mood:           jsonutil.String(obj, "mood", defaultMood),
		TargetAudience: jsonutil.String(obj, "targetAudience", defaultTargetAudience),
	}
}

// failedContextAnalysis is distinguishable from the missing-field
// defaults: the videoType carries the failure kind.
func failedContextAnalysis(kind failureKind) ContextAnalysis {
	return ContextAnalysis{
		VideoType:      fmt.Sprintf("unavailable (%s)", kind),
		Style:          defaultStyle,
		Pacing:         defaultPacing,
		Hooks:          []string{},
		DominantColors: []string{},
		Mood:           defaultMood,
		TargetAudience: defaultTargetAudience,
	}
}
