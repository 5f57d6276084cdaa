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
	"github.com/viralab/hookbrief/internal/metrics"
)

// Defaults applied when the hook response parses but individual fields
// are malformed.
const (
	defaultHookType       = HookVisual
	defaultHookStrength   = StrengthMedium
	defaultHookConfidence = 0.7
)

// DetectHook sends every opening-window frame plus the transcript in one
// call and returns the single strongest hook. The hook is a judgment
// about the combined opening experience, so the frames are never sent
// individually.
//
// Never returns an error: a malformed response gets field-level defaults,
// a failed call gets confidence 0 and a diagnostic description naming the
// credential owner so operators can tell which pool was exhausted.
func (c *Client) DetectHook(ctx context.Context, windowFrames []mediaproc.FrameSample, transcript string) HookAnalysis {
	windowEnd := 0.0
	if n := len(windowFrames); n > 0 {
		windowEnd = windowFrames[n-1].Timestamp
	}

	prompt := fmt.Sprintf(`You are analyzing the opening %.1f seconds of a short-form video to find its hook: the single most attention-grabbing element that makes viewers keep watching.

The images are frames sampled at 0.5-second steps from the opening window, in order. The transcript of the full video:

%s

Identify the ONE strongest hook moment and respond as JSON with keys:
- timestamp: seconds into the video where the hook lands (number, 0 to %.1f)
- type: one of "visual", "verbal", "text", "movement", "sound", "mixed"
- strength: one of "low", "medium", "high", "extreme"
- description: what makes this hook effective
- keyElements: array of strings, the elements that contribute to it
- replicationTips: array of strings, actionable tips for recreating it
- visualCues: array of strings, visual elements that grab attention
- audioCues: array of strings, audio elements that enhance the hook
- confidence: number 0-1, how confident you are in this detection`,
		windowEnd, transcript, windowEnd)

	parts := make([]*genai.Part, 0, len(windowFrames)+1)
	for _, frame := range windowFrames {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: frame.Data},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, contents, nil)
	elapsed := time.Since(start)

	result := "success"
	if err != nil {
		result = classifyFailure(err).String()
	}
	recordInference("hook_detection", result, resp, elapsed).
		Metric("WindowFrames", float64(len(windowFrames)), metrics.UnitCount).
		Flush()

	if err != nil {
		kind := classifyFailure(err)
		log.Error().Err(err).Str("owner", c.owner).Str("kind", kind.String()).Msg("Hook detection call failed")
		return failedHookAnalysis(kind, c.owner)
	}
	if resp == nil {
		return failedHookAnalysis(failureUnknown, c.owner)
	}

	hook := parseHookAnalysis(resp.Text(), windowEnd)
	log.Info().
		Str("type", string(hook.Type)).
		Str("strength", string(hook.Strength)).
		Float64("confidence", hook.Confidence).
		Dur("duration", elapsed).
		Msg("Hook detected")
	return hook
}

// parseHookAnalysis coerces the model's reply, defaulting malformed
// fields independently so the result always has the full shape.
func parseHookAnalysis(raw string, windowEnd float64) HookAnalysis {
	obj, err := jsonutil.ParseObject(raw)
	if err != nil {
		log.Warn().Err(err).Msg("Unparseable hook detection response, applying defaults")
		return HookAnalysis{
			Type:            defaultHookType,
			Strength:        defaultHookStrength,
			Description:     "Hook analysis response was malformed",
			KeyElements:     []string{},
			ReplicationTips: []string{},
			Confidence:      defaultHookConfidence,
		}
	}

	hook := HookAnalysis{
		Timestamp:       jsonutil.Float(obj, "timestamp", 0),
		Type:            parseHookType(jsonutil.String(obj, "type", "")),
		Strength:        parseHookStrength(jsonutil.String(obj, "strength", "")),
		Description:     jsonutil.String(obj, "description", ""),
		KeyElements:     jsonutil.StringList(obj, "keyElements"),
		ReplicationTips: jsonutil.StringList(obj, "replicationTips"),
		VisualCues:      jsonutil.StringList(obj, "visualCues"),
		AudioCues:       jsonutil.StringList(obj, "audioCues"),
		Confidence:      jsonutil.Float(obj, "confidence", defaultHookConfidence),
	}
	if hook.Timestamp < 0 {
		hook.Timestamp = 0
	}
	if windowEnd > 0 && hook.Timestamp > windowEnd {
		hook.Timestamp = windowEnd
	}
	if hook.Confidence < 0 || hook.Confidence > 1 {
		hook.Confidence = defaultHookConfidence
	}
	return hook
}

// failedHookAnalysis carries a confidence of zero plus a diagnostic that
// distinguishes quota exhaustion from other failures and names the
// credential owner.
func failedHookAnalysis(kind failureKind, owner string) HookAnalysis {
	desc := fmt.Sprintf("Hook detection failed (%s)", kind)
	if kind == failureQuota {
		desc = fmt.Sprintf("Hook detection failed: quota exhausted for credential pool %q", owner)
	} else if owner != "" {
		desc = fmt.Sprintf("Hook detection failed (%s) using credential pool %q", kind, owner)
	}
	return HookAnalysis{
		Type:            defaultHookType,
		Strength:        defaultHookStrength,
		Description:     desc,
		KeyElements:     []string{},
		ReplicationTips: []string{},
		Confidence:      0,
	}
}

func parseHookType(s string) HookType {
	switch HookType(strings.ToLower(strings.TrimSpace(s))) {
	case HookVisual, HookVerbal, HookText, HookMovement, HookSound, HookMixed:
		return HookType(strings.ToLower(strings.TrimSpace(s)))
	default:
		return defaultHookType
	}
}

func parseHookStrength(s string) HookStrength {
	switch HookStrength(strings.ToLower(strings.TrimSpace(s))) {
	case StrengthLow, StrengthMedium, StrengthHigh, StrengthExtreme:
		return HookStrength(strings.ToLower(strings.TrimSpace(s)))
	default:
		return defaultHookStrength
	}
}
