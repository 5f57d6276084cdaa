package generator

import (
	"fmt"
	"strings"

	"github.com/viralab/hookbrief/internal/analyzer"
)

// Enrichment limits: generation prompts degrade past a few thousand
// tokens, so only the strongest context is included.
const (
	maxKeyMoments       = 5
	maxTimelineSegments = 3
)

// BuildEnrichedPrompt augments the caller's main prompt with the
// analysis context and the Spanish-language requirement of the target
// catalogue.
func BuildEnrichedPrompt(mainPrompt string, result *analyzer.AnalysisResult) string {
	var keyMoments strings.Builder
	for i, frame := range result.VisualAnalysis {
		if i >= maxKeyMoments {
			break
		}
		fmt.Fprintf(&keyMoments, "%d. [%.1fs] %s\n", i+1, frame.Timestamp, frame.Description)
	}

	var timeline strings.Builder
	for i, seg := range result.Timeline {
		if i >= maxTimelineSegments {
			break
		}
		fmt.Fprintf(&timeline, "%d. %s\n", i+1, seg.Description)
	}

	return fmt.Sprintf(`%s

IMPORTANT LANGUAGE REQUIREMENT:
- All spoken dialogue, narration, and on-screen text MUST be in SPANISH (español).
- Any text overlays, captions, or written content should be in Spanish.
- Character speech and voice-overs must be in Spanish.

CONTEXT FROM ORIGINAL VIDEO:
Audio Transcription: %q

Visual Style & Mood:
- Video Type: %s
- Style: %s
- Pacing: %s
- Mood: %s
- Dominant Colors: %s

Key Visual Moments:
%s
Narrative Flow:
%s
Target Audience: %s

CREATE A VIDEO that captures these elements while ensuring ALL TEXT AND DIALOGUE IS IN SPANISH.`,
		mainPrompt,
		result.Transcription,
		result.Context.VideoType,
		result.Context.Style,
		result.Context.Pacing,
		result.Context.Mood,
		strings.Join(result.Context.DominantColors, ", "),
		keyMoments.String(),
		timeline.String(),
		result.Context.TargetAudience,
	)
}

// OptionsFromResult derives technical generation parameters from the
// analyzed video's metadata.
func OptionsFromResult(result *analyzer.AnalysisResult) Options {
	return Options{
		Model:       DefaultModel,
		Duration:    int(result.Metadata.Duration + 0.5),
		AspectRatio: result.Metadata.AspectRatio(),
	}
}
