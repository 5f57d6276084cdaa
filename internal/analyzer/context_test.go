package analyzer

import (
	"context"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/viralab/hookbrief/internal/mediaproc"
)

var testMeta = mediaproc.VideoMetadata{Duration: 15, Width: 1080, Height: 1920, FrameRate: 30, HasAudio: true}

func TestAggregateContextParsesResponse(t *testing.T) {
	gen := alwaysText(`{
		"videoType": "tutorial",
		"style": "handheld vlog",
		"pacing": "fast",
		"hooks": ["bold claim"],
		"dominantColors": ["teal", "orange"],
		"mood": "energetic",
		"targetAudience": "home cooks"
	}`)
	client := testClient(gen)

	got := client.AggregateContext(context.Background(), "transcript", nil, testMeta)
	if got.VideoType != "tutorial" {
		t.Errorf("VideoType = %q, want tutorial", got.VideoType)
	}
	if got.Pacing != "fast" {
		t.Errorf("Pacing = %q, want fast", got.Pacing)
	}
	if len(got.DominantColors) != 2 {
		t.Errorf("DominantColors = %v, want 2 entries", got.DominantColors)
	}
}

func TestAggregateContextMissingFieldsGetDefaults(t *testing.T) {
	client := testClient(alwaysText(`{"style": "minimal"}`))
	got := client.AggregateContext(context.Background(), "t", nil, testMeta)

	if got.VideoType != "unknown" {
		t.Errorf("VideoType = %q, want unknown", got.VideoType)
	}
	if got.Pacing != "medium" {
		t.Errorf("Pacing = %q, want medium", got.Pacing)
	}
	if got.Mood != "neutral" {
		t.Errorf("Mood = %q, want neutral", got.Mood)
	}
	if got.TargetAudience != "general" {
		t.Errorf("TargetAudience = %q, want general", got.TargetAudience)
	}
	if got.Hooks == nil || got.DominantColors == nil {
		t.Error("list fields must be non-nil empty, not nil")
	}
	if got.Style != "minimal" {
		t.Errorf("Style = %q, want the model's value kept", got.Style)
	}
}

func TestAggregateContextFailureIsDistinguishable(t *testing.T) {
	client := testClient(alwaysFail(&genai.APIError{Code: 429, Message: "resource exhausted"}))
	got := client.AggregateContext(context.Background(), "t", nil, testMeta)

	// A call failure must read differently from "the model didn't know".
	if got.VideoType == "unknown" {
		t.Errorf("VideoType = %q, indistinguishable from missing-field default", got.VideoType)
	}
	if !strings.Contains(got.VideoType, "quota") {
		t.Errorf("VideoType = %q, want the failure kind visible", got.VideoType)
	}
	if got.Pacing != "medium" || got.Mood != "neutral" {
		t.Errorf("failure defaults = %q/%q, want medium/neutral", got.Pacing, got.Mood)
	}
}

func TestAggregateContextPromptIncludesFrames(t *testing.T) {
	var prompt string
	gen := &fakeGenerator{respond: func(call int, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
		prompt = contents[0].Parts[0].Text
		return textResponse(`{}`), nil
	}}
	client := testClient(gen)

	frames := []FrameAnalysis{
		{Timestamp: 0, Description: "a chef plates pasta", Objects: []string{"chef", "pasta"}},
		{Timestamp: 2, Description: "close-up of sauce", Objects: []string{"sauce"}},
	}
	client.AggregateContext(context.Background(), "buon appetito", frames, testMeta)

	for _, want := range []string{"buon appetito", "a chef plates pasta", "close-up of sauce", "chef, pasta"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
