package generator

import (
	"strings"
	"testing"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/mediaproc"
)

func sampleResult() *analyzer.AnalysisResult {
	return &analyzer.AnalysisResult{
		Transcription: "hola a todos",
		VisualAnalysis: []analyzer.FrameAnalysis{
			{Timestamp: 0, Description: "person waves at camera"},
			{Timestamp: 2, Description: "cut to product on table"},
			{Timestamp: 4, Description: "hands demonstrate the product"},
			{Timestamp: 6, Description: "reaction shot"},
			{Timestamp: 8, Description: "call to action overlay"},
			{Timestamp: 10, Description: "outro card"},
		},
		Context: analyzer.ContextAnalysis{
			VideoType:      "product-demo",
			Style:          "bright studio",
			Pacing:         "fast",
			Mood:           "upbeat",
			DominantColors: []string{"white", "red"},
			TargetAudience: "shoppers",
		},
		Timeline: []analyzer.TimelineSegment{
			{Timestamp: 0, Description: "greeting", Duration: 2},
			{Timestamp: 2, Description: "product reveal", Duration: 2},
			{Timestamp: 4, Description: "demonstration", Duration: 2},
			{Timestamp: 6, Description: "reaction", Duration: 2},
		},
		Metadata: mediaproc.VideoMetadata{Duration: 12.4, Width: 1080, Height: 1920, FrameRate: 30},
	}
}

func TestBuildEnrichedPrompt(t *testing.T) {
	got := BuildEnrichedPrompt("Recreate a snappy product demo.", sampleResult())

	for _, want := range []string{
		"Recreate a snappy product demo.",
		"SPANISH",
		"hola a todos",
		"product-demo",
		"white, red",
		"shoppers",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	// Key moments cap at five.
	if !strings.Contains(got, "5. [8.0s] call to action overlay") {
		t.Error("prompt missing fifth key moment")
	}
	if strings.Contains(got, "outro card") {
		t.Error("prompt includes sixth key moment past the cap")
	}

	// Timeline caps at three segments.
	if !strings.Contains(got, "3. demonstration") {
		t.Error("prompt missing third timeline segment")
	}
	if strings.Contains(got, "4. reaction") {
		t.Error("prompt includes fourth timeline segment past the cap")
	}
}

func TestOptionsFromResult(t *testing.T) {
	opts := OptionsFromResult(sampleResult())
	if opts.AspectRatio != "9:16" {
		t.Errorf("AspectRatio = %q, want 9:16 for portrait video", opts.AspectRatio)
	}
	if opts.Duration != 12 {
		t.Errorf("Duration = %d, want 12", opts.Duration)
	}
	if opts.Model != DefaultModel {
		t.Errorf("Model = %q, want default", opts.Model)
	}
}
