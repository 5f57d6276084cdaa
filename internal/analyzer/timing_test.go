package analyzer

import "testing"

func frameAt(ts float64, objects, colors []string, composition string, actions []string) FrameAnalysis {
	return FrameAnalysis{
		Timestamp:   ts,
		Description: "frame",
		Objects:     objects,
		Colors:      colors,
		Composition: composition,
		Actions:     actions,
	}
}

func TestTimingPatternsSceneMajorOnObjectChurn(t *testing.T) {
	// Four new objects, identical composition and colors: exactly one
	// scene pattern, major significance.
	frames := []FrameAnalysis{
		frameAt(0, []string{"a", "b"}, []string{"red"}, "wide shot", []string{"walk"}),
		frameAt(2, []string{"c", "d", "e", "f"}, []string{"red"}, "wide shot", []string{"walk"}),
	}

	patterns := AnalyzeTimingPatterns(frames)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns %+v, want 1", len(patterns), patterns)
	}
	p := patterns[0]
	if p.ChangeType != ChangeScene {
		t.Errorf("ChangeType = %q, want scene", p.ChangeType)
	}
	if p.Significance != SignificanceMajor {
		t.Errorf("Significance = %q, want major", p.Significance)
	}
	if p.TimeRange != [2]float64{0, 2} {
		t.Errorf("TimeRange = %v, want [0 2]", p.TimeRange)
	}
}

func TestTimingPatternsSceneModerateOnComposition(t *testing.T) {
	frames := []FrameAnalysis{
		frameAt(0, []string{"a"}, []string{"red"}, "wide shot", nil),
		frameAt(2, []string{"a"}, []string{"red"}, "close-up", nil),
	}

	patterns := AnalyzeTimingPatterns(frames)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	if patterns[0].Significance != SignificanceModerate {
		t.Errorf("Significance = %q, want moderate", patterns[0].Significance)
	}
}

func TestTimingPatternsSceneMinorOnColors(t *testing.T) {
	frames := []FrameAnalysis{
		frameAt(0, []string{"a"}, []string{"red", "blue"}, "wide shot", nil),
		frameAt(2, []string{"a"}, []string{"green", "yellow", "purple"}, "wide shot", nil),
	}

	patterns := AnalyzeTimingPatterns(frames)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	if patterns[0].Significance != SignificanceMinor {
		t.Errorf("Significance = %q, want minor", patterns[0].Significance)
	}
}

func TestTimingPatternsPaceIndependentOfScene(t *testing.T) {
	// Action count 1 → 5 plus a composition change: the pair emits both
	// a scene pattern and a moderate pace pattern.
	frames := []FrameAnalysis{
		frameAt(0, []string{"a"}, []string{"red"}, "wide shot", []string{"walk"}),
		frameAt(2, []string{"a"}, []string{"red"}, "close-up", []string{"run", "jump", "spin", "wave", "fall"}),
	}

	patterns := AnalyzeTimingPatterns(frames)
	if len(patterns) != 2 {
		t.Fatalf("got %d patterns %+v, want 2", len(patterns), patterns)
	}

	var scene, pace *TimingPattern
	for i := range patterns {
		switch patterns[i].ChangeType {
		case ChangeScene:
			scene = &patterns[i]
		case ChangePace:
			pace = &patterns[i]
		}
	}
	if scene == nil || pace == nil {
		t.Fatalf("want one scene and one pace pattern, got %+v", patterns)
	}
	if pace.Significance != SignificanceModerate {
		t.Errorf("pace Significance = %q, want moderate", pace.Significance)
	}
}

func TestTimingPatternsPaceWithoutScene(t *testing.T) {
	frames := []FrameAnalysis{
		frameAt(0, []string{"a"}, []string{"red"}, "wide shot", []string{"walk"}),
		frameAt(2, []string{"a"}, []string{"red"}, "wide shot", []string{"run", "jump", "spin", "wave", "fall"}),
	}

	patterns := AnalyzeTimingPatterns(frames)
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns %+v, want 1", len(patterns), patterns)
	}
	if patterns[0].ChangeType != ChangePace {
		t.Errorf("ChangeType = %q, want pace", patterns[0].ChangeType)
	}
}

func TestTimingPatternsQuietPairsEmitNothing(t *testing.T) {
	frames := []FrameAnalysis{
		frameAt(0, []string{"a", "b"}, []string{"red"}, "wide shot", []string{"walk"}),
		frameAt(2, []string{"a", "b", "c"}, []string{"red", "blue"}, "wide shot", []string{"walk", "talk"}),
	}

	if patterns := AnalyzeTimingPatterns(frames); len(patterns) != 0 {
		t.Errorf("got %d patterns %+v, want none", len(patterns), patterns)
	}
}

func TestTimingPatternsEmptyAndSingleFrame(t *testing.T) {
	if got := AnalyzeTimingPatterns(nil); len(got) != 0 {
		t.Errorf("nil input: got %d patterns, want 0", len(got))
	}
	single := []FrameAnalysis{frameAt(0, []string{"a"}, nil, "wide", nil)}
	if got := AnalyzeTimingPatterns(single); len(got) != 0 {
		t.Errorf("single frame: got %d patterns, want 0", len(got))
	}
}
