package analyzer

import "fmt"

// Thresholds for the frame-to-frame change heuristics.
const (
	sceneObjectThreshold = 2
	sceneColorThreshold  = 2
	majorObjectThreshold = 3
	paceActionThreshold  = 2
)

// AnalyzeTimingPatterns walks consecutive frame pairs in ascending
// timestamp order and flags scene and pace discontinuities. Pure local
// computation; no inference call.
//
// A pair emits a scene pattern when more than two objects appeared, the
// composition changed, or more than two colors appeared. It emits a pace
// pattern, independently, when the action count jumps by more than two.
func AnalyzeTimingPatterns(frames []FrameAnalysis) []TimingPattern {
	patterns := []TimingPattern{}

	for i := 0; i+1 < len(frames); i++ {
		prev, next := frames[i], frames[i+1]

		objectsChanged := countNew(prev.Objects, next.Objects)
		colorsChanged := countNew(prev.Colors, next.Colors)
		compositionChanged := prev.Composition != next.Composition

		if objectsChanged > sceneObjectThreshold || compositionChanged || colorsChanged > sceneColorThreshold {
			significance := SignificanceMinor
			if objectsChanged > majorObjectThreshold {
				significance = SignificanceMajor
			} else if compositionChanged {
				significance = SignificanceModerate
			}
			patterns = append(patterns, TimingPattern{
				TimeRange:    [2]float64{prev.Timestamp, next.Timestamp},
				ChangeType:   ChangeScene,
				Significance: significance,
				Description: fmt.Sprintf("Scene change: %d new objects, %d new colors, composition %s",
					objectsChanged, colorsChanged, describeCompositionChange(compositionChanged)),
				Impact: "Scene changes reset viewer attention and mark a retention checkpoint",
			})
		}

		actionDelta := len(next.Actions) - len(prev.Actions)
		if actionDelta < 0 {
			actionDelta = -actionDelta
		}
		if actionDelta > paceActionThreshold {
			patterns = append(patterns, TimingPattern{
				TimeRange:    [2]float64{prev.Timestamp, next.Timestamp},
				ChangeType:   ChangePace,
				Significance: SignificanceModerate,
				Description: fmt.Sprintf("Pace shift: action count moved from %d to %d",
					len(prev.Actions), len(next.Actions)),
				Impact: "Abrupt pacing shifts correlate with watch-time drop-off or spike",
			})
		}
	}

	return patterns
}

// countNew returns how many entries of next are absent from prev.
func countNew(prev, next []string) int {
	seen := make(map[string]struct{}, len(prev))
	for _, v := range prev {
		seen[v] = struct{}{}
	}
	count := 0
	for _, v := range next {
		if _, ok := seen[v]; !ok {
			count++
		}
	}
	return count
}

func describeCompositionChange(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}
