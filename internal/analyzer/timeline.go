package analyzer

// BuildTimeline derives contiguous, non-overlapping timeline segments
// from the ordered frame analyses. Each segment runs from its frame's
// timestamp to the next frame's timestamp; the last segment runs to the
// end of the video, so the durations always sum to totalDuration.
func BuildTimeline(frames []FrameAnalysis, totalDuration float64) []TimelineSegment {
	segments := make([]TimelineSegment, 0, len(frames))
	for i, frame := range frames {
		duration := totalDuration - frame.Timestamp
		if i+1 < len(frames) {
			duration = frames[i+1].Timestamp - frame.Timestamp
		}
		segments = append(segments, TimelineSegment{
			Timestamp:   frame.Timestamp,
			Description: frame.Description,
			Duration:    duration,
		})
	}
	return segments
}
