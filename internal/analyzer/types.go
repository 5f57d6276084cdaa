// Package analyzer drives the multi-stage analysis of a short-form video:
// speech transcription, per-frame visual description, hook detection over
// the opening window, whole-video context classification, and local
// timing-pattern detection, aggregated into a single AnalysisResult.
package analyzer

import "github.com/viralab/hookbrief/internal/mediaproc"

// FrameAnalysis is the structured description of one uniform-interval frame.
type FrameAnalysis struct {
	Timestamp   float64  `json:"timestamp"`
	Description string   `json:"description"`
	Objects     []string `json:"objects"`
	Colors      []string `json:"colors"`
	Composition string   `json:"composition"`
	Actions     []string `json:"actions"`
}

// HookType categorizes what kind of element grabs attention in the
// opening window.
type HookType string

const (
	HookVisual   HookType = "visual"
	HookVerbal   HookType = "verbal"
	HookText     HookType = "text"
	HookMovement HookType = "movement"
	HookSound    HookType = "sound"
	HookMixed    HookType = "mixed"
)

// HookStrength rates how strong the opening hook is.
type HookStrength string

const (
	StrengthLow     HookStrength = "low"
	StrengthMedium  HookStrength = "medium"
	StrengthHigh    HookStrength = "high"
	StrengthExtreme HookStrength = "extreme"
)

// HookAnalysis is the single strongest attention-grabbing moment found in
// the opening window. Exactly one per run.
type HookAnalysis struct {
	Timestamp       float64      `json:"timestamp"`
	Type            HookType     `json:"type"`
	Strength        HookStrength `json:"strength"`
	Description     string       `json:"description"`
	KeyElements     []string     `json:"keyElements"`
	ReplicationTips []string     `json:"replicationTips"`
	VisualCues      []string     `json:"visualCues,omitempty"`
	AudioCues       []string     `json:"audioCues,omitempty"`
	Confidence      float64      `json:"confidence"`
}

// ContextAnalysis is the coarse whole-video classification, distinct from
// HookAnalysis: the hook is about the opening mechanism, the context is
// about the video's overall character.
type ContextAnalysis struct {
	VideoType      string   `json:"videoType"`
	Style          string   `json:"style"`
	Pacing         string   `json:"pacing"`
	Hooks          []string `json:"hooks"`
	DominantColors []string `json:"dominantColors"`
	Mood           string   `json:"mood"`
	TargetAudience string   `json:"targetAudience"`
}

// ChangeType categorizes a detected discontinuity between frames.
type ChangeType string

const (
	ChangeScene      ChangeType = "scene"
	ChangeAudio      ChangeType = "audio"
	ChangePace       ChangeType = "pace"
	ChangeText       ChangeType = "text"
	ChangeTransition ChangeType = "transition"
)

// Significance rates how pronounced a timing pattern is.
type Significance string

const (
	SignificanceMinor    Significance = "minor"
	SignificanceModerate Significance = "moderate"
	SignificanceMajor    Significance = "major"
)

// TimingPattern flags a discontinuity between two consecutive frames.
// Derived purely from FrameAnalysis pairs, no inference call involved.
type TimingPattern struct {
	TimeRange    [2]float64   `json:"timeRange"`
	ChangeType   ChangeType   `json:"changeType"`
	Significance Significance `json:"significance"`
	Description  string       `json:"description"`
	Impact       string       `json:"impact,omitempty"`
}

// TimelineSegment is one contiguous slice of the reconstructed timeline.
type TimelineSegment struct {
	Timestamp   float64 `json:"timestamp"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
}

// AnalysisResult is the aggregate output of one pipeline run. All fields
// are always populated: degraded stages substitute documented defaults
// rather than leaving holes.
type AnalysisResult struct {
	RunID          string                  `json:"runId"`
	Transcription  string                  `json:"transcription"`
	VisualAnalysis []FrameAnalysis         `json:"visualAnalysis"`
	Context        ContextAnalysis         `json:"context"`
	HookAnalysis   HookAnalysis            `json:"hookAnalysis"`
	TimingPatterns []TimingPattern         `json:"timingPatterns"`
	Timeline       []TimelineSegment       `json:"timeline"`
	Metadata       mediaproc.VideoMetadata `json:"metadata"`
}
