package analyzer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/viralab/hookbrief/internal/metrics"
)

// Sentinel transcription values. Downstream stages consume the
// transcription as plain context text, so failures substitute a
// recognizable marker instead of an error.
const (
	TranscriptionFailed  = "[Transcription failed]"
	TranscriptionNoAudio = "[No audio]"
)

// DefaultLanguage is the language hint passed to transcription. Most of
// the analyzed catalogue is Spanish-language content.
const DefaultLanguage = "es"

// Transcribe converts the audio file at audioPath to plain text. It never
// returns an error: any failure, from an unreadable file to a quota
// exhaustion, degrades to the TranscriptionFailed sentinel.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) string {
	if language == "" {
		language = DefaultLanguage
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Error().Err(err).Str("path", audioPath).Msg("Failed to read audio for transcription")
		return TranscriptionFailed
	}

	prompt := fmt.Sprintf(
		"Transcribe this audio exactly as spoken. The language is likely %q. "+
			"Respond with only the transcript text, no commentary and no formatting.",
		language,
	)
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "audio/mp3", Data: audio}},
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
	recordInference("transcription", result, resp, elapsed).
		Metric("AudioBytes", float64(len(audio)), metrics.UnitBytes).
		Flush()

	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Str("owner", c.owner).Msg("Transcription call failed")
		return TranscriptionFailed
	}
	if resp == nil {
		log.Warn().Msg("Transcription returned empty response")
		return TranscriptionFailed
	}

	text := resp.Text()
	log.Info().
		Int("transcript_length", len(text)).
		Dur("duration", elapsed).
		Msg("Audio transcribed")
	return text
}
