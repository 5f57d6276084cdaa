// Package notify delivers best-effort run notifications. Nothing here
// is on the critical path: failures are logged and swallowed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/viralab/hookbrief/internal/analyzer"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends run summaries to a chat via the Bot API.
type Telegram struct {
	httpClient *http.Client
	baseURL    string
	token      string
	chatID     string
}

// NewTelegram builds a notifier. An empty baseURL uses the public Bot
// API endpoint.
func NewTelegram(token, chatID, baseURL string) *Telegram {
	if baseURL == "" {
		baseURL = telegramAPIBase
	}
	return &Telegram{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
		chatID:     chatID,
	}
}

var _ analyzer.Publisher = (*Telegram)(nil)

// Publish sends a run summary message. Best effort: errors are logged,
// never returned.
func (t *Telegram) Publish(ctx context.Context, event analyzer.RunEvent) {
	t.SendMessage(ctx, formatRunMessage(event))
}

// SendMessage delivers one message to the configured chat.
func (t *Telegram) SendMessage(ctx context.Context, text string) {
	if t.token == "" || t.chatID == "" {
		log.Debug().Msg("Telegram notifier not configured, skipping message")
		return
	}

	body, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode Telegram message")
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("Failed to build Telegram request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to send Telegram message")
		return
	}
	defer resp.Body.Close()

	var reply struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil || !reply.OK {
		log.Warn().Err(err).Str("description", reply.Description).Msg("Telegram rejected message")
		return
	}
	log.Debug().Int("length", len(text)).Msg("Telegram message sent")
}

// formatRunMessage renders a compact human-readable run summary.
func formatRunMessage(event analyzer.RunEvent) string {
	if event.Status != "completed" || event.Result == nil {
		errText := ""
		if event.Err != nil {
			errText = ": " + event.Err.Error()
		}
		return fmt.Sprintf("❌ Analysis %s failed%s\nSource: %s", event.RunID, errText, event.SourceRef)
	}

	r := event.Result
	return fmt.Sprintf(
		"✅ Analysis %s complete\nSource: %s\nDuration: %.1fs\nType: %s | Pacing: %s | Mood: %s\nHook: %s (%s, confidence %.2f)",
		event.RunID,
		event.SourceRef,
		r.Metadata.Duration,
		r.Context.VideoType,
		r.Context.Pacing,
		r.Context.Mood,
		r.HookAnalysis.Type,
		r.HookAnalysis.Strength,
		r.HookAnalysis.Confidence,
	)
}
