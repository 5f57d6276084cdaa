package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/viralab/hookbrief/internal/analyzer"
	"github.com/viralab/hookbrief/internal/mediaproc"
)

func completedEvent() analyzer.RunEvent {
	return analyzer.RunEvent{
		RunID:     "run-1",
		SourceRef: "https://example.com/v/1",
		Status:    "completed",
		Result: &analyzer.AnalysisResult{
			Context:      analyzer.ContextAnalysis{VideoType: "dance", Pacing: "fast", Mood: "fun"},
			HookAnalysis: analyzer.HookAnalysis{Type: analyzer.HookMovement, Strength: analyzer.StrengthHigh, Confidence: 0.8},
			Metadata:     mediaproc.VideoMetadata{Duration: 14.2},
		},
	}
}

func TestTelegramPublishSendsSummary(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer srv.Close()

	tg := NewTelegram("bot-token", "chat-42", srv.URL)
	tg.Publish(context.Background(), completedEvent())

	if gotPath != "/botbot-token/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["chat_id"] != "chat-42" {
		t.Errorf("chat_id = %q", gotBody["chat_id"])
	}
	for _, want := range []string{"run-1", "dance", "movement", "14.2"} {
		if !strings.Contains(gotBody["text"], want) {
			t.Errorf("message %q missing %q", gotBody["text"], want)
		}
	}
}

func TestTelegramFailureMessage(t *testing.T) {
	event := analyzer.RunEvent{
		RunID:     "run-2",
		SourceRef: "https://example.com/v/2",
		Status:    "failed",
		Err:       errors.New("video unavailable"),
	}
	msg := formatRunMessage(event)
	if !strings.Contains(msg, "failed") || !strings.Contains(msg, "video unavailable") {
		t.Errorf("message = %q, want failure and cause", msg)
	}
}

func TestTelegramUnconfiguredIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tg := NewTelegram("", "", srv.URL)
	tg.SendMessage(context.Background(), "hello")
	if called {
		t.Error("unconfigured notifier must not call the API")
	}
}

func TestTelegramSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	// Must not panic or propagate anything.
	tg := NewTelegram("t", "c", srv.URL)
	tg.SendMessage(context.Background(), "hello")
}
