package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"google.golang.org/genai"
)

// fakeGenerator scripts inference responses per call.
type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	respond func(call int, contents []*genai.Content) (*genai.GenerateContentResponse, error)
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	call := f.calls
	f.calls++
	f.mu.Unlock()
	return f.respond(call, contents)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

// alwaysText returns the same reply for every call.
func alwaysText(text string) *fakeGenerator {
	return &fakeGenerator{respond: func(int, []*genai.Content) (*genai.GenerateContentResponse, error) {
		return textResponse(text), nil
	}}
}

// alwaysFail simulates a provider outage.
func alwaysFail(err error) *fakeGenerator {
	return &fakeGenerator{respond: func(int, []*genai.Content) (*genai.GenerateContentResponse, error) {
		return nil, err
	}}
}

func testClient(gen Generator) *Client {
	return NewClientWithGenerator(gen, "test-model", "sergio")
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want failureKind
	}{
		{"quota message", errors.New("googleapi: quota exceeded for project"), failureQuota},
		{"rate limit", errors.New("rate limit reached"), failureQuota},
		{"bad key", errors.New("API key not valid. Please pass a valid API key"), failureAuth},
		{"permission", errors.New("permission denied"), failureAuth},
		{"dns", errors.New("dial tcp: lookup host: no such host"), failureNetwork},
		{"timeout", errors.New("context deadline exceeded: timeout"), failureNetwork},
		{"other", errors.New("something odd"), failureUnknown},
		{"api 429", &genai.APIError{Code: 429, Message: "too many requests"}, failureQuota},
		{"api 403", &genai.APIError{Code: 403, Message: "forbidden"}, failureAuth},
		{"api 503", &genai.APIError{Code: 503, Message: "unavailable"}, failureNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyFailure(tt.err); got != tt.want {
				t.Errorf("classifyFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetModelNameEnvOverride(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "gemini-exp-override")
	if got := GetModelName(); got != "gemini-exp-override" {
		t.Errorf("GetModelName = %q, want override", got)
	}
	t.Setenv("GEMINI_MODEL", "")
	if got := GetModelName(); got != DefaultModelName {
		t.Errorf("GetModelName = %q, want %q", got, DefaultModelName)
	}
}
