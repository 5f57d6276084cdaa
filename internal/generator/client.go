// Package generator submits creative briefs to the downstream
// text-to-video provider and polls generation jobs to completion.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Defaults for generation requests.
const (
	DefaultModel    = "sora-2"
	DefaultBaseURL  = "https://api.openai.com/v1/videos"
	DefaultInterval = 10 * time.Second
)

// Generation statuses reported by the provider.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Options tune one generation request. Zero values take defaults.
type Options struct {
	Model       string
	Duration    int    // seconds
	AspectRatio string // "16:9", "9:16", or "1:1"
}

// Video is the provider's view of one generation job.
type Video struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	VideoURL  string `json:"videoUrl,omitempty"`
	Prompt    string `json:"prompt"`
	CreatedAt int64  `json:"createdAt"`
	Error     string `json:"error,omitempty"`
}

// Client talks to the generation provider's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a Client. An empty baseURL uses the provider default.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// providerVideo mirrors the provider's wire format.
type providerVideo struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Prompt    string `json:"prompt"`
	CreatedAt int64  `json:"created_at"`
	Video     *struct {
		URL string `json:"url"`
	} `json:"video,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p providerVideo) toVideo() Video {
	v := Video{
		ID:        p.ID,
		Status:    p.Status,
		Prompt:    p.Prompt,
		CreatedAt: p.CreatedAt,
	}
	if p.Video != nil {
		v.VideoURL = p.Video.URL
	}
	if p.Error != nil {
		v.Error = p.Error.Message
	}
	return v
}

// Submit starts a generation and returns the provider's job ID.
func (c *Client) Submit(ctx context.Context, prompt string, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	size := "1280x720"
	if opts.AspectRatio == "9:16" {
		size = "720x1280"
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"size":   size,
	})
	if err != nil {
		return "", fmt.Errorf("encode generation request: %w", err)
	}

	var created providerVideo
	if err := c.do(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body), &created); err != nil {
		return "", fmt.Errorf("submit generation: %w", err)
	}

	log.Info().
		Str("generationId", created.ID).
		Str("model", model).
		Str("size", size).
		Int("prompt_length", len(prompt)).
		Msg("Generation submitted")
	return created.ID, nil
}

// Status fetches the current state of a generation job.
func (c *Client) Status(ctx context.Context, id string) (Video, error) {
	var pv providerVideo
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/"+id, nil, &pv); err != nil {
		return Video{}, fmt.Errorf("fetch generation %s: %w", id, err)
	}
	return pv.toVideo(), nil
}

// Await polls a job until it completes, fails, or the context expires.
func (c *Client) Await(ctx context.Context, id string, interval time.Duration) (Video, error) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		video, err := c.Status(ctx, id)
		if err != nil {
			return Video{}, err
		}
		switch video.Status {
		case StatusCompleted:
			log.Info().Str("generationId", id).Str("videoUrl", video.VideoURL).Msg("Generation complete")
			return video, nil
		case StatusFailed:
			log.Warn().Str("generationId", id).Str("error", video.Error).Msg("Generation failed")
			return video, nil
		}

		log.Debug().Str("generationId", id).Str("status", video.Status).Msg("Generation still running")
		select {
		case <-ctx.Done():
			return Video{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned %d: %s", resp.StatusCode, payload)
	}
	return json.Unmarshal(payload, out)
}
