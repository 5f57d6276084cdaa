package analyzer

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/viralab/hookbrief/internal/credentials"
	"github.com/viralab/hookbrief/internal/metrics"
)

// DefaultModelName is used when GEMINI_MODEL is not set.
const DefaultModelName = "gemini-3-flash-preview"

// Generator is the slice of the Gemini API the analysis stages call.
// *genai.Models satisfies it; tests substitute fakes.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues the inference calls for one credential owner.
type Client struct {
	gen   Generator
	model string
	owner string
}

// NewClient resolves a credential for owner and builds a Gemini-backed
// client. The owner tag selects which credential pool is used and is
// carried into diagnostics so operators can see which pool a quota
// failure burned.
func NewClient(ctx context.Context, resolver credentials.Resolver, owner string) (*Client, error) {
	cred, err := resolver.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cred.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	model := GetModelName()
	log.Debug().Str("model", model).Str("owner", cred.Owner).Msg("Inference client ready")
	return &Client{gen: gc.Models, model: model, owner: cred.Owner}, nil
}

// NewClientWithGenerator wires an explicit Generator, bypassing credential
// resolution. Used by tests and by callers that share one genai client.
func NewClientWithGenerator(gen Generator, model, owner string) *Client {
	if model == "" {
		model = GetModelName()
	}
	return &Client{gen: gen, model: model, owner: owner}
}

// GetModelName returns the Gemini model to use, from GEMINI_MODEL or the
// default.
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}

// Owner returns the credential owner tag this client was built with.
func (c *Client) Owner() string { return c.owner }

// recordInference starts a metrics record for one inference call, with
// token usage when the response carries it. Callers may chain further
// metrics before Flush.
func recordInference(operation, result string, resp *genai.GenerateContentResponse, elapsed time.Duration) *metrics.Recorder {
	m := metrics.New("Hookbrief").
		Dimension("Operation", operation).
		Dimension("Result", result).
		Metric("InferenceMs", float64(elapsed.Milliseconds()), metrics.UnitMilliseconds).
		Count("InferenceCalls")
	if resp != nil && resp.UsageMetadata != nil {
		m.Metric("InputTokens", float64(resp.UsageMetadata.PromptTokenCount), metrics.UnitCount).
			Metric("OutputTokens", float64(resp.UsageMetadata.CandidatesTokenCount), metrics.UnitCount)
	}
	return m
}

// failureKind buckets inference-call failures so degraded defaults can
// carry a useful diagnostic.
type failureKind int

const (
	failureUnknown failureKind = iota
	failureQuota
	failureAuth
	failureNetwork
)

func (k failureKind) String() string {
	switch k {
	case failureQuota:
		return "quota"
	case failureAuth:
		return "auth"
	case failureNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// classifyFailure buckets an inference error by API status code when
// available, falling back to message patterns.
func classifyFailure(err error) failureKind {
	if err == nil {
		return failureUnknown
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return failureAuth
		case 429:
			return failureQuota
		case 500, 502, 503, 504:
			return failureNetwork
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "rate limit"):
		return failureQuota
	case strings.Contains(msg, "api key not valid") ||
		strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "api_key_invalid") ||
		strings.Contains(msg, "permission denied"):
		return failureAuth
	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "dial") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "unreachable"):
		return failureNetwork
	default:
		return failureUnknown
	}
}
