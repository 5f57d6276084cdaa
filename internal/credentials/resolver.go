// Package credentials resolves per-owner Gemini API keys.
//
// The analysis pipeline is shared by several people, each bringing their own
// API key so quota exhaustion on one pool does not block the others. Stages
// look keys up through a Resolver by owner tag instead of reading ambient
// environment state, so the backing source (env var, SSM Parameter Store)
// is swappable and testable.
package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// Credential is one resolved API key and the owner tag it belongs to.
// Owner is carried along so degraded-stage diagnostics can name which
// key pool failed.
type Credential struct {
	Owner  string
	APIKey string
}

// Resolver maps a caller-supplied owner tag to a Credential.
// An empty owner tag selects the default key.
type Resolver interface {
	Resolve(ctx context.Context, owner string) (Credential, error)
}

// --- Environment resolver ---

// EnvResolver reads keys from environment variables:
// HOOKBRIEF_GEMINI_KEY_<OWNER> for a tagged owner, GEMINI_API_KEY as the
// default and fallback.
type EnvResolver struct{}

// Resolve implements Resolver.
func (EnvResolver) Resolve(_ context.Context, owner string) (Credential, error) {
	if owner != "" {
		envVar := "HOOKBRIEF_GEMINI_KEY_" + strings.ToUpper(owner)
		if key := os.Getenv(envVar); key != "" {
			log.Debug().Str("owner", owner).Str("envVar", envVar).Msg("Resolved API key from environment")
			return Credential{Owner: owner, APIKey: key}, nil
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return Credential{Owner: owner, APIKey: key}, nil
	}
	return Credential{}, fmt.Errorf("no API key in environment for owner %q", owner)
}

// --- SSM Parameter Store resolver ---

// defaultParamPrefix is the Parameter Store path prefix for per-owner keys.
// The key for owner "ruben" lives at <prefix>-ruben; the untagged default
// key lives at the bare prefix.
const defaultParamPrefix = "/hookbrief/prod/gemini-api-key"

// SSMResolver fetches keys from SSM Parameter Store with decryption and
// caches them for the life of the process. Safe for concurrent use.
type SSMResolver struct {
	client      *ssm.Client
	paramPrefix string

	mu    sync.Mutex
	cache map[string]string
}

// NewSSMResolver creates an SSMResolver. paramPrefix may be empty to use
// the default path; override via HOOKBRIEF_SSM_KEY_PREFIX in deployments
// that separate environments by path.
func NewSSMResolver(client *ssm.Client, paramPrefix string) *SSMResolver {
	if paramPrefix == "" {
		paramPrefix = os.Getenv("HOOKBRIEF_SSM_KEY_PREFIX")
	}
	if paramPrefix == "" {
		paramPrefix = defaultParamPrefix
	}
	return &SSMResolver{
		client:      client,
		paramPrefix: paramPrefix,
		cache:       make(map[string]string),
	}
}

// Resolve implements Resolver.
func (r *SSMResolver) Resolve(ctx context.Context, owner string) (Credential, error) {
	r.mu.Lock()
	if key, ok := r.cache[owner]; ok {
		r.mu.Unlock()
		return Credential{Owner: owner, APIKey: key}, nil
	}
	r.mu.Unlock()

	paramName := r.paramPrefix
	if owner != "" {
		paramName = r.paramPrefix + "-" + strings.ToLower(owner)
	}

	start := time.Now()
	result, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &paramName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return Credential{}, fmt.Errorf("read API key from SSM param %s: %w", paramName, err)
	}
	key := aws.ToString(result.Parameter.Value)
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(start)).Msg("API key loaded from SSM")

	r.mu.Lock()
	r.cache[owner] = key
	r.mu.Unlock()

	return Credential{Owner: owner, APIKey: key}, nil
}

// --- Chain resolver ---

// Chain tries each resolver in order and returns the first success.
// Typical wiring: NewChain(EnvResolver{}, NewSSMResolver(client, "")) so a
// local env var always wins over Parameter Store.
type Chain []Resolver

// NewChain builds a Chain from the given resolvers.
func NewChain(resolvers ...Resolver) Chain {
	return Chain(resolvers)
}

// Resolve implements Resolver.
func (c Chain) Resolve(ctx context.Context, owner string) (Credential, error) {
	var lastErr error
	for _, r := range c {
		cred, err := r.Resolve(ctx, owner)
		if err == nil {
			return cred, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no resolvers configured")
	}
	return Credential{}, fmt.Errorf("resolve credential for owner %q: %w", owner, lastErr)
}
