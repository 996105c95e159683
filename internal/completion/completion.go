package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNoChoices is returned when the service answers without any candidate.
var ErrNoChoices = errors.New("completion: response contained no choices")

// ErrMissingAPIKey is returned when a networked backend has no credential.
var ErrMissingAPIKey = errors.New("completion: missing API key")

// Request is one completion call.
type Request struct {
	Model            string
	Prompt           string
	MaxTokens        int
	Temperature      float64
	TopP             float64
	PresencePenalty  float64
	FrequencyPenalty float64
	Stop             []string
}

// Completer is a black-box text-completion service.
type Completer interface {
	Name() string
	// Complete returns the generated text of the first candidate.
	Complete(ctx context.Context, req Request) (string, error)
}

// Middleware wraps a Completer with additional behavior.
type Middleware func(next Completer) Completer

// Chain applies middlewares so the first one listed is the outermost.
func Chain(c Completer, mws ...Middleware) Completer {
	for i := len(mws) - 1; i >= 0; i-- {
		c = mws[i](c)
	}
	return c
}

// Supported provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

// Options selects and configures a backend.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string

	// HTTPClient overrides the client used by the OpenAI backend.
	HTTPClient *http.Client
}

// New returns the Completer for opts.Provider.
func New(ctx context.Context, opts Options) (Completer, error) {
	switch opts.Provider {
	case ProviderOpenAI, "":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, ProviderOpenAI)
		}
		return NewOpenAIClient(opts.BaseURL, opts.APIKey, opts.HTTPClient), nil
	case ProviderGemini:
		if opts.APIKey == "" {
			return nil, fmt.Errorf("%w for provider %q", ErrMissingAPIKey, ProviderGemini)
		}
		return NewGeminiClient(ctx, opts.APIKey)
	case ProviderFake:
		return NewFakeClient(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q: supported providers are %q, %q and %q",
			opts.Provider, ProviderOpenAI, ProviderGemini, ProviderFake)
	}
}
