package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/xhad/ezodus/internal/types"
	"google.golang.org/api/option"
)

const DefaultTextModel = "gemini-2.0-flash"

// ChatConfig represents the configuration for the text generation model.
type ChatConfig struct {
	ClientConfig
	Model string
	// Temperature and MaxTokens keep the provider defaults when zero.
	Temperature float64
	MaxTokens   int
}

// Gemini is the googleai provider with a per-call deadline and a check
// that the model actually produced text.
type Gemini struct {
	*googleai.GoogleAI
	timeout time.Duration
}

var _ llms.Model = (*Gemini)(nil)

// NewWithConfig creates a Gemini model that authenticates with auth.
func NewWithConfig(ctx context.Context, config ChatConfig, auth types.Authorizer) (*Gemini, error) {
	if auth == nil {
		return nil, ErrNoCredentials
	}
	if config.Model == "" {
		config.Model = DefaultTextModel
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	opts := []googleai.Option{
		googleai.WithRest(),
		googleai.WithHTTPClient(newHTTPClient(config.ClientConfig, auth)),
		googleai.WithDefaultModel(config.Model),
		googleai.WithDefaultCandidateCount(1),
	}
	if config.Temperature > 0 {
		opts = append(opts, googleai.WithDefaultTemperature(config.Temperature))
	}
	if config.MaxTokens > 0 {
		opts = append(opts, googleai.WithDefaultMaxTokens(config.MaxTokens))
	}
	if config.BaseURL != "" {
		opts = append(opts, withEndpoint(config.BaseURL))
	}
	opts = append(opts, credentialOptions(auth)...)

	provider, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create googleai client: %w", err)
	}
	return &Gemini{GoogleAI: provider, timeout: config.Timeout}, nil
}

func withEndpoint(endpoint string) googleai.Option {
	return func(o *googleai.Options) {
		o.ClientOptions = append(o.ClientOptions, option.WithEndpoint(endpoint))
	}
}

// credentialOptions hands the provider the same identity the transport
// uses. REST calls go through the transport; the options cover the
// provider's gRPC side clients.
func credentialOptions(auth types.Authorizer) []googleai.Option {
	switch a := auth.(type) {
	case APIKeyAuthorizer:
		return []googleai.Option{googleai.WithAPIKey(a.Key)}
	case *ServiceAccountAuthorizer:
		return []googleai.Option{googleai.WithCredentialsJSON(a.credentials)}
	default:
		return nil
	}
}

// GenerateContent sends messages to the model. Provider failures and
// empty answers come back as *UpstreamError.
func (g *Gemini) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.GoogleAI.GenerateContent(ctx, messages, options...)
	if err != nil {
		return nil, AsUpstream("gemini", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &UpstreamError{Service: "gemini", Message: "no candidates returned"}
	}
	if strings.TrimSpace(resp.Choices[0].Content) == "" {
		return nil, &UpstreamError{Service: "gemini", Message: "generated text is empty"}
	}
	return resp, nil
}

// Call generates a single response from a single prompt.
func (g *Gemini) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g, prompt, options...)
}
