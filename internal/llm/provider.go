package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface the core needs to call a chat model. It
// mirrors the CreateChatCompletion method so that any OpenAI-compatible or
// local backend can be adapted, including test fakes.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Availability describes whether the language service can take calls.
type Availability int

const (
	Unavailable Availability = iota
	// Downloadable means the backend exists but reported no ready models.
	Downloadable
	Available
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Downloadable:
		return "downloadable"
	default:
		return "unavailable"
	}
}

// Prober is an optional capability for querying service availability before
// committing to the primary path. Callers detect it with a type assertion.
type Prober interface {
	Availability(ctx context.Context) Availability
}

// ErrUnavailable is returned by the null client; the two-tier components
// treat it like any other collaborator failure and fall back.
var ErrUnavailable = errors.New("language service unavailable")

// OpenAIProvider adapts *openai.Client to the Client and Prober interfaces.
type OpenAIProvider struct {
	Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if p == nil || p.Inner == nil {
		return openai.ChatCompletionResponse{}, ErrUnavailable
	}
	return p.Inner.CreateChatCompletion(ctx, request)
}

// Availability probes the backend by listing models. Any ready model means
// available; a reachable backend with zero models is downloadable.
func (p *OpenAIProvider) Availability(ctx context.Context) Availability {
	if p == nil || p.Inner == nil {
		return Unavailable
	}
	models, err := p.Inner.ListModels(ctx)
	if err != nil {
		return Unavailable
	}
	if len(models.Models) == 0 {
		return Downloadable
	}
	return Available
}

// Null is the null-object collaborator: every call fails with ErrUnavailable
// so callers exercise their deterministic fallback without presence checks.
type Null struct{}

func (Null) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, ErrUnavailable
}

func (Null) Availability(context.Context) Availability { return Unavailable }

// Pick normalizes a possibly-nil client to a usable one, substituting the
// null object so call sites have a uniform surface.
func Pick(c Client) Client {
	if c == nil {
		return Null{}
	}
	return c
}
