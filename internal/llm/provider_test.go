package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestNull_AlwaysUnavailable(t *testing.T) {
	var c Client = Null{}
	_, err := c.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := (Null{}).Availability(context.Background()); got != Unavailable {
		t.Fatalf("expected unavailable, got %v", got)
	}
}

func TestPick_SubstitutesNullForNil(t *testing.T) {
	c := Pick(nil)
	if _, ok := c.(Null); !ok {
		t.Fatalf("expected the null object for a nil client, got %T", c)
	}
	real := &OpenAIProvider{}
	if got := Pick(real); got != Client(real) {
		t.Fatalf("expected the provided client to pass through")
	}
}

func TestOpenAIProvider_NilInner(t *testing.T) {
	p := &OpenAIProvider{}
	if _, err := p.CreateChatCompletion(context.Background(), openai.ChatCompletionRequest{}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("nil inner client must report ErrUnavailable, got %v", err)
	}
	if got := p.Availability(context.Background()); got != Unavailable {
		t.Fatalf("nil inner client must be unavailable, got %v", got)
	}
}

func TestAvailability_String(t *testing.T) {
	cases := map[Availability]string{
		Available:    "available",
		Downloadable: "downloadable",
		Unavailable:  "unavailable",
	}
	for a, want := range cases {
		if a.String() != want {
			t.Fatalf("availability %d: want %q got %q", a, want, a.String())
		}
	}
}
