package rewrite

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagelens/internal/llm"
)

// Tone selects the target register for a rewrite. The empty value leaves the
// tone unchanged.
type Tone string

const (
	ToneNone     Tone = ""
	ToneCasual   Tone = "casual"
	ToneFormal   Tone = "formal"
	ToneFriendly Tone = "friendly"
)

// Options configures one rewrite. It is a pure value with no identity.
type Options struct {
	Tone     Tone `json:"tone,omitempty"`
	Simplify bool `json:"simplify,omitempty"`
}

// Result preserves the input verbatim alongside the rewritten text.
type Result struct {
	Original  string `json:"original"`
	Rewritten string `json:"rewritten"`
}

// Engine transforms text under Options, collaborator-first with a
// deterministic local fallback. Rewrite never fails.
type Engine struct {
	Client llm.Client
	Model  string
}

// Rewrite returns the transformed text. The original is always preserved in
// the result, and an unrecognized tone passes the text through unchanged.
func (e *Engine) Rewrite(ctx context.Context, text string, opts Options) Result {
	if out, ok := e.fromModel(ctx, text, opts); ok {
		return Result{Original: text, Rewritten: out}
	}
	return Result{Original: text, Rewritten: applyFallback(text, opts)}
}

func (e *Engine) fromModel(ctx context.Context, text string, opts Options) (string, bool) {
	client := llm.Pick(e.Client)
	if strings.TrimSpace(e.Model) == "" {
		return "", false
	}
	if p, ok := client.(llm.Prober); ok {
		if a := p.Availability(ctx); a != llm.Available {
			log.Debug().Stringer("availability", a).Msg("rewrite model not available; using fallback")
			return "", false
		}
	}
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You rewrite text. Return only the rewritten text with no commentary."},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, opts)},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		log.Warn().Err(err).Msg("rewrite call failed; using fallback")
		return "", false
	}
	if len(resp.Choices) == 0 {
		return "", false
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", false
	}
	return out, true
}

func buildPrompt(text string, opts Options) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the following text")
	if opts.Simplify {
		sb.WriteString(", at a simpler complexity level")
	}
	if opts.Tone != ToneNone {
		sb.WriteString(", in a ")
		sb.WriteString(string(opts.Tone))
		sb.WriteString(" tone")
	}
	sb.WriteString(":\n\n")
	sb.WriteString(text)
	return sb.String()
}

// simplifications maps complex words to plain synonyms, applied
// case-insensitively on whole-word matches and in a fixed order.
var simplifications = []struct {
	pattern *regexp.Regexp
	simple  string
}{
	{regexp.MustCompile(`(?i)\butilize\b`), "use"},
	{regexp.MustCompile(`(?i)\bimplement\b`), "use"},
	{regexp.MustCompile(`(?i)\bsufficient\b`), "enough"},
	{regexp.MustCompile(`(?i)\bdemonstrate\b`), "show"},
	{regexp.MustCompile(`(?i)\badditionally\b`), "also"},
	{regexp.MustCompile(`(?i)\bconsequently\b`), "so"},
	{regexp.MustCompile(`(?i)\bnevertheless\b`), "still"},
	{regexp.MustCompile(`(?i)\bsubsequently\b`), "later"},
}

var contractions = [][2]string{
	{"will not", "won't"},
	{"cannot", "can't"},
	{"do not", "don't"},
}

// applyFallback applies the deterministic transforms in a fixed order:
// simplification dictionary, then the tone rule.
func applyFallback(text string, opts Options) string {
	out := text
	if opts.Simplify {
		for _, s := range simplifications {
			out = s.pattern.ReplaceAllString(out, s.simple)
		}
	}
	switch opts.Tone {
	case ToneCasual:
		// Casual contracts only the first occurrence per phrase; formal
		// expands globally.
		for _, c := range contractions {
			out = strings.Replace(out, c[0], c[1], 1)
		}
	case ToneFormal:
		for _, c := range contractions {
			out = strings.ReplaceAll(out, c[1], c[0])
		}
	case ToneFriendly:
		out += " Hope that helps!"
	}
	return out
}
