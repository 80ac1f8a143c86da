package describe

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagelens/internal/llm"
)

// MaxKeywords bounds the tag list derived from a description.
const MaxKeywords = 5

// FallbackText is returned when the collaborator cannot describe the image.
const FallbackText = "No description is available for this image."

// Description is a natural-language description of an image plus keyword tags
// distilled from it.
type Description struct {
	Text     string   `json:"text"`
	Keywords []string `json:"keywords,omitempty"`
}

// Describer asks the language service to describe an image. Like the other
// two-tier components it never fails: an unavailable or failing collaborator
// yields the deterministic fallback description.
type Describer struct {
	Client llm.Client
	Model  string
}

// Describe sends the image as a data URL and derives keyword tags from the
// returned text.
func (d *Describer) Describe(ctx context.Context, image []byte, mimeType string) Description {
	if len(image) == 0 {
		return Description{Text: FallbackText}
	}
	client := llm.Pick(d.Client)
	if strings.TrimSpace(d.Model) == "" {
		return Description{Text: FallbackText}
	}
	if p, ok := client.(llm.Prober); ok {
		if a := p.Availability(ctx); a != llm.Available {
			log.Debug().Stringer("availability", a).Msg("describe model not available; using fallback")
			return Description{Text: FallbackText}
		}
	}
	if mimeType == "" {
		mimeType = "image/png"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Describe this image in one or two sentences."},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
		N: 1,
	})
	if err != nil {
		log.Warn().Err(err).Msg("describe call failed; using fallback")
		return Description{Text: FallbackText}
	}
	if len(resp.Choices) == 0 {
		return Description{Text: FallbackText}
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Description{Text: FallbackText}
	}
	return Description{Text: text, Keywords: Keywords(text, MaxKeywords)}
}

// stopwords excludes filler from keyword tags.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"this": {}, "to": {}, "was": {}, "were": {}, "with": {}, "image": {},
	"picture": {}, "photo": {}, "shows": {}, "showing": {},
}

// Keywords extracts up to max tags from a description by stopword-filtered
// frequency, breaking ties by first appearance so the result is
// deterministic.
func Keywords(text string, max int) []string {
	if max <= 0 {
		max = MaxKeywords
	}
	type stat struct {
		word  string
		count int
		first int
	}
	counts := map[string]*stat{}
	order := make([]*stat, 0, 16)
	pos := 0
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,;:!?\"'()[]")
		if len(word) < 3 {
			continue
		}
		if _, skip := stopwords[word]; skip {
			continue
		}
		if st, ok := counts[word]; ok {
			st.count++
			continue
		}
		st := &stat{word: word, count: 1, first: pos}
		counts[word] = st
		order = append(order, st)
		pos++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	if len(order) > max {
		order = order[:max]
	}
	out := make([]string, 0, len(order))
	for _, st := range order {
		out = append(out, st.word)
	}
	return out
}
