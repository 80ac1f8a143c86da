package summary

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagelens/internal/fragment"
	"github.com/hyperifyio/pagelens/internal/llm"
	"github.com/hyperifyio/pagelens/internal/rank"
)

// FallbackTruncateChars bounds the first-paragraph excerpt in the
// deterministic fallback summary.
const FallbackTruncateChars = 100

// DefaultMatchImportance is assigned to model-produced key points whose text
// cannot be matched back to an extracted fragment. It is deliberately a
// separate constant from the extractor's paragraph base importance.
const DefaultMatchImportance = 3

const systemMessage = "You summarize web pages. Respond with one short prose paragraph describing the page, followed by the most important points as markdown bullet lines starting with '- '. Use only the provided page text. No headings, no preamble."

// Synthesizer produces the page summary and key points. It delegates to the
// language-service collaborator when one is configured and falls back to a
// deterministic composition otherwise. Summarize never fails: callers always
// receive a usable result.
type Synthesizer struct {
	Client llm.Client
	Model  string
	// MaxKeyPoints caps the key-point list; zero means rank.MaxKeyPoints.
	MaxKeyPoints int
	// MatchImportance is the importance given to unmatched model key points;
	// zero means DefaultMatchImportance.
	MatchImportance int
}

// Summarize returns the summary and ranked key points for one analysis pass.
func (s *Synthesizer) Summarize(ctx context.Context, fragments []fragment.Fragment, title string) fragment.AnalysisResult {
	if res, ok := s.fromModel(ctx, fragments, title); ok {
		return res
	}
	return s.Fallback(fragments, title)
}

// fromModel attempts the primary path. Any unavailability, call failure, or
// unusable response reports ok=false so the caller falls through.
func (s *Synthesizer) fromModel(ctx context.Context, fragments []fragment.Fragment, title string) (fragment.AnalysisResult, bool) {
	client := llm.Pick(s.Client)
	if strings.TrimSpace(s.Model) == "" {
		return fragment.AnalysisResult{}, false
	}
	if p, ok := client.(llm.Prober); ok {
		if a := p.Availability(ctx); a != llm.Available {
			log.Debug().Stringer("availability", a).Msg("summary model not available; using fallback")
			return fragment.AnalysisResult{}, false
		}
	}
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(fragments, title)},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		log.Warn().Err(err).Msg("summary call failed; using fallback")
		return fragment.AnalysisResult{}, false
	}
	if len(resp.Choices) == 0 {
		return fragment.AnalysisResult{}, false
	}
	prose, bullets := splitProseAndBullets(resp.Choices[0].Message.Content)
	if prose == "" {
		return fragment.AnalysisResult{}, false
	}
	points := s.matchKeyPoints(bullets, fragments)
	if len(points) == 0 {
		// Model gave prose only; key points still come from the ranker so the
		// highlight/panel pair has something to agree on.
		points = rank.SelectN(fragments, s.maxPoints())
	}
	return fragment.AnalysisResult{Summary: prose, KeyPoints: points}, true
}

// Fallback composes the deterministic summary: the page title, the first
// heading as the main topic, and a truncated first paragraph. Key points come
// straight from the ranker.
func (s *Synthesizer) Fallback(fragments []fragment.Fragment, title string) fragment.AnalysisResult {
	var b strings.Builder
	b.WriteString("This page discusses ")
	if strings.TrimSpace(title) == "" {
		b.WriteString("an untitled page")
	} else {
		b.WriteString(title)
	}
	b.WriteString(". ")
	if h := fragment.FirstOfKind(fragments, fragment.Heading); h != nil {
		b.WriteString("The main topic is ")
		b.WriteString(h.Text)
		b.WriteString(". ")
	}
	if p := fragment.FirstOfKind(fragments, fragment.Paragraph); p != nil {
		b.WriteString(truncate(p.Text, FallbackTruncateChars))
	}
	return fragment.AnalysisResult{
		Summary:   strings.TrimSpace(b.String()),
		KeyPoints: rank.SelectN(fragments, s.maxPoints()),
	}
}

func (s *Synthesizer) maxPoints() int {
	if s.MaxKeyPoints > 0 {
		return s.MaxKeyPoints
	}
	return rank.MaxKeyPoints
}

// matchKeyPoints recovers importance/kind metadata and the document anchor
// for each model-produced point by substring-matching it against the original
// fragments. Unmatched points default to paragraph kind with
// DefaultMatchImportance and no anchor.
func (s *Synthesizer) matchKeyPoints(bullets []string, fragments []fragment.Fragment) []fragment.KeyPoint {
	max := s.maxPoints()
	fallbackImportance := s.MatchImportance
	if fallbackImportance == 0 {
		fallbackImportance = DefaultMatchImportance
	}
	points := make([]fragment.KeyPoint, 0, len(bullets))
	for _, text := range bullets {
		if len(points) >= max {
			break
		}
		f := fragment.Fragment{Kind: fragment.Paragraph, Text: text, Importance: fallbackImportance}
		if m := matchFragment(text, fragments); m != nil {
			f.Kind = m.Kind
			f.Level = m.Level
			f.Importance = m.Importance
			f.Anchor = m.Anchor
		}
		points = append(points, fragment.KeyPoint{Fragment: f, Index: len(points)})
	}
	return points
}

func matchFragment(text string, fragments []fragment.Fragment) *fragment.Fragment {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return nil
	}
	for i := range fragments {
		hay := strings.ToLower(fragments[i].Text)
		if strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			return &fragments[i]
		}
	}
	return nil
}

func buildUserMessage(fragments []fragment.Fragment, title string) string {
	var sb strings.Builder
	sb.WriteString("Page title: ")
	sb.WriteString(title)
	sb.WriteString("\n\nPage text in document order:\n")
	for _, f := range fragments {
		sb.WriteString("- [")
		sb.WriteString(f.Kind.String())
		sb.WriteString("] ")
		sb.WriteString(f.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\nSummarize the page in 2-3 sentences, then list up to 5 key points as '- ' bullets quoting the page text as closely as possible.")
	return sb.String()
}

// splitProseAndBullets separates a markdown response into the leading prose
// and its bullet lines.
func splitProseAndBullets(raw string) (string, []string) {
	var prose []string
	var bullets []string
	for _, line := range strings.Split(raw, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
			if b := strings.TrimSpace(t[2:]); b != "" {
				bullets = append(bullets, b)
			}
			continue
		}
		prose = append(prose, t)
	}
	return strings.TrimSpace(strings.Join(prose, " ")), bullets
}

// truncate counts characters, not bytes, so multibyte text is never cut
// mid-rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
