package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagelens/internal/fragment"
	"github.com/hyperifyio/pagelens/internal/llm"
)

type scriptedClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (c *scriptedClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	c.lastReq = req
	if c.err != nil {
		return openai.ChatCompletionResponse{}, c.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c.content},
		}},
	}, nil
}

func demoFragments() []fragment.Fragment {
	return []fragment.Fragment{
		{Kind: fragment.Heading, Level: 1, Text: "Intro", Importance: 1},
		{Kind: fragment.Paragraph, Text: strings.Repeat("A", 150), Importance: 10},
		{Kind: fragment.ListItem, Text: "x", Importance: 15},
	}
}

func TestFallback_ComposesDeterministicSummary(t *testing.T) {
	s := &Synthesizer{}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")

	want := "This page discusses Demo. The main topic is Intro. " + strings.Repeat("A", 100) + "..."
	if res.Summary != want {
		t.Fatalf("fallback summary mismatch:\nwant %q\ngot  %q", want, res.Summary)
	}
	if len(res.KeyPoints) != 3 {
		t.Fatalf("expected all 3 fragments as key points, got %d", len(res.KeyPoints))
	}
	wantOrder := []fragment.Kind{fragment.Heading, fragment.Paragraph, fragment.ListItem}
	for i, kp := range res.KeyPoints {
		if kp.Kind != wantOrder[i] {
			t.Fatalf("key point %d: expected kind %v, got %v", i, wantOrder[i], kp.Kind)
		}
	}
}

func TestFallback_WithoutHeadingOrParagraph(t *testing.T) {
	s := &Synthesizer{}
	res := s.Summarize(context.Background(), nil, "Bare")
	if res.Summary != "This page discusses Bare." {
		t.Fatalf("unexpected bare summary: %q", res.Summary)
	}
	if len(res.KeyPoints) != 0 {
		t.Fatalf("no fragments means no key points, got %d", len(res.KeyPoints))
	}
}

func TestFallback_TruncatesOnCharactersNotBytes(t *testing.T) {
	frags := []fragment.Fragment{
		{Kind: fragment.Paragraph, Text: strings.Repeat("界", 150), Importance: 10},
	}
	s := &Synthesizer{}
	res := s.Summarize(context.Background(), frags, "Demo")

	want := "This page discusses Demo. " + strings.Repeat("界", 100) + "..."
	if res.Summary != want {
		t.Fatalf("fallback summary mismatch:\nwant %q\ngot  %q", want, res.Summary)
	}
	if !utf8.ValidString(res.Summary) {
		t.Fatalf("summary contains invalid UTF-8: %q", res.Summary)
	}
}

func TestFallback_UntitledPage(t *testing.T) {
	s := &Synthesizer{}
	res := s.Summarize(context.Background(), nil, "  ")
	if !strings.Contains(res.Summary, "an untitled page") {
		t.Fatalf("expected the untitled placeholder, got %q", res.Summary)
	}
}

func TestSummarize_FallsBackWhenCallFails(t *testing.T) {
	s := &Synthesizer{Client: &scriptedClient{err: errors.New("boom")}, Model: "test-model"}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")
	if res.Summary == "" {
		t.Fatalf("fallback guarantee violated: empty summary after collaborator failure")
	}
	if !strings.HasPrefix(res.Summary, "This page discusses Demo.") {
		t.Fatalf("expected the deterministic fallback, got %q", res.Summary)
	}
}

func TestSummarize_FallsBackWhenUnavailable(t *testing.T) {
	s := &Synthesizer{Client: llm.Null{}, Model: "test-model"}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")
	if !strings.HasPrefix(res.Summary, "This page discusses Demo.") {
		t.Fatalf("a null collaborator must be substituted by the fallback, got %q", res.Summary)
	}
}

func TestSummarize_ParsesModelBulletsAndRecoversMetadata(t *testing.T) {
	content := "The page introduces the topic.\n- Intro\n- Something the model invented\n"
	client := &scriptedClient{content: content}
	s := &Synthesizer{Client: client, Model: "test-model"}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")

	if res.Summary != "The page introduces the topic." {
		t.Fatalf("expected the model prose as summary, got %q", res.Summary)
	}
	if len(res.KeyPoints) != 2 {
		t.Fatalf("expected 2 key points from bullets, got %d", len(res.KeyPoints))
	}
	matched := res.KeyPoints[0]
	if matched.Kind != fragment.Heading || matched.Importance != 1 || matched.Level != 1 {
		t.Fatalf("matched point must recover fragment metadata, got %+v", matched)
	}
	invented := res.KeyPoints[1]
	if invented.Kind != fragment.Paragraph || invented.Importance != DefaultMatchImportance {
		t.Fatalf("unmatched point must default to paragraph/%d, got %+v", DefaultMatchImportance, invented)
	}
	if res.KeyPoints[0].Index != 0 || res.KeyPoints[1].Index != 1 {
		t.Fatalf("key point indices must be sequential rank positions")
	}
}

func TestSummarize_ModelProseWithoutBulletsUsesRanker(t *testing.T) {
	client := &scriptedClient{content: "Just a plain prose answer with no bullets."}
	s := &Synthesizer{Client: client, Model: "test-model"}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")
	if len(res.KeyPoints) != 3 {
		t.Fatalf("expected ranker key points when the model returns prose only, got %d", len(res.KeyPoints))
	}
	if res.KeyPoints[0].Kind != fragment.Heading {
		t.Fatalf("ranker ordering expected, got %+v", res.KeyPoints[0])
	}
}

func TestSummarize_BoundsModelKeyPoints(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Summary prose.\n")
	for i := 0; i < 10; i++ {
		sb.WriteString("- bullet point number ")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString("\n")
	}
	s := &Synthesizer{Client: &scriptedClient{content: sb.String()}, Model: "test-model"}
	res := s.Summarize(context.Background(), demoFragments(), "Demo")
	if len(res.KeyPoints) > 5 {
		t.Fatalf("key points must be bounded to 5, got %d", len(res.KeyPoints))
	}
}

func TestSummarize_PromptCarriesPageText(t *testing.T) {
	client := &scriptedClient{content: "Prose.\n- Intro\n"}
	s := &Synthesizer{Client: client, Model: "test-model"}
	s.Summarize(context.Background(), demoFragments(), "Demo")
	if len(client.lastReq.Messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(client.lastReq.Messages))
	}
	user := client.lastReq.Messages[1].Content
	if !strings.Contains(user, "Page title: Demo") || !strings.Contains(user, "[heading] Intro") {
		t.Fatalf("user message should carry the title and fragments; got:\n%s", user)
	}
}
