package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func TestFromDocument_PrefersArticleOverBody(t *testing.T) {
	doc := parse(t, `<!doctype html>
	<html><head><title>Test Page</title></head>
	<body>
	  <p>Body-level paragraph that is clearly long enough to keep.</p>
	  <article>
	    <h1>Main Heading</h1>
	    <p>This is the article content paragraph, long enough to keep.</p>
	  </article>
	</body></html>`)

	frags := FromDocument(doc, DefaultOptions())
	for _, f := range frags {
		if strings.Contains(f.Text, "Body-level") {
			t.Fatalf("did not expect body-level content when an article exists")
		}
	}
	if len(frags) != 2 {
		t.Fatalf("expected heading and paragraph from the article, got %d fragments", len(frags))
	}
	if frags[0].Kind != fragment.Heading || frags[0].Text != "Main Heading" {
		t.Fatalf("expected the heading first in document order, got %+v", frags[0])
	}
}

func TestFromDocument_HeadingImportanceFollowsLevel(t *testing.T) {
	doc := parse(t, `<html><body>
	  <h3>Deep heading text</h3>
	  <h1>Top heading text</h1>
	</body></html>`)

	opts := DefaultOptions()
	opts.PositionBoost = 0 // isolate the base scores
	frags := FromDocument(doc, opts)
	if len(frags) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(frags))
	}
	if frags[0].Importance != 3 || frags[0].Level != 3 {
		t.Fatalf("h3 should score 3, got importance=%d level=%d", frags[0].Importance, frags[0].Level)
	}
	if frags[1].Importance != 1 || frags[1].Level != 1 {
		t.Fatalf("h1 should score 1, got importance=%d level=%d", frags[1].Importance, frags[1].Level)
	}
}

func TestFromDocument_PositionBoost(t *testing.T) {
	doc := parse(t, `<html><body>
	  <p>First paragraph with plenty of characters to pass the filter.</p>
	  <p>Second paragraph with plenty of characters to pass the filter.</p>
	  <p>Third paragraph with plenty of characters to pass the filter.</p>
	  <p>Fourth paragraph with plenty of characters to pass the filter.</p>
	</body></html>`)

	frags := FromDocument(doc, DefaultOptions())
	if len(frags) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d", len(frags))
	}
	for i := 0; i < 3; i++ {
		if frags[i].Importance != 9 {
			t.Fatalf("fragment %d should carry the primacy boost (9), got %d", i, frags[i].Importance)
		}
	}
	if frags[3].Importance != 10 {
		t.Fatalf("fragment outside the boost window should keep the base score, got %d", frags[3].Importance)
	}
}

func TestFromDocument_DropsShortFragments(t *testing.T) {
	doc := parse(t, `<html><body>
	  <p>tiny</p>
	  <p>This paragraph clears the minimum length threshold easily.</p>
	  <ul><li>x</li><li>A list item long enough to keep.</li></ul>
	</body></html>`)

	frags := FromDocument(doc, DefaultOptions())
	if len(frags) != 2 {
		t.Fatalf("expected short fragments to be dropped, got %d fragments", len(frags))
	}
	for _, f := range frags {
		if f.Text == "tiny" || f.Text == "x" {
			t.Fatalf("short fragment %q should never be produced", f.Text)
		}
	}
}

func TestFromDocument_ExcludesNavigationListItems(t *testing.T) {
	doc := parse(t, `<html><body>
	  <nav><ul><li>Navigation entry that is certainly long enough</li></ul></nav>
	  <div role="navigation"><ul><li>Another navigation entry long enough</li></ul></div>
	  <ul><li>Content list item that is certainly long enough</li></ul>
	</body></html>`)

	frags := FromDocument(doc, DefaultOptions())
	if len(frags) != 1 {
		t.Fatalf("expected only the content list item, got %d fragments", len(frags))
	}
	if !strings.HasPrefix(frags[0].Text, "Content list item") {
		t.Fatalf("unexpected fragment kept: %q", frags[0].Text)
	}
}

func TestFromDocument_SkipsInjectedPanel(t *testing.T) {
	doc := parse(t, `<html><body>
	  <p>Real page content paragraph that is long enough to keep.</p>
	  <aside id="pagelens-panel">
	    <p class="pagelens-summary">A previously rendered summary long enough to match.</p>
	    <ol><li id="pagelens-entry-0">A previously rendered key point entry.</li></ol>
	  </aside>
	</body></html>`)

	frags := FromDocument(doc, DefaultOptions())
	if len(frags) != 1 {
		t.Fatalf("panel content must not feed back into extraction, got %d fragments", len(frags))
	}
	if !strings.HasPrefix(frags[0].Text, "Real page content") {
		t.Fatalf("unexpected fragment kept: %q", frags[0].Text)
	}
}

func TestFromDocument_AnchorsPointIntoDocument(t *testing.T) {
	doc := parse(t, `<html><body><p>Anchored paragraph with enough characters.</p></body></html>`)
	frags := FromDocument(doc, DefaultOptions())
	if len(frags) != 1 {
		t.Fatalf("expected one fragment, got %d", len(frags))
	}
	if frags[0].Anchor == nil || frags[0].Anchor.Data != "p" {
		t.Fatalf("expected the anchor to reference the originating <p> node")
	}
}

func TestFromHTML_EmptyDocument(t *testing.T) {
	frags, title := FromHTML(nil, DefaultOptions())
	if len(frags) != 0 {
		t.Fatalf("empty document must yield an empty sequence, got %d", len(frags))
	}
	if title != "" {
		t.Fatalf("empty document has no title, got %q", title)
	}
}

func TestFromHTML_CollapsesWhitespace(t *testing.T) {
	html := "<html><body><p>Spread   across\n\tlines and   runs of spaces in one block.</p></body></html>"
	frags, _ := FromHTML([]byte(html), DefaultOptions())
	if len(frags) != 1 {
		t.Fatalf("expected one fragment, got %d", len(frags))
	}
	if strings.Contains(frags[0].Text, "  ") || strings.Contains(frags[0].Text, "\n") {
		t.Fatalf("whitespace should be collapsed, got %q", frags[0].Text)
	}
}
