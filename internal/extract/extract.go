package extract

import (
	"bytes"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/text/unicode/norm"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

// Options tunes fragment scoring and filtering. The zero value produces
// nothing useful; start from DefaultOptions and override fields as needed.
type Options struct {
	// ParagraphImportance is the base importance assigned to paragraphs.
	ParagraphImportance int
	// ListItemImportance is the base importance assigned to list items;
	// list items rank slightly below paragraphs.
	ListItemImportance int
	// PositionBoostWindow is how many leading fragments receive the primacy
	// boost; PositionBoost is subtracted from their importance.
	PositionBoostWindow int
	PositionBoost       int
	// MinParagraphChars and MinListItemChars drop short fragments at
	// extraction time; they are never produced.
	MinParagraphChars int
	MinListItemChars  int
	// ReaderMode distills the page with go-readability before extraction.
	// Only honoured by FromHTML; document-attached extraction must keep the
	// original tree so anchors stay valid.
	ReaderMode bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		ParagraphImportance: 10,
		ListItemImportance:  12,
		PositionBoostWindow: 3,
		PositionBoost:       1,
		MinParagraphChars:   20,
		MinListItemChars:    15,
	}
}

// panelSelector matches the side panel pagelens itself injects; its contents
// must never feed back into a later analysis pass.
const panelSelector = "#pagelens-panel"

// FromDocument walks an already parsed document and returns its text
// fragments in document order, scoped to the most specific of
// article > main > body. An empty document yields an empty slice.
func FromDocument(doc *goquery.Document, opts Options) []fragment.Fragment {
	if doc == nil {
		return nil
	}
	root := contentRoot(doc)
	if root == nil {
		return nil
	}

	frags := make([]fragment.Fragment, 0, 16)
	root.Find("h1,h2,h3,h4,h5,h6,p,li").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered(panelSelector).Length() > 0 {
			return
		}
		text := normalizeText(s.Text())
		if text == "" {
			return
		}
		tag := goquery.NodeName(s)
		var f fragment.Fragment
		switch tag {
		case "p":
			if len(text) < opts.MinParagraphChars {
				return
			}
			f = fragment.Fragment{Kind: fragment.Paragraph, Importance: opts.ParagraphImportance}
		case "li":
			// List items inside navigation landmarks are menu entries,
			// not content.
			if insideNavigation(s) {
				return
			}
			if len(text) < opts.MinListItemChars {
				return
			}
			f = fragment.Fragment{Kind: fragment.ListItem, Importance: opts.ListItemImportance}
		default:
			level := int(tag[1] - '0')
			f = fragment.Fragment{Kind: fragment.Heading, Level: level, Importance: level}
		}
		f.Text = text
		f.Anchor = s.Get(0)
		frags = append(frags, f)
	})

	// Primacy: the first few fragments on a page tend to matter most.
	for i := 0; i < len(frags) && i < opts.PositionBoostWindow; i++ {
		frags[i].Importance -= opts.PositionBoost
	}
	return frags
}

// FromHTML parses raw HTML and extracts fragments, returning them together
// with the page title. With ReaderMode set the markup is first distilled
// through go-readability so boilerplate never reaches scoring; distillation
// failures fall back to the raw markup.
func FromHTML(input []byte, opts Options) ([]fragment.Fragment, string) {
	if opts.ReaderMode {
		if doc, ok := Distill(input); ok {
			return FromDocument(doc, opts), Title(doc)
		}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return nil, ""
	}
	return FromDocument(doc, opts), Title(doc)
}

// Distill rewrites the page into its reader-mode article form, carrying the
// page title over into the distilled document head. It reports false when
// distillation fails or produces no content; callers keep the raw markup.
func Distill(input []byte) (*goquery.Document, bool) {
	article, err := readability.FromReader(bytes.NewReader(input), nil)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return nil, false
	}
	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = titleFromRaw(input)
	}
	var b strings.Builder
	b.WriteString("<html><head><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title></head><body>")
	b.WriteString(article.Content)
	b.WriteString("</body></html>")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(b.String()))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// Title returns the trimmed document title, empty when absent.
func Title(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("head title").First().Text())
}

func titleFromRaw(input []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return ""
	}
	return Title(doc)
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range []string{"article", "main", "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

func insideNavigation(s *goquery.Selection) bool {
	return s.ParentsFiltered("nav,[role=navigation]").Length() > 0
}

// normalizeText trims, collapses internal whitespace runs to single spaces,
// and normalizes to NFC so byte comparisons stay stable across passes.
func normalizeText(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return norm.NFC.String(strings.TrimRight(b.String(), " "))
}
