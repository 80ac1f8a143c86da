package highlight

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

// ActiveDuration is how long a clicked highlight keeps its transient
// emphasis before it auto-clears.
const ActiveDuration = 2 * time.Second

const (
	className = "pagelens-highlight"
	idAttr    = "data-id"
	activeAt  = "data-active"
)

// Highlight is one live DOM annotation wrapping a key point's anchor text.
type Highlight struct {
	ID    string
	Index int

	span        *html.Node
	activeUntil time.Time
}

// Manager owns the document's highlight set. Exactly one set exists at a
// time: Apply tears down any previous set before annotating, and Clear
// returns the document to a state textually indistinguishable from the
// pre-highlight one. Not safe for concurrent use; all mutation happens on the
// single event-handling goroutine.
type Manager struct {
	doc      *goquery.Document
	registry map[int]*Highlight

	// now is a clock hook for deterministic tests.
	now func() time.Time
}

// NewManager wires a manager to the document it annotates.
func NewManager(doc *goquery.Document) *Manager {
	return &Manager{doc: doc, registry: map[int]*Highlight{}, now: time.Now}
}

// ID derives the deterministic highlight id for a key-point index.
func ID(index int) string {
	return fmt.Sprintf("highlight-%d", index)
}

// Apply replaces the current highlight set with one for the given key points
// and reports how many were annotated. Key points whose anchor can no longer
// be resolved in the document are skipped silently.
func (m *Manager) Apply(points []fragment.KeyPoint) int {
	m.Clear()
	root := m.root()
	applied := 0
	wrapped := map[*html.Node]struct{}{}
	for _, kp := range points {
		if kp.Anchor == nil || !attached(kp.Anchor, root) {
			log.Debug().Int("index", kp.Index).Msg("key point anchor unresolvable; skipping")
			continue
		}
		// Key points recovered by text matching can collapse onto one anchor;
		// a second wrap would nest spans, so only the first one wins.
		if _, dup := wrapped[kp.Anchor]; dup {
			log.Debug().Int("index", kp.Index).Msg("anchor already highlighted; skipping")
			continue
		}
		wrapped[kp.Anchor] = struct{}{}
		span := &html.Node{
			Type:     html.ElementNode,
			Data:     "span",
			DataAtom: atom.Span,
			Attr: []html.Attribute{
				{Key: "class", Val: className},
				{Key: idAttr, Val: ID(kp.Index)},
			},
		}
		// Move the anchor's content into the span, then hang the span back
		// under the anchor, so the rendered text is unchanged.
		for c := kp.Anchor.FirstChild; c != nil; {
			next := c.NextSibling
			kp.Anchor.RemoveChild(c)
			span.AppendChild(c)
			c = next
		}
		kp.Anchor.AppendChild(span)
		m.registry[kp.Index] = &Highlight{ID: ID(kp.Index), Index: kp.Index, span: span}
		applied++
	}
	return applied
}

// Clear unwraps every highlight annotation and resets the registry. Adjacent
// text nodes are re-merged so the tree round-trips byte-identically. Calling
// it on an empty set is a no-op.
func (m *Manager) Clear() {
	m.doc.Find("span." + className).Each(func(_ int, s *goquery.Selection) {
		span := s.Get(0)
		parent := span.Parent
		if parent == nil {
			return
		}
		for c := span.FirstChild; c != nil; {
			next := c.NextSibling
			span.RemoveChild(c)
			parent.InsertBefore(c, span)
			c = next
		}
		parent.RemoveChild(span)
		mergeAdjacentText(parent)
	})
	m.registry = map[int]*Highlight{}
}

// Count reports how many highlight annotations are currently in the document.
func (m *Manager) Count() int {
	return m.doc.Find("span." + className).Length()
}

// Lookup returns the live highlight for a key-point index.
func (m *Manager) Lookup(index int) (*Highlight, bool) {
	h, ok := m.registry[index]
	return h, ok
}

// Activate flashes the highlight for ActiveDuration and reports whether the
// index resolved to a live highlight.
func (m *Manager) Activate(index int) bool {
	h, ok := m.registry[index]
	if !ok {
		return false
	}
	h.activeUntil = m.now().Add(ActiveDuration)
	setAttr(h.span, activeAt, "true")
	return true
}

// ActiveAt reports whether the highlight's transient emphasis is still live
// at the given instant.
func (m *Manager) ActiveAt(index int, t time.Time) bool {
	h, ok := m.registry[index]
	return ok && t.Before(h.activeUntil)
}

// Expire clears the emphasis attribute from highlights whose flash window has
// passed at the given instant.
func (m *Manager) Expire(t time.Time) {
	for _, h := range m.registry {
		if !h.activeUntil.IsZero() && !t.Before(h.activeUntil) {
			removeAttr(h.span, activeAt)
			h.activeUntil = time.Time{}
		}
	}
}

func (m *Manager) root() *html.Node {
	if m.doc == nil {
		return nil
	}
	return m.doc.Get(0)
}

// attached walks parents to decide whether the node is still part of the
// document tree; anchors into removed subtrees fail resolution.
func attached(n, root *html.Node) bool {
	if root == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == root {
			return true
		}
	}
	return false
}

func mergeAdjacentText(parent *html.Node) {
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		if next != nil && c.Type == html.TextNode && next.Type == html.TextNode {
			c.Data += next.Data
			parent.RemoveChild(next)
			continue
		}
		c = next
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
