package panel

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

// ActiveDuration mirrors the highlight flash window so cross-navigation
// emphasis behaves symmetrically on both surfaces.
const ActiveDuration = 2 * time.Second

// ContainerID is the id of the single panel element pagelens injects.
const ContainerID = "pagelens-panel"

// Presenter renders the analysis result into a side panel element inside the
// document and tracks transient entry emphasis. Re-rendering fully replaces
// prior content. Not safe for concurrent use.
type Presenter struct {
	doc         *goquery.Document
	visible     bool
	entryCount  int
	activeUntil map[int]time.Time

	now func() time.Time
}

// NewPresenter wires a presenter to the document it renders into.
func NewPresenter(doc *goquery.Document) *Presenter {
	return &Presenter{doc: doc, activeUntil: map[int]time.Time{}, now: time.Now}
}

// EntryID derives the deterministic element id for a key-point index; it is
// the panel-side counterpart of the highlight id.
func EntryID(index int) string {
	return fmt.Sprintf("pagelens-entry-%d", index)
}

// Render replaces the panel content with the given result. The panel element
// is created on first render and reused afterwards; visibility is preserved
// across renders.
func (p *Presenter) Render(res fragment.AnalysisResult) {
	container := p.container(true)
	var sb strings.Builder
	sb.WriteString(`<h2 class="pagelens-title">Page insights</h2>`)
	sb.WriteString(`<p class="pagelens-summary">`)
	sb.WriteString(html.EscapeString(res.Summary))
	sb.WriteString(`</p><ol class="pagelens-keypoints">`)
	for _, kp := range res.KeyPoints {
		sb.WriteString(fmt.Sprintf(`<li id=%q data-index="%d">`, EntryID(kp.Index), kp.Index))
		sb.WriteString(html.EscapeString(kp.Text))
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ol>`)
	container.SetHtml(sb.String())
	p.entryCount = len(res.KeyPoints)
	p.activeUntil = map[int]time.Time{}
	p.applyVisibility(container)
}

// RenderLoading marks the panel as busy while an analysis pass is suspended
// on the collaborator. Previously rendered content stays in place underneath
// until the pass resolves.
func (p *Presenter) RenderLoading() {
	container := p.container(true)
	container.SetAttr("aria-busy", "true")
	p.applyVisibility(container)
}

// ClearLoading removes the busy marker after a pass resolves.
func (p *Presenter) ClearLoading() {
	if container := p.container(false); container != nil {
		container.RemoveAttr("aria-busy")
	}
}

// Toggle flips panel visibility and returns the new state. Showing an
// already-visible panel is a no-op that keeps current content.
func (p *Presenter) Toggle() bool {
	p.SetVisible(!p.visible)
	return p.visible
}

// SetVisible shows or hides the panel without touching its content.
func (p *Presenter) SetVisible(visible bool) {
	p.visible = visible
	if container := p.container(false); container != nil {
		p.applyVisibility(container)
	}
}

// Visible reports the current panel visibility.
func (p *Presenter) Visible() bool { return p.visible }

// EntryCount reports how many key-point entries the last render produced.
func (p *Presenter) EntryCount() int { return p.entryCount }

// Activate flashes the panel entry for ActiveDuration and reports whether the
// index resolved to a rendered entry.
func (p *Presenter) Activate(index int) bool {
	entry := p.entry(index)
	if entry == nil {
		return false
	}
	p.activeUntil[index] = p.now().Add(ActiveDuration)
	entry.SetAttr("data-active", "true")
	return true
}

// ActiveAt reports whether the entry's transient emphasis is still live at
// the given instant.
func (p *Presenter) ActiveAt(index int, t time.Time) bool {
	until, ok := p.activeUntil[index]
	return ok && t.Before(until)
}

// Expire clears emphasis from entries whose flash window has passed.
func (p *Presenter) Expire(t time.Time) {
	for index, until := range p.activeUntil {
		if !t.Before(until) {
			if entry := p.entry(index); entry != nil {
				entry.RemoveAttr("data-active")
			}
			delete(p.activeUntil, index)
		}
	}
}

// Remove deletes the panel element entirely, used when the feature is
// deactivated.
func (p *Presenter) Remove() {
	if container := p.container(false); container != nil {
		container.Remove()
	}
	p.visible = false
	p.entryCount = 0
	p.activeUntil = map[int]time.Time{}
}

func (p *Presenter) entry(index int) *goquery.Selection {
	s := p.doc.Find("#" + EntryID(index))
	if s.Length() == 0 {
		return nil
	}
	return s.First()
}

func (p *Presenter) container(create bool) *goquery.Selection {
	s := p.doc.Find("#" + ContainerID)
	if s.Length() > 0 {
		return s.First()
	}
	if !create {
		return nil
	}
	body := p.doc.Find("body").First()
	if body.Length() == 0 {
		// Documents parsed from fragments may lack a body; fall back to the
		// outermost selection so rendering still succeeds.
		body = p.doc.Selection
	}
	body.AppendHtml(fmt.Sprintf(`<aside id=%q class="pagelens-panel"></aside>`, ContainerID))
	return p.doc.Find("#" + ContainerID).First()
}

func (p *Presenter) applyVisibility(container *goquery.Selection) {
	if p.visible {
		container.RemoveAttr("hidden")
		return
	}
	container.SetAttr("hidden", "hidden")
}
