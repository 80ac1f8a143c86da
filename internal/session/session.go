package session

import (
	"context"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagelens/internal/extract"
	"github.com/hyperifyio/pagelens/internal/fragment"
	"github.com/hyperifyio/pagelens/internal/highlight"
	"github.com/hyperifyio/pagelens/internal/panel"
	"github.com/hyperifyio/pagelens/internal/summary"
)

// Navigation is the cross-reference a click resolves to: the element ids of
// the highlight and panel entry that were emphasized.
type Navigation struct {
	HighlightID string
	EntryID     string
}

// Session owns one page's analysis state: the parsed document, the highlight
// manager, the panel presenter, and the latest result. It replaces any
// ambient globals; callers hold exactly one session per document and drive it
// from a single goroutine. The only async boundary is the collaborator call
// inside Refresh, which is guarded by last-write-wins pass arbitration.
type Session struct {
	doc   *goquery.Document
	synth *summary.Synthesizer
	opts  extract.Options

	highlights *highlight.Manager
	panel      *panel.Presenter

	mu     sync.Mutex
	pass   int
	result *fragment.AnalysisResult
	active bool
}

// New builds a session for an already parsed document.
func New(doc *goquery.Document, synth *summary.Synthesizer, opts extract.Options) *Session {
	return &Session{
		doc:        doc,
		synth:      synth,
		opts:       opts,
		highlights: highlight.NewManager(doc),
		panel:      panel.NewPresenter(doc),
	}
}

// Toggle activates or deactivates the feature. Activation runs an analysis
// pass and shows the panel; deactivation tears down highlights and removes
// the panel, resetting to the empty state.
func (s *Session) Toggle(ctx context.Context) (bool, *fragment.AnalysisResult) {
	s.mu.Lock()
	active := !s.active
	s.active = active
	s.mu.Unlock()

	if !active {
		s.Deactivate()
		return false, nil
	}
	res := s.Refresh(ctx)
	return true, res
}

// Refresh runs one full analysis pass: extract, summarize, highlight, render.
// When passes overlap at the collaborator suspension point, the pass that
// resolves last wins and earlier stragglers are discarded.
func (s *Session) Refresh(ctx context.Context) *fragment.AnalysisResult {
	s.mu.Lock()
	s.pass++
	pass := s.pass
	s.panel.SetVisible(true)
	s.panel.RenderLoading()
	frags := extract.FromDocument(s.doc, s.opts)
	title := extract.Title(s.doc)
	s.mu.Unlock()

	// The collaborator call may suspend; everything before and after runs on
	// the session's single event goroutine.
	res := s.synth.Summarize(ctx, frags, title)

	s.mu.Lock()
	defer s.mu.Unlock()
	if pass != s.pass {
		log.Debug().Int("pass", pass).Int("latest", s.pass).Msg("discarding superseded analysis pass")
		return s.result
	}
	applied := s.highlights.Apply(res.KeyPoints)
	if applied < len(res.KeyPoints) {
		log.Debug().Int("applied", applied).Int("keyPoints", len(res.KeyPoints)).Msg("some key points had no resolvable anchor")
	}
	s.panel.Render(res)
	s.panel.ClearLoading()
	s.result = &res
	return s.result
}

// Deactivate clears all highlights and removes the panel. Safe to call when
// nothing is applied.
func (s *Session) Deactivate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.highlights.Clear()
	s.panel.Remove()
	s.result = nil
}

// Result returns the currently displayed analysis result, nil before the
// first completed pass.
func (s *Session) Result() *fragment.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ClickHighlight handles a click on highlight `index`: both the highlight and
// its panel counterpart flash active. It reports the navigation target, or
// false when the index has no live highlight.
func (s *Session) ClickHighlight(index int) (Navigation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.highlights.Activate(index) {
		return Navigation{}, false
	}
	s.panel.Activate(index)
	return Navigation{HighlightID: highlight.ID(index), EntryID: panel.EntryID(index)}, true
}

// ClickEntry handles a click on panel entry `index`, symmetric to
// ClickHighlight.
func (s *Session) ClickEntry(index int) (Navigation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.panel.Activate(index) {
		return Navigation{}, false
	}
	s.highlights.Activate(index)
	return Navigation{HighlightID: highlight.ID(index), EntryID: panel.EntryID(index)}, true
}

// TogglePanel flips panel visibility without re-analyzing.
func (s *Session) TogglePanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.Toggle()
}

// HighlightActiveAt and EntryActiveAt expose the transient emphasis state for
// a given instant; the flash auto-clears after the shared active duration.
func (s *Session) HighlightActiveAt(index int, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlights.ActiveAt(index, t)
}

func (s *Session) EntryActiveAt(index int, t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.ActiveAt(index, t)
}

// Expire clears emphasis whose flash window has passed on both surfaces.
func (s *Session) Expire(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights.Expire(t)
	s.panel.Expire(t)
}

// HighlightCount reports the live annotation count, mainly for diagnostics.
func (s *Session) HighlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlights.Count()
}

// Document exposes the annotated document for serialization.
func (s *Session) Document() *goquery.Document { return s.doc }
