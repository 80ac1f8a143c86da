package fragment

import (
	"fmt"

	"golang.org/x/net/html"
)

// Kind classifies one extracted unit of page text.
type Kind int

const (
	// Heading covers h1..h6; the level is carried separately.
	Heading Kind = iota
	Paragraph
	ListItem
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case Paragraph:
		return "paragraph"
	case ListItem:
		return "list-item"
	default:
		return "unknown"
	}
}

// MarshalText lets the JSON sidecar carry kinds as readable names.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the names MarshalText produces so emitted results
// decode back losslessly.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "heading":
		*k = Heading
	case "paragraph":
		*k = Paragraph
	case "list-item":
		*k = ListItem
	default:
		return fmt.Errorf("unknown fragment kind %q", text)
	}
	return nil
}

// Fragment is one semantic unit of page text with a derived importance.
// Lower importance means more important. Anchor points back into the live
// document tree; it is borrowed, may be nil, and must be re-resolved before
// use because the node can be detached at any time.
type Fragment struct {
	Kind Kind `json:"kind"`
	// Level is the heading level (1..6) when Kind is Heading, zero otherwise.
	Level      int        `json:"level,omitempty"`
	Text       string     `json:"text"`
	Importance int        `json:"importance"`
	Anchor     *html.Node `json:"-"`
}

// KeyPoint is a fragment selected by ranking. Index is the 0-based rank
// position and is the stable cross-reference key shared by the highlight
// manager and the panel presenter for the lifetime of one analysis pass.
type KeyPoint struct {
	Fragment
	Index int `json:"index"`
}

// AnalysisResult is produced once per analysis pass and is immutable once
// returned; the next pass supersedes it wholesale.
type AnalysisResult struct {
	Summary   string     `json:"summary"`
	KeyPoints []KeyPoint `json:"keyPoints"`
}

// FirstOfKind returns the first fragment of the given kind in document order,
// or nil when none exists.
func FirstOfKind(fragments []Fragment, kind Kind) *Fragment {
	for i := range fragments {
		if fragments[i].Kind == kind {
			return &fragments[i]
		}
	}
	return nil
}
