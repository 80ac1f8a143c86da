// Package service is the boundary facade other extension surfaces talk to.
// Both operations always resolve successfully under the fallback guarantee;
// Success is false only for malformed input.
package service

import (
	"context"
	"strings"

	"github.com/hyperifyio/pagelens/internal/extract"
	"github.com/hyperifyio/pagelens/internal/fragment"
	"github.com/hyperifyio/pagelens/internal/rewrite"
	"github.com/hyperifyio/pagelens/internal/summary"
)

// SummarizeRequest carries the page data captured on the caller's side.
type SummarizeRequest struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// SummarizeResponse mirrors the analysis request/response contract.
type SummarizeResponse struct {
	Success   bool                `json:"success"`
	Reason    string              `json:"reason,omitempty"`
	Summary   string              `json:"summary,omitempty"`
	KeyPoints []fragment.KeyPoint `json:"keyPoints,omitempty"`
}

// RewriteRequest carries the text and options for a rewrite.
type RewriteRequest struct {
	Text    string          `json:"text"`
	Options rewrite.Options `json:"options"`
}

// RewriteResponse preserves the original text verbatim.
type RewriteResponse struct {
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Original  string `json:"original,omitempty"`
	Rewritten string `json:"rewritten,omitempty"`
}

// Service bundles the two-tier engines behind the exposed contracts.
type Service struct {
	Synth    *summary.Synthesizer
	Rewriter *rewrite.Engine
	Extract  extract.Options
}

// Summarize analyzes the submitted page HTML. Collaborator failures never
// surface here; the deterministic fallback keeps Success true.
func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) SummarizeResponse {
	if strings.TrimSpace(req.HTML) == "" {
		return SummarizeResponse{Reason: "page HTML is required"}
	}
	frags, title := extract.FromHTML([]byte(req.HTML), s.Extract)
	if strings.TrimSpace(req.Title) != "" {
		title = req.Title
	}
	res := s.Synth.Summarize(ctx, frags, title)
	return SummarizeResponse{Success: true, Summary: res.Summary, KeyPoints: res.KeyPoints}
}

// Rewrite transforms the submitted text under the given options.
func (s *Service) Rewrite(ctx context.Context, req RewriteRequest) RewriteResponse {
	if strings.TrimSpace(req.Text) == "" {
		return RewriteResponse{Reason: "text is required"}
	}
	res := s.Rewriter.Rewrite(ctx, req.Text, req.Options)
	return RewriteResponse{Success: true, Original: res.Original, Rewritten: res.Rewritten}
}
