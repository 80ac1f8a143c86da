package app

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/pagelens/internal/describe"
	"github.com/hyperifyio/pagelens/internal/extract"
	"github.com/hyperifyio/pagelens/internal/llm"
	"github.com/hyperifyio/pagelens/internal/rewrite"
	"github.com/hyperifyio/pagelens/internal/service"
	"github.com/hyperifyio/pagelens/internal/session"
	"github.com/hyperifyio/pagelens/internal/summary"
)

// App wires the configured collaborator into the analysis pipeline.
type App struct {
	cfg    Config
	client llm.Client
}

// New builds the app and probes the collaborator once. An unreachable
// language service is not fatal: every downstream component carries its own
// deterministic fallback.
func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{cfg: cfg}
	if strings.TrimSpace(cfg.LLMModel) != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		provider := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}
		a.client = provider

		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		switch avail := provider.Availability(probeCtx); avail {
		case llm.Available:
			log.Info().Str("model", cfg.LLMModel).Msg("language service available")
		default:
			log.Warn().Stringer("availability", avail).Msg("language service not ready; deterministic fallbacks will be used")
		}
	} else {
		log.Info().Msg("no model configured; running with deterministic fallbacks")
	}
	return a, nil
}

// Run dispatches on mode: rewrite and describe are one-shot text operations;
// the default mode analyzes a page file and writes the annotated document
// plus result artifacts.
func (a *App) Run(ctx context.Context) error {
	switch {
	case a.cfg.RewriteText != "":
		return a.runRewrite(ctx)
	case a.cfg.DescribeImagePath != "":
		return a.runDescribe(ctx)
	default:
		return a.runAnalyze(ctx)
	}
}

func (a *App) extractOptions() extract.Options {
	opts := extract.DefaultOptions()
	if a.cfg.ParagraphImportance > 0 {
		opts.ParagraphImportance = a.cfg.ParagraphImportance
	}
	if a.cfg.ListItemImportance > 0 {
		opts.ListItemImportance = a.cfg.ListItemImportance
	}
	if a.cfg.MinParagraphChars > 0 {
		opts.MinParagraphChars = a.cfg.MinParagraphChars
	}
	if a.cfg.MinListItemChars > 0 {
		opts.MinListItemChars = a.cfg.MinListItemChars
	}
	return opts
}

func (a *App) synthesizer() *summary.Synthesizer {
	return &summary.Synthesizer{Client: a.client, Model: a.cfg.LLMModel, MaxKeyPoints: a.cfg.MaxKeyPoints}
}

func (a *App) runAnalyze(ctx context.Context) error {
	input, err := os.ReadFile(a.cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	var doc *goquery.Document
	if a.cfg.ReaderMode {
		if distilled, ok := extract.Distill(input); ok {
			doc = distilled
		} else {
			log.Warn().Msg("reader mode distillation produced nothing; using the raw page")
		}
	}
	if doc == nil {
		doc, err = goquery.NewDocumentFromReader(strings.NewReader(string(input)))
		if err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
	}

	sess := session.New(doc, a.synthesizer(), a.extractOptions())
	_, res := sess.Toggle(ctx)
	if res == nil {
		return fmt.Errorf("analysis produced no result")
	}
	log.Info().Int("keyPoints", len(res.KeyPoints)).Int("highlights", sess.HighlightCount()).Msg("analysis complete")

	annotated, err := doc.Html()
	if err != nil {
		return fmt.Errorf("serialize annotated document: %w", err)
	}
	if err := os.WriteFile(a.cfg.OutputPath, []byte(annotated), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote annotated document")

	jsonPath := a.cfg.JSONPath
	if jsonPath == "" {
		jsonPath = deriveSidecarPath(a.cfg.OutputPath)
	}
	if data, err := json.MarshalIndent(res, "", "  "); err == nil {
		if werr := os.WriteFile(jsonPath, data, 0o644); werr != nil {
			log.Warn().Err(werr).Msg("write result sidecar failed")
		}
	}

	if a.cfg.PDFPath != "" {
		title := extract.Title(doc)
		if err := writeReportPDF(*res, title, a.cfg.PDFPath); err != nil {
			log.Warn().Err(err).Msg("pdf export failed")
		} else {
			log.Info().Str("out", a.cfg.PDFPath).Msg("wrote pdf report")
		}
	}
	return nil
}

func (a *App) runRewrite(ctx context.Context) error {
	svc := &service.Service{Rewriter: &rewrite.Engine{Client: a.client, Model: a.cfg.LLMModel}}
	resp := svc.Rewrite(ctx, service.RewriteRequest{
		Text: a.cfg.RewriteText,
		Options: rewrite.Options{
			Tone:     rewrite.Tone(a.cfg.RewriteTone),
			Simplify: a.cfg.RewriteSimplify,
		},
	})
	return emitJSON(resp)
}

func (a *App) runDescribe(ctx context.Context) error {
	image, err := os.ReadFile(a.cfg.DescribeImagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(a.cfg.DescribeImagePath))
	d := &describe.Describer{Client: a.client, Model: a.cfg.LLMModel}
	return emitJSON(d.Describe(ctx, image, mimeType))
}

func emitJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deriveSidecarPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + ".json"
}
