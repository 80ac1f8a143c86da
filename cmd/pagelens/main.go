package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/pagelens/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		cfg        app.Config
	)

	flag.StringVar(&configPath, "config", "", "Optional YAML/JSON config file; explicit flags win")
	flag.StringVar(&cfg.InputPath, "input", "page.html", "Path to the HTML page to analyze")
	flag.StringVar(&cfg.OutputPath, "output", "annotated.html", "Path to write the highlighted document")
	flag.StringVar(&cfg.JSONPath, "json", "", "Path for the JSON analysis result (default: output path with .json)")
	flag.StringVar(&cfg.PDFPath, "pdf", "", "Optional path for a PDF report of the analysis")
	flag.StringVar(&cfg.LLMBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&cfg.LLMModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name; empty runs fully deterministic")
	flag.StringVar(&cfg.LLMAPIKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the OpenAI-compatible server")
	flag.IntVar(&cfg.MaxKeyPoints, "max.keyPoints", 0, "Maximum key points per pass (default 5)")
	flag.IntVar(&cfg.ParagraphImportance, "importance.paragraph", 0, "Base importance for paragraphs (default 10)")
	flag.IntVar(&cfg.ListItemImportance, "importance.listItem", 0, "Base importance for list items (default 12)")
	flag.IntVar(&cfg.MinParagraphChars, "min.paragraphChars", 0, "Minimum trimmed paragraph length (default 20)")
	flag.IntVar(&cfg.MinListItemChars, "min.listItemChars", 0, "Minimum trimmed list item length (default 15)")
	flag.BoolVar(&cfg.ReaderMode, "reader", false, "Distill the page with readability before extraction")
	flag.StringVar(&cfg.RewriteText, "rewrite.text", "", "Rewrite this text instead of analyzing a page")
	flag.StringVar(&cfg.RewriteTone, "rewrite.tone", "", "Rewrite tone: casual, formal, or friendly")
	flag.BoolVar(&cfg.RewriteSimplify, "rewrite.simplify", false, "Replace complex words with simple synonyms")
	flag.StringVar(&cfg.DescribeImagePath, "describe.image", "", "Describe this image instead of analyzing a page")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.Parse()

	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("config", configPath).Msg("load config file")
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	if err := a.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("run")
	}
}
