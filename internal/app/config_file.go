package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to the flag namespace.
type FileConfig struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`
	JSON   string `yaml:"json" json:"json"`
	PDF    string `yaml:"pdf" json:"pdf"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Extract struct {
		ParagraphImportance int  `yaml:"paragraphImportance" json:"paragraphImportance"`
		ListItemImportance  int  `yaml:"listItemImportance" json:"listItemImportance"`
		MinParagraphChars   int  `yaml:"minParagraphChars" json:"minParagraphChars"`
		MinListItemChars    int  `yaml:"minListItemChars" json:"minListItemChars"`
		ReaderMode          bool `yaml:"readerMode" json:"readerMode"`
	} `yaml:"extract" json:"extract"`

	MaxKeyPoints int  `yaml:"maxKeyPoints" json:"maxKeyPoints"`
	Verbose      bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON.
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields the flags left at
// their defaults, so explicit flags always win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	const (
		inputDefault  = "page.html"
		outputDefault = "annotated.html"
	)
	if (cfg.InputPath == "" || cfg.InputPath == inputDefault) && fc.Input != "" {
		cfg.InputPath = fc.Input
	}
	if (cfg.OutputPath == "" || cfg.OutputPath == outputDefault) && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.JSONPath == "" && fc.JSON != "" {
		cfg.JSONPath = fc.JSON
	}
	if cfg.PDFPath == "" && fc.PDF != "" {
		cfg.PDFPath = fc.PDF
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if cfg.ParagraphImportance == 0 && fc.Extract.ParagraphImportance > 0 {
		cfg.ParagraphImportance = fc.Extract.ParagraphImportance
	}
	if cfg.ListItemImportance == 0 && fc.Extract.ListItemImportance > 0 {
		cfg.ListItemImportance = fc.Extract.ListItemImportance
	}
	if cfg.MinParagraphChars == 0 && fc.Extract.MinParagraphChars > 0 {
		cfg.MinParagraphChars = fc.Extract.MinParagraphChars
	}
	if cfg.MinListItemChars == 0 && fc.Extract.MinListItemChars > 0 {
		cfg.MinListItemChars = fc.Extract.MinListItemChars
	}
	if !cfg.ReaderMode && fc.Extract.ReaderMode {
		cfg.ReaderMode = true
	}
	if cfg.MaxKeyPoints == 0 && fc.MaxKeyPoints > 0 {
		cfg.MaxKeyPoints = fc.MaxKeyPoints
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig enforces the malformed-input policy at the process boundary.
func ValidateConfig(cfg Config) error {
	switch {
	case cfg.RewriteText != "":
		// Rewrite mode needs nothing beyond the text itself.
		return nil
	case cfg.DescribeImagePath != "":
		return nil
	}
	if strings.TrimSpace(cfg.InputPath) == "" {
		return errors.New("config: input path is required")
	}
	if strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	if cfg.MaxKeyPoints < 0 {
		return errors.New("config: negative key point limit is not allowed")
	}
	return nil
}
