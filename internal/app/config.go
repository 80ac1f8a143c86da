package app

// Config holds runtime configuration for the CLI pipeline.
type Config struct {
	InputPath  string
	OutputPath string
	JSONPath   string
	PDFPath    string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Extraction / ranking
	MaxKeyPoints        int
	ParagraphImportance int
	ListItemImportance  int
	MinParagraphChars   int
	MinListItemChars    int
	ReaderMode          bool

	// Rewrite mode: when RewriteText is set the CLI rewrites it instead of
	// analyzing a page.
	RewriteText     string
	RewriteTone     string
	RewriteSimplify bool

	// Describe mode: path to an image to describe.
	DescribeImagePath string

	Verbose bool
}
