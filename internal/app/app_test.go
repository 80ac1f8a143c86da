package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/pagelens/internal/fragment"
)

const fixtureHTML = `<!doctype html>
<html><head><title>Gardening Basics</title></head>
<body>
  <h1>Gardening Basics</h1>
  <p>Preparing the soil before planting gives seedlings the best possible start.</p>
  <h2>Watering</h2>
  <p>Most vegetables need about an inch of water per week during the growing season.</p>
  <ul><li>Mulch generously to keep moisture in the soil between waterings.</li></ul>
</body></html>`

func TestRunAnalyze_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "page.html")
	outPath := filepath.Join(dir, "annotated.html")
	pdfPath := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(inPath, []byte(fixtureHTML), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := Config{InputPath: inPath, OutputPath: outPath, PDFPath: pdfPath}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	annotated, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read annotated output: %v", err)
	}
	out := string(annotated)
	if !strings.Contains(out, `class="pagelens-highlight"`) {
		t.Fatalf("annotated document lacks highlights:\n%s", out)
	}
	if !strings.Contains(out, `id="pagelens-panel"`) {
		t.Fatalf("annotated document lacks the panel:\n%s", out)
	}

	sidecar, err := os.ReadFile(filepath.Join(dir, "annotated.json"))
	if err != nil {
		t.Fatalf("read result sidecar: %v", err)
	}
	var res fragment.AnalysisResult
	if err := json.Unmarshal(sidecar, &res); err != nil {
		t.Fatalf("decode sidecar: %v", err)
	}
	if !strings.Contains(res.Summary, "Gardening Basics") {
		t.Fatalf("summary should mention the title, got %q", res.Summary)
	}
	if len(res.KeyPoints) == 0 {
		t.Fatalf("expected key points in the sidecar")
	}

	if fi, err := os.Stat(pdfPath); err != nil || fi.Size() == 0 {
		t.Fatalf("pdf report missing or empty: %v", err)
	}
}

func TestDeriveSidecarPath(t *testing.T) {
	if got := deriveSidecarPath("out/annotated.html"); got != "out/annotated.json" {
		t.Fatalf("unexpected sidecar path %q", got)
	}
	if got := deriveSidecarPath("annotated"); got != "annotated.json" {
		t.Fatalf("unexpected sidecar path %q", got)
	}
}
