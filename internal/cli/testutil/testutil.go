// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/confex-labs/confex/internal/cli/output"
)

// Compiled config fixtures. search.clicks.v1 reads an event table without a
// streaming topic and is consumed by search.ranker.v1; ads.spend.v1 reads
// events without a topic and no join consumes it; search.views.v1 has a
// topic and stays out of the events-without-topics report.
const (
	ClicksGroupBy = `{
  "metaData": {"name": "search.clicks.v1", "online": 1, "team": "search"},
  "sources": [
    {"events": {"table": "db.clicks"}}
  ],
  "keyColumns": ["user_id"],
  "aggregations": [
    {"inputColumn": "click_count", "operation": "SUM"}
  ]
}`

	SpendGroupBy = `{
  "metaData": {"name": "ads.spend.v1", "team": "ads"},
  "sources": [
    {"events": {"table": "db.ads_spend"}}
  ],
  "keyColumns": ["campaign_id"],
  "aggregations": [
    {"inputColumn": "spend_usd", "operation": "SUM"}
  ]
}`

	ViewsGroupBy = `{
  "metaData": {"name": "search.views.v1", "team": "search"},
  "sources": [
    {"events": {"table": "db.views", "topic": "events.views"}}
  ],
  "keyColumns": ["user_id"],
  "aggregations": [
    {"inputColumn": "view_count", "operation": "COUNT"}
  ]
}`
)

// RankerJoin consumes search.clicks.v1 with the full group-by inlined, the
// way compiled joins carry their parts.
var RankerJoin = fmt.Sprintf(`{
  "metaData": {"name": "search.ranker.v1", "team": "search"},
  "left": {"events": {"table": "db.queries"}},
  "joinParts": [
    {"groupBy": %s}
  ]
}`, ClicksGroupBy)

// SetupTestRepo creates a temporary config repository with the fixture
// configs and their source files, returning its root.
func SetupTestRepo(t *testing.T) string {
	t.Helper()

	root := t.TempDir()

	files := map[string]string{
		filepath.Join("production", "group_bys", "search", "clicks.v1"): ClicksGroupBy,
		filepath.Join("production", "group_bys", "search", "views.v1"):  ViewsGroupBy,
		filepath.Join("production", "group_bys", "ads", "spend.v1"):     SpendGroupBy,
		filepath.Join("production", "joins", "search", "ranker.v1"):     RankerJoin,
		filepath.Join("group_bys", "search", "clicks.py"):               "# clicks source\n",
		filepath.Join("group_bys", "search", "views.py"):                "# views source\n",
		filepath.Join("group_bys", "ads", "spend.py"):                   "# spend source\n",
		filepath.Join("joins", "search", "ranker.py"):                   "# ranker source\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create directory %s: %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}

	return root
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the captured stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and headers without content.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
