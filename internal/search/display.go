package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/gitlog"
	"github.com/confex-labs/confex/internal/index"
)

// showLimit is how many values of a filter column are shown before the
// listing reduces the column to keyword matches and truncates the rest.
const showLimit = 10

// labelWidth right-aligns column labels so values line up.
const labelWidth = 15

// Display renders the matched entries with their latest git authorship,
// oldest modification first. Each entry shows its source file annotated
// with the authorship record, every index column, and the compiled config
// path, with keyword occurrences highlighted in text mode. Commits whose
// message matches exclude are ignored during attribution.
func Display(ctx context.Context, r *output.Renderer, resolver *gitlog.Resolver, entries []*index.Entry, target, exclude string) {
	if len(entries) == 0 {
		return
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.File != "" {
			files = append(files, e.File)
		}
	}
	records := resolver.Resolve(ctx, files, exclude)

	sorted := make([]*index.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := records[sorted[i].File], records[sorted[j].File]
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Name() < sorted[j].Name()
	})

	markdown := r.EffectiveMode() == output.ModeMarkdown
	styles := r.Styles()
	for _, e := range sorted {
		if markdown {
			renderEntryMarkdown(r, e, records[e.File], target, styles)
		} else {
			renderEntryText(r, e, records[e.File], target, styles)
		}
	}
}

func renderEntryText(r *output.Renderer, e *index.Entry, record, target string, styles *output.Styles) {
	r.Println("")
	fileLine := e.File
	if record != "" {
		fileLine += " " + record
	}
	r.Printf("%s - %s\n", label("file", styles), styles.Bold.Render(fileLine))
	for _, col := range e.Columns() {
		r.Printf("%s - %s\n", label(col, styles), renderColumn(e, col, target, styles))
	}
	r.Printf("%s - %s\n", label("json_file", styles), highlightAll(e.JSONFile, target, styles.Match))
}

func renderEntryMarkdown(r *output.Renderer, e *index.Entry, record, target string, styles *output.Styles) {
	r.Println("")
	r.Println(output.FormatHeader(2, e.Name()))
	fileLine := e.File
	if record != "" {
		fileLine += " " + record
	}
	r.Println(output.FormatKeyValue("file", fileLine))
	for _, col := range e.Columns() {
		r.Println(output.FormatKeyValue(col, renderColumn(e, col, target, styles)))
	}
	r.Println(output.FormatKeyValue("json_file", e.JSONFile))
}

func label(col string, styles *output.Styles) string {
	return styles.Label.Render(fmt.Sprintf("%*s", labelWidth, col))
}

// renderColumn renders a column's values as a bracketed list. Filter
// columns that overflow the show limit are reduced to distinct values
// containing the keyword; whatever still overflows is truncated with a
// count of the remainder.
func renderColumn(e *index.Entry, col, target string, styles *output.Styles) string {
	values := e.Strings(col)
	if isFilterColumn(col) && len(values) > showLimit {
		values = matching(distinct(values), target)
		if len(values) > showLimit {
			head := highlightAll(strings.Join(values[:showLimit], ", "), target, styles.Match)
			more := styles.Muted.Render(fmt.Sprintf("%d more", len(values)-showLimit))
			return fmt.Sprintf("[%s ... %s]", head, more)
		}
	}
	return highlightAll("["+strings.Join(values, ", ")+"]", target, styles.Match)
}

func isFilterColumn(col string) bool {
	for _, c := range FilterColumns {
		if c == col {
			return true
		}
	}
	return false
}

func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func matching(values []string, target string) []string {
	var out []string
	for _, v := range values {
		if strings.Contains(v, target) {
			out = append(out, v)
		}
	}
	return out
}

func highlightAll(s, target string, style lipgloss.Style) string {
	if target == "" {
		return s
	}
	return strings.ReplaceAll(s, target, style.Render(target))
}
