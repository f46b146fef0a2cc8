package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/index"
)

// Parameter keys accepted by the events-without-topics report.
const (
	ParamOutputFile            = "output_file"
	ParamExcludeCommitMessage  = "exclude_commit_message"
	standaloneJoinsPlaceholder = "STANDALONE"
)

func newEventsWithoutTopics() *Report {
	return &Report{
		Name:    "events-without-topics",
		Aliases: []string{"_events_without_topics"},
		Summary: "Event-sourced group-bys with no streaming topic, with their producers and consumers",
		Params: []ParamSpec{
			{Key: ParamOutputFile, Description: "write the TSV rows to this file instead of stdout"},
			{Key: ParamExcludeCommitMessage, Description: "skip commits whose message matches this pattern when attributing authors"},
		},
		Run: runEventsWithoutTopics,
	}
}

// eventsOptions holds the report's parameters, decoded from the validated
// param map.
type eventsOptions struct {
	OutputFile           string `mapstructure:"output_file"`
	ExcludeCommitMessage string `mapstructure:"exclude_commit_message"`
}

// runEventsWithoutTopics lists every group-by that reads event tables but
// declares no streaming topic. Each row names the config, its producer (the
// newest author of its config file), whether it serves online, the first
// event table, the joins that consume it and their authors. Authorship for
// all files resolves in one batch before the rows render.
func runEventsWithoutTopics(rc RunContext, params map[string]string) error {
	var opts eventsOptions
	if err := DecodeParams(params, &opts); err != nil {
		return err
	}
	exclude := opts.ExcludeCommitMessage

	type finding struct {
		entry    *index.Entry
		producer string
		joins    []string
	}

	var findings []finding
	var batch []string
	queued := make(map[string]bool)
	queue := func(path string) {
		if path == "" || queued[path] || !rc.Builder.Exists(path) {
			return
		}
		queued[path] = true
		batch = append(batch, path)
	}

	for _, gb := range rc.GroupBys.All() {
		if len(gb.Values(index.ColEventTables)) == 0 || len(gb.Values(index.ColEventTopics)) > 0 {
			continue
		}
		producer := gb.File
		if rc.Builder.Exists(gb.JSONFile) {
			producer = gb.JSONFile
		}
		joins := gb.Joins()
		queue(producer)
		for _, join := range joins {
			queue(rc.Builder.ConfFile(config.FamilyJoins, join))
		}
		findings = append(findings, finding{entry: gb, producer: producer, joins: joins})
	}

	if len(batch) > 0 {
		rc.Resolver.Resolve(rc.Context, batch, exclude)
	}

	emails := make(map[string]bool)
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		producerName, producerEmail := rc.Resolver.AuthorOf(rc.Context, f.producer, exclude)
		if producerEmail != "" {
			emails[producerEmail] = true
		}

		var consumers []string
		seen := make(map[string]bool)
		for _, join := range f.joins {
			name, email := rc.Resolver.AuthorOf(rc.Context, rc.Builder.ConfFile(config.FamilyJoins, join), exclude)
			if email != "" {
				emails[email] = true
			}
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			consumers = append(consumers, name)
		}

		joinNames := standaloneJoinsPlaceholder
		if len(f.joins) > 0 {
			joinNames = strings.Join(f.joins, ", ")
		}
		eventTable, _ := f.entry.First(index.ColEventTables)
		rows = append(rows, []string{
			f.entry.Name(),
			producerName,
			strconv.FormatBool(len(f.entry.Values(index.ColOnline)) > 0),
			eventTable,
			joinNames,
			strings.Join(consumers, ", "),
		})
	}

	rc.logger().Debug("events without topics collected", "rows", len(rows))

	if out := opts.OutputFile; out != "" {
		path := expandUser(out)
		if err := writeTSV(path, rows); err != nil {
			return err
		}
		rc.Renderer.Success(fmt.Sprintf("wrote %d events without topics to %s", len(rows), path))
	} else {
		for _, row := range rows {
			rc.Renderer.Println(strings.Join(row, "\t"))
		}
	}

	if len(emails) > 0 {
		list := make([]string, 0, len(emails))
		for email := range emails {
			list = append(list, email)
		}
		sort.Strings(list)
		rc.Renderer.Println(strings.Join(list, ", "))
	}
	return nil
}

func writeTSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(f, strings.Join(row, "\t")); err != nil {
			f.Close()
			return fmt.Errorf("write report file: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

// expandUser resolves a leading ~ to the current user's home directory.
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
