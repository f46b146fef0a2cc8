// Package report holds named analyses that run over the built config
// indexes. Each report declares the key=value parameters it accepts and
// renders its own output, so the CLI can dispatch to any of them by name
// without knowing what they do.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/confex-labs/confex/internal/cli/output"
	"github.com/confex-labs/confex/internal/gitlog"
	"github.com/confex-labs/confex/internal/index"
)

// ParamSpec describes one key=value parameter a report accepts.
type ParamSpec struct {
	Key         string
	Description string
}

// RunContext carries the built indexes and shared services a report needs.
type RunContext struct {
	Context  context.Context
	GroupBys *index.Table
	Joins    *index.Table
	Builder  *index.EntryBuilder
	Resolver *gitlog.Resolver
	Renderer *output.Renderer
	Logger   *slog.Logger
}

func (rc RunContext) logger() *slog.Logger {
	if rc.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return rc.Logger
}

// Report is a named analysis over the indexes.
type Report struct {
	// Name is the canonical report name used on the command line.
	Name string
	// Aliases are alternate names accepted for the report.
	Aliases []string
	// Summary is a one-line description shown by `report list`.
	Summary string
	// Params lists the key=value parameters the report accepts.
	Params []ParamSpec
	// Run executes the report with validated parameters.
	Run func(rc RunContext, params map[string]string) error
}

// Accepts reports whether the report declares a parameter key.
func (r *Report) Accepts(key string) bool {
	for _, p := range r.Params {
		if p.Key == key {
			return true
		}
	}
	return false
}

func (r *Report) paramKeys() string {
	if len(r.Params) == 0 {
		return "no parameters"
	}
	keys := make([]string, len(r.Params))
	for i, p := range r.Params {
		keys[i] = p.Key
	}
	return strings.Join(keys, ", ")
}

// ParseParams validates raw key=value arguments against the report's
// declared parameters. Malformed pairs and unknown keys are errors rather
// than silent no-ops.
func (r *Report) ParseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("report arguments take the form param=value, got %q", arg)
		}
		if !r.Accepts(key) {
			return nil, fmt.Errorf("report %s has no parameter %q (accepts: %s)", r.Name, key, r.paramKeys())
		}
		params[key] = value
	}
	return params, nil
}

// DecodeParams decodes validated parameters into a report's options struct
// via mapstructure tags. Weak typing lets numeric and boolean parameters
// arrive as the strings the command line hands over.
func DecodeParams(params map[string]string, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("decoding report parameters: %w", err)
	}
	return nil
}

// Registry maps report names and aliases to reports.
type Registry struct {
	mu      sync.RWMutex
	reports map[string]*Report
	names   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{reports: make(map[string]*Report)}
}

// Register adds a report under its name and all aliases.
func (g *Registry) Register(r *Report) error {
	if r == nil || r.Name == "" {
		return fmt.Errorf("report must have a name")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	keys := append([]string{r.Name}, r.Aliases...)
	for _, key := range keys {
		if _, exists := g.reports[key]; exists {
			return fmt.Errorf("report %q is already registered", key)
		}
	}
	for _, key := range keys {
		g.reports[key] = r
	}
	g.names = append(g.names, r.Name)
	return nil
}

// Get looks up a report by canonical name or alias.
func (g *Registry) Get(name string) (*Report, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.reports[name]
	return r, ok
}

// Names returns the canonical report names in sorted order.
func (g *Registry) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	names := make([]string, len(g.names))
	copy(names, g.names)
	sort.Strings(names)
	return names
}

// Default returns a registry with every built-in report registered.
func Default() *Registry {
	reg := NewRegistry()
	if err := reg.Register(newEventsWithoutTopics()); err != nil {
		panic(err)
	}
	return reg
}
