package index

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/confex-labs/confex/internal/config"
)

// ParseError reports a config file that could not be parsed as JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EntryBuilderConfig configures an EntryBuilder.
type EntryBuilderConfig struct {
	// Root is the absolute path of the feature repository.
	Root string
	// ProductionDir is the compiled-config tree relative to Root.
	ProductionDir string
	// SourceExt is the extension of authoring-language source files.
	SourceExt string
	Logger    *slog.Logger
}

// EntryBuilder derives index entries from config documents, resolving
// source and compiled file paths against the repository root.
type EntryBuilder struct {
	root          string
	productionDir string
	sourceExt     string
	logger        *slog.Logger
}

// NewEntryBuilder creates an EntryBuilder, applying layout defaults for
// unset options.
func NewEntryBuilder(cfg EntryBuilderConfig) *EntryBuilder {
	if cfg.ProductionDir == "" {
		cfg.ProductionDir = config.DefaultProductionDir
	}
	if cfg.SourceExt == "" {
		cfg.SourceExt = config.DefaultSourceExt
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &EntryBuilder{
		root:          cfg.Root,
		productionDir: cfg.ProductionDir,
		sourceExt:     cfg.SourceExt,
		logger:        cfg.Logger,
	}
}

// Root returns the absolute repository root the builder resolves against.
func (b *EntryBuilder) Root() string { return b.root }

// FamilyDir returns the absolute directory holding a family's configs.
func (b *EntryBuilder) FamilyDir(family string) string {
	return filepath.Join(b.root, b.productionDir, family)
}

// Exists reports whether a repo-root-relative path exists on disk.
func (b *EntryBuilder) Exists(rel string) bool {
	if rel == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(b.root, rel))
	return err == nil
}

// ConfFile returns the repo-root-relative compiled config path for a named
// config in a family. The team segment splits off at the first dot; the
// rest of the name keeps its dots, mirroring how configs land on disk.
func (b *EntryBuilder) ConfFile(family, name string) string {
	team, rest, ok := strings.Cut(name, ".")
	if !ok {
		return filepath.Join(b.productionDir, family, name)
	}
	return filepath.Join(b.productionDir, family, team, rest)
}

// BuildFile reads and indexes one config file. A file that is not valid
// JSON yields a *ParseError; a parsed document without a name yields
// (nil, nil) since there is nothing to key it by.
func (b *EntryBuilder) BuildFile(spec Spec, path string) (*Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return b.BuildDoc(spec, doc), nil
}

// BuildDoc indexes an already-parsed document. Every spec column is
// extracted, then the source and compiled file paths are derived from the
// config name. Nil when the document has no name.
func (b *EntryBuilder) BuildDoc(spec Spec, doc any) *Entry {
	e := newEntry(spec.Family)
	for _, c := range spec.Columns {
		var values []any
		for _, p := range c.Paths {
			values = append(values, p.Extract(doc)...)
		}
		e.Set(c.Name, values)
	}
	if e.Name() == "" {
		return nil
	}
	b.resolvePaths(e, spec.Family)
	return e
}

// resolvePaths derives the entry's File and JSONFile from its name. Config
// names follow "<team>.<module path>.<variant>": the team is everything
// before the first dot, the source file is the module path with dots as
// directory separators (a package directory falls back to its __init__
// file), and the compiled config keeps the dotted form as its basename.
func (b *EntryBuilder) resolvePaths(e *Entry, family string) {
	name := e.Name()
	team, module, ok := strings.Cut(name, ".")
	if !ok {
		b.logger.Warn("config name has no team prefix, file paths unresolved",
			"family", family, "name", name)
		return
	}
	segs := strings.Split(module, ".")
	base := filepath.Join(segs[:len(segs)-1]...)

	srcFile := filepath.Join(family, team, base+b.sourceExt)
	initFile := filepath.Join(family, team, base, "__init__"+b.sourceExt)
	e.File = srcFile
	if !b.Exists(srcFile) {
		e.File = initFile
	}
	e.JSONFile = filepath.Join(b.productionDir, family, team, module)
}
