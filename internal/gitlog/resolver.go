package gitlog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/confex-labs/confex/internal/config"
)

// historyDepth is how many commits each lookup fetches. The newest record
// wins; the extra commit keeps attribution useful when the newest one is
// filtered out by an exclude pattern.
const historyDepth = 2

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	// Root is the repository the lookups run against.
	Root string
	// Runner overrides the git invocation, for tests.
	Runner Runner
	// Timeout bounds each individual lookup.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Resolver maps repo-root-relative file paths to authorship records of the
// form "date/name/email". Records are cached per path and exclude pattern;
// the cache lives as long as the resolver.
type Resolver struct {
	root    string
	runner  Runner
	timeout time.Duration
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a Resolver, falling back to the real git runner and
// the default lookup timeout when unset.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.Runner == nil {
		cfg.Runner = NewRunner(cfg.Root)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultGitTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		root:    cfg.Root,
		runner:  cfg.Runner,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
		cache:   make(map[string]string),
	}
}

func cacheKey(path, exclude string) string {
	return path + "\x00" + exclude
}

// Resolve returns the newest authorship record for each path. Every
// uncached path is looked up in its own goroutine and the results are
// gathered after all lookups finish. A lookup that fails, times out or
// finds no history resolves to the empty record; the batch itself never
// fails.
func (r *Resolver) Resolve(ctx context.Context, paths []string, exclude string) map[string]string {
	result := make(map[string]string, len(paths))

	r.mu.Lock()
	var misses []string
	pending := make(map[string]bool)
	for _, p := range paths {
		if rec, ok := r.cache[cacheKey(p, exclude)]; ok {
			result[p] = rec
		} else if !pending[p] {
			pending[p] = true
			misses = append(misses, p)
		}
	}
	r.mu.Unlock()

	if len(misses) == 0 {
		return result
	}

	r.logger.Debug("resolving authorship", "paths", len(misses))

	records := make([]string, len(misses))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range misses {
		g.Go(func() error {
			records[i] = r.lookup(gctx, p, exclude)
			return nil
		})
	}
	// Lookups report failures as empty records, so Wait only synchronizes.
	_ = g.Wait()

	r.mu.Lock()
	for i, p := range misses {
		r.cache[cacheKey(p, exclude)] = records[i]
		result[p] = records[i]
	}
	r.mu.Unlock()

	return result
}

func (r *Resolver) lookup(ctx context.Context, path, exclude string) string {
	lctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	lines, err := r.runner.LogLines(lctx, path, exclude, historyDepth)
	if err != nil {
		r.logger.Warn("git log failed, no attribution", "path", path, "error", err.Error())
		return ""
	}
	if len(lines) == 0 {
		r.logger.Warn("file has no git history", "path", path)
		return ""
	}
	return lines[0]
}

// AuthorOf returns the name and email of the newest author of a repo-root-
// relative file. Files absent from disk resolve to empty fields without
// touching git, matching how deleted or never-committed configs behave.
func (r *Resolver) AuthorOf(ctx context.Context, path, exclude string) (name, email string) {
	if path == "" {
		return "", ""
	}
	if _, err := os.Stat(filepath.Join(r.root, path)); err != nil {
		return "", ""
	}
	rec := r.Resolve(ctx, []string{path}, exclude)[path]
	return SplitRecord(rec)
}

// SplitRecord splits a "date/name/email" record into its trailing name and
// email fields. Empty or malformed records yield empty fields.
func SplitRecord(rec string) (name, email string) {
	parts := strings.Split(rec, "/")
	if len(parts) < 3 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
