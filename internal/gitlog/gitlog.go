// Package gitlog resolves config files to their most recent authors by
// shelling out to git log. Lookups dominate the cost of every annotated
// listing, so a Resolver batches them: all uncached paths are dispatched
// concurrently, gathered once, and cached for the life of the resolver.
package gitlog

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// Runner executes a single git log lookup and returns its output lines,
// newest commit first. Implementations must honor context cancellation.
type Runner interface {
	LogLines(ctx context.Context, path, exclude string, limit int) ([]string, error)
}

// gitRunner shells out to the git binary from the repository root.
type gitRunner struct {
	root string
}

// NewRunner returns a Runner invoking git against the given repository root.
func NewRunner(root string) Runner {
	return &gitRunner{root: root}
}

func (g *gitRunner) LogLines(ctx context.Context, path, exclude string, limit int) ([]string, error) {
	args := []string{"-C", g.root, "log", "-n", strconv.Itoa(limit), "--pretty=format:%as/%an/%ae"}
	if exclude != "" {
		args = append(args, "--invert-grep", "--grep="+exclude)
	}
	args = append(args, "--", path)

	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
