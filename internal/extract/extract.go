// Package extract implements the dotted path expressions the index specs
// use to pull values out of parsed JSON configuration documents.
//
// A path is a dot-separated list of object keys. A key carrying a trailing
// "[]" marker selects an array and applies the remainder of the path to each
// element, concatenating the results in document order. Extraction is total:
// an absent key, a non-object where a key step expects one, or a non-array
// where an "[]" step expects one all yield no values rather than an error.
package extract

import (
	"fmt"
	"strings"
)

// Step is a single segment of a compiled path.
type Step struct {
	// Key is the object key this step descends through.
	Key string
	// Each is set when the segment carried the "[]" marker, meaning the
	// value at Key is an array whose elements are traversed individually.
	Each bool
}

// Path is a compiled path expression. The zero value is the empty path,
// which extracts the document itself.
type Path struct {
	raw   string
	steps []Step
}

// Compile parses expr into a Path. It fails on segments with an empty key,
// such as "a..b" or a bare "[]".
func Compile(expr string) (Path, error) {
	p := Path{raw: expr}
	if expr == "" {
		return p, nil
	}
	for _, seg := range strings.Split(expr, ".") {
		step := Step{Key: seg}
		if strings.HasSuffix(seg, "[]") {
			step.Key = strings.TrimSuffix(seg, "[]")
			step.Each = true
		}
		if step.Key == "" {
			return Path{}, fmt.Errorf("path %q: empty key segment", expr)
		}
		p.steps = append(p.steps, step)
	}
	return p, nil
}

// MustCompile is Compile but panics on error. Intended for the package-level
// index specs, which are fixed at build time.
func MustCompile(expr string) Path {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression the path was compiled from.
func (p Path) String() string { return p.raw }

// Extract applies the path to a document produced by encoding/json
// (map[string]any, []any and scalars) and returns every matched value.
// A matched array contributes its elements rather than itself, so a path
// naming a list-valued field yields the list's items. The empty path
// matches the document itself.
func (p Path) Extract(doc any) []any {
	return walk(p.steps, doc)
}

func walk(steps []Step, doc any) []any {
	if len(steps) == 0 {
		if seq, ok := doc.([]any); ok {
			return seq
		}
		return []any{doc}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	val, ok := obj[steps[0].Key]
	if !ok {
		return nil
	}
	if steps[0].Each {
		seq, ok := val.([]any)
		if !ok {
			return nil
		}
		var out []any
		for _, item := range seq {
			out = append(out, walk(steps[1:], item)...)
		}
		return out
	}
	return walk(steps[1:], val)
}
