package index

import (
	"encoding/json"
	"strconv"
)

// Entry is one indexed config document. Column values keep the order their
// paths produced them in; the column set keeps spec order, with columns
// added later (by lineage enrichment) appended at the end.
type Entry struct {
	// Family names the config family the entry belongs to.
	Family string
	// File is the derived authoring-language source file, repo-root-relative.
	// It is recorded even when the file does not exist on disk.
	File string
	// JSONFile is the compiled config path, repo-root-relative.
	JSONFile string

	columns map[string][]any
	order   []string
}

func newEntry(family string) *Entry {
	return &Entry{
		Family:  family,
		columns: make(map[string][]any),
	}
}

// Set replaces a column's values, registering the column on first use.
func (e *Entry) Set(column string, values []any) {
	if _, ok := e.columns[column]; !ok {
		e.order = append(e.order, column)
	}
	e.columns[column] = values
}

// Append adds values to the end of a column, registering it on first use.
func (e *Entry) Append(column string, values ...any) {
	if _, ok := e.columns[column]; !ok {
		e.order = append(e.order, column)
	}
	e.columns[column] = append(e.columns[column], values...)
}

// Values returns a column's raw extracted values.
func (e *Entry) Values(column string) []any {
	return e.columns[column]
}

// Has reports whether the column was ever set on this entry.
func (e *Entry) Has(column string) bool {
	_, ok := e.columns[column]
	return ok
}

// Columns returns the column names in registration order.
func (e *Entry) Columns() []string {
	return e.order
}

// Name returns the entry's config name, or "" when the name column is
// empty. Entries without a name are never indexed.
func (e *Entry) Name() string {
	vals := e.columns[ColName]
	if len(vals) == 0 {
		return ""
	}
	s, _ := vals[0].(string)
	return s
}

// Strings returns a column's values rendered for display and matching.
func (e *Entry) Strings(column string) []string {
	vals := e.columns[column]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = FormatValue(v)
	}
	return out
}

// First returns the first value of a column rendered as a string.
func (e *Entry) First(column string) (string, bool) {
	vals := e.columns[column]
	if len(vals) == 0 {
		return "", false
	}
	return FormatValue(vals[0]), true
}

// Joins returns the names of the joins consuming this group-by, in the
// order lineage enrichment recorded them.
func (e *Entry) Joins() []string {
	return e.Strings(ColJoins)
}

// JoinEventDrivers returns the driver tables of the event-driven joins
// consuming this group-by.
func (e *Entry) JoinEventDrivers() []string {
	return e.Strings(ColJoinEventDriver)
}

// FormatValue renders a single extracted JSON value as a string. Scalars
// format natively; nested documents compact to their JSON encoding.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MarshalJSON emits the entry as a flat object for machine-readable output.
func (e *Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Family   string           `json:"family"`
		File     string           `json:"file"`
		JSONFile string           `json:"json_file"`
		Columns  map[string][]any `json:"columns"`
	}{e.Family, e.File, e.JSONFile, e.columns})
}
