// Package search implements keyword lookup over the config indexes and the
// annotated terminal listing of the results.
package search

import (
	"strings"

	"github.com/confex-labs/confex/internal/index"
)

// FilterColumns are the columns keyword search matches against. Internal
// plumbing columns stay out so a table name used only for report bookkeeping
// does not pull an entry into unrelated searches.
var FilterColumns = []string{
	index.ColAggregation,
	index.ColKeys,
	index.ColName,
	index.ColSources,
	index.ColJoins,
}

// Matches reports whether any filter-column value contains the target.
func Matches(e *index.Entry, target string) bool {
	for _, col := range FilterColumns {
		for _, v := range e.Strings(col) {
			if strings.Contains(v, target) {
				return true
			}
		}
	}
	return false
}

// Find returns the table's entries matching the target, in name order.
func Find(tbl *index.Table, target string) []*index.Entry {
	var found []*index.Entry
	for _, e := range tbl.All() {
		if Matches(e, target) {
			found = append(found, e)
		}
	}
	return found
}
