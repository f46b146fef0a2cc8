package index

import (
	"sort"
	"sync"
)

// Table is a name-keyed collection of entries for one config family.
// Inserts for an already-registered name replace the earlier entry, so the
// last config indexed under a name wins.
type Table struct {
	family string

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewTable creates an empty table for the given family.
func NewTable(family string) *Table {
	return &Table{
		family:  family,
		entries: make(map[string]*Entry),
	}
}

// Family returns the config family the table indexes.
func (t *Table) Family() string { return t.family }

// Insert registers an entry under its name. Entries without a name are
// ignored.
func (t *Table) Insert(e *Entry) {
	if e == nil || e.Name() == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[e.Name()] = e
}

// Get looks up an entry by config name.
func (t *Table) Get(name string) (*Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[name]
	return e, ok
}

// Len returns the number of indexed entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Names returns every entry name in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the entries in name order.
func (t *Table) All() []*Entry {
	names := t.Names()
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, 0, len(names))
	for _, name := range names {
		out = append(out, t.entries[name])
	}
	return out
}
