package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedEntry(family, name string) *Entry {
	e := newEntry(family)
	e.Set(ColName, []any{name})
	return e
}

func TestTableInsertAndGet(t *testing.T) {
	tbl := NewTable("group_bys")
	assert.Equal(t, "group_bys", tbl.Family())
	assert.Equal(t, 0, tbl.Len())

	tbl.Insert(namedEntry("group_bys", "team.b.v1"))
	tbl.Insert(namedEntry("group_bys", "team.a.v1"))
	require.Equal(t, 2, tbl.Len())

	e, ok := tbl.Get("team.a.v1")
	require.True(t, ok)
	assert.Equal(t, "team.a.v1", e.Name())

	_, ok = tbl.Get("team.c.v1")
	assert.False(t, ok)
}

func TestTableLastInsertWins(t *testing.T) {
	tbl := NewTable("group_bys")

	first := namedEntry("group_bys", "team.cfg.v1")
	first.Set(ColKeys, []any{"old"})
	second := namedEntry("group_bys", "team.cfg.v1")
	second.Set(ColKeys, []any{"new"})

	tbl.Insert(first)
	tbl.Insert(second)

	require.Equal(t, 1, tbl.Len())
	e, _ := tbl.Get("team.cfg.v1")
	assert.Equal(t, []string{"new"}, e.Strings(ColKeys))
}

func TestTableIgnoresUnnamed(t *testing.T) {
	tbl := NewTable("group_bys")
	tbl.Insert(nil)
	tbl.Insert(newEntry("group_bys"))
	assert.Equal(t, 0, tbl.Len())
}

func TestTableNamesAndAllSorted(t *testing.T) {
	tbl := NewTable("joins")
	for _, name := range []string{"z.last.v1", "a.first.v1", "m.middle.v1"} {
		tbl.Insert(namedEntry("joins", name))
	}

	assert.Equal(t, []string{"a.first.v1", "m.middle.v1", "z.last.v1"}, tbl.Names())

	all := tbl.All()
	require.Len(t, all, 3)
	assert.Equal(t, "a.first.v1", all[0].Name())
	assert.Equal(t, "z.last.v1", all[2].Name())
}
