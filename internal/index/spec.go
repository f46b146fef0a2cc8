// Package index builds searchable in-memory tables from the JSON config
// families under the production tree. Each family has a fixed spec mapping
// index columns to the path expressions whose extracted values fill them.
package index

import (
	"github.com/confex-labs/confex/internal/config"
	"github.com/confex-labs/confex/internal/extract"
)

// Column names produced by the index specs and the lineage pass. Names with
// a leading underscore are internal plumbing columns consumed by reports and
// enrichment rather than shown prominently to users.
const (
	ColSources         = "sources"
	ColEventTables     = "_event_tables"
	ColEventTopics     = "_event_topics"
	ColAggregation     = "aggregation"
	ColKeys            = "keys"
	ColName            = "name"
	ColOnline          = "online"
	ColInputTable      = "input_table"
	ColEventsDriver    = "_events_driver"
	ColGroupBys        = "group_bys"
	ColInlineGroupBys  = "_group_bys"
	ColJoins           = "joins"
	ColJoinEventDriver = "join_event_driver"
)

// Column maps one index column to the paths whose extracted values fill it.
// Values from later paths are appended after values from earlier ones.
type Column struct {
	Name  string
	Paths []extract.Path
}

// Spec describes how a config family is indexed: the directory it lives in
// under the production tree and the ordered columns extracted per document.
type Spec struct {
	Family  string
	Columns []Column
}

func col(name string, exprs ...string) Column {
	c := Column{Name: name}
	for _, expr := range exprs {
		c.Paths = append(c.Paths, extract.MustCompile(expr))
	}
	return c
}

// GroupBySpec indexes aggregation configs. The sources column unions every
// table and topic reference so keyword search sees all of them, while the
// _event_tables and _event_topics columns carve out the event subset that
// the streaming reports reason about.
var GroupBySpec = Spec{
	Family: config.FamilyGroupBys,
	Columns: []Column{
		col(ColSources,
			"sources[].events.table",
			"sources[].entities.snapshotTable",
			"sources[].entities.mutationTable",
			"sources[].entities.topic",
			"sources[].events.topic",
		),
		col(ColEventTables, "sources[].events.table"),
		col(ColEventTopics, "sources[].events.topic"),
		col(ColAggregation, "aggregations[].inputColumn"),
		col(ColKeys, "keyColumns"),
		col(ColName, "metaData.name"),
		col(ColOnline, "metaData.online"),
	},
}

// JoinSpec indexes join configs. The _group_bys column captures the full
// inline group-by documents embedded in join parts so they can be indexed
// as first-class group-bys during enrichment.
var JoinSpec = Spec{
	Family: config.FamilyJoins,
	Columns: []Column{
		col(ColInputTable,
			"left.entities.snapshotTable",
			"left.events.table",
		),
		col(ColEventsDriver, "left.events.table"),
		col(ColGroupBys,
			"joinParts[].groupBy.metaData.name",
			"rightParts[].groupBy.name",
		),
		col(ColName, "metaData.name"),
		col(ColInlineGroupBys,
			"joinParts[].groupBy",
			"rightParts[].groupBy",
		),
	},
}
