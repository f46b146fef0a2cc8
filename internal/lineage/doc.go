// Package lineage cross-links the group-by and join indexes after both are
// built.
//
// Join configs embed the group-bys they aggregate over, either by reference
// (a name) or inline (a full group-by document). Enrichment promotes inline
// documents to first-class group-by entries, then records on every group-by
// which joins consume it and which event tables drive those joins. The
// resulting columns feed keyword search and the streaming coverage reports.
package lineage
