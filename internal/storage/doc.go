// Package storage owns the embedded vector store: one logical table of
// indexed code chunks with their embeddings, backed by SQLite.
//
// The table schema is fixed except for the vector dimension, which is
// established by the first insert and pinned in a one-row meta table.
// Later inserts (and search queries) whose vector length disagrees fail
// with *DimensionError rather than silently corrupting the index.
//
// Three operations make up the contract:
//
//   - Insert appends a record and assigns it a fresh UUID.
//   - DeleteByPath removes every record for an exact path. The predicate
//     is parameterized, so paths containing quote characters are safe.
//   - Search returns the stored chunks closest to a query vector by
//     cosine distance, ascending, with the distance populated on every
//     result's Score.
//
// Two build configurations select the driver and the search strategy, see
// build_purego.go and build_cgo.go.
package storage
