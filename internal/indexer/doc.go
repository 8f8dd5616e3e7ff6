// Package indexer implements the concurrent reindex pipeline.
//
// IndexChunks replaces a path's records in three steps: delete every
// existing record for the path, embed each submitted chunk, insert the
// results. Embedding and insertion fan out under a counting semaphore so
// that at most Config.Concurrency tasks (default 10) touch the network or
// the store at once, regardless of batch size.
//
// Failure policy is best-effort per chunk: an embedding or insert failure
// is logged, recorded in the result's Failed list, and never stops the
// remaining chunks. Only a failed delete or a canceled context fails the
// whole call. The result's Indexed count is the number of records
// actually persisted, not the number submitted.
package indexer
