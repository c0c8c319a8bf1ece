// Package index adapts the remote Meilisearch index to the operations the
// ingestion pipeline and the search side need: existence checks, upserts
// that wait for commit, index bootstrap, search and statistics.
//
// A single Client is safe for concurrent use and is shared by all workers.
package index
