// Package document holds the data model shared by the ingestion pipeline
// and the search side: file entries, document records, match spans and the
// sentinel errors that classify per-file failures.
package document
