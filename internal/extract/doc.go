// Package extract turns files into document records. Each file type has one
// Extractor; a Registry built at startup maps types to extractors and
// rejects types nobody handles.
package extract
