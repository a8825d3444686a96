// Package ingest materializes a public repository's text content into
// an ordered sequence of overlapping chunks with file provenance.
//
// Ingestion validates the repository URL before any network access,
// shallow-clones into a temporary working area that is released on
// every exit path, and walks text/documentation/source files while
// skipping binary content and excluded directories. An empty
// repository is not an error: downstream stages degrade gracefully on
// a zero-length chunk sequence.
package ingest
