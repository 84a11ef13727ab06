// Package store persists speaker-annotated transcripts in SQLite so export
// and extraction commands can reference an earlier analysis by id instead of
// re-running the engines.
package store
