// Package ingest turns an uploaded e-book into catalogue records.
//
// Two components cooperate: the metadata extractor reads bibliographic fields
// (title, author, synopsis, genre) from an EPUB container, and the chapter
// segmenter walks the container's document items in spine order, filters out
// front matter and navigation noise through an ordered chain of named stages,
// and emits chapters with a dense 1-based reading order plus the chapter
// number parsed from each title.
//
// Per-item problems never abort a run; every item's fate (emitted, skipped at
// a stage, or failed to parse) is recorded in the returned Report so callers
// can surface what happened instead of silently losing content.
package ingest
