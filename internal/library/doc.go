// Package library persists the novel catalogue in SQLite: novels, chapters,
// bookmarks, reading progress, comments, votes, and tags.
//
// Chapter replacement happens inside a single transaction so readers never
// observe a partially replaced chapter list while an upload is re-ingested.
package library
