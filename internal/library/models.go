package library

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("library: not found")

// Novel publication status values.
const (
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// Field defaults shared with the ingestion pipeline.
const (
	DefaultAuthor = "Unknown"
	DefaultGenre  = "General"

	// PlaceholderTitle marks a novel created through the admin surface whose
	// real title should be adopted from the uploaded e-book.
	PlaceholderTitle = "New Novel"
)

// Novel is a serialized novel in the catalogue.
type Novel struct {
	ID               int64
	Title            string
	AlternativeTitle string
	Author           string
	Synopsis         string
	Genre            string
	Status           string
	CoverPath        string
	SourcePath       string
	Views            int64
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Aggregates populated on read.
	ChapterCount  int
	AverageRating float64
	VoteCount     int
}

// Chapter is one reading unit of a novel. Seq is the dense 1-based ingestion
// order; Index is the chapter number as printed in the source material and
// carries no uniqueness or monotonicity guarantee.
type Chapter struct {
	ID        int64
	NovelID   int64
	Title     string
	Content   string
	Seq       int
	Index     float64
	CreatedAt time.Time
}

// Bookmark records that a session follows a novel, with optional reading
// progress.
type Bookmark struct {
	ID                int64
	SessionKey        string
	NovelID           int64
	LastReadChapterID int64 // zero when no progress recorded
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Comment is a reader comment on a chapter.
type Comment struct {
	ID         int64
	ChapterID  int64
	SessionKey string
	Author     string
	Body       string
	CreatedAt  time.Time
}

// Vote is a 1-5 rating of a novel, unique per (novel, session).
type Vote struct {
	ID         int64
	NovelID    int64
	SessionKey string
	Score      int
	CreatedAt  time.Time
}

// Tag is a free-form label attached to novels, addressed by slug.
type Tag struct {
	ID   int64
	Name string
	Slug string
}

// NovelFilter narrows ListNovels results. Zero values match everything.
type NovelFilter struct {
	// Query matches novels whose title or author contains the string,
	// case-insensitively.
	Query string
	// Genre matches the genre column case-insensitively.
	Genre string
	// TagSlug restricts results to novels carrying the tag.
	TagSlug string
	// Limit caps the number of rows; zero means no cap.
	Limit int
}
