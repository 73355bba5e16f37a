package api

import (
	"time"

	"zennovel/internal/ingest"
	"zennovel/internal/library"
)

// NovelSummary is the list-view projection of a novel.
type NovelSummary struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Status        string  `json:"status"`
	CoverPath     string  `json:"cover_path,omitempty"`
	Views         int64   `json:"views"`
	ChapterCount  int     `json:"chapter_count"`
	AverageRating float64 `json:"average_rating"`
	CreatedAt     string  `json:"created_at"`
}

// NovelDetail is the full novel projection, with chapter listing and tags.
type NovelDetail struct {
	NovelSummary
	AlternativeTitle string        `json:"alternative_title,omitempty"`
	Synopsis         string        `json:"synopsis,omitempty"`
	VoteCount        int           `json:"vote_count"`
	Bookmarked       bool          `json:"bookmarked"`
	Tags             []TagView     `json:"tags"`
	Chapters         []ChapterView `json:"chapters"`
}

// ChapterView is the chapter-listing projection, without content.
type ChapterView struct {
	ID    int64   `json:"id"`
	Title string  `json:"title"`
	Seq   int     `json:"seq"`
	Index float64 `json:"chapter_index"`
}

// ChapterDetail is the reading projection, with content and neighbours.
type ChapterDetail struct {
	ChapterView
	NovelID    int64  `json:"novel_id"`
	NovelTitle string `json:"novel_title"`
	Content    string `json:"content"`
	PrevID     int64  `json:"prev_id,omitempty"`
	NextID     int64  `json:"next_id,omitempty"`
}

// TagView is a tag projection.
type TagView struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// BookmarkView joins a bookmark with its novel summary and progress.
type BookmarkView struct {
	Novel             NovelSummary `json:"novel"`
	LastReadChapterID int64        `json:"last_read_chapter_id,omitempty"`
	UpdatedAt         string       `json:"updated_at"`
}

// CommentView is a chapter comment projection.
type CommentView struct {
	ID        int64  `json:"id"`
	ChapterID int64  `json:"chapter_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	Mine      bool   `json:"mine"`
	CreatedAt string `json:"created_at"`
}

// IngestItem mirrors one document item's fate for transport.
type IngestItem struct {
	Href    string `json:"href"`
	Title   string `json:"title,omitempty"`
	Outcome string `json:"outcome"`
	Stage   string `json:"stage,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Seq     int    `json:"seq,omitempty"`
}

// IngestReport summarizes one ingestion run for transport.
type IngestReport struct {
	NovelID         int64        `json:"novel_id"`
	Title           string       `json:"title"`
	TitleBackfilled bool         `json:"title_backfilled"`
	Emitted         int          `json:"emitted"`
	Skipped         int          `json:"skipped"`
	Failed          int          `json:"failed"`
	Items           []IngestItem `json:"items"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// FromNovel projects a storage novel into its summary DTO.
func FromNovel(n *library.Novel) NovelSummary {
	return NovelSummary{
		ID:            n.ID,
		Title:         n.Title,
		Author:        n.Author,
		Genre:         n.Genre,
		Status:        n.Status,
		CoverPath:     n.CoverPath,
		Views:         n.Views,
		ChapterCount:  n.ChapterCount,
		AverageRating: n.AverageRating,
		CreatedAt:     formatTimestamp(n.CreatedAt),
	}
}

// FromNovels projects a slice of storage novels.
func FromNovels(novels []*library.Novel) []NovelSummary {
	out := make([]NovelSummary, len(novels))
	for i, n := range novels {
		out[i] = FromNovel(n)
	}
	return out
}

// FromChapter projects a storage chapter into its listing DTO.
func FromChapter(c *library.Chapter) ChapterView {
	return ChapterView{ID: c.ID, Title: c.Title, Seq: c.Seq, Index: c.Index}
}

// FromChapters projects a slice of storage chapters.
func FromChapters(chapters []*library.Chapter) []ChapterView {
	out := make([]ChapterView, len(chapters))
	for i, c := range chapters {
		out[i] = FromChapter(c)
	}
	return out
}

// FromTags projects storage tags.
func FromTags(tags []*library.Tag) []TagView {
	out := make([]TagView, len(tags))
	for i, t := range tags {
		out[i] = TagView{Name: t.Name, Slug: t.Slug}
	}
	return out
}

// FromReport projects an ingestion result into its transport report.
func FromReport(novelID int64, result *ingest.Result) IngestReport {
	report := IngestReport{
		NovelID:         novelID,
		Title:           result.Novel.Title,
		TitleBackfilled: result.TitleBackfilled,
		Emitted:         result.Report.Emitted(),
		Skipped:         result.Report.Skipped(),
		Failed:          result.Report.Failed(),
		Items:           make([]IngestItem, len(result.Report.Items)),
	}
	for i, item := range result.Report.Items {
		report.Items[i] = IngestItem{
			Href:    item.Href,
			Title:   item.Title,
			Outcome: string(item.Outcome),
			Stage:   item.Stage,
			Reason:  item.Reason,
			Seq:     item.Seq,
		}
	}
	return report
}
