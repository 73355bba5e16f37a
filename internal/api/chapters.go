package api

import (
	"context"

	"zennovel/internal/library"
)

// ChapterStore abstracts the chapter persistence the chapter service needs.
type ChapterStore interface {
	GetChapter(ctx context.Context, id int64) (*library.Chapter, error)
	GetNovel(ctx context.Context, id int64) (*library.Novel, error)
	AdjacentChapters(ctx context.Context, chapter *library.Chapter) (prev, next *library.Chapter, err error)
}

// ChapterService exposes chapter reads returning API DTOs.
type ChapterService struct {
	store ChapterStore
}

// NewChapterService constructs a ChapterService around the provided store.
func NewChapterService(store ChapterStore) *ChapterService {
	if store == nil {
		return nil
	}
	return &ChapterService{store: store}
}

// Detail returns the reading view of one chapter, with prev/next neighbours
// resolved by reading order.
func (s *ChapterService) Detail(ctx context.Context, id int64) (*ChapterDetail, error) {
	chapter, err := s.store.GetChapter(ctx, id)
	if err != nil {
		return nil, Wrap(nil, "chapters", "detail", "", err)
	}
	novel, err := s.store.GetNovel(ctx, chapter.NovelID)
	if err != nil {
		return nil, Wrap(nil, "chapters", "detail", "owning novel", err)
	}
	prev, next, err := s.store.AdjacentChapters(ctx, chapter)
	if err != nil {
		return nil, Wrap(nil, "chapters", "detail", "neighbours", err)
	}

	detail := &ChapterDetail{
		ChapterView: FromChapter(chapter),
		NovelID:     novel.ID,
		NovelTitle:  novel.Title,
		Content:     chapter.Content,
	}
	if prev != nil {
		detail.PrevID = prev.ID
	}
	if next != nil {
		detail.NextID = next.ID
	}
	return detail, nil
}
