package api

import (
	"context"

	"zennovel/internal/library"
)

// NovelStore abstracts the catalogue persistence the novel service needs.
type NovelStore interface {
	ListNovels(ctx context.Context, filter library.NovelFilter) ([]*library.Novel, error)
	GetNovel(ctx context.Context, id int64) (*library.Novel, error)
	DeleteNovel(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	Genres(ctx context.Context) ([]string, error)
	ListChapters(ctx context.Context, novelID int64) ([]*library.Chapter, error)
	NovelTags(ctx context.Context, novelID int64) ([]*library.Tag, error)
	GetTagBySlug(ctx context.Context, slug string) (*library.Tag, error)
	IsBookmarked(ctx context.Context, sessionKey string, novelID int64) (bool, error)
	RateNovel(ctx context.Context, sessionKey string, novelID int64, score int) (float64, error)
}

// NovelService exposes catalogue reads and ratings returning API DTOs.
type NovelService struct {
	store NovelStore
}

// NewNovelService constructs a NovelService around the provided store.
func NewNovelService(store NovelStore) *NovelService {
	if store == nil {
		return nil
	}
	return &NovelService{store: store}
}

// homeLatestLimit caps the latest-novels strip on the home payload.
const homeLatestLimit = 12

// HomePayload is the landing-page aggregate.
type HomePayload struct {
	Latest []NovelSummary `json:"latest"`
	Genres []string       `json:"genres"`
}

// Home returns the latest novels plus the distinct genre list.
func (s *NovelService) Home(ctx context.Context) (*HomePayload, error) {
	novels, err := s.store.ListNovels(ctx, library.NovelFilter{Limit: homeLatestLimit})
	if err != nil {
		return nil, Wrap(nil, "novels", "home", "list latest", err)
	}
	genres, err := s.store.Genres(ctx)
	if err != nil {
		return nil, Wrap(nil, "novels", "home", "list genres", err)
	}
	return &HomePayload{Latest: FromNovels(novels), Genres: genres}, nil
}

// List returns novels matching the filter.
func (s *NovelService) List(ctx context.Context, filter library.NovelFilter) ([]NovelSummary, error) {
	novels, err := s.store.ListNovels(ctx, filter)
	if err != nil {
		return nil, Wrap(nil, "novels", "list", "", err)
	}
	return FromNovels(novels), nil
}

// ByTag returns novels carrying the tag with the given slug. The tag must
// exist.
func (s *NovelService) ByTag(ctx context.Context, slug string) ([]NovelSummary, error) {
	if _, err := s.store.GetTagBySlug(ctx, slug); err != nil {
		return nil, Wrap(ErrNotFound, "novels", "by tag", slug, err)
	}
	return s.List(ctx, library.NovelFilter{TagSlug: slug})
}

// Detail returns the full novel view and records the page view. sessionKey
// personalizes the bookmark flag and may be empty.
func (s *NovelService) Detail(ctx context.Context, id int64, sessionKey string) (*NovelDetail, error) {
	novel, err := s.store.GetNovel(ctx, id)
	if err != nil {
		return nil, Wrap(nil, "novels", "detail", "", err)
	}
	if err := s.store.IncrementViews(ctx, id); err != nil {
		return nil, Wrap(nil, "novels", "detail", "record view", err)
	}
	novel.Views++

	chapters, err := s.store.ListChapters(ctx, id)
	if err != nil {
		return nil, Wrap(nil, "novels", "detail", "list chapters", err)
	}
	tags, err := s.store.NovelTags(ctx, id)
	if err != nil {
		return nil, Wrap(nil, "novels", "detail", "list tags", err)
	}

	detail := &NovelDetail{
		NovelSummary:     FromNovel(novel),
		AlternativeTitle: novel.AlternativeTitle,
		Synopsis:         novel.Synopsis,
		VoteCount:        novel.VoteCount,
		Tags:             FromTags(tags),
		Chapters:         FromChapters(chapters),
	}
	if sessionKey != "" {
		bookmarked, err := s.store.IsBookmarked(ctx, sessionKey, id)
		if err != nil {
			return nil, Wrap(nil, "novels", "detail", "bookmark flag", err)
		}
		detail.Bookmarked = bookmarked
	}
	return detail, nil
}

// Genres returns the distinct genre list.
func (s *NovelService) Genres(ctx context.Context) ([]string, error) {
	genres, err := s.store.Genres(ctx)
	if err != nil {
		return nil, Wrap(nil, "novels", "genres", "", err)
	}
	return genres, nil
}

// Rate records a 1-5 rating for the session and returns the new average.
func (s *NovelService) Rate(ctx context.Context, sessionKey string, novelID int64, score int) (float64, error) {
	if score < 1 || score > 5 {
		return 0, Wrap(ErrValidation, "novels", "rate", "score must be between 1 and 5", nil)
	}
	if _, err := s.store.GetNovel(ctx, novelID); err != nil {
		return 0, Wrap(nil, "novels", "rate", "", err)
	}
	average, err := s.store.RateNovel(ctx, sessionKey, novelID, score)
	if err != nil {
		return 0, Wrap(nil, "novels", "rate", "", err)
	}
	return average, nil
}

// Delete removes a novel and its chapters.
func (s *NovelService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteNovel(ctx, id); err != nil {
		return Wrap(nil, "novels", "delete", "", err)
	}
	return nil
}
