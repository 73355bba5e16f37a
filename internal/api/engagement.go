package api

import (
	"context"
	"strings"

	"zennovel/internal/library"
)

// EngagementStore abstracts the per-session persistence the engagement
// service needs.
type EngagementStore interface {
	GetNovel(ctx context.Context, id int64) (*library.Novel, error)
	GetChapter(ctx context.Context, id int64) (*library.Chapter, error)
	ToggleBookmark(ctx context.Context, sessionKey string, novelID int64) (bool, error)
	ListBookmarks(ctx context.Context, sessionKey string) ([]*library.Bookmark, error)
	UpdateProgress(ctx context.Context, sessionKey string, novelID, chapterID int64) error
	History(ctx context.Context, sessionKey string) ([]*library.Bookmark, error)
	AddComment(ctx context.Context, comment library.Comment) (*library.Comment, error)
	ListComments(ctx context.Context, chapterID int64) ([]*library.Comment, error)
	DeleteComment(ctx context.Context, sessionKey string, commentID int64) error
}

// EngagementService exposes bookmarks, reading progress, and comments.
type EngagementService struct {
	store EngagementStore
}

// NewEngagementService constructs an EngagementService around the store.
func NewEngagementService(store EngagementStore) *EngagementService {
	if store == nil {
		return nil
	}
	return &EngagementService{store: store}
}

// commentBodyMax caps comment length.
const commentBodyMax = 2000

// ToggleBookmark flips the bookmark state for (session, novel) and returns
// the new state.
func (s *EngagementService) ToggleBookmark(ctx context.Context, sessionKey string, novelID int64) (bool, error) {
	if _, err := s.store.GetNovel(ctx, novelID); err != nil {
		return false, Wrap(nil, "engagement", "toggle bookmark", "", err)
	}
	bookmarked, err := s.store.ToggleBookmark(ctx, sessionKey, novelID)
	if err != nil {
		return false, Wrap(nil, "engagement", "toggle bookmark", "", err)
	}
	return bookmarked, nil
}

// Bookmarks returns the session's bookmarks joined with novel summaries.
func (s *EngagementService) Bookmarks(ctx context.Context, sessionKey string) ([]BookmarkView, error) {
	bookmarks, err := s.store.ListBookmarks(ctx, sessionKey)
	if err != nil {
		return nil, Wrap(nil, "engagement", "list bookmarks", "", err)
	}
	return s.bookmarkViews(ctx, bookmarks)
}

// UpdateProgress records the last-read chapter for (session, novel). The
// chapter must belong to the novel.
func (s *EngagementService) UpdateProgress(ctx context.Context, sessionKey string, novelID, chapterID int64) error {
	chapter, err := s.store.GetChapter(ctx, chapterID)
	if err != nil {
		return Wrap(nil, "engagement", "update progress", "", err)
	}
	if chapter.NovelID != novelID {
		return Wrap(ErrValidation, "engagement", "update progress", "chapter belongs to a different novel", nil)
	}
	if err := s.store.UpdateProgress(ctx, sessionKey, novelID, chapterID); err != nil {
		return Wrap(nil, "engagement", "update progress", "", err)
	}
	return nil
}

// History returns the session's bookmarks that carry reading progress, most
// recently read first.
func (s *EngagementService) History(ctx context.Context, sessionKey string) ([]BookmarkView, error) {
	bookmarks, err := s.store.History(ctx, sessionKey)
	if err != nil {
		return nil, Wrap(nil, "engagement", "history", "", err)
	}
	return s.bookmarkViews(ctx, bookmarks)
}

func (s *EngagementService) bookmarkViews(ctx context.Context, bookmarks []*library.Bookmark) ([]BookmarkView, error) {
	views := make([]BookmarkView, 0, len(bookmarks))
	for _, b := range bookmarks {
		novel, err := s.store.GetNovel(ctx, b.NovelID)
		if err != nil {
			// The novel may have been deleted between listing and join.
			continue
		}
		views = append(views, BookmarkView{
			Novel:             FromNovel(novel),
			LastReadChapterID: b.LastReadChapterID,
			UpdatedAt:         formatTimestamp(b.UpdatedAt),
		})
	}
	return views, nil
}

// Comments returns the chapter's comments, oldest first. sessionKey marks the
// caller's own comments.
func (s *EngagementService) Comments(ctx context.Context, chapterID int64, sessionKey string) ([]CommentView, error) {
	if _, err := s.store.GetChapter(ctx, chapterID); err != nil {
		return nil, Wrap(nil, "engagement", "list comments", "", err)
	}
	comments, err := s.store.ListComments(ctx, chapterID)
	if err != nil {
		return nil, Wrap(nil, "engagement", "list comments", "", err)
	}
	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = CommentView{
			ID:        c.ID,
			ChapterID: c.ChapterID,
			Author:    c.Author,
			Body:      c.Body,
			Mine:      sessionKey != "" && c.SessionKey == sessionKey,
			CreatedAt: formatTimestamp(c.CreatedAt),
		}
	}
	return views, nil
}

// AddComment posts a comment on a chapter.
func (s *EngagementService) AddComment(ctx context.Context, sessionKey string, chapterID int64, author, body string) (*CommentView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, Wrap(ErrValidation, "engagement", "add comment", "empty body", nil)
	}
	if len(body) > commentBodyMax {
		return nil, Wrap(ErrValidation, "engagement", "add comment", "body too long", nil)
	}
	if _, err := s.store.GetChapter(ctx, chapterID); err != nil {
		return nil, Wrap(nil, "engagement", "add comment", "", err)
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = "Anonymous"
	}
	comment, err := s.store.AddComment(ctx, library.Comment{
		ChapterID:  chapterID,
		SessionKey: sessionKey,
		Author:     author,
		Body:       body,
	})
	if err != nil {
		return nil, Wrap(nil, "engagement", "add comment", "", err)
	}
	return &CommentView{
		ID:        comment.ID,
		ChapterID: comment.ChapterID,
		Author:    comment.Author,
		Body:      comment.Body,
		Mine:      true,
		CreatedAt: formatTimestamp(comment.CreatedAt),
	}, nil
}

// DeleteComment removes a comment the session owns.
func (s *EngagementService) DeleteComment(ctx context.Context, sessionKey string, commentID int64) error {
	if err := s.store.DeleteComment(ctx, sessionKey, commentID); err != nil {
		return Wrap(nil, "engagement", "delete comment", "", err)
	}
	return nil
}
