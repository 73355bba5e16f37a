package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ToggleBookmark creates a bookmark for (session, novel) or removes it when it
// already exists. It reports whether the novel is bookmarked afterwards.
func (s *Store) ToggleBookmark(ctx context.Context, sessionKey string, novelID int64) (bool, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return false, errors.New("toggle bookmark: missing session key")
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE session_key = ? AND novel_id = ?", sessionKey, novelID)
	if err != nil {
		return false, fmt.Errorf("toggle bookmark: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle bookmark: rows affected: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	now := formatTime(time.Now().UTC())
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (session_key, novel_id, last_read_chapter_id, created_at, updated_at)
         VALUES (?, ?, NULL, ?, ?)`,
		sessionKey, novelID, now, now,
	); err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	return true, nil
}

// IsBookmarked reports whether the session follows the novel.
func (s *Store) IsBookmarked(ctx context.Context, sessionKey string, novelID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM bookmarks WHERE session_key = ? AND novel_id = ?",
		sessionKey, novelID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check bookmark: %w", err)
	}
	return count > 0, nil
}

// ListBookmarks returns the session's bookmarks, most recently updated first.
func (s *Store) ListBookmarks(ctx context.Context, sessionKey string) ([]*Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_key, novel_id, COALESCE(last_read_chapter_id, 0), created_at, updated_at
         FROM bookmarks WHERE session_key = ? ORDER BY updated_at DESC`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []*Bookmark
	for rows.Next() {
		bookmark, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, bookmark)
	}
	return bookmarks, rows.Err()
}

// UpdateProgress records the last-read chapter on the session's bookmark,
// creating the bookmark when it does not exist yet.
func (s *Store) UpdateProgress(ctx context.Context, sessionKey string, novelID, chapterID int64) error {
	if strings.TrimSpace(sessionKey) == "" {
		return errors.New("update progress: missing session key")
	}

	now := formatTime(time.Now().UTC())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks (session_key, novel_id, last_read_chapter_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (session_key, novel_id)
         DO UPDATE SET last_read_chapter_id = excluded.last_read_chapter_id, updated_at = excluded.updated_at`,
		sessionKey, novelID, nullableInt64(chapterID), now, now,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// History returns bookmarks that carry reading progress, most recent first.
func (s *Store) History(ctx context.Context, sessionKey string) ([]*Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_key, novel_id, COALESCE(last_read_chapter_id, 0), created_at, updated_at
         FROM bookmarks
         WHERE session_key = ? AND last_read_chapter_id IS NOT NULL
         ORDER BY updated_at DESC`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var bookmarks []*Bookmark
	for rows.Next() {
		bookmark, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		bookmarks = append(bookmarks, bookmark)
	}
	return bookmarks, rows.Err()
}

// AddComment appends a comment to a chapter.
func (s *Store) AddComment(ctx context.Context, comment Comment) (*Comment, error) {
	if strings.TrimSpace(comment.Body) == "" {
		return nil, errors.New("add comment: empty body")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (chapter_id, session_key, author, body, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		comment.ChapterID, comment.SessionKey, comment.Author, comment.Body, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	comment.ID = id
	comment.CreatedAt = now
	return &comment, nil
}

// ListComments returns a chapter's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, chapterID int64) ([]*Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chapter_id, session_key, author, body, created_at
         FROM comments WHERE chapter_id = ? ORDER BY created_at, id`, chapterID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		var (
			comment   Comment
			createdAt string
		)
		if err := rows.Scan(&comment.ID, &comment.ChapterID, &comment.SessionKey,
			&comment.Author, &comment.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comment.CreatedAt = parseTime(createdAt)
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment when it belongs to the session.
func (s *Store) DeleteComment(ctx context.Context, sessionKey string, commentID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM comments WHERE id = ? AND session_key = ?", commentID, sessionKey)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment %d: rows affected: %w", commentID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// RateNovel records a 1-5 score for (novel, session), replacing any previous
// score, and returns the novel's new average rating.
func (s *Store) RateNovel(ctx context.Context, sessionKey string, novelID int64, score int) (float64, error) {
	if score < 1 || score > 5 {
		return 0, fmt.Errorf("rate novel: score %d out of range 1-5", score)
	}
	if strings.TrimSpace(sessionKey) == "" {
		return 0, errors.New("rate novel: missing session key")
	}

	now := formatTime(time.Now().UTC())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (novel_id, session_key, score, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (novel_id, session_key) DO UPDATE SET score = excluded.score`,
		novelID, sessionKey, score, now,
	)
	if err != nil {
		return 0, fmt.Errorf("rate novel %d: %w", novelID, err)
	}
	return s.AverageRating(ctx, novelID)
}

// AverageRating returns the mean vote score for a novel, zero when unrated.
func (s *Store) AverageRating(ctx context.Context, novelID int64) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		"SELECT AVG(score) FROM votes WHERE novel_id = ?", novelID).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average rating for novel %d: %w", novelID, err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

func scanBookmark(row rowScanner) (*Bookmark, error) {
	var (
		bookmark  Bookmark
		createdAt string
		updatedAt string
	)
	err := row.Scan(&bookmark.ID, &bookmark.SessionKey, &bookmark.NovelID,
		&bookmark.LastReadChapterID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	bookmark.CreatedAt = parseTime(createdAt)
	bookmark.UpdatedAt = parseTime(updatedAt)
	return &bookmark, nil
}
