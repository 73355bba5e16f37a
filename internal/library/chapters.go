package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const chapterColumns = "id, novel_id, title, content, seq, chapter_index, created_at"

// ReplaceChapters deletes a novel's chapter set and inserts the replacement in
// one transaction, so concurrent readers see either the old set or the new set
// but never a mix. Chapter Seq values are expected to be dense and 1-based;
// the unique (novel_id, seq) constraint rejects duplicates.
func (s *Store) ReplaceChapters(ctx context.Context, novelID int64, chapters []Chapter) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace chapters: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM novels WHERE id = ?", novelID).Scan(&exists); err != nil {
		return fmt.Errorf("check novel %d: %w", novelID, err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE novel_id = ?", novelID); err != nil {
		return fmt.Errorf("clear chapters for novel %d: %w", novelID, err)
	}

	now := formatTime(time.Now().UTC())
	for _, chapter := range chapters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (novel_id, title, content, seq, chapter_index, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			novelID, chapter.Title, chapter.Content, chapter.Seq, chapter.Index, now,
		); err != nil {
			return fmt.Errorf("insert chapter %d for novel %d: %w", chapter.Seq, novelID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace chapters: %w", err)
	}
	return nil
}

// GetChapter fetches a chapter by ID.
func (s *Store) GetChapter(ctx context.Context, id int64) (*Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+chapterColumns+" FROM chapters WHERE id = ?", id)
	chapter, err := scanChapter(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get chapter %d: %w", id, err)
	}
	return chapter, nil
}

// ListChapters returns a novel's chapters in reading order.
func (s *Store) ListChapters(ctx context.Context, novelID int64) ([]*Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+chapterColumns+" FROM chapters WHERE novel_id = ? ORDER BY seq", novelID)
	if err != nil {
		return nil, fmt.Errorf("list chapters for novel %d: %w", novelID, err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		chapter, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, chapter)
	}
	return chapters, rows.Err()
}

// AdjacentChapters returns the chapters immediately before and after the given
// chapter in reading order. Either may be nil at the ends of the novel.
func (s *Store) AdjacentChapters(ctx context.Context, chapter *Chapter) (prev, next *Chapter, err error) {
	if chapter == nil {
		return nil, nil, errors.New("adjacent chapters: nil chapter")
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+chapterColumns+" FROM chapters WHERE novel_id = ? AND seq < ? ORDER BY seq DESC LIMIT 1",
		chapter.NovelID, chapter.Seq)
	prev, err = scanChapter(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("previous chapter: %w", err)
		}
		prev = nil
	}

	row = s.db.QueryRowContext(ctx,
		"SELECT "+chapterColumns+" FROM chapters WHERE novel_id = ? AND seq > ? ORDER BY seq LIMIT 1",
		chapter.NovelID, chapter.Seq)
	next, err = scanChapter(row)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("next chapter: %w", err)
		}
		next = nil
	}

	return prev, next, nil
}

func scanChapter(row rowScanner) (*Chapter, error) {
	var (
		chapter   Chapter
		createdAt string
	)
	err := row.Scan(&chapter.ID, &chapter.NovelID, &chapter.Title, &chapter.Content,
		&chapter.Seq, &chapter.Index, &createdAt)
	if err != nil {
		return nil, err
	}
	chapter.CreatedAt = parseTime(createdAt)
	return &chapter, nil
}
