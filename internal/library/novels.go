package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const novelColumns = `n.id, n.title, n.alternative_title, n.author, n.synopsis, n.genre,
    n.status, n.cover_path, n.source_path, n.views, n.created_at, n.updated_at,
    (SELECT COUNT(1) FROM chapters c WHERE c.novel_id = n.id),
    COALESCE((SELECT AVG(v.score) FROM votes v WHERE v.novel_id = n.id), 0),
    (SELECT COUNT(1) FROM votes v WHERE v.novel_id = n.id)`

// CreateNovel inserts a novel and returns it with its assigned ID. Blank
// author/genre/status fields receive catalogue defaults.
func (s *Store) CreateNovel(ctx context.Context, novel Novel) (*Novel, error) {
	if strings.TrimSpace(novel.Title) == "" {
		novel.Title = PlaceholderTitle
	}
	if strings.TrimSpace(novel.Author) == "" {
		novel.Author = DefaultAuthor
	}
	if strings.TrimSpace(novel.Genre) == "" {
		novel.Genre = DefaultGenre
	}
	if strings.TrimSpace(novel.Status) == "" {
		novel.Status = StatusOngoing
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO novels (title, alternative_title, author, synopsis, genre, status,
            cover_path, source_path, views, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
		novel.Title, novel.AlternativeTitle, novel.Author, novel.Synopsis, novel.Genre,
		novel.Status, novel.CoverPath, novel.SourcePath, formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert novel: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetNovel(ctx, id)
}

// GetNovel fetches a novel by ID, including rating and chapter aggregates.
func (s *Store) GetNovel(ctx context.Context, id int64) (*Novel, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+novelColumns+" FROM novels n WHERE n.id = ?", id)
	novel, err := scanNovel(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get novel %d: %w", id, err)
	}
	return novel, nil
}

// UpdateNovel persists the mutable fields of a novel.
func (s *Store) UpdateNovel(ctx context.Context, novel *Novel) error {
	if novel == nil || novel.ID == 0 {
		return errors.New("update novel: missing ID")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE novels SET title = ?, alternative_title = ?, author = ?, synopsis = ?,
            genre = ?, status = ?, cover_path = ?, source_path = ?, updated_at = ?
         WHERE id = ?`,
		novel.Title, novel.AlternativeTitle, novel.Author, novel.Synopsis, novel.Genre,
		novel.Status, novel.CoverPath, novel.SourcePath, formatTime(now), novel.ID,
	)
	if err != nil {
		return fmt.Errorf("update novel %d: %w", novel.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update novel %d: rows affected: %w", novel.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	novel.UpdatedAt = now
	return nil
}

// DeleteNovel removes a novel; chapters, bookmarks, comments, and votes
// cascade with it.
func (s *Store) DeleteNovel(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM novels WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete novel %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete novel %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNovels returns novels matching the filter, newest first.
func (s *Store) ListNovels(ctx context.Context, filter NovelFilter) ([]*Novel, error) {
	query := "SELECT " + novelColumns + " FROM novels n"
	var (
		clauses []string
		args    []any
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		clauses = append(clauses, "(n.title LIKE ? COLLATE NOCASE OR n.author LIKE ? COLLATE NOCASE)")
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	if genre := strings.TrimSpace(filter.Genre); genre != "" {
		clauses = append(clauses, "n.genre = ? COLLATE NOCASE")
		args = append(args, genre)
	}
	if slug := strings.TrimSpace(filter.TagSlug); slug != "" {
		clauses = append(clauses,
			"n.id IN (SELECT nt.novel_id FROM novel_tags nt JOIN tags t ON t.id = nt.tag_id WHERE t.slug = ?)")
		args = append(args, slug)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY n.created_at DESC, n.id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list novels: %w", err)
	}
	defer rows.Close()

	var novels []*Novel
	for rows.Next() {
		novel, err := scanNovel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan novel: %w", err)
		}
		novels = append(novels, novel)
	}
	return novels, rows.Err()
}

// IncrementViews bumps a novel's view counter.
func (s *Store) IncrementViews(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE novels SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment views for novel %d: %w", id, err)
	}
	return nil
}

// Genres returns the distinct genres in the catalogue, title-cased and
// deduplicated case-insensitively, sorted alphabetically.
func (s *Store) Genres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT genre FROM novels WHERE genre != ''")
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	caser := cases.Title(language.English)
	seen := make(map[string]struct{})
	var genres []string
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		// A novel's genre column may hold a comma-joined list when it came
		// from e-book subject metadata.
		for _, part := range strings.Split(genre, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			display := caser.String(strings.ToLower(part))
			key := strings.ToLower(display)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			genres = append(genres, display)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(genres)
	return genres, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNovel(row rowScanner) (*Novel, error) {
	var (
		novel     Novel
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&novel.ID, &novel.Title, &novel.AlternativeTitle, &novel.Author, &novel.Synopsis,
		&novel.Genre, &novel.Status, &novel.CoverPath, &novel.SourcePath, &novel.Views,
		&createdAt, &updatedAt, &novel.ChapterCount, &novel.AverageRating, &novel.VoteCount,
	)
	if err != nil {
		return nil, err
	}
	novel.CreatedAt = parseTime(createdAt)
	novel.UpdatedAt = parseTime(updatedAt)
	return &novel, nil
}
