package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"zennovel/internal/textutil"
)

// EnsureTag returns the tag with the given name, creating it on first use.
// The slug is derived from the name.
func (s *Store) EnsureTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("ensure tag: empty name")
	}
	slug := textutil.Slugify(name)

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (name, slug) VALUES (?, ?) ON CONFLICT (name) DO NOTHING",
		name, slug,
	); err != nil {
		return nil, fmt.Errorf("ensure tag %q: %w", name, err)
	}
	return s.tagBy(ctx, "name", name)
}

// GetTagBySlug fetches a tag by its URL slug.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*Tag, error) {
	return s.tagBy(ctx, "slug", slug)
}

// SetNovelTags replaces a novel's tag set with the named tags.
func (s *Store) SetNovelTags(ctx context.Context, novelID int64, names []string) error {
	tags := make([]*Tag, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := s.EnsureTag(ctx, name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set novel tags: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM novel_tags WHERE novel_id = ?", novelID); err != nil {
		return fmt.Errorf("clear novel tags: %w", err)
	}
	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO novel_tags (novel_id, tag_id) VALUES (?, ?)", novelID, tag.ID); err != nil {
			return fmt.Errorf("attach tag %q: %w", tag.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set novel tags: %w", err)
	}
	return nil
}

// NovelTags returns the tags attached to a novel, alphabetically.
func (s *Store) NovelTags(ctx context.Context, novelID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.name, t.slug FROM tags t
         JOIN novel_tags nt ON nt.tag_id = t.id
         WHERE nt.novel_id = ? ORDER BY t.name`, novelID)
	if err != nil {
		return nil, fmt.Errorf("list novel tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var tag Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

func (s *Store) tagBy(ctx context.Context, column, value string) (*Tag, error) {
	var tag Tag
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, slug FROM tags WHERE "+column+" = ?", value).
		Scan(&tag.ID, &tag.Name, &tag.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tag by %s %q: %w", column, value, err)
	}
	return &tag, nil
}
