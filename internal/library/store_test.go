package library_test

import (
	"context"
	"errors"
	"testing"

	"zennovel/internal/library"
	"zennovel/internal/testsupport"
)

func TestCreateNovelAppliesDefaults(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel, err := store.CreateNovel(ctx, library.Novel{})
	if err != nil {
		t.Fatalf("CreateNovel: %v", err)
	}
	if novel.Title != library.PlaceholderTitle {
		t.Errorf("Title = %q, want placeholder", novel.Title)
	}
	if novel.Author != library.DefaultAuthor {
		t.Errorf("Author = %q, want %q", novel.Author, library.DefaultAuthor)
	}
	if novel.Genre != library.DefaultGenre {
		t.Errorf("Genre = %q, want %q", novel.Genre, library.DefaultGenre)
	}
	if novel.Status != library.StatusOngoing {
		t.Errorf("Status = %q, want %q", novel.Status, library.StatusOngoing)
	}
	if novel.ID == 0 {
		t.Error("ID not assigned")
	}
}

func TestGetNovelNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	if _, err := store.GetNovel(context.Background(), 12345); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateAndDeleteNovel(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Before")
	novel.Title = "After"
	novel.Status = library.StatusCompleted
	if err := store.UpdateNovel(ctx, novel); err != nil {
		t.Fatalf("UpdateNovel: %v", err)
	}

	got, err := store.GetNovel(ctx, novel.ID)
	if err != nil {
		t.Fatalf("GetNovel: %v", err)
	}
	if got.Title != "After" || got.Status != library.StatusCompleted {
		t.Errorf("novel = %+v after update", got)
	}

	if err := store.DeleteNovel(ctx, novel.ID); err != nil {
		t.Fatalf("DeleteNovel: %v", err)
	}
	if _, err := store.GetNovel(ctx, novel.ID); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("err = %v after delete, want ErrNotFound", err)
	}
}

func TestListNovelsFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.CreateNovel(ctx, library.Novel{Title: "Sword of Dawn", Author: "Ana Reyes", Genre: "Fantasy"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateNovel(ctx, library.Novel{Title: "Iron Orbit", Author: "Bo Chen", Genre: "Sci-Fi"}); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		filter library.NovelFilter
		want   int
	}{
		{"all", library.NovelFilter{}, 2},
		{"query matches title", library.NovelFilter{Query: "sword"}, 1},
		{"query matches author", library.NovelFilter{Query: "chen"}, 1},
		{"genre", library.NovelFilter{Genre: "fantasy"}, 1},
		{"no match", library.NovelFilter{Query: "zzz"}, 0},
		{"limit", library.NovelFilter{Limit: 1}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			novels, err := store.ListNovels(ctx, tc.filter)
			if err != nil {
				t.Fatalf("ListNovels: %v", err)
			}
			if len(novels) != tc.want {
				t.Errorf("got %d novels, want %d", len(novels), tc.want)
			}
		})
	}
}

func TestIncrementViews(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Viewed")
	for i := 0; i < 3; i++ {
		if err := store.IncrementViews(ctx, novel.ID); err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
	}
	got, err := store.GetNovel(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != 3 {
		t.Errorf("Views = %d, want 3", got.Views)
	}
}

func TestGenresAreSplitAndDeduplicated(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.CreateNovel(ctx, library.Novel{Title: "A", Genre: "fantasy, magic"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateNovel(ctx, library.Novel{Title: "B", Genre: "Fantasy"}); err != nil {
		t.Fatal(err)
	}

	genres, err := store.Genres(ctx)
	if err != nil {
		t.Fatalf("Genres: %v", err)
	}
	want := []string{"Fantasy", "Magic"}
	if len(genres) != len(want) {
		t.Fatalf("genres = %v, want %v", genres, want)
	}
	for i := range want {
		if genres[i] != want[i] {
			t.Errorf("genres = %v, want %v", genres, want)
			break
		}
	}
}

func seedChapters(t *testing.T, store *library.Store, novelID int64, titles ...string) []*library.Chapter {
	t.Helper()
	ctx := context.Background()
	chapters := make([]library.Chapter, len(titles))
	for i, title := range titles {
		chapters[i] = library.Chapter{
			NovelID: novelID,
			Title:   title,
			Content: "<p>content for " + title + "</p>",
			Seq:     i + 1,
			Index:   float64(i + 1),
		}
	}
	if err := store.ReplaceChapters(ctx, novelID, chapters); err != nil {
		t.Fatalf("ReplaceChapters: %v", err)
	}
	stored, err := store.ListChapters(ctx, novelID)
	if err != nil {
		t.Fatalf("ListChapters: %v", err)
	}
	return stored
}

func TestReplaceChaptersSwapsSet(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Replaced")
	seedChapters(t, store, novel.ID, "Old 1", "Old 2", "Old 3")
	stored := seedChapters(t, store, novel.ID, "New 1", "New 2")

	if len(stored) != 2 {
		t.Fatalf("got %d chapters after replace, want 2", len(stored))
	}
	if stored[0].Title != "New 1" || stored[1].Title != "New 2" {
		t.Errorf("chapters = %+v", stored)
	}

	got, err := store.GetNovel(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ChapterCount != 2 {
		t.Errorf("ChapterCount = %d, want 2", got.ChapterCount)
	}
}

func TestAdjacentChapters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Neighbours")
	stored := seedChapters(t, store, novel.ID, "One", "Two", "Three")

	prev, next, err := store.AdjacentChapters(ctx, stored[1])
	if err != nil {
		t.Fatalf("AdjacentChapters: %v", err)
	}
	if prev == nil || prev.Title != "One" {
		t.Errorf("prev = %+v, want One", prev)
	}
	if next == nil || next.Title != "Three" {
		t.Errorf("next = %+v, want Three", next)
	}

	prev, next, err = store.AdjacentChapters(ctx, stored[0])
	if err != nil {
		t.Fatal(err)
	}
	if prev != nil {
		t.Errorf("prev = %+v at first chapter, want nil", prev)
	}
	if next == nil || next.Title != "Two" {
		t.Errorf("next = %+v, want Two", next)
	}
}

func TestBookmarkToggleAndProgress(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	const session = "session-a"

	novel := testsupport.NewNovel(t, store, "Bookmarked")
	stored := seedChapters(t, store, novel.ID, "One", "Two")

	on, err := store.ToggleBookmark(ctx, session, novel.ID)
	if err != nil || !on {
		t.Fatalf("first toggle = %v, %v; want true", on, err)
	}
	bookmarked, err := store.IsBookmarked(ctx, session, novel.ID)
	if err != nil || !bookmarked {
		t.Fatalf("IsBookmarked = %v, %v; want true", bookmarked, err)
	}

	if err := store.UpdateProgress(ctx, session, novel.ID, stored[1].ID); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	history, err := store.History(ctx, session)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].LastReadChapterID != stored[1].ID {
		t.Errorf("history = %+v", history)
	}

	off, err := store.ToggleBookmark(ctx, session, novel.ID)
	if err != nil || off {
		t.Fatalf("second toggle = %v, %v; want false", off, err)
	}
	list, err := store.ListBookmarks(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("bookmarks = %+v after untoggle", list)
	}
}

func TestProgressSurvivesChapterReplacement(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	const session = "session-b"

	novel := testsupport.NewNovel(t, store, "Reingested")
	stored := seedChapters(t, store, novel.ID, "One", "Two")
	if _, err := store.ToggleBookmark(ctx, session, novel.ID); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdateProgress(ctx, session, novel.ID, stored[0].ID); err != nil {
		t.Fatal(err)
	}

	// Replacing chapters nulls dangling progress instead of dropping the
	// bookmark row.
	seedChapters(t, store, novel.ID, "New One")
	list, err := store.ListBookmarks(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("bookmarks = %+v, want the row kept", list)
	}
	if list[0].LastReadChapterID != 0 {
		t.Errorf("LastReadChapterID = %d, want cleared", list[0].LastReadChapterID)
	}
}

func TestCommentsLifecycle(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Discussed")
	stored := seedChapters(t, store, novel.ID, "One")
	chapterID := stored[0].ID

	comment, err := store.AddComment(ctx, library.Comment{
		ChapterID:  chapterID,
		SessionKey: "session-a",
		Author:     "Reader",
		Body:       "Loved this part.",
	})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	comments, err := store.ListComments(ctx, chapterID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "Loved this part." {
		t.Errorf("comments = %+v", comments)
	}

	// A different session cannot delete the comment.
	if err := store.DeleteComment(ctx, "session-b", comment.ID); !errors.Is(err, library.ErrNotFound) {
		t.Errorf("cross-session delete err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteComment(ctx, "session-a", comment.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	comments, err = store.ListComments(ctx, chapterID)
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 0 {
		t.Errorf("comments = %+v after delete", comments)
	}
}

func TestRateNovelUpserts(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Rated")

	if _, err := store.RateNovel(ctx, "session-a", novel.ID, 5); err != nil {
		t.Fatalf("RateNovel: %v", err)
	}
	average, err := store.RateNovel(ctx, "session-b", novel.ID, 3)
	if err != nil {
		t.Fatalf("RateNovel: %v", err)
	}
	if average != 4 {
		t.Errorf("average = %v, want 4", average)
	}

	// Same session re-rating replaces the prior score.
	average, err = store.RateNovel(ctx, "session-b", novel.ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if average != 5 {
		t.Errorf("average = %v after re-rate, want 5", average)
	}

	got, err := store.GetNovel(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.VoteCount != 2 || got.AverageRating != 5 {
		t.Errorf("aggregates = %d votes, %v average", got.VoteCount, got.AverageRating)
	}
}

func TestTagsAndNovelTagFilter(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	novel := testsupport.NewNovel(t, store, "Tagged")
	if err := store.SetNovelTags(ctx, novel.ID, []string{"Slow Life", "Isekai"}); err != nil {
		t.Fatalf("SetNovelTags: %v", err)
	}

	tag, err := store.GetTagBySlug(ctx, "slow-life")
	if err != nil {
		t.Fatalf("GetTagBySlug: %v", err)
	}
	if tag.Name != "Slow Life" {
		t.Errorf("tag = %+v", tag)
	}

	tags, err := store.NovelTags(ctx, novel.ID)
	if err != nil {
		t.Fatalf("NovelTags: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("tags = %+v, want 2", tags)
	}

	novels, err := store.ListNovels(ctx, library.NovelFilter{TagSlug: "isekai"})
	if err != nil {
		t.Fatalf("ListNovels: %v", err)
	}
	if len(novels) != 1 || novels[0].ID != novel.ID {
		t.Errorf("novels by tag = %+v", novels)
	}

	// Re-tagging replaces the attachment set.
	if err := store.SetNovelTags(ctx, novel.ID, []string{"Isekai"}); err != nil {
		t.Fatal(err)
	}
	tags, err = store.NovelTags(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Slug != "isekai" {
		t.Errorf("tags = %+v after re-tag", tags)
	}
}
