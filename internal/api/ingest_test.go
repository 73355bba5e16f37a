package api_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"zennovel/internal/api"
	"zennovel/internal/config"
	"zennovel/internal/library"
	"zennovel/internal/testsupport"
)

const chapterBody = `<p>The road wound on through the hills, and the travellers walked in silence for a long while.</p>
<p>By evening they had reached the river crossing, and the ferryman was waiting as promised.</p>`

func buildFixture(t *testing.T) string {
	t.Helper()
	return testsupport.BuildEPUB(t, testsupport.EPUBFixture{
		Title:    "The Long Road",
		Author:   "Jane Doe",
		Synopsis: "A journey begins.",
		Subjects: []string{"Fantasy", "Adventure"},
		Items: []testsupport.EPUBSpineItem{
			{Name: "cover.xhtml", Body: "<p>cover art</p>"},
			{Name: "ch01.xhtml", Body: "<h1>Chapter 1: Departure</h1>\n" + chapterBody},
			{Name: "ch02.xhtml", Body: "<h1>Chapter 2: The River</h1>\n" + chapterBody},
		},
	})
}

func newIngestService(t *testing.T) (*api.IngestService, *library.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.NewIngestService(store, cfg, nil)
	if svc == nil {
		t.Fatal("NewIngestService returned nil")
	}
	return svc, store, cfg
}

func importFixture(t *testing.T, svc *api.IngestService, req api.ImportRequest, fixture string) *api.IngestReport {
	t.Helper()
	source, err := os.Open(fixture)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer source.Close()
	req.SourceName = "the-long-road.epub"
	req.Source = source

	report, err := svc.Import(context.Background(), req)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return report
}

func TestImportBackfillsAndSegments(t *testing.T) {
	svc, store, _ := newIngestService(t)
	report := importFixture(t, svc, api.ImportRequest{Tags: []string{"Slow Life"}}, buildFixture(t))

	if report.Emitted != 2 {
		t.Fatalf("emitted = %d, want 2: %+v", report.Emitted, report.Items)
	}
	if !report.TitleBackfilled || report.Title != "The Long Road" {
		t.Errorf("report = %+v, want backfilled title", report)
	}

	ctx := context.Background()
	novel, err := store.GetNovel(ctx, report.NovelID)
	if err != nil {
		t.Fatalf("GetNovel: %v", err)
	}
	if novel.Title != "The Long Road" {
		t.Errorf("Title = %q", novel.Title)
	}
	if novel.AlternativeTitle != "The Long Road" {
		t.Errorf("AlternativeTitle = %q, want backfill persisted", novel.AlternativeTitle)
	}
	if novel.Author != "Jane Doe" {
		t.Errorf("Author = %q, want metadata backfill", novel.Author)
	}
	if novel.Synopsis != "A journey begins." {
		t.Errorf("Synopsis = %q", novel.Synopsis)
	}
	if novel.Genre != "Fantasy, Adventure" {
		t.Errorf("Genre = %q", novel.Genre)
	}
	if novel.SourcePath == "" {
		t.Error("SourcePath not recorded")
	}

	chapters, err := store.ListChapters(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != 2 || chapters[0].Title != "Chapter 1: Departure" {
		t.Errorf("chapters = %+v", chapters)
	}

	tags, err := store.NovelTags(ctx, novel.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Slug != "slow-life" {
		t.Errorf("tags = %+v", tags)
	}
}

func TestImportKeepsExplicitFields(t *testing.T) {
	svc, store, _ := newIngestService(t)
	report := importFixture(t, svc, api.ImportRequest{
		Title:  "My Own Title",
		Author: "Someone Else",
	}, buildFixture(t))

	if report.TitleBackfilled {
		t.Error("TitleBackfilled = true for explicitly titled novel")
	}
	novel, err := store.GetNovel(context.Background(), report.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if novel.Title != "My Own Title" || novel.Author != "Someone Else" {
		t.Errorf("novel = %+v, want explicit fields kept", novel)
	}
}

func TestImportRejectsUnsupportedFormat(t *testing.T) {
	svc, _, _ := newIngestService(t)

	_, err := svc.Import(context.Background(), api.ImportRequest{
		SourceName: "book.pdf",
		Source:     strings.NewReader("not an e-book"),
	})
	if !errors.Is(err, api.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestImportPlainText(t *testing.T) {
	svc, store, _ := newIngestService(t)

	var b strings.Builder
	for i := 1; i <= 35; i++ {
		fmt.Fprintf(&b, "Paragraph %d.\n", i)
	}
	report, err := svc.Import(context.Background(), api.ImportRequest{
		Title:      "Plain",
		SourceName: "plain.txt",
		Source:     strings.NewReader(b.String()),
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if report.Emitted != 2 {
		t.Fatalf("emitted = %d, want 2", report.Emitted)
	}
	chapters, err := store.ListChapters(context.Background(), report.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if chapters[0].Title != "Part 1" || chapters[1].Title != "Part 2" {
		t.Errorf("chapters = %+v", chapters)
	}
}

func TestReingestReplacesChapters(t *testing.T) {
	svc, store, _ := newIngestService(t)
	report := importFixture(t, svc, api.ImportRequest{}, buildFixture(t))

	second, err := svc.Reingest(context.Background(), report.NovelID)
	if err != nil {
		t.Fatalf("Reingest: %v", err)
	}
	if second.Emitted != report.Emitted {
		t.Errorf("reingest emitted = %d, want %d", second.Emitted, report.Emitted)
	}

	chapters, err := store.ListChapters(context.Background(), report.NovelID)
	if err != nil {
		t.Fatal(err)
	}
	if len(chapters) != report.Emitted {
		t.Errorf("chapter count = %d after reingest, want %d", len(chapters), report.Emitted)
	}
}

func TestReingestMissingNovel(t *testing.T) {
	svc, _, _ := newIngestService(t)

	_, err := svc.Reingest(context.Background(), 999)
	if !errors.Is(err, api.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
