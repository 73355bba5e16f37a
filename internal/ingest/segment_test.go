package ingest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"zennovel/internal/ingest"
	"zennovel/internal/testsupport"
)

const longBody = `<p>The road wound on through the hills, and the travellers walked in silence for a long while.</p>
<p>By evening they had reached the river crossing, and the ferryman was waiting as promised.</p>`

func chapterItem(n int) testsupport.EPUBSpineItem {
	return testsupport.EPUBSpineItem{
		Name: fmt.Sprintf("chapter%02d.xhtml", n),
		Body: fmt.Sprintf("<h1>Chapter %d: On The Road</h1>\n%s", n, longBody),
	}
}

func segmentFixture(t *testing.T, novel ingest.NovelInfo, items ...testsupport.EPUBSpineItem) *ingest.Result {
	t.Helper()
	path := testsupport.BuildEPUB(t, testsupport.EPUBFixture{
		Title: "The Long Road",
		Items: items,
	})
	seg := ingest.NewSegmenter(ingest.DefaultOptions(), nil)
	result, err := seg.Segment(context.Background(), path, novel)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	return result
}

func TestSegmentOrderIsDense(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		chapterItem(1),
		testsupport.EPUBSpineItem{Name: "copyright.xhtml", Body: longBody},
		chapterItem(2),
		testsupport.EPUBSpineItem{Name: "stub.xhtml", Body: "<p>tiny</p>"},
		chapterItem(3),
	)

	if len(result.Chapters) != 3 {
		t.Fatalf("emitted %d chapters, want 3", len(result.Chapters))
	}
	for i, ch := range result.Chapters {
		if ch.Seq != i+1 {
			t.Errorf("chapter %d Seq = %d, want %d", i, ch.Seq, i+1)
		}
	}
	if result.Report.Skipped() != 2 {
		t.Errorf("skipped = %d, want 2", result.Report.Skipped())
	}
}

func TestSegmentFilenameBlacklist(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "Table of Contents.xhtml", Body: longBody},
		chapterItem(1),
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1", len(result.Chapters))
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "filename-blacklist" {
		t.Errorf("item = %+v, want skip at filename-blacklist", item)
	}
}

func TestSegmentFilenameBlacklistRescue(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{
			Name: "Chapter 12 - Table of Contents.xhtml",
			Body: "<h1>Chapter 12: The Archive</h1>\n" + longBody,
		},
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1: %+v", len(result.Chapters), result.Report.Items)
	}
	if result.Chapters[0].Index != 12 {
		t.Errorf("Index = %v, want 12", result.Chapters[0].Index)
	}
}

func TestSegmentTitleBlacklist(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "listing.xhtml", Body: "<h1>Index of Names</h1>\n" + longBody},
		testsupport.EPUBSpineItem{Name: "ch03.xhtml", Body: "<h1>Chapter 3: Index of Names</h1>\n" + longBody},
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1: %+v", len(result.Chapters), result.Report.Items)
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "title-blacklist" {
		t.Errorf("item = %+v, want skip at title-blacklist", item)
	}
	if result.Chapters[0].Title != "Chapter 3: Index of Names" {
		t.Errorf("rescued title = %q", result.Chapters[0].Title)
	}
}

func TestSegmentTOCDensityFilter(t *testing.T) {
	var toc strings.Builder
	for i := 1; i <= 60; i++ {
		fmt.Fprintf(&toc, "<p>Chapter %d: A Heading</p>\n", i)
	}

	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "listing.xhtml", Body: toc.String()},
		chapterItem(1),
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1", len(result.Chapters))
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "toc-density" {
		t.Errorf("item = %+v, want skip at toc-density", item)
	}
}

func TestSegmentTOCDensityAllowsLongChapters(t *testing.T) {
	// A real chapter with many scene headings stays below the threshold.
	var body strings.Builder
	body.WriteString("<h1>Chapter 1: Fragments</h1>\n")
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&body, "<p>Chapter %d was what the sign read.</p>\n", i)
	}

	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "ch01.xhtml", Body: body.String()},
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1: %+v", len(result.Chapters), result.Report.Items)
	}
}

func TestSegmentCleansMarkup(t *testing.T) {
	body := `<div class="chapter-footer"><p>advertisement advertisement advertisement</p></div>
<script>alert("x")</script>
<a href="prev.xhtml">Prev</a>
<h1>Chapter 1: Clean</h1>
` + longBody

	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "ch01.xhtml", Body: body},
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1: %+v", len(result.Chapters), result.Report.Items)
	}
	content := result.Chapters[0].Content
	for _, banned := range []string{"advertisement", "<script", "Prev", "<h1"} {
		if strings.Contains(content, banned) {
			t.Errorf("content still contains %q:\n%s", banned, content)
		}
	}
	if !strings.Contains(content, "ferryman") {
		t.Errorf("content lost real text:\n%s", content)
	}
}

func TestSegmentTitleExtraction(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{
			Name: "ch05.xhtml",
			Body: "<h1>Chapter 5: The Return</h1>\n" + longBody,
		},
		testsupport.EPUBSpineItem{
			Name: "ch06.xhtml",
			Body: "<p>Bab 6 - Pulang</p>\n" + longBody,
		},
	)

	if len(result.Chapters) != 2 {
		t.Fatalf("emitted %d chapters, want 2: %+v", len(result.Chapters), result.Report.Items)
	}
	if got := result.Chapters[0].Title; got != "Chapter 5: The Return" {
		t.Errorf("heading title = %q", got)
	}
	if strings.Contains(result.Chapters[0].Content, "The Return") {
		t.Errorf("title not removed from body:\n%s", result.Chapters[0].Content)
	}
	if got := result.Chapters[1].Title; got != "Bab 6 - Pulang" {
		t.Errorf("paragraph-scan title = %q", got)
	}
}

func TestSegmentChapterIndex(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "ch00.xhtml", Body: "<h1>Prologue</h1>\n" + longBody},
		testsupport.EPUBSpineItem{Name: "ch05.xhtml", Body: "<h1>Chapter 5: The Return</h1>\n" + longBody},
		testsupport.EPUBSpineItem{Name: "ch0505.xhtml", Body: "<h1>Chapter 5.5</h1>\n" + longBody},
		testsupport.EPUBSpineItem{Name: "ch-x.xhtml", Body: "<h1>An Unmarked Interlude</h1>\n" + longBody},
	)

	if len(result.Chapters) != 4 {
		t.Fatalf("emitted %d chapters, want 4: %+v", len(result.Chapters), result.Report.Items)
	}
	want := []float64{0, 5, 5.5, 4}
	for i, ch := range result.Chapters {
		if ch.Index != want[i] {
			t.Errorf("chapter %q Index = %v, want %v", ch.Title, ch.Index, want[i])
		}
	}
}

func TestSegmentSelfTitleSkip(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "titlepage01.xhtml", Body: "<h1>The Long Road</h1>\n" + longBody},
		chapterItem(1),
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1", len(result.Chapters))
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "self-title" {
		t.Errorf("item = %+v, want skip at self-title", item)
	}
}

func TestSegmentMinLengthSkip(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "stub.xhtml", Body: "<h1>Chapter 1</h1><p>short.</p>"},
		chapterItem(2),
	)

	if len(result.Chapters) != 1 {
		t.Fatalf("emitted %d chapters, want 1", len(result.Chapters))
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "min-length" {
		t.Errorf("item = %+v, want skip at min-length", item)
	}
	if result.Chapters[0].Seq != 1 {
		t.Errorf("surviving chapter Seq = %d, want 1", result.Chapters[0].Seq)
	}
}

func TestSegmentMinLengthCountsRunes(t *testing.T) {
	// Eleven CJK characters: over 20 bytes but well under 20 characters.
	result := segmentFixture(t, ingest.NovelInfo{Title: "The Long Road"},
		testsupport.EPUBSpineItem{Name: "ch01.xhtml", Body: "<h1>Chapter 1</h1><p>夜はまだ明けていない。</p>"},
	)

	if len(result.Chapters) != 0 {
		t.Fatalf("emitted %d chapters, want 0", len(result.Chapters))
	}
	item := result.Report.Items[0]
	if item.Outcome != ingest.OutcomeSkipped || item.Stage != "min-length" {
		t.Errorf("item = %+v, want skip at min-length", item)
	}
}

func TestSegmentTitleBackfill(t *testing.T) {
	result := segmentFixture(t, ingest.NovelInfo{Title: "New Novel"},
		testsupport.EPUBSpineItem{Name: "titlepage01.xhtml", Body: "<h1>The Long Road</h1>\n" + longBody},
		chapterItem(1),
	)

	if !result.TitleBackfilled {
		t.Fatal("TitleBackfilled = false, want backfill from container metadata")
	}
	if result.Novel.Title != "The Long Road" {
		t.Errorf("Novel.Title = %q", result.Novel.Title)
	}
	if result.Novel.AlternativeTitle != "The Long Road" {
		t.Errorf("Novel.AlternativeTitle = %q, want backfill alongside the title", result.Novel.AlternativeTitle)
	}
	// The backfilled title must already be in force for the self-title filter.
	if item := result.Report.Items[0]; item.Stage != "self-title" {
		t.Errorf("title page item = %+v, want skip at self-title", item)
	}
}

func TestSegmentNoBackfillForNamedNovel(t *testing.T) {
	for _, title := range []string{"Existing Name", "."} {
		result := segmentFixture(t, ingest.NovelInfo{Title: title}, chapterItem(1))
		if result.TitleBackfilled || result.Novel.Title != title {
			t.Errorf("novel = %+v, want title %q untouched", result.Novel, title)
		}
	}
}

func TestSegmentDeterministic(t *testing.T) {
	items := []testsupport.EPUBSpineItem{
		chapterItem(1),
		testsupport.EPUBSpineItem{Name: "nav.xhtml", Body: longBody},
		chapterItem(2),
		chapterItem(3),
	}
	path := testsupport.BuildEPUB(t, testsupport.EPUBFixture{Title: "The Long Road", Items: items})
	seg := ingest.NewSegmenter(ingest.DefaultOptions(), nil)

	first, err := seg.Segment(context.Background(), path, ingest.NovelInfo{Title: "The Long Road"})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := seg.Segment(context.Background(), path, ingest.NovelInfo{Title: "The Long Road"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first.Chapters, second.Chapters) {
		t.Errorf("runs differ:\n%+v\n%+v", first.Chapters, second.Chapters)
	}
}

func TestSegmentTextChunking(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 65; i++ {
		fmt.Fprintf(&b, "Paragraph %d of the story.\n", i)
	}
	path := filepath.Join(t.TempDir(), "story.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}

	seg := ingest.NewSegmenter(ingest.DefaultOptions(), nil)
	result, err := seg.Segment(context.Background(), path, ingest.NovelInfo{Title: "Plain"})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	if len(result.Chapters) != 3 {
		t.Fatalf("emitted %d chapters, want 3", len(result.Chapters))
	}
	wantCounts := []int{30, 30, 5}
	for i, ch := range result.Chapters {
		if want := fmt.Sprintf("Part %d", i+1); ch.Title != want {
			t.Errorf("chapter %d Title = %q, want %q", i, ch.Title, want)
		}
		if got := strings.Count(ch.Content, "<p>"); got != wantCounts[i] {
			t.Errorf("chapter %d has %d paragraphs, want %d", i, got, wantCounts[i])
		}
		if ch.Index != float64(i+1) {
			t.Errorf("chapter %d Index = %v, want %v", i, ch.Index, float64(i+1))
		}
	}
}

func TestSegmentUnsupportedExtension(t *testing.T) {
	seg := ingest.NewSegmenter(ingest.DefaultOptions(), nil)
	if _, err := seg.Segment(context.Background(), "book.pdf", ingest.NovelInfo{}); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}
