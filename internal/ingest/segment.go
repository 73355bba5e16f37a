package ingest

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simp-lee/epub"
)

// NovelInfo is the owning-novel context segmentation runs under. Title may be
// a placeholder; Segment backfills it from container metadata when so.
type NovelInfo struct {
	Title            string
	AlternativeTitle string
}

// placeholderTitles are novel titles treated as "not yet named". A backfill
// from container metadata replaces them before segmentation proper starts.
var placeholderTitles = map[string]bool{
	"":          true,
	"new novel": true,
}

// ChapterDraft is one chapter produced by segmentation, not yet persisted.
type ChapterDraft struct {
	// Title is the extracted or synthesized chapter title.
	Title string
	// Content is the cleaned chapter markup.
	Content string
	// Seq is the dense 1-based reading order.
	Seq int
	// Index is the printed chapter number parsed from the title; it may
	// repeat, jump, or carry a decimal part.
	Index float64
}

// Result is the full outcome of one segmentation run.
type Result struct {
	// Novel is the owning-novel info after any title backfill.
	Novel NovelInfo
	// TitleBackfilled reports whether the novel title was replaced from
	// container metadata.
	TitleBackfilled bool
	// Chapters are the emitted drafts in reading order.
	Chapters []ChapterDraft
	// Report records the fate of every document item.
	Report Report
}

// Segmenter splits an uploaded e-book into chapters.
type Segmenter struct {
	opts   Options
	logger *slog.Logger
}

// NewSegmenter builds a Segmenter with the given policy. A nil logger
// disables logging.
func NewSegmenter(opts Options, logger *slog.Logger) *Segmenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Segmenter{opts: opts, logger: logger.With("component", "segmenter")}
}

// Segment splits the file at path into chapter drafts. The format is chosen
// by extension: .epub containers go through the filter chain, .txt files
// through paragraph chunking. Other extensions are an error.
func (s *Segmenter) Segment(ctx context.Context, path string, novel NovelInfo) (*Result, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".epub":
		return s.segmentContainer(ctx, path, novel)
	case ".txt":
		return s.segmentText(ctx, path, novel)
	default:
		return nil, fmt.Errorf("unsupported source format %q", ext)
	}
}

func (s *Segmenter) segmentContainer(ctx context.Context, path string, novel NovelInfo) (*Result, error) {
	book, err := epub.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	defer book.Close()

	result := &Result{Novel: novel}
	s.backfillTitle(book, result)

	seq := 0
	for _, chapter := range book.Chapters() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := ItemResult{Href: chapter.Href}
		draft, verdict := s.processItem(&chapter, result.Novel)
		switch {
		case verdict.err != nil:
			item.Outcome = OutcomeFailed
			item.Reason = verdict.err.Error()
			s.logger.Warn("document item failed", "href", chapter.Href, "error", verdict.err)
		case verdict.stage != "":
			item.Outcome = OutcomeSkipped
			item.Stage = verdict.stage
			item.Reason = verdict.reason
			item.Title = draft.Title
			s.logger.Debug("document item skipped",
				"href", chapter.Href, "stage", verdict.stage, "reason", verdict.reason)
		default:
			seq++
			draft.Seq = seq
			draft.Index = parseChapterIndex(draft.Title, seq)
			result.Chapters = append(result.Chapters, draft)
			item.Outcome = OutcomeEmitted
			item.Title = draft.Title
			item.Seq = seq
		}
		result.Report.add(item)
	}

	s.logger.Info("segmentation finished",
		"source", filepath.Base(path),
		"emitted", result.Report.Emitted(),
		"skipped", result.Report.Skipped(),
		"failed", result.Report.Failed())
	return result, nil
}

// backfillTitle replaces a placeholder novel title with the container's own
// title before any stage runs, so the self-title filter compares against the
// real name. A blank alternate title is filled in the same pass, preferring a
// second metadata title entry when the container carries one.
func (s *Segmenter) backfillTitle(book *epub.Book, result *Result) {
	if !placeholderTitles[strings.ToLower(strings.TrimSpace(result.Novel.Title))] {
		return
	}
	meta := book.Metadata()
	if len(meta.Titles) == 0 {
		return
	}
	title := strings.TrimSpace(meta.Titles[0])
	if title == "" {
		return
	}
	result.Novel.Title = title
	if strings.TrimSpace(result.Novel.AlternativeTitle) == "" {
		alt := title
		if len(meta.Titles) > 1 {
			if second := strings.TrimSpace(meta.Titles[1]); second != "" {
				alt = second
			}
		}
		result.Novel.AlternativeTitle = alt
	}
	result.TitleBackfilled = true
	s.logger.Info("novel title backfilled from container metadata", "title", title)
}

// itemVerdict reports how processing one item ended. Exactly one of err and
// stage is set on a non-emitted item.
type itemVerdict struct {
	err    error
	stage  string
	reason string
}

func (s *Segmenter) processItem(chapter *epub.Chapter, novel NovelInfo) (ChapterDraft, itemVerdict) {
	raw, err := chapter.RawContent()
	if err != nil {
		return ChapterDraft{}, itemVerdict{err: fmt.Errorf("read item: %w", err)}
	}
	doc, err := parseDocument(raw)
	if err != nil {
		return ChapterDraft{}, itemVerdict{err: fmt.Errorf("parse item: %w", err)}
	}

	item := &workItem{
		href:       chapter.Href,
		fileName:   strings.ToLower(baseName(chapter.Href)),
		doc:        doc,
		body:       findBody(doc),
		novelTitle: novel.Title,
	}
	item.text = nodeText(item.body)

	for _, st := range segmentStages {
		if reason := st.run(s, item); reason != "" {
			return ChapterDraft{Title: item.title}, itemVerdict{stage: st.name, reason: reason}
		}
	}

	content, err := renderChildren(item.body)
	if err != nil {
		return ChapterDraft{}, itemVerdict{err: fmt.Errorf("render item: %w", err)}
	}
	return ChapterDraft{Title: item.title, Content: content}, itemVerdict{}
}

// segmentText splits a plain-text upload into fixed-size paragraph chunks.
// Every chunk becomes a "Part N" chapter; no filter stage applies.
func (s *Segmenter) segmentText(ctx context.Context, path string, novel NovelInfo) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}

	paragraphs := nonEmptyLines(string(data))
	result := &Result{Novel: novel}

	chunk := s.opts.TextChunkSize
	if chunk <= 0 {
		chunk = 1
	}
	for start := 0; start < len(paragraphs); start += chunk {
		end := min(start+chunk, len(paragraphs))

		var b strings.Builder
		for _, paragraph := range paragraphs[start:end] {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(paragraph))
			b.WriteString("</p>\n")
		}

		seq := len(result.Chapters) + 1
		draft := ChapterDraft{
			Title:   fmt.Sprintf("Part %d", seq),
			Content: b.String(),
			Seq:     seq,
			Index:   float64(seq),
		}
		result.Chapters = append(result.Chapters, draft)
		result.Report.add(ItemResult{
			Href:    fmt.Sprintf("paragraphs %d-%d", start+1, end),
			Title:   draft.Title,
			Outcome: OutcomeEmitted,
			Seq:     seq,
		})
	}

	s.logger.Info("segmentation finished",
		"source", filepath.Base(path),
		"emitted", result.Report.Emitted())
	return result, nil
}
