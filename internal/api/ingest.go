package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"zennovel/internal/config"
	"zennovel/internal/fileutil"
	"zennovel/internal/ingest"
	"zennovel/internal/library"
	"zennovel/internal/textutil"
)

// IngestStore abstracts the persistence the ingestion service needs.
type IngestStore interface {
	CreateNovel(ctx context.Context, novel library.Novel) (*library.Novel, error)
	GetNovel(ctx context.Context, id int64) (*library.Novel, error)
	UpdateNovel(ctx context.Context, novel *library.Novel) error
	ReplaceChapters(ctx context.Context, novelID int64, chapters []library.Chapter) error
	SetNovelTags(ctx context.Context, novelID int64, names []string) error
}

// IngestService runs the admin upload flow: store the source, extract
// metadata, backfill blank novel fields, segment, and replace the chapter
// set.
type IngestService struct {
	store     IngestStore
	cfg       *config.Config
	segmenter *ingest.Segmenter
	logger    *slog.Logger
}

// NewIngestService constructs an IngestService.
func NewIngestService(store IngestStore, cfg *config.Config, logger *slog.Logger) *IngestService {
	if store == nil || cfg == nil {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IngestService{
		store:     store,
		cfg:       cfg,
		segmenter: ingest.NewSegmenter(ingest.OptionsFromConfig(cfg.Ingest), logger),
		logger:    logger.With("component", "ingest-service"),
	}
}

// ImportRequest carries an admin upload. Source is required; every other
// field may be blank and is then backfilled from the e-book where possible.
type ImportRequest struct {
	Title            string
	AlternativeTitle string
	Author           string
	Synopsis         string
	Genre            string
	Status           string
	Tags             []string

	SourceName string
	Source     io.Reader
	CoverName  string
	Cover      io.Reader
}

// Import stores the upload, creates the novel, and runs segmentation.
func (s *IngestService) Import(ctx context.Context, req ImportRequest) (*IngestReport, error) {
	if req.Source == nil || strings.TrimSpace(req.SourceName) == "" {
		return nil, Wrap(ErrValidation, "ingest", "import", "missing source file", nil)
	}
	ext := strings.ToLower(filepath.Ext(req.SourceName))
	if ext != ".epub" && ext != ".txt" {
		return nil, Wrap(ErrValidation, "ingest", "import", fmt.Sprintf("unsupported source format %q", ext), nil)
	}

	sourcePath := filepath.Join(s.cfg.Paths.MediaDir, "sources", textutil.SanitizeFileName(req.SourceName))
	if err := fileutil.WriteReader(sourcePath, req.Source); err != nil {
		return nil, Wrap(nil, "ingest", "import", "store source", err)
	}

	novel := library.Novel{
		Title:            strings.TrimSpace(req.Title),
		AlternativeTitle: strings.TrimSpace(req.AlternativeTitle),
		Author:           strings.TrimSpace(req.Author),
		Synopsis:         strings.TrimSpace(req.Synopsis),
		Genre:            strings.TrimSpace(req.Genre),
		Status:           strings.TrimSpace(req.Status),
		SourcePath:       sourcePath,
	}

	if req.Cover != nil && strings.TrimSpace(req.CoverName) != "" {
		coverPath := filepath.Join(s.cfg.Paths.MediaDir, "covers", textutil.SanitizeFileName(req.CoverName))
		if err := fileutil.WriteReader(coverPath, req.Cover); err != nil {
			return nil, Wrap(nil, "ingest", "import", "store cover", err)
		}
		novel.CoverPath = coverPath
	}

	// Blank bibliographic fields adopt container metadata before the novel is
	// persisted, so defaults never mask a real value.
	if ext == ".epub" {
		md := ingest.ExtractMetadata(sourcePath, s.segmenterOptions())
		if novel.Author == "" {
			novel.Author = md.Author
		}
		if novel.Synopsis == "" {
			novel.Synopsis = md.Synopsis
		}
		if novel.Genre == "" {
			novel.Genre = md.Genre
		}
	}

	created, err := s.store.CreateNovel(ctx, novel)
	if err != nil {
		return nil, Wrap(nil, "ingest", "import", "create novel", err)
	}

	if len(req.Tags) > 0 {
		if err := s.store.SetNovelTags(ctx, created.ID, req.Tags); err != nil {
			return nil, Wrap(nil, "ingest", "import", "set tags", err)
		}
	}

	return s.segmentInto(ctx, created, sourcePath)
}

// Reingest re-runs segmentation for an existing novel from its stored source,
// replacing the prior chapter set.
func (s *IngestService) Reingest(ctx context.Context, novelID int64) (*IngestReport, error) {
	novel, err := s.store.GetNovel(ctx, novelID)
	if err != nil {
		return nil, Wrap(nil, "ingest", "reingest", "", err)
	}
	if strings.TrimSpace(novel.SourcePath) == "" {
		return nil, Wrap(ErrValidation, "ingest", "reingest", "novel has no stored source", nil)
	}
	return s.segmentInto(ctx, novel, novel.SourcePath)
}

func (s *IngestService) segmentInto(ctx context.Context, novel *library.Novel, sourcePath string) (*IngestReport, error) {
	result, err := s.segmenter.Segment(ctx, sourcePath, ingest.NovelInfo{
		Title:            novel.Title,
		AlternativeTitle: novel.AlternativeTitle,
	})
	if err != nil {
		s.logger.Error("segmentation failed",
			"novel_id", novel.ID, "source", filepath.Base(sourcePath), "error", err)
		return nil, Wrap(ErrIngestion, "ingest", "segment", "", err)
	}

	if result.TitleBackfilled {
		novel.Title = result.Novel.Title
		novel.AlternativeTitle = result.Novel.AlternativeTitle
		if err := s.store.UpdateNovel(ctx, novel); err != nil {
			return nil, Wrap(nil, "ingest", "segment", "backfill title", err)
		}
	}

	chapters := make([]library.Chapter, len(result.Chapters))
	for i, draft := range result.Chapters {
		chapters[i] = library.Chapter{
			NovelID: novel.ID,
			Title:   draft.Title,
			Content: draft.Content,
			Seq:     draft.Seq,
			Index:   draft.Index,
		}
	}
	if err := s.store.ReplaceChapters(ctx, novel.ID, chapters); err != nil {
		return nil, Wrap(nil, "ingest", "segment", "replace chapters", err)
	}

	report := FromReport(novel.ID, result)
	s.logger.Info("ingestion finished",
		"novel_id", novel.ID,
		"emitted", report.Emitted,
		"skipped", report.Skipped,
		"failed", report.Failed)
	return &report, nil
}

func (s *IngestService) segmenterOptions() ingest.Options {
	return ingest.OptionsFromConfig(s.cfg.Ingest)
}
