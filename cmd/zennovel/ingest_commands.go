package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"zennovel/internal/api"
	"zennovel/internal/config"
	"zennovel/internal/library"
	"zennovel/internal/logging"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var title string
	var altTitle string
	var author string
	var synopsis string
	var genre string
	var status string
	var tags []string
	var coverPath string

	cmd := &cobra.Command{
		Use:   "import <file.epub|file.txt>",
		Short: "Import an e-book as a new novel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]
			source, err := os.Open(sourcePath)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer source.Close()

			req := api.ImportRequest{
				Title:            title,
				AlternativeTitle: altTitle,
				Author:           author,
				Synopsis:         synopsis,
				Genre:            genre,
				Status:           status,
				Tags:             tags,
				SourceName:       filepath.Base(sourcePath),
				Source:           source,
			}
			if strings.TrimSpace(coverPath) != "" {
				cover, err := os.Open(coverPath)
				if err != nil {
					return fmt.Errorf("open cover: %w", err)
				}
				defer cover.Close()
				req.CoverName = filepath.Base(coverPath)
				req.Cover = cover
			}

			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				svc, err := ingestService(ctx, cfg, store)
				if err != nil {
					return err
				}
				report, err := svc.Import(cmd.Context(), req)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Novel title (backfilled from the e-book when empty)")
	cmd.Flags().StringVar(&altTitle, "alt-title", "", "Alternative title")
	cmd.Flags().StringVar(&author, "author", "", "Author name")
	cmd.Flags().StringVar(&synopsis, "synopsis", "", "Synopsis")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre label")
	cmd.Flags().StringVar(&status, "status", "", "Publication status (Ongoing or Completed)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVar(&coverPath, "cover", "", "Cover image file")
	return cmd
}

func newReingestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reingest <novel-id>",
		Short: "Re-run segmentation for a novel from its stored source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid novel id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				svc, err := ingestService(ctx, cfg, store)
				if err != nil {
					return err
				}
				report, err := svc.Reingest(cmd.Context(), novelID)
				if err != nil {
					return err
				}
				printReport(cmd, report)
				return nil
			})
		},
	}
}

func ingestService(ctx *commandContext, cfg *config.Config, store *library.Store) (*api.IngestService, error) {
	logger, err := logging.New(*ctx.quietLogger())
	if err != nil {
		return nil, err
	}
	return api.NewIngestService(store, cfg, logger), nil
}

func printReport(cmd *cobra.Command, report *api.IngestReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Novel #%d %q: %d emitted, %d skipped, %d failed\n",
		report.NovelID, report.Title, report.Emitted, report.Skipped, report.Failed)
	if report.TitleBackfilled {
		fmt.Fprintln(out, "Title was adopted from the e-book metadata")
	}
	if len(report.Items) == 0 {
		return
	}

	rows := make([][]string, len(report.Items))
	for i, item := range report.Items {
		seq := ""
		if item.Seq > 0 {
			seq = strconv.Itoa(item.Seq)
		}
		detail := item.Reason
		if item.Stage != "" {
			detail = item.Stage + ": " + item.Reason
		}
		rows[i] = []string{seq, item.Outcome, item.Href, item.Title, detail}
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Seq", "Outcome", "Item", "Title", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
}
