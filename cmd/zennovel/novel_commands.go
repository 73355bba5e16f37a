package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zennovel/internal/config"
	"zennovel/internal/library"
)

func newNovelsCommand(ctx *commandContext) *cobra.Command {
	var query string
	var genre string
	var tagSlug string
	var limit int

	cmd := &cobra.Command{
		Use:   "novels",
		Short: "List novels in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				novels, err := store.ListNovels(cmd.Context(), library.NovelFilter{
					Query:   query,
					Genre:   genre,
					TagSlug: tagSlug,
					Limit:   limit,
				})
				if err != nil {
					return err
				}
				if len(novels) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No novels found")
					return nil
				}

				rows := make([][]string, len(novels))
				for i, n := range novels {
					rows[i] = []string{
						strconv.FormatInt(n.ID, 10),
						n.Title,
						n.Author,
						n.Genre,
						n.Status,
						strconv.Itoa(n.ChapterCount),
						fmt.Sprintf("%.1f", n.AverageRating),
						strconv.FormatInt(n.Views, 10),
					}
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Title", "Author", "Genre", "Status", "Chapters", "Rating", "Views"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Match title or author")
	cmd.Flags().StringVar(&genre, "genre", "", "Filter by genre")
	cmd.Flags().StringVar(&tagSlug, "tag", "", "Filter by tag slug")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 = all)")
	return cmd
}

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <novel-id>",
		Short: "List a novel's chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid novel id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *library.Store) error {
				novel, err := store.GetNovel(cmd.Context(), novelID)
				if err != nil {
					return err
				}
				chapters, err := store.ListChapters(cmd.Context(), novelID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%d chapters)\n", novel.Title, len(chapters))
				if len(chapters) == 0 {
					return nil
				}
				rows := make([][]string, len(chapters))
				for i, c := range chapters {
					rows[i] = []string{
						strconv.FormatInt(c.ID, 10),
						strconv.Itoa(c.Seq),
						formatIndex(c.Index),
						c.Title,
					}
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"ID", "Seq", "Index", "Title"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignLeft}))
				return nil
			})
		},
	}
}

func formatIndex(index float64) string {
	if index == float64(int64(index)) {
		return strconv.FormatInt(int64(index), 10)
	}
	return strconv.FormatFloat(index, 'f', -1, 64)
}
