package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmatch/internal/services"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the title catalog and similarity matrix",
	}
	catalogCmd.AddCommand(newCatalogInfoCommand(ctx))
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	return catalogCmd
}

func newCatalogInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show artifact paths, title count and integrity status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catalog:    %s%s\n", cfg.Paths.Catalog, fileSize(cfg.Paths.Catalog))
			fmt.Fprintf(out, "Similarity: %s%s\n", cfg.Paths.Similarity, fileSize(cfg.Paths.Similarity))

			idx, err := ctx.loadIndex()
			if err != nil {
				if errors.Is(err, services.ErrStaleIndex) {
					fmt.Fprintln(out, "Status:     stale (catalog and matrix sizes differ; re-export both artifacts together)")
				}
				return err
			}
			dups := idx.Catalog().Duplicates()
			fmt.Fprintf(out, "Titles:     %d\n", idx.Len())
			fmt.Fprintf(out, "Duplicates: %d\n", len(dups))
			fmt.Fprintf(out, "Match:      %s\n", cfg.Recommend.MatchPolicy)
			fmt.Fprintf(out, "Posters:    %s (tmdb credentials: %s)\n", yesNo(cfg.Poster.Enabled), yesNo(cfg.HasTMDBCredentials()))
			fmt.Fprintln(out, "Status:     ok")
			return nil
		},
	}
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "List catalog titles containing the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			idx, err := ctx.loadIndex()
			if err != nil {
				return err
			}
			titles := idx.Search(query, limit)
			if jsonOutput {
				if titles == nil {
					titles = []string{}
				}
				return writeJSON(cmd, titles)
			}
			out := cmd.OutOrStdout()
			if len(titles) == 0 {
				fmt.Fprintf(out, "No titles match %q\n", strings.TrimSpace(query))
				return nil
			}
			rows := make([][]string, len(titles))
			for i, title := range titles {
				rows[i] = []string{strconv.Itoa(i + 1), title}
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Title"}, rows, []columnAlignment{alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum titles to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return " (missing)"
	}
	return fmt.Sprintf(" (%s)", humanBytes(info.Size()))
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
