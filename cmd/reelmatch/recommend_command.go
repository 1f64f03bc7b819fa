package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelmatch/internal/recommend"
	"reelmatch/internal/services"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var k int
	var noPosters bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend <title...>",
		Short: "Recommend movies similar to a title",
		Long: `Recommend movies similar to a title.

The title is matched case-insensitively against the catalog: an exact match
wins, otherwise the first title containing the text is used (see
recommend.match_policy).`,
		Example: "  reelmatch recommend the dark knight\n  reelmatch recommend avatar -k 10 --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			svc, err := ctx.buildService()
			if err != nil {
				return err
			}
			result, err := svc.Execute(cmd.Context(), recommend.Request{Query: query, K: k, SkipPosters: noPosters})
			if err != nil {
				return userFacingError(err, query)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printRecommendations(cmd.OutOrStdout(), result, svc.PostersEnabled() && !noPosters)
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "k", "k", 0, "Number of recommendations (default from recommend.default_k)")
	cmd.Flags().BoolVar(&noPosters, "no-posters", false, "Skip TMDB poster lookups")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

// userFacingError maps the caller-facing sentinels to the messages users see.
func userFacingError(err error, query string) error {
	switch {
	case errors.Is(err, services.ErrEmptyInput):
		return errors.New("please enter a movie name")
	case errors.Is(err, services.ErrNotFound):
		return fmt.Errorf("movie not found: %q", strings.TrimSpace(query))
	default:
		return err
	}
}

func printRecommendations(out io.Writer, result recommend.Result, withPosters bool) {
	colorize := shouldColorize(out)
	fmt.Fprintf(out, "Because you searched for %s:\n", styled(colorize, ansiBold, result.Title))

	headers := []string{"#", "Title", "Score"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight}
	if withPosters {
		headers = append(headers, "Poster")
		aligns = append(aligns, alignLeft)
	}
	rows := make([][]string, 0, len(result.Items))
	for i, item := range result.Items {
		row := []string{strconv.Itoa(i + 1), item.Title, strconv.FormatFloat(item.Score, 'f', 3, 64)}
		if withPosters {
			row = append(row, item.PosterURL)
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}
