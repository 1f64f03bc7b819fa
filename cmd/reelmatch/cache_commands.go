package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"reelmatch/internal/posterstore"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent poster cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached poster URLs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if entries == nil {
					entries = []posterstore.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			printCacheEntries(cmd.OutOrStdout(), store.Path(), entries)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}

func printCacheEntries(out io.Writer, path string, entries []posterstore.Entry) {
	fmt.Fprintf(out, "Cache: %s\n", path)
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cached posters: none")
		return
	}
	const stampLayout = "2006-01-02 15:04"
	rows := make([][]string, 0, len(entries))
	for i, entry := range entries {
		cached := "unknown"
		if !entry.CachedAt.IsZero() {
			cached = entry.CachedAt.Local().Format(stampLayout)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), entry.Title, entry.PosterURL, cached})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Poster", "Cached"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <title>",
		Short: "Forget the cached poster for one title",
		Long: `Delete one title from the persistent poster cache.

A running "reelmatch serve" also keeps resolved posters in memory and will
keep serving the old URL until it is evicted or the server restarts. To drop
it from a live server as well, call DELETE /api/poster?title=<title>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			removed, err := store.Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("title %q not found in poster cache", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached poster",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached posters\n", n)
			return nil
		},
	}
}
