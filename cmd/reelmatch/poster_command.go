package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPosterCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "poster <title...>",
		Short: "Resolve the poster URL for a title",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			svc, err := ctx.buildService()
			if err != nil {
				return err
			}
			if !svc.PostersEnabled() {
				return fmt.Errorf("posters are disabled (poster.enabled = false)")
			}
			title, url, err := svc.Poster(cmd.Context(), query)
			if err != nil {
				return userFacingError(err, query)
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]string{"title": title, "poster_url": url})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", title, url)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON")
	return cmd
}
