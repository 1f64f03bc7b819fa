package main

import (
	"fmt"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reelmatch/internal/httpapi"
	"reelmatch/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP recommendation API",
		Long: `Run the HTTP recommendation API.

Only one server may run per data directory; a lock file in data_dir guards
against a second instance sharing the poster cache.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if b := strings.TrimSpace(bind); b != "" {
				cfg.Server.Bind = b
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("another reelmatch server is already running (lock %s)", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			svc, err := ctx.buildService()
			if err != nil {
				return err
			}
			srv, err := httpapi.New(cfg, svc, logger)
			if err != nil {
				return err
			}
			logger.Info("reelmatch server starting",
				logging.String("bind", cfg.Server.Bind),
				logging.Int("titles", svc.Index().Len()),
				logging.Bool("posters", svc.PostersEnabled()),
				logging.String("config", ctx.configPath),
				logging.String(logging.FieldEventType, "server_start"),
			)
			return srv.Run(cmd.Context(), nil)
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
