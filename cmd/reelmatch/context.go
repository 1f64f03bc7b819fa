package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"reelmatch/internal/catalog"
	"reelmatch/internal/config"
	"reelmatch/internal/logging"
	"reelmatch/internal/metrics"
	"reelmatch/internal/poster"
	"reelmatch/internal/posterstore"
	"reelmatch/internal/recommend"
	"reelmatch/internal/similarity"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	verboseFlag  *bool

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	store *posterstore.Store
}

func newCommandContext(configFlag, logLevelFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		verboseFlag:  verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.verboseFlag != nil && *c.verboseFlag {
			cfg.Logging.Level = "debug"
		} else if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// openStore opens the persistent poster cache, reusing one handle per
// invocation.
func (c *commandContext) openStore() (*posterstore.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := posterstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open poster cache: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// loadIndex loads the catalog artifacts and builds the similarity index.
func (c *commandContext) loadIndex() (*similarity.Index, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	policy, err := similarity.ParseMatchPolicy(cfg.Recommend.MatchPolicy)
	if err != nil {
		return nil, err
	}
	cat, matrix, err := catalog.Load(cfg.Paths.Catalog, cfg.Paths.Similarity)
	if err != nil {
		return nil, err
	}
	idx, err := similarity.New(cat, matrix, similarity.WithMatchPolicy(policy), similarity.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	metrics.SetCatalogTitles(idx.Len())
	logger.Debug("catalog loaded",
		logging.Int("titles", idx.Len()),
		logging.String("catalog", cfg.Paths.Catalog),
		logging.String("similarity", cfg.Paths.Similarity),
		logging.String(logging.FieldEventType, "catalog_loaded"),
	)
	return idx, nil
}

// buildService wires the index, poster resolver and optional persistent
// cache into a recommend.Service.
func (c *commandContext) buildService() (*recommend.Service, error) {
	idx, err := c.loadIndex()
	if err != nil {
		return nil, err
	}
	cfg := c.config
	logger := c.logger

	var resolver recommend.PosterResolver
	if cfg.Poster.Enabled {
		var store poster.Store
		if cfg.Poster.Persist {
			s, err := c.openStore()
			if err != nil {
				return nil, err
			}
			store = s
		}
		r, err := poster.NewFromConfig(cfg, logger, store)
		if err != nil {
			return nil, fmt.Errorf("build poster resolver: %w", err)
		}
		resolver = r
	}

	return recommend.NewService(idx, resolver,
		recommend.WithDefaultK(cfg.Recommend.DefaultK),
		recommend.WithConcurrency(cfg.Poster.Concurrency),
		recommend.WithLogger(logger),
	), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
