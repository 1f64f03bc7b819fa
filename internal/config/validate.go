package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validatePoster(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		return fmt.Errorf("paths.catalog is required. Set REELMATCH_CATALOG or edit %s (create with 'reelmatch config init')", c.defaultPathHint())
	}
	if strings.TrimSpace(c.Paths.Similarity) == "" {
		return fmt.Errorf("paths.similarity is required. Set REELMATCH_SIMILARITY or edit %s (create with 'reelmatch config init')", c.defaultPathHint())
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.TMDB.TimeoutSeconds <= 0 {
		return errors.New("tmdb.timeout_seconds must be positive")
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb.requests_per_second must be >= 0 (0 disables rate limiting)")
	}
	if c.TMDB.Burst <= 0 {
		return errors.New("tmdb.burst must be positive")
	}
	return nil
}

func (c *Config) validatePoster() error {
	if c.Poster.CacheSize < 0 {
		return errors.New("poster.cache_size must be >= 0 (0 disables the in-memory cache)")
	}
	if c.Poster.Concurrency < 1 {
		return errors.New("poster.concurrency must be >= 1")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.DefaultK <= 0 {
		return errors.New("recommend.default_k must be positive")
	}
	switch c.Recommend.MatchPolicy {
	case MatchPolicyExactFirst, MatchPolicyFirst:
	default:
		return fmt.Errorf("recommend.match_policy: unsupported value %q (want %q or %q)", c.Recommend.MatchPolicy, MatchPolicyExactFirst, MatchPolicyFirst)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerMinute < 0 {
		return errors.New("server.rate_limit_per_minute must be >= 0 (0 disables rate limiting)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) defaultPathHint() string {
	path, err := DefaultConfigPath()
	if err != nil {
		return defaultConfigPath
	}
	return path
}
