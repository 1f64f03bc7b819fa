package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizePoster()
	c.normalizeRecommend()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.Catalog) == "" {
		if value, ok := os.LookupEnv("REELMATCH_CATALOG"); ok {
			c.Paths.Catalog = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.Similarity) == "" {
		if value, ok := os.LookupEnv("REELMATCH_SIMILARITY"); ok {
			c.Paths.Similarity = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}

	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.Catalog, err = expandPath(strings.TrimSpace(c.Paths.Catalog)); err != nil {
		return fmt.Errorf("paths.catalog: %w", err)
	}
	if c.Paths.Similarity, err = expandPath(strings.TrimSpace(c.Paths.Similarity)); err != nil {
		return fmt.Errorf("paths.similarity: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.ReadAccessToken = strings.TrimSpace(c.TMDB.ReadAccessToken)
	if c.TMDB.ReadAccessToken == "" {
		if value, ok := os.LookupEnv("TMDB_TOKEN"); ok {
			c.TMDB.ReadAccessToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("TMDB_READ_ACCESS_TOKEN"); ok {
			c.TMDB.ReadAccessToken = strings.TrimSpace(value)
		}
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if c.TMDB.APIKey == "" {
		if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
			c.TMDB.APIKey = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeoutSeconds
	}
	if c.TMDB.Burst <= 0 {
		c.TMDB.Burst = defaultTMDBBurst
	}
}

func (c *Config) normalizePoster() {
	c.Poster.PlaceholderURL = strings.TrimSpace(c.Poster.PlaceholderURL)
	if c.Poster.PlaceholderURL == "" {
		c.Poster.PlaceholderURL = defaultPlaceholderURL
	}
	if c.Poster.Concurrency == 0 {
		c.Poster.Concurrency = defaultPosterConcurrency
	}
}

func (c *Config) normalizeRecommend() {
	if c.Recommend.DefaultK == 0 {
		c.Recommend.DefaultK = defaultRecommendK
	}
	c.Recommend.MatchPolicy = strings.ToLower(strings.TrimSpace(c.Recommend.MatchPolicy))
	if c.Recommend.MatchPolicy == "" {
		c.Recommend.MatchPolicy = defaultMatchPolicy
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.Server.AllowedOrigins))
	for _, origin := range c.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	c.Server.AllowedOrigins = origins
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		if value, ok := os.LookupEnv("REELMATCH_API_TOKEN"); ok {
			c.Server.Token = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
